package domain

import "time"

// Goal is a user career goal.
type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"` // open, completed, abandoned
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// GoalRequest is the input for creating or updating a goal.
type GoalRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      string `json:"status" validate:"omitempty,oneof=open completed abandoned"`
	TargetDate  string `json:"targetDate" validate:"omitempty,datetime=2006-01-02"`
}

// Application is a tracked job application.
type Application struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Company   string     `json:"company"`
	Position  string     `json:"position"`
	Status    string     `json:"status"` // saved, applied, interviewing, offer, rejected
	AppliedAt *time.Time `json:"appliedAt,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ApplicationRequest is the input for creating or updating an application.
type ApplicationRequest struct {
	Company   string `json:"company" validate:"required,max=200"`
	Position  string `json:"position" validate:"required,max=200"`
	Status    string `json:"status" validate:"omitempty,oneof=saved applied interviewing offer rejected"`
	AppliedAt string `json:"appliedAt" validate:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes" validate:"max=5000"`
}

// WorkExperience is one entry of a user's work history.
type WorkExperience struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// WorkExperienceRequest is the input for creating or updating a work entry.
type WorkExperienceRequest struct {
	Company     string `json:"company" validate:"required,max=200"`
	Title       string `json:"title" validate:"required,max=200"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=5000"`
}

// Contact is a networking contact.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Title     string    `json:"title,omitempty"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactRequest is the input for creating or updating a contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Company string `json:"company" validate:"max=200"`
	Title   string `json:"title" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Notes   string `json:"notes" validate:"max=5000"`
}

// Recommendation is a generated career recommendation. A set is considered
// fresh for 24 hours after creation; after that a new set is generated.
type Recommendation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	Type      string    `json:"type"` // generated, fallback
	Completed bool      `json:"completed"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// University is an institutional license holder.
type University struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Domain       string     `json:"domain,omitempty"`
	LicensePlan  string     `json:"licensePlan"`
	LicenseSeats int        `json:"licenseSeats"`
	LicenseStart *time.Time `json:"licenseStart,omitempty"`
	LicenseEnd   *time.Time `json:"licenseEnd,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UniversityRequest is the input for creating or updating a university.
type UniversityRequest struct {
	Name         string `json:"name" validate:"omitempty,max=300"`
	Domain       string `json:"domain" validate:"omitempty,fqdn"`
	LicensePlan  string `json:"licensePlan" validate:"omitempty,oneof=trial basic pro"`
	LicenseSeats int    `json:"licenseSeats" validate:"omitempty,gte=0"`
	LicenseStart string `json:"licenseStart" validate:"omitempty,datetime=2006-01-02"`
	LicenseEnd   string `json:"licenseEnd" validate:"omitempty,datetime=2006-01-02"`
}
