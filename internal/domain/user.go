package domain

import "time"

// Role values. Checks are flat set-membership: admin does NOT satisfy a
// super_admin-only route. Keep it that way.
const (
	RoleRegular         = "regular"
	RoleStaff           = "staff"
	RoleAdmin           = "admin"
	RoleSuperAdmin      = "super_admin"
	RoleUniversityAdmin = "university_admin"
)

// Subscription plan values.
const (
	PlanFree       = "free"
	PlanPremium    = "premium"
	PlanUniversity = "university"
)

// Subscription status values.
const (
	SubInactive  = "inactive"
	SubActive    = "active"
	SubPastDue   = "past_due"
	SubCancelled = "cancelled"
)

// Billing cycle values.
const (
	CycleMonthly = "monthly"
	CycleAnnual  = "annual"
)

// User is the local account record. Subject is owned by the identity provider;
// the row is created lazily on first successful token verification.
type User struct {
	ID                   string    `json:"id"`
	Subject              string    `json:"-"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Username             string    `json:"username"`
	Role                 string    `json:"role"`
	OnboardingCompleted  bool      `json:"onboardingCompleted"`
	UniversityID         *int64    `json:"universityId,omitempty"`
	Plan                 string    `json:"plan"`
	SubscriptionStatus   string    `json:"subscriptionStatus"`
	BillingCycle         string    `json:"billingCycle,omitempty"`
	StripeCustomerID     string    `json:"-"`
	StripeSubscriptionID string    `json:"-"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// UpdateProfileRequest is the input for profile updates.
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,min=1,max=120"`
	Username string `json:"username" validate:"omitempty,alphanum,min=3,max=40"`
}
