package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
)

type UniversityStore interface {
	Create(ctx context.Context, u *domain.University) error
	FindByID(ctx context.Context, id int64) (*domain.University, error)
	ListAll(ctx context.Context) ([]*domain.University, error)
	Update(ctx context.Context, u *domain.University) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type UniversityMemberStore interface {
	ListByUniversity(ctx context.Context, universityID int64) ([]*domain.User, error)
	AttachToUniversity(ctx context.Context, userID string, universityID int64, role string) error
}

type UniversityHandler struct {
	store   UniversityStore
	members UniversityMemberStore
}

func NewUniversityHandler(store UniversityStore, members UniversityMemberStore) *UniversityHandler {
	return &UniversityHandler{store: store, members: members}
}

// List handles GET /api/universities.
func (h *UniversityHandler) List(w http.ResponseWriter, r *http.Request) {
	unis, err := h.store.ListAll(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, unis)
}

// Create handles POST /api/universities.
func (h *UniversityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.UniversityRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Name == "" {
		Error(w, domain.ErrBadRequest("field name is required"))
		return
	}

	uni := &domain.University{
		Name:         req.Name,
		Domain:       req.Domain,
		LicensePlan:  req.LicensePlan,
		LicenseSeats: req.LicenseSeats,
		LicenseStart: ParseDate(req.LicenseStart),
		LicenseEnd:   ParseDate(req.LicenseEnd),
	}
	if uni.LicensePlan == "" {
		uni.LicensePlan = "trial"
	}
	if err := h.store.Create(r.Context(), uni); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, uni)
}

// Get handles GET /api/universities/{id}.
func (h *UniversityHandler) Get(w http.ResponseWriter, r *http.Request) {
	uni, err := h.findUniversity(r)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, uni)
}

// Update handles PUT /api/universities/{id}. Partial updates: zero-value
// fields keep their stored values.
func (h *UniversityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UniversityRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	uni, err := h.findUniversity(r)
	if err != nil {
		Error(w, err)
		return
	}

	if req.Name != "" {
		uni.Name = req.Name
	}
	if req.Domain != "" {
		uni.Domain = req.Domain
	}
	if req.LicensePlan != "" {
		uni.LicensePlan = req.LicensePlan
	}
	if req.LicenseSeats != 0 {
		uni.LicenseSeats = req.LicenseSeats
	}
	if t := ParseDate(req.LicenseStart); t != nil {
		uni.LicenseStart = t
	}
	if t := ParseDate(req.LicenseEnd); t != nil {
		uni.LicenseEnd = t
	}

	ok, err := h.store.Update(r.Context(), uni)
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("university not found"))
		return
	}
	JSON(w, http.StatusOK, uni)
}

// Delete handles DELETE /api/universities/{id}.
func (h *UniversityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.Context(), ParamInt64(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("university not found"))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListAdmins handles GET /api/universities/{id}/admins.
func (h *UniversityHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	members, err := h.listMembers(r)
	if err != nil {
		Error(w, err)
		return
	}
	admins := make([]*domain.User, 0)
	for _, m := range members {
		if m.Role == domain.RoleUniversityAdmin {
			admins = append(admins, m)
		}
	}
	JSON(w, http.StatusOK, admins)
}

type addAdminRequest struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}

// AddAdmin handles POST /api/universities/{id}/admins. Attaches an existing
// user to the university as university_admin.
func (h *UniversityHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req addAdminRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	if _, err := h.findUniversity(r); err != nil {
		Error(w, err)
		return
	}
	err := h.members.AttachToUniversity(r.Context(), req.UserID, ParamInt64(r, "id"), domain.RoleUniversityAdmin)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListStudents handles GET /api/universities/{id}/students.
func (h *UniversityHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.listStudents(r)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, students)
}

// ExportStudents handles GET /api/universities/{id}/students/export and
// streams a CSV attachment.
func (h *UniversityHandler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.listStudents(r)
	if err != nil {
		Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="university-%d-students.csv"`, ParamInt64(r, "id")))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "email", "name", "username", "plan", "status", "createdAt"})
	for _, s := range students {
		_ = cw.Write([]string{
			s.ID,
			s.Email,
			s.Name,
			s.Username,
			s.Plan,
			s.SubscriptionStatus,
			s.CreatedAt.Format("2006-01-02"),
		})
	}
	cw.Flush()
}

func (h *UniversityHandler) findUniversity(r *http.Request) (*domain.University, error) {
	uni, err := h.store.FindByID(r.Context(), ParamInt64(r, "id"))
	if err != nil {
		return nil, err
	}
	if uni == nil {
		return nil, domain.ErrNotFound("university not found")
	}
	return uni, nil
}

func (h *UniversityHandler) listMembers(r *http.Request) ([]*domain.User, error) {
	if _, err := h.findUniversity(r); err != nil {
		return nil, err
	}
	return h.members.ListByUniversity(r.Context(), ParamInt64(r, "id"))
}

func (h *UniversityHandler) listStudents(r *http.Request) ([]*domain.User, error) {
	// University admins only see their own institution.
	caller := CurrentUser(r)
	if caller.Role == domain.RoleUniversityAdmin {
		id := ParamInt64(r, "id")
		if caller.UniversityID == nil || *caller.UniversityID != id {
			return nil, domain.ErrForbidden("Access denied", "you can only view your own university")
		}
	}

	members, err := h.listMembers(r)
	if err != nil {
		return nil, err
	}
	students := make([]*domain.User, 0, len(members))
	for _, m := range members {
		if m.Role != domain.RoleUniversityAdmin {
			students = append(students, m)
		}
	}
	return students, nil
}
