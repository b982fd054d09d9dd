package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/internal/repository"
)

// ProfileStore is the user repository surface the profile handler needs.
type ProfileStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, username string) error
	CompleteOnboarding(ctx context.Context, id string) error
}

type ProfileHandler struct {
	users ProfileStore
}

func NewProfileHandler(users ProfileStore) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Me handles GET /api/users/me. The gateway already loaded (or provisioned)
// the user, so this is just a serialization of the context value.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, CurrentUser(r))
}

// Update handles PUT /api/users/me.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	user := CurrentUser(r)
	if err := h.users.UpdateProfile(r.Context(), user.ID, req.Name, req.Username); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			Error(w, domain.ErrBadRequest("username is already taken"))
			return
		}
		Error(w, err)
		return
	}

	updated, err := h.users.FindByID(r.Context(), user.ID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, updated)
}

// CompleteOnboarding handles PUT /api/users/me/onboarding.
func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if err := h.users.CompleteOnboarding(r.Context(), user.ID); err != nil {
		Error(w, err)
		return
	}
	user.OnboardingCompleted = true
	JSON(w, http.StatusOK, user)
}
