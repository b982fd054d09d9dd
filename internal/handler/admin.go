package handler

import (
	"context"
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
)

type AdminUserStore interface {
	ListAll(ctx context.Context) ([]*domain.User, error)
	CountByPlan(ctx context.Context) (map[string]int, error)
}

// SettingsReader is the cached settings surface injected by main.
type SettingsReader interface {
	Get(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, changes map[string]string) error
}

type AdminHandler struct {
	users    AdminUserStore
	settings SettingsReader
}

func NewAdminHandler(users AdminUserStore, settings SettingsReader) *AdminHandler {
	return &AdminHandler{users: users, settings: settings}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, users)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	byPlan, err := h.users.CountByPlan(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	total := 0
	for _, n := range byPlan {
		total += n
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"totalUsers":  total,
		"usersByPlan": byPlan,
	})
}

// GetSettings handles GET /api/admin/settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/admin/settings. Writes through to storage
// and invalidates the cache so the next read sees the new values.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var changes map[string]string
	if err := DecodeJSON(r, &changes); err != nil {
		Error(w, err)
		return
	}
	if len(changes) == 0 {
		Error(w, domain.ErrBadRequest("no settings provided"))
		return
	}

	if err := h.settings.Update(r.Context(), changes); err != nil {
		Error(w, err)
		return
	}
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, settings)
}
