package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/careerpilot/backend/internal/domain"
)

type ApplicationStore interface {
	Create(ctx context.Context, a *domain.Application) error
	FindByID(ctx context.Context, userID, id string) (*domain.Application, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Application, error)
	Update(ctx context.Context, a *domain.Application) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type ApplicationHandler struct {
	store ApplicationStore
}

func NewApplicationHandler(store ApplicationStore) *ApplicationHandler {
	return &ApplicationHandler{store: store}
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.store.ListByUser(r.Context(), CurrentUser(r).ID, 0)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplicationRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	status := req.Status
	if status == "" {
		status = "saved"
	}
	app := &domain.Application{
		ID:        uuid.New().String(),
		UserID:    CurrentUser(r).ID,
		Company:   req.Company,
		Position:  req.Position,
		Status:    status,
		AppliedAt: ParseDate(req.AppliedAt),
		Notes:     req.Notes,
	}
	if err := h.store.Create(r.Context(), app); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.store.FindByID(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if app == nil {
		Error(w, domain.ErrNotFound("application not found"))
		return
	}
	JSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplicationRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	app := &domain.Application{
		ID:        Param(r, "id"),
		UserID:    CurrentUser(r).ID,
		Company:   req.Company,
		Position:  req.Position,
		Status:    req.Status,
		AppliedAt: ParseDate(req.AppliedAt),
		Notes:     req.Notes,
	}
	if app.Status == "" {
		app.Status = "saved"
	}
	ok, err := h.store.Update(r.Context(), app)
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("application not found"))
		return
	}
	JSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("application not found"))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
