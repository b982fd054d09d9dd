package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/careerpilot/backend/internal/domain"
)

// GoalStore is the repository surface the goals handler needs.
type GoalStore interface {
	Create(ctx context.Context, g *domain.Goal) error
	FindByID(ctx context.Context, userID, id string) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Goal, error)
	Update(ctx context.Context, g *domain.Goal) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type GoalHandler struct {
	store GoalStore
}

func NewGoalHandler(store GoalStore) *GoalHandler {
	return &GoalHandler{store: store}
}

// List handles GET /api/goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.store.ListByUser(r.Context(), CurrentUser(r).ID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, goals)
}

// Create handles POST /api/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.GoalRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	status := req.Status
	if status == "" {
		status = "open"
	}
	goal := &domain.Goal{
		ID:          uuid.New().String(),
		UserID:      CurrentUser(r).ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		TargetDate:  ParseDate(req.TargetDate),
	}
	if err := h.store.Create(r.Context(), goal); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, goal)
}

// Get handles GET /api/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	goal, err := h.store.FindByID(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if goal == nil {
		Error(w, domain.ErrNotFound("goal not found"))
		return
	}
	JSON(w, http.StatusOK, goal)
}

// Update handles PUT /api/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.GoalRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	goal := &domain.Goal{
		ID:          Param(r, "id"),
		UserID:      CurrentUser(r).ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		TargetDate:  ParseDate(req.TargetDate),
	}
	if goal.Status == "" {
		goal.Status = "open"
	}
	ok, err := h.store.Update(r.Context(), goal)
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("goal not found"))
		return
	}
	JSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("goal not found"))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
