package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/careerpilot/backend/internal/domain"
)

type WorkExperienceStore interface {
	Create(ctx context.Context, e *domain.WorkExperience) error
	FindByID(ctx context.Context, userID, id string) (*domain.WorkExperience, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WorkExperience, error)
	Update(ctx context.Context, e *domain.WorkExperience) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type WorkExperienceHandler struct {
	store WorkExperienceStore
}

func NewWorkExperienceHandler(store WorkExperienceStore) *WorkExperienceHandler {
	return &WorkExperienceHandler{store: store}
}

func (h *WorkExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListByUser(r.Context(), CurrentUser(r).ID, 0)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, entries)
}

func (h *WorkExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.WorkExperienceRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	entry := &domain.WorkExperience{
		ID:          uuid.New().String(),
		UserID:      CurrentUser(r).ID,
		Company:     req.Company,
		Title:       req.Title,
		StartDate:   start,
		EndDate:     ParseDate(req.EndDate),
		Description: req.Description,
	}
	if err := h.store.Create(r.Context(), entry); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, entry)
}

func (h *WorkExperienceHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.FindByID(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if entry == nil {
		Error(w, domain.ErrNotFound("work experience not found"))
		return
	}
	JSON(w, http.StatusOK, entry)
}

func (h *WorkExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.WorkExperienceRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	entry := &domain.WorkExperience{
		ID:          Param(r, "id"),
		UserID:      CurrentUser(r).ID,
		Company:     req.Company,
		Title:       req.Title,
		StartDate:   start,
		EndDate:     ParseDate(req.EndDate),
		Description: req.Description,
	}
	ok, err := h.store.Update(r.Context(), entry)
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("work experience not found"))
		return
	}
	JSON(w, http.StatusOK, entry)
}

func (h *WorkExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("work experience not found"))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
