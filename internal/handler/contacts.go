package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/careerpilot/backend/internal/domain"
)

type ContactStore interface {
	Create(ctx context.Context, c *domain.Contact) error
	FindByID(ctx context.Context, userID, id string) (*domain.Contact, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Contact, error)
	Update(ctx context.Context, c *domain.Contact) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type ContactHandler struct {
	store ContactStore
}

func NewContactHandler(store ContactStore) *ContactHandler {
	return &ContactHandler{store: store}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.ListByUser(r.Context(), CurrentUser(r).ID, 0)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	contact := &domain.Contact{
		ID:      uuid.New().String(),
		UserID:  CurrentUser(r).ID,
		Name:    req.Name,
		Company: req.Company,
		Title:   req.Title,
		Email:   req.Email,
		Notes:   req.Notes,
	}
	if err := h.store.Create(r.Context(), contact); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.store.FindByID(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if contact == nil {
		Error(w, domain.ErrNotFound("contact not found"))
		return
	}
	JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	contact := &domain.Contact{
		ID:      Param(r, "id"),
		UserID:  CurrentUser(r).ID,
		Name:    req.Name,
		Company: req.Company,
		Title:   req.Title,
		Email:   req.Email,
		Notes:   req.Notes,
	}
	ok, err := h.store.Update(r.Context(), contact)
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("contact not found"))
		return
	}
	JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.Context(), CurrentUser(r).ID, Param(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		Error(w, domain.ErrNotFound("contact not found"))
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
