package handler

import (
	"context"
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
)

type RecommendationGenerator interface {
	GetOrGenerate(ctx context.Context, user *domain.User) ([]*domain.Recommendation, error)
	Complete(ctx context.Context, userID, id string, completed bool) error
}

type RecommendationHandler struct {
	recs RecommendationGenerator
}

func NewRecommendationHandler(recs RecommendationGenerator) *RecommendationHandler {
	return &RecommendationHandler{recs: recs}
}

// List handles GET /api/recommendations. Returns the fresh set, generating a
// new one when the previous set has aged out.
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.recs.GetOrGenerate(r.Context(), CurrentUser(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, recs)
}

type completeRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// Complete handles PUT /api/recommendations/{id}/complete.
func (h *RecommendationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	if err := h.recs.Complete(r.Context(), CurrentUser(r).ID, Param(r, "id"), *req.Completed); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
