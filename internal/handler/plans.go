package handler

import (
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
)

// Plans handles GET /api/plans, the public plan catalogue.
func Plans(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, domain.AvailablePlans())
}
