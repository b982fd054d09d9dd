package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
)

// maxWebhookBody caps provider payloads. Stripe events are well under this.
const maxWebhookBody = 1 << 20

type EventProcessor interface {
	ProcessEvent(ctx context.Context, payload []byte, signature string) error
}

// WebhookHandler receives billing provider callbacks. It is mounted as a
// prefix route so new providers only need a new case here.
type WebhookHandler struct {
	subscriptions EventProcessor
}

func NewWebhookHandler(subscriptions EventProcessor) *WebhookHandler {
	return &WebhookHandler{subscriptions: subscriptions}
}

// Receive handles POST /api/webhooks/{provider}.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	switch Remainder(r) {
	case "stripe":
		h.stripe(w, r)
	default:
		Error(w, domain.ErrNotFound("unknown webhook provider"))
	}
}

func (h *WebhookHandler) stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		Error(w, domain.ErrBadRequest("could not read request body"))
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if err := h.subscriptions.ProcessEvent(r.Context(), payload, sig); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"received": true})
}
