package handler

import (
	"context"
	"net/http"

	"github.com/careerpilot/backend/internal/domain"
)

// BillingService is the subscription surface exposed to end users.
type BillingService interface {
	CreateCheckout(ctx context.Context, user *domain.User, plan, cycle string) (string, error)
	CreatePortal(ctx context.Context, user *domain.User) (string, error)
	Cancel(ctx context.Context, user *domain.User) error
}

type BillingHandler struct {
	subscriptions BillingService
}

func NewBillingHandler(subscriptions BillingService) *BillingHandler {
	return &BillingHandler{subscriptions: subscriptions}
}

// Get handles GET /api/billing/subscription and reports the caller's
// current state.
func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	JSON(w, http.StatusOK, domain.SubscriptionState{
		Plan:         user.Plan,
		Status:       user.SubscriptionStatus,
		BillingCycle: user.BillingCycle,
	})
}

// Checkout handles POST /api/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := DecodeValid(r, &req); err != nil {
		Error(w, err)
		return
	}

	url, err := h.subscriptions.CreateCheckout(r.Context(), CurrentUser(r), req.Plan, req.Cycle)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, domain.CheckoutResponse{URL: url})
}

// Portal handles POST /api/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	url, err := h.subscriptions.CreatePortal(r.Context(), CurrentUser(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, domain.CheckoutResponse{URL: url})
}

// Cancel handles DELETE /api/billing/subscription.
func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Cancel(r.Context(), CurrentUser(r)); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
