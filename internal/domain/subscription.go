package domain

import "time"

// SubscriptionState is the billing subset of a User, written only by verified
// webhook events or explicit user/admin action.
type SubscriptionState struct {
	Plan                 string `json:"plan"`
	Status               string `json:"status"`
	BillingCycle         string `json:"billingCycle,omitempty"`
	StripeCustomerID     string `json:"-"`
	StripeSubscriptionID string `json:"-"`
}

// WebhookEvent is one delivery from the payment provider. Deliveries retry and
// may arrive out of order; EventID is the dedup key.
type WebhookEvent struct {
	Provider   string
	EventID    string
	Type       string
	ReceivedAt time.Time
}

// CheckoutRequest is the input for starting a paid subscription.
type CheckoutRequest struct {
	Plan  string `json:"plan" validate:"required,oneof=premium university"`
	Cycle string `json:"cycle" validate:"required,oneof=monthly annual"`
}

// CheckoutResponse returns the URL to redirect the user to for payment.
type CheckoutResponse struct {
	URL string `json:"url"`
}
