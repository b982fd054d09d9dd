// Package billing abstracts the payment provider (Stripe in production).
package billing

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidSignature reports a webhook payload that failed verification.
var ErrInvalidSignature = errors.New("invalid signature")

// VerificationMode controls webhook signature handling. Disabled is a
// deliberate dev-mode configuration, never a silent fallback.
type VerificationMode int

const (
	VerificationEnforced VerificationMode = iota
	VerificationDisabled
)

// Event is one classified webhook delivery.
type Event struct {
	ID             string
	Type           string
	SubscriptionID string
	CustomerID     string
}

// Subscription is the provider's current view of a subscription. Reconciling
// against this read, not the event payload, is what keeps local state correct
// under replayed and reordered deliveries.
type Subscription struct {
	ID                string
	CustomerID        string
	Status            string // provider-native: active, trialing, past_due, canceled, unpaid, incomplete
	PriceID           string
	Interval          string // month, year
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// Provider is the payment-provider surface the gateway consumes.
type Provider interface {
	// ParseEvent verifies the raw payload against the signature header and
	// classifies it. Returns ErrInvalidSignature on verification failure.
	ParseEvent(payload []byte, signature string) (*Event, error)
	// GetSubscription re-fetches current subscription state from the provider.
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	CancelSubscription(ctx context.Context, id string) error
}
