package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	mode          VerificationMode
}

// NewStripeProvider builds a StripeProvider. An empty webhookSecret selects
// VerificationDisabled; the caller is expected to log that configuration.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	mode := VerificationEnforced
	if webhookSecret == "" {
		mode = VerificationDisabled
	}
	return &StripeProvider{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		mode:          mode,
	}
}

// Mode reports the configured signature-verification mode.
func (p *StripeProvider) Mode() VerificationMode {
	return p.mode
}

// ParseEvent verifies the signature over the raw body and classifies the event.
func (p *StripeProvider) ParseEvent(payload []byte, signature string) (*Event, error) {
	var event stripe.Event
	if p.mode == VerificationEnforced {
		verified, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		event = verified
	} else {
		log.Printf("WARNING: accepting webhook event without signature verification")
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("invalid webhook payload: %w", err)
		}
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}

	switch {
	case event.Data == nil:
		// nothing to classify
	case isSubscriptionEvent(string(event.Type)):
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("invalid subscription payload: %w", err)
		}
		out.SubscriptionID = sub.ID
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	case isInvoiceEvent(string(event.Type)):
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("invalid invoice payload: %w", err)
		}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
	}
	return out, nil
}

func isSubscriptionEvent(t string) bool {
	switch t {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		return true
	}
	return false
}

func isInvoiceEvent(t string) bool {
	switch t {
	case "invoice.payment_succeeded", "invoice.payment_failed":
		return true
	}
	return false
}

// GetSubscription fetches current subscription state from Stripe.
func (p *StripeProvider) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := p.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription fetch failed: %w", err)
	}
	return mapSubscription(sub), nil
}

func mapSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		out.PriceID = price.ID
		if price.Recurring != nil {
			out.Interval = string(price.Recurring.Interval)
		}
	}
	return out
}

// CreateCustomer creates a Stripe customer carrying our user id in metadata.
func (p *StripeProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{"user_id": userID},
	}
	params.Context = ctx
	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer create failed: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription checkout and returns its URL.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx
	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session failed: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the customer billing portal and returns its URL.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe portal session failed: %w", err)
	}
	return sess.URL, nil
}

// CancelSubscription cancels a subscription at the provider immediately.
func (p *StripeProvider) CancelSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := p.api.Subscriptions.Cancel(id, params); err != nil {
		return fmt.Errorf("stripe subscription cancel failed: %w", err)
	}
	return nil
}
