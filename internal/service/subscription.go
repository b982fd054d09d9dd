package service

import (
	"context"
	"errors"
	"log"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/pkg/billing"
)

// PriceTable maps configured provider price IDs to plans and cycles.
type PriceTable struct {
	PremiumMonthly   string
	PremiumAnnual    string
	UniversityAnnual string
}

// Lookup returns the price ID for a plan+cycle pair, or "".
func (t PriceTable) Lookup(plan, cycle string) string {
	switch {
	case plan == domain.PlanPremium && cycle == domain.CycleMonthly:
		return t.PremiumMonthly
	case plan == domain.PlanPremium && cycle == domain.CycleAnnual:
		return t.PremiumAnnual
	case plan == domain.PlanUniversity:
		return t.UniversityAnnual
	}
	return ""
}

// PlanFor resolves a provider price ID back to a plan name.
func (t PriceTable) PlanFor(priceID string) string {
	switch priceID {
	case t.PremiumMonthly, t.PremiumAnnual:
		return domain.PlanPremium
	case t.UniversityAnnual:
		return domain.PlanUniversity
	}
	return domain.PlanFree
}

// SubscriptionUserStore is the slice of the user repository billing needs.
type SubscriptionUserStore interface {
	FindByStripeSubscription(ctx context.Context, subID string) (*domain.User, error)
	FindByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error)
	UpdateSubscription(ctx context.Context, userID string, s domain.SubscriptionState) error
	SetSubscriptionStatus(ctx context.Context, userID, status string) error
	SetStripeCustomer(ctx context.Context, id, customerID string) error
}

// EventLedger deduplicates webhook deliveries.
type EventLedger interface {
	Seen(ctx context.Context, provider, eventID string) (bool, error)
	Record(ctx context.Context, provider, eventID, eventType string) error
}

// SubscriptionService owns the subscription lifecycle: checkout, portal,
// cancellation, and webhook-driven reconciliation.
type SubscriptionService struct {
	users       SubscriptionUserStore
	events      EventLedger
	provider    billing.Provider
	prices      PriceTable
	frontendURL string
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(users SubscriptionUserStore, events EventLedger, provider billing.Provider, prices PriceTable, frontendURL string) *SubscriptionService {
	return &SubscriptionService{
		users:       users,
		events:      events,
		provider:    provider,
		prices:      prices,
		frontendURL: frontendURL,
	}
}

// ProcessEvent handles one raw webhook delivery. Return codes matter to the
// provider's retry policy: 400 for bad signatures, 200 for replays and
// ignored types, 500 (error) only when processing genuinely failed and a
// retry can succeed.
func (s *SubscriptionService) ProcessEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			log.Printf("webhook signature verification failed: %v", err)
			return domain.ErrBadRequest("Invalid signature")
		}
		return domain.ErrBadRequest("Invalid payload")
	}

	seen, err := s.events.Seen(ctx, "stripe", event.ID)
	if err != nil {
		return domain.ErrInternal("failed to check webhook ledger", err)
	}
	if seen {
		log.Printf("webhook event %s replayed, skipping", event.ID)
		return nil
	}

	if err := s.apply(ctx, event); err != nil {
		return err
	}

	// The event is marked only after it has been applied. A failed delivery
	// leaves no ledger row, so the provider's retry is processed instead of
	// being skipped as a replay.
	if err := s.events.Record(ctx, "stripe", event.ID, event.Type); err != nil {
		// State is already saved and reconciliation tolerates a re-delivery.
		log.Printf("failed to record webhook event %s: %v", event.ID, err)
	}
	return nil
}

func (s *SubscriptionService) apply(ctx context.Context, event *billing.Event) error {
	switch event.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"invoice.payment_succeeded":
		if event.SubscriptionID == "" {
			log.Printf("webhook event %s (%s) carries no subscription, ignoring", event.ID, event.Type)
			return nil
		}
		return s.reconcile(ctx, event)

	case "invoice.payment_failed":
		if event.SubscriptionID == "" {
			log.Printf("webhook event %s (%s) carries no subscription, ignoring", event.ID, event.Type)
			return nil
		}
		// The provider has not transitioned the subscription object yet at
		// this point in the lifecycle, so a re-fetch would still read
		// "active". Write past_due directly.
		return s.markPastDue(ctx, event)

	default:
		// Acknowledge everything else so the provider stops retrying.
		log.Printf("ignored webhook event type %s (%s)", event.Type, event.ID)
		return nil
	}
}

// reconcile overwrites local subscription state with a fresh provider read.
// The event payload is deliberately not trusted: deliveries retry and arrive
// out of order, the provider's current state does not.
func (s *SubscriptionService) reconcile(ctx context.Context, event *billing.Event) error {
	sub, err := s.provider.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return domain.ErrUpstream("failed to fetch subscription from provider", err)
	}

	user, err := s.locateUser(ctx, sub.ID, sub.CustomerID)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("webhook subscription %s matches no local user, ignoring", sub.ID)
		return nil
	}

	state := s.mapState(sub)
	if err := s.users.UpdateSubscription(ctx, user.ID, state); err != nil {
		return domain.ErrInternal("failed to update subscription", err)
	}
	log.Printf("reconciled user %s subscription %s: plan=%s status=%s", user.ID, sub.ID, state.Plan, state.Status)
	return nil
}

func (s *SubscriptionService) markPastDue(ctx context.Context, event *billing.Event) error {
	user, err := s.locateUser(ctx, event.SubscriptionID, event.CustomerID)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("webhook subscription %s matches no local user, ignoring", event.SubscriptionID)
		return nil
	}
	if err := s.users.SetSubscriptionStatus(ctx, user.ID, domain.SubPastDue); err != nil {
		return domain.ErrInternal("failed to update subscription status", err)
	}
	log.Printf("marked user %s past_due after failed payment", user.ID)
	return nil
}

func (s *SubscriptionService) locateUser(ctx context.Context, subID, customerID string) (*domain.User, error) {
	user, err := s.users.FindByStripeSubscription(ctx, subID)
	if err != nil {
		return nil, domain.ErrInternal("failed to look up user", err)
	}
	if user == nil && customerID != "" {
		// First event for a new subscription: the user row knows its
		// customer but not the subscription yet.
		user, err = s.users.FindByStripeCustomer(ctx, customerID)
		if err != nil {
			return nil, domain.ErrInternal("failed to look up user", err)
		}
	}
	return user, nil
}

func (s *SubscriptionService) mapState(sub *billing.Subscription) domain.SubscriptionState {
	state := domain.SubscriptionState{
		StripeSubscriptionID: sub.ID,
	}

	switch sub.Status {
	case "active", "trialing":
		state.Status = domain.SubActive
	case "past_due":
		state.Status = domain.SubPastDue
	case "canceled", "unpaid":
		state.Status = domain.SubCancelled
	default:
		state.Status = domain.SubInactive
	}

	if state.Status == domain.SubCancelled {
		state.Plan = domain.PlanFree
		return state
	}

	state.Plan = s.prices.PlanFor(sub.PriceID)
	switch sub.Interval {
	case "month":
		state.BillingCycle = domain.CycleMonthly
	case "year":
		state.BillingCycle = domain.CycleAnnual
	}
	return state
}

// CreateCheckout ensures a provider customer exists and starts a checkout
// session for the requested plan and cycle.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, user *domain.User, plan, cycle string) (string, error) {
	priceID := s.prices.Lookup(plan, cycle)
	if priceID == "" {
		return "", domain.ErrBadRequest("unknown plan or cycle")
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		id, err := s.provider.CreateCustomer(ctx, user.Email, user.ID)
		if err != nil {
			return "", domain.ErrUpstream("failed to create billing customer", err)
		}
		if err := s.users.SetStripeCustomer(ctx, user.ID, id); err != nil {
			return "", domain.ErrInternal("failed to store billing customer", err)
		}
		customerID = id
	}

	url, err := s.provider.CreateCheckoutSession(ctx, customerID, priceID,
		s.frontendURL+"/billing/success", s.frontendURL+"/billing/cancel")
	if err != nil {
		return "", domain.ErrUpstream("failed to create checkout session", err)
	}
	return url, nil
}

// CreatePortal opens the provider's billing portal for an existing customer.
func (s *SubscriptionService) CreatePortal(ctx context.Context, user *domain.User) (string, error) {
	if user.StripeCustomerID == "" {
		return "", domain.ErrBadRequest("no billing account for user")
	}
	url, err := s.provider.CreatePortalSession(ctx, user.StripeCustomerID, s.frontendURL+"/settings/billing")
	if err != nil {
		return "", domain.ErrUpstream("failed to create portal session", err)
	}
	return url, nil
}

// Cancel cancels the user's subscription at the provider, then reconciles
// local state from a fresh read so the row reflects whatever the provider
// actually did.
func (s *SubscriptionService) Cancel(ctx context.Context, user *domain.User) error {
	if user.StripeSubscriptionID == "" {
		return domain.ErrBadRequest("no active subscription")
	}
	if err := s.provider.CancelSubscription(ctx, user.StripeSubscriptionID); err != nil {
		return domain.ErrUpstream("failed to cancel subscription", err)
	}
	return s.reconcile(ctx, &billing.Event{
		SubscriptionID: user.StripeSubscriptionID,
		CustomerID:     user.StripeCustomerID,
	})
}
