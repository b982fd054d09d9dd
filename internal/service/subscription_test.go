package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/pkg/billing"
)

type mockSubUserStore struct {
	mock.Mock
}

func (m *mockSubUserStore) FindByStripeSubscription(ctx context.Context, subID string) (*domain.User, error) {
	args := m.Called(ctx, subID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockSubUserStore) FindByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockSubUserStore) UpdateSubscription(ctx context.Context, userID string, s domain.SubscriptionState) error {
	args := m.Called(ctx, userID, s)
	return args.Error(0)
}

func (m *mockSubUserStore) SetSubscriptionStatus(ctx context.Context, userID, status string) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *mockSubUserStore) SetStripeCustomer(ctx context.Context, id, customerID string) error {
	args := m.Called(ctx, id, customerID)
	return args.Error(0)
}

var _ SubscriptionUserStore = (*mockSubUserStore)(nil)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Seen(ctx context.Context, provider, eventID string) (bool, error) {
	args := m.Called(ctx, provider, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) Record(ctx context.Context, provider, eventID, eventType string) error {
	args := m.Called(ctx, provider, eventID, eventType)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ParseEvent(payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Event), args.Error(1)
}

func (m *mockProvider) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *mockProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	args := m.Called(ctx, email, userID)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	args := m.Called(ctx, customerID, priceID, successURL, cancelURL)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CancelSubscription(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ billing.Provider = (*mockProvider)(nil)

var testPrices = PriceTable{
	PremiumMonthly:   "price_pm",
	PremiumAnnual:    "price_pa",
	UniversityAnnual: "price_ua",
}

func newSubService(users *mockSubUserStore, events *mockLedger, provider *mockProvider) *SubscriptionService {
	return NewSubscriptionService(users, events, provider, testPrices, "https://app.example.com")
}

func TestProcessEventInvalidSignature(t *testing.T) {
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, "t=1,v1=bad").Return(nil, billing.ErrInvalidSignature)

	svc := newSubService(new(mockSubUserStore), new(mockLedger), provider)

	err := svc.ProcessEvent(context.Background(), []byte(`{}`), "t=1,v1=bad")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Invalid signature", appErr.Message)
}

func TestProcessEventReplayIsAcknowledged(t *testing.T) {
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_1",
		Type:           "customer.subscription.updated",
		SubscriptionID: "sub_1",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_1").Return(true, nil)

	users := new(mockSubUserStore)
	svc := newSubService(users, events, provider)

	err := svc.ProcessEvent(context.Background(), []byte(`{}`), "sig")

	assert.NoError(t, err)
	// A replay must not touch subscription state.
	users.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEventReconcilesFromProviderState(t *testing.T) {
	// The event payload is stale by design; the provider's current state is
	// what lands in the row.
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_2",
		Type:           "customer.subscription.created",
		SubscriptionID: "sub_2",
	}, nil)
	provider.On("GetSubscription", mock.Anything, "sub_2").Return(&billing.Subscription{
		ID:         "sub_2",
		CustomerID: "cus_2",
		Status:     "active",
		PriceID:    "price_pm",
		Interval:   "month",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_2").Return(false, nil)
	events.On("Record", mock.Anything, "stripe", "evt_2", mock.Anything).Return(nil)

	users := new(mockSubUserStore)
	users.On("FindByStripeSubscription", mock.Anything, "sub_2").Return(nil, nil)
	users.On("FindByStripeCustomer", mock.Anything, "cus_2").Return(&domain.User{ID: "u2"}, nil)
	users.On("UpdateSubscription", mock.Anything, "u2", domain.SubscriptionState{
		Plan:                 domain.PlanPremium,
		Status:               domain.SubActive,
		BillingCycle:         domain.CycleMonthly,
		StripeSubscriptionID: "sub_2",
	}).Return(nil)

	svc := newSubService(users, events, provider)

	err := svc.ProcessEvent(context.Background(), []byte(`{}`), "sig")

	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProcessEventOutOfOrderConverges(t *testing.T) {
	// Two distinct deliveries arriving in the wrong order both re-fetch, so
	// both writes carry the provider's current (cancelled) state.
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_old",
		Type:           "customer.subscription.updated",
		SubscriptionID: "sub_3",
	}, nil).Once()
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_new",
		Type:           "customer.subscription.deleted",
		SubscriptionID: "sub_3",
	}, nil).Once()
	provider.On("GetSubscription", mock.Anything, "sub_3").Return(&billing.Subscription{
		ID:     "sub_3",
		Status: "canceled",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", mock.Anything).Return(false, nil)
	events.On("Record", mock.Anything, "stripe", mock.Anything, mock.Anything).Return(nil)

	wantState := domain.SubscriptionState{
		Plan:                 domain.PlanFree,
		Status:               domain.SubCancelled,
		StripeSubscriptionID: "sub_3",
	}
	users := new(mockSubUserStore)
	users.On("FindByStripeSubscription", mock.Anything, "sub_3").Return(&domain.User{ID: "u3"}, nil)
	users.On("UpdateSubscription", mock.Anything, "u3", wantState).Return(nil).Twice()

	svc := newSubService(users, events, provider)

	require.NoError(t, svc.ProcessEvent(context.Background(), []byte(`{}`), "sig"))
	require.NoError(t, svc.ProcessEvent(context.Background(), []byte(`{}`), "sig"))
	users.AssertExpectations(t)
}

func TestProcessEventPaymentFailedWritesPastDueDirectly(t *testing.T) {
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_4",
		Type:           "invoice.payment_failed",
		SubscriptionID: "sub_4",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_4").Return(false, nil)
	events.On("Record", mock.Anything, "stripe", "evt_4", mock.Anything).Return(nil)

	users := new(mockSubUserStore)
	users.On("FindByStripeSubscription", mock.Anything, "sub_4").Return(&domain.User{ID: "u4"}, nil)
	users.On("SetSubscriptionStatus", mock.Anything, "u4", domain.SubPastDue).Return(nil)

	svc := newSubService(users, events, provider)

	err := svc.ProcessEvent(context.Background(), []byte(`{}`), "sig")

	assert.NoError(t, err)
	// No re-fetch: the provider still reports "active" at this point.
	provider.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestProcessEventIgnoresUnknownTypes(t *testing.T) {
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:   "evt_5",
		Type: "charge.refunded",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_5").Return(false, nil)
	events.On("Record", mock.Anything, "stripe", "evt_5", mock.Anything).Return(nil)

	svc := newSubService(new(mockSubUserStore), events, provider)

	assert.NoError(t, svc.ProcessEvent(context.Background(), []byte(`{}`), "sig"))
}

func TestProcessEventUnknownSubscriptionIsAcknowledged(t *testing.T) {
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_6",
		Type:           "customer.subscription.updated",
		SubscriptionID: "sub_6",
	}, nil)
	provider.On("GetSubscription", mock.Anything, "sub_6").Return(&billing.Subscription{
		ID:         "sub_6",
		CustomerID: "cus_6",
		Status:     "active",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_6").Return(false, nil)
	events.On("Record", mock.Anything, "stripe", "evt_6", mock.Anything).Return(nil)

	users := new(mockSubUserStore)
	users.On("FindByStripeSubscription", mock.Anything, "sub_6").Return(nil, nil)
	users.On("FindByStripeCustomer", mock.Anything, "cus_6").Return(nil, nil)

	svc := newSubService(users, events, provider)

	assert.NoError(t, svc.ProcessEvent(context.Background(), []byte(`{}`), "sig"))
}

func TestProcessEventLedgerFailureBubblesForRetry(t *testing.T) {
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:   "evt_7",
		Type: "customer.subscription.updated",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_7").Return(false, errors.New("connection refused"))

	svc := newSubService(new(mockSubUserStore), events, provider)

	err := svc.ProcessEvent(context.Background(), []byte(`{}`), "sig")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
}

func TestProcessEventFailedDeliveryStaysRetryable(t *testing.T) {
	// A delivery that dies mid-processing must leave no ledger row, so the
	// provider's retry of the same event id gets applied instead of being
	// dismissed as a replay.
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:             "evt_8",
		Type:           "customer.subscription.updated",
		SubscriptionID: "sub_8",
	}, nil)
	provider.On("GetSubscription", mock.Anything, "sub_8").
		Return(nil, errors.New("stripe timeout")).Once()
	provider.On("GetSubscription", mock.Anything, "sub_8").Return(&billing.Subscription{
		ID:         "sub_8",
		CustomerID: "cus_8",
		Status:     "active",
		PriceID:    "price_pm",
		Interval:   "month",
	}, nil).Once()

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_8").Return(false, nil)
	events.On("Record", mock.Anything, "stripe", "evt_8", "customer.subscription.updated").Return(nil)

	users := new(mockSubUserStore)
	users.On("FindByStripeSubscription", mock.Anything, "sub_8").Return(&domain.User{ID: "u8"}, nil)
	users.On("UpdateSubscription", mock.Anything, "u8", domain.SubscriptionState{
		Plan:                 domain.PlanPremium,
		Status:               domain.SubActive,
		BillingCycle:         domain.CycleMonthly,
		StripeSubscriptionID: "sub_8",
	}).Return(nil)

	svc := newSubService(users, events, provider)

	err := svc.ProcessEvent(context.Background(), []byte(`{}`), "sig")
	require.Error(t, err)
	events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, svc.ProcessEvent(context.Background(), []byte(`{}`), "sig"))
	users.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProcessEventRecordFailureStillAcknowledged(t *testing.T) {
	// Once the state is saved, a ledger write failure is logged, not bubbled.
	// A 500 here would only trigger a redundant re-delivery.
	provider := new(mockProvider)
	provider.On("ParseEvent", mock.Anything, mock.Anything).Return(&billing.Event{
		ID:   "evt_9",
		Type: "charge.refunded",
	}, nil)

	events := new(mockLedger)
	events.On("Seen", mock.Anything, "stripe", "evt_9").Return(false, nil)
	events.On("Record", mock.Anything, "stripe", "evt_9", "charge.refunded").
		Return(errors.New("connection refused"))

	svc := newSubService(new(mockSubUserStore), events, provider)

	assert.NoError(t, svc.ProcessEvent(context.Background(), []byte(`{}`), "sig"))
}

func TestCreateCheckoutCreatesCustomerOnce(t *testing.T) {
	provider := new(mockProvider)
	provider.On("CreateCustomer", mock.Anything, "u@example.com", "u1").Return("cus_new", nil)
	provider.On("CreateCheckoutSession", mock.Anything, "cus_new", "price_pa",
		"https://app.example.com/billing/success", "https://app.example.com/billing/cancel").
		Return("https://checkout.example.com/s/1", nil)

	users := new(mockSubUserStore)
	users.On("SetStripeCustomer", mock.Anything, "u1", "cus_new").Return(nil)

	svc := newSubService(users, new(mockLedger), provider)

	url, err := svc.CreateCheckout(context.Background(), &domain.User{ID: "u1", Email: "u@example.com"},
		domain.PlanPremium, domain.CycleAnnual)

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/s/1", url)
	users.AssertExpectations(t)
}

func TestCreateCheckoutUnknownPlan(t *testing.T) {
	svc := newSubService(new(mockSubUserStore), new(mockLedger), new(mockProvider))

	_, err := svc.CreateCheckout(context.Background(), &domain.User{ID: "u1"}, "enterprise", "weekly")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestCancelReconcilesAfterProviderCall(t *testing.T) {
	provider := new(mockProvider)
	provider.On("CancelSubscription", mock.Anything, "sub_9").Return(nil)
	provider.On("GetSubscription", mock.Anything, "sub_9").Return(&billing.Subscription{
		ID:     "sub_9",
		Status: "canceled",
	}, nil)

	users := new(mockSubUserStore)
	users.On("FindByStripeSubscription", mock.Anything, "sub_9").Return(&domain.User{ID: "u9"}, nil)
	users.On("UpdateSubscription", mock.Anything, "u9", domain.SubscriptionState{
		Plan:                 domain.PlanFree,
		Status:               domain.SubCancelled,
		StripeSubscriptionID: "sub_9",
	}).Return(nil)

	svc := newSubService(users, new(mockLedger), provider)

	err := svc.Cancel(context.Background(), &domain.User{ID: "u9", StripeSubscriptionID: "sub_9"})

	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestPriceTableRoundTrip(t *testing.T) {
	assert.Equal(t, "price_pm", testPrices.Lookup(domain.PlanPremium, domain.CycleMonthly))
	assert.Equal(t, "price_pa", testPrices.Lookup(domain.PlanPremium, domain.CycleAnnual))
	assert.Equal(t, "price_ua", testPrices.Lookup(domain.PlanUniversity, domain.CycleAnnual))
	assert.Equal(t, "", testPrices.Lookup("enterprise", domain.CycleMonthly))

	assert.Equal(t, domain.PlanPremium, testPrices.PlanFor("price_pm"))
	assert.Equal(t, domain.PlanUniversity, testPrices.PlanFor("price_ua"))
	assert.Equal(t, domain.PlanFree, testPrices.PlanFor("price_unknown"))
}
