package billing

import (
	"context"
	"encoding/json"
	"time"
)

// MockProvider is a no-network implementation used when no Stripe key is
// configured (local development).
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) ParseEvent(payload []byte, signature string) (*Event, error) {
	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &Event{ID: event.ID, Type: event.Type}, nil
}

func (m *MockProvider) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return &Subscription{
		ID:               id,
		Status:           "active",
		Interval:         "month",
		CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
	}, nil
}

func (m *MockProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	return "cus_mock_" + userID, nil
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	return "https://example.com/checkout?customer=" + customerID, nil
}

func (m *MockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "https://example.com/portal?customer=" + customerID, nil
}

func (m *MockProvider) CancelSubscription(ctx context.Context, id string) error {
	return nil
}
