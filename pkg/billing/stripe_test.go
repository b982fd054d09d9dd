package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStripeProviderMode(t *testing.T) {
	assert.Equal(t, VerificationEnforced, NewStripeProvider("sk_test", "whsec_x").Mode())
	assert.Equal(t, VerificationDisabled, NewStripeProvider("sk_test", "").Mode())
}

func TestParseEventEnforcedRejectsBadSignature(t *testing.T) {
	p := NewStripeProvider("sk_test", "whsec_x")

	_, err := p.ParseEvent([]byte(`{"id":"evt_1","type":"customer.subscription.updated"}`), "t=1,v1=bogus")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEventDisabledClassifiesSubscription(t *testing.T) {
	p := NewStripeProvider("sk_test", "")

	payload := []byte(`{
		"id": "evt_2",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_2", "customer": {"id": "cus_2"}}}
	}`)

	event, err := p.ParseEvent(payload, "")

	require.NoError(t, err)
	assert.Equal(t, "evt_2", event.ID)
	assert.Equal(t, "customer.subscription.updated", event.Type)
	assert.Equal(t, "sub_2", event.SubscriptionID)
	assert.Equal(t, "cus_2", event.CustomerID)
}

func TestParseEventDisabledClassifiesInvoice(t *testing.T) {
	p := NewStripeProvider("sk_test", "")

	payload := []byte(`{
		"id": "evt_3",
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_3", "subscription": {"id": "sub_3"}, "customer": {"id": "cus_3"}}}
	}`)

	event, err := p.ParseEvent(payload, "")

	require.NoError(t, err)
	assert.Equal(t, "sub_3", event.SubscriptionID)
	assert.Equal(t, "cus_3", event.CustomerID)
}

func TestParseEventDisabledRejectsGarbage(t *testing.T) {
	p := NewStripeProvider("sk_test", "")

	_, err := p.ParseEvent([]byte(`not json`), "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEventIgnoredTypeHasNoSubscription(t *testing.T) {
	p := NewStripeProvider("sk_test", "")

	payload := []byte(`{"id":"evt_4","type":"charge.refunded","data":{"object":{"id":"ch_4"}}}`)

	event, err := p.ParseEvent(payload, "")

	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", event.Type)
	assert.Empty(t, event.SubscriptionID)
}
