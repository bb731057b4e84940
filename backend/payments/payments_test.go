package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/models"
)

const testWebhookSecret = "whsec_test"

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_1",
  "object": "event",
  "type": %q,
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "payment_status": %q,
      "metadata": {"purchaseId": "p-1"}
    }
  }
}`, eventType, paymentStatus))
}

func TestParseEventCompleted(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)
	payload := eventPayload("checkout.session.completed", "paid")

	ev, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "cs_test_1", ev.Ref)
	assert.Equal(t, "p-1", ev.PurchaseID)
	assert.Equal(t, models.PurchaseCompleted, ev.Outcome)
}

func TestParseEventExpired(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)
	payload := eventPayload("checkout.session.expired", "unpaid")

	ev, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, models.PurchaseFailed, ev.Outcome)
}

func TestParseEventIgnoresUnrelatedAndUnpaid(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)

	payload := eventPayload("customer.created", "paid")
	ev, err := g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Nil(t, ev)

	payload = eventPayload("checkout.session.completed", "unpaid")
	ev, err = g.ParseEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestParseEventRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret)
	payload := eventPayload("checkout.session.completed", "paid")

	_, err := g.ParseEvent(payload, sign(payload, "whsec_other"))
	assert.Error(t, err)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(4249), MinorUnits(decimal.RequireFromString("42.49")))
	assert.Equal(t, int64(8000), MinorUnits(decimal.NewFromInt(80)))
}

func TestDisabledGateway(t *testing.T) {
	_, err := Disabled{}.CreateCheckout(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrDisabled)
}
