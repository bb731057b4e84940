// Package payments starts checkout sessions at the payment provider and turns its
// signed webhook deliveries into purchase outcomes.
package payments

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"lms/backend/models"
)

var ErrDisabled = errors.New("payments are not configured")

type CheckoutRequest struct {
	PurchaseID  string
	CourseID    string
	CourseTitle string
	UserID      string
	Email       string
	Amount      decimal.Decimal
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type Session struct {
	ID  string
	URL string
}

// Event is a settled checkout reported by the provider. Ref is the session id the
// purchase was tagged with; PurchaseID comes from the session metadata.
type Event struct {
	Ref        string
	PurchaseID string
	Outcome    models.PurchaseStatus
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Session, error)
	// ParseEvent verifies the signature and decodes the delivery. It returns a nil
	// event for deliveries that do not settle a purchase.
	ParseEvent(payload []byte, signature string) (*Event, error)
}

// Disabled is used when no provider is configured.
type Disabled struct{}

func (Disabled) CreateCheckout(context.Context, CheckoutRequest) (Session, error) {
	return Session{}, ErrDisabled
}

func (Disabled) ParseEvent([]byte, string) (*Event, error) {
	return nil, ErrDisabled
}

// MinorUnits converts an amount to the smallest currency unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
