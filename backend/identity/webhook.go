package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookHeaders are the delivery headers the provider signs with.
type WebhookHeaders struct {
	ID        string // svix-id
	Timestamp string // svix-timestamp
	Signature string // svix-signature
}

func (h WebhookHeaders) httpHeader() http.Header {
	hdr := http.Header{}
	hdr.Set("svix-id", h.ID)
	hdr.Set("svix-timestamp", h.Timestamp)
	hdr.Set("svix-signature", h.Signature)
	return hdr
}

// VerifyWebhook checks the signature and timestamp of a delivery. secret is the
// "whsec_" signing secret from the provider dashboard.
func VerifyWebhook(secret string, h WebhookHeaders, body []byte) error {
	if h.ID == "" || h.Timestamp == "" || h.Signature == "" {
		return ErrInvalidSignature
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return fmt.Errorf("webhook secret: %w", err)
	}
	if err := wh.Verify(body, h.httpHeader()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// UserEvent is a user lifecycle delivery.
type UserEvent struct {
	Type string   `json:"type"`
	Data UserData `json:"data"`
}

type UserData struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

func ParseUserEvent(body []byte) (*UserEvent, error) {
	var ev UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.Type == "" || ev.Data.ID == "" {
		return nil, errors.New("incomplete user event")
	}
	return &ev, nil
}

func (d UserData) Name() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

func (d UserData) Email() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}
