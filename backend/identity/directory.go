// Package identity talks to the external identity provider: role promotion through
// its admin API and verification of the webhooks it sends.
package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Directory changes user attributes held by the identity provider.
type Directory interface {
	SetRole(ctx context.Context, userID, role string) error
}

// AdminClient calls the provider's admin API with a secret key. Roles are kept in
// the user's public metadata and come back to us as a token claim.
type AdminClient struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

func NewAdminClient(baseURL, secretKey string, timeout time.Duration) *AdminClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AdminClient{BaseURL: strings.TrimSuffix(baseURL, "/"), SecretKey: secretKey, Timeout: timeout}
}

type metadataUpdate struct {
	PublicMetadata map[string]string `json:"public_metadata"`
}

func (c *AdminClient) SetRole(ctx context.Context, userID, role string) error {
	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	endpoint := c.BaseURL + "/users/" + url.PathEscape(userID) + "/metadata"
	agent := fiber.Patch(endpoint)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.SecretKey).
		JSON(metadataUpdate{PublicMetadata: map[string]string{"role": role}}).
		Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("prepare identity request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("identity provider request: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("identity provider returned %d: %s", code, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
