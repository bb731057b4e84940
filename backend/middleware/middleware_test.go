package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/models"
	"lms/backend/testutil"
	"lms/backend/utils"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(utils.NopLogger())})
}

func whoami(c *fiber.Ctx) error {
	id := Identity(c)
	return c.JSON(fiber.Map{"id": id.UserID, "educator": id.IsEducator()})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testutil.Config()
	app := newApp()
	app.Get("/me", AuthMiddleware(cfg), whoami)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", testutil.Token(t, cfg, "user_1", models.RoleStudent))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user_1", body["id"])
	assert.Equal(t, false, body["educator"])
}

func TestOptionalAuth(t *testing.T) {
	cfg := testutil.Config()
	app := newApp()
	app.Get("/me", OptionalAuth(cfg), whoami)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "", body["id"])
}

func TestEducatorMiddleware(t *testing.T) {
	cfg := testutil.Config()
	app := newApp()
	app.Get("/edu", AuthMiddleware(cfg), EducatorMiddleware(), whoami)

	req := httptest.NewRequest("GET", "/edu", nil)
	req.Header.Set("Authorization", testutil.Token(t, cfg, "user_1", models.RoleStudent))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/edu", nil)
	req.Header.Set("Authorization", testutil.Token(t, cfg, "user_2", models.RoleEducator))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimiterWithoutRedisPasses(t *testing.T) {
	app := newApp()
	app.Get("/", NewRateLimiter(nil, utils.NopLogger()).Limit("test", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rdb := testutil.Redis(t)
	app := newApp()
	app.Get("/", NewRateLimiter(rdb, utils.NopLogger()).Limit("test", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRateLimiterKeyAlwaysExpires(t *testing.T) {
	rdb := testutil.Redis(t)
	ctx := context.Background()
	app := newApp()
	app.Get("/", NewRateLimiter(rdb, utils.NopLogger()).Limit("test", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	keys, err := rdb.Keys(ctx, "rate_limit:test:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	ttl, err := rdb.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// a counter that lost its expiry gets the window back once it blocks
	require.NoError(t, rdb.Persist(ctx, keys[0]).Err())
	for i := 0; i < 2; i++ {
		resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
	}
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	ttl, err = rdb.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestLoggingMiddlewarePassesErrorsThrough(t *testing.T) {
	app := newApp()
	app.Use(LoggingMiddleware(utils.NopLogger()))
	app.Get("/", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
