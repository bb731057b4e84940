package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
	"lms/backend/config"
	"lms/backend/identity"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/utils"
)

// AuthController talks to the identity provider: role changes go out through its
// admin API and user lifecycle events come in through its webhook.
type AuthController struct {
	Directory identity.Directory
	Users     *repository.UserRepository
	Cfg       *config.Config
	Log       *utils.Logger
}

func NewAuthController(directory identity.Directory, users *repository.UserRepository, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Directory: directory, Users: users, Cfg: cfg, Log: log}
}

// UpdateRoleToEducator godoc
// @Summary Become an educator
// @Description Sets the educator role in the identity provider; it takes effect with the next token
// @Tags educator
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /educator/update-role [get]
func (ac *AuthController) UpdateRoleToEducator(c *fiber.Ctx) error {
	id := middleware.Identity(c)

	ctx, cancel := context.WithTimeout(c.UserContext(), ac.Cfg.OutboundTimeout)
	defer cancel()

	if err := ac.Directory.SetRole(ctx, id.UserID, models.RoleEducator); err != nil {
		return apperr.Upstream("Identity provider unavailable", err)
	}
	ac.Log.Info("role updated", "user_id", id.UserID, "role", models.RoleEducator)
	return utils.Message(c, "You can publish a course now")
}

// IdentityWebhook keeps the local user projection in sync with the provider.
func (ac *AuthController) IdentityWebhook(c *fiber.Ctx) error {
	if ac.Cfg.IdentityWebhookSecret == "" {
		return apperr.Unauthenticated("Webhook is not configured")
	}

	headers := identity.WebhookHeaders{
		ID:        c.Get("svix-id"),
		Timestamp: c.Get("svix-timestamp"),
		Signature: c.Get("svix-signature"),
	}
	if err := identity.VerifyWebhook(ac.Cfg.IdentityWebhookSecret, headers, c.Body()); err != nil {
		return apperr.Unauthenticated("Invalid webhook signature")
	}

	ev, err := identity.ParseUserEvent(c.Body())
	if err != nil {
		return apperr.Validation("Invalid webhook payload")
	}

	ctx := c.UserContext()
	switch ev.Type {
	case "user.created", "user.updated":
		err = ac.Users.Upsert(ctx, &models.User{
			ID:       ev.Data.ID,
			Name:     ev.Data.Name(),
			Email:    ev.Data.Email(),
			ImageURL: ev.Data.ImageURL,
		})
	case "user.deleted":
		err = ac.Users.Delete(ctx, ev.Data.ID)
	default:
		ac.Log.Debug("identity event ignored", "type", ev.Type)
	}
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{})
}
