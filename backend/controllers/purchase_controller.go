package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/payments"
	"lms/backend/repository"
	"lms/backend/services"
	"lms/backend/utils"
)

// PurchaseController starts checkouts and settles them from payment webhooks.
// Enrollment only ever happens in Settle.
type PurchaseController struct {
	Courses   *repository.CourseRepository
	Purchases *repository.PurchaseRepository
	Users     *repository.UserRepository
	Gateway   payments.Gateway
	Cfg       *config.Config
	Log       *utils.Logger
}

func NewPurchaseController(
	courses *repository.CourseRepository,
	purchases *repository.PurchaseRepository,
	users *repository.UserRepository,
	gateway payments.Gateway,
	cfg *config.Config,
	log *utils.Logger,
) *PurchaseController {
	return &PurchaseController{
		Courses:   courses,
		Purchases: purchases,
		Users:     users,
		Gateway:   gateway,
		Cfg:       cfg,
		Log:       log,
	}
}

// PurchaseCourse godoc
// @Summary Buy a course
// @Description Records a pending purchase and returns the hosted checkout URL. Free courses are enrolled immediately.
// @Tags user
// @Accept json
// @Produce json
// @Param purchase body models.PurchasePayload true "Course"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /course/purchase [post]
func (pc *PurchaseController) PurchaseCourse(c *fiber.Ctx) error {
	id := middleware.Identity(c)
	ctx := c.UserContext()

	var payload models.PurchasePayload
	if err := c.BodyParser(&payload); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := models.Validate(&payload, "Data Not Found"); err != nil {
		return err
	}

	course, err := pc.Courses.FindByID(ctx, payload.CourseID)
	if err != nil {
		return err
	}
	if !course.IsPublished {
		return apperr.NotFound(services.MsgCourseNotFound)
	}
	if course.EducatorID == id.UserID {
		return apperr.Validation("Educators cannot purchase their own course")
	}
	if course.HasStudent(id.UserID) {
		return apperr.Conflict("Already enrolled in this course")
	}

	user, err := pc.Users.Ensure(ctx, id)
	if err != nil {
		return err
	}

	purchase := &models.Purchase{
		CourseID: course.ID,
		UserID:   user.ID,
		Amount:   services.PurchaseAmount(*course),
	}
	if err := pc.Purchases.Create(ctx, purchase); err != nil {
		return err
	}

	if purchase.Amount.IsZero() {
		if _, err := pc.Purchases.Settle(ctx, purchase.ID, models.PurchaseCompleted); err != nil {
			return err
		}
		return utils.OK(c, fiber.Map{"purchaseId": purchase.ID, "enrolled": true})
	}

	checkoutCtx, cancel := context.WithTimeout(ctx, pc.Cfg.OutboundTimeout)
	defer cancel()

	session, err := pc.Gateway.CreateCheckout(checkoutCtx, payments.CheckoutRequest{
		PurchaseID:  purchase.ID,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		UserID:      user.ID,
		Email:       user.Email,
		Amount:      purchase.Amount,
		Currency:    pc.Cfg.Currency,
		SuccessURL:  pc.Cfg.FrontendURL + "/loading/my-enrollments",
		CancelURL:   pc.Cfg.FrontendURL + "/",
	})
	if err != nil {
		if _, serr := pc.Purchases.Settle(ctx, purchase.ID, models.PurchaseFailed); serr != nil {
			pc.Log.Error("failed to mark purchase failed", "purchase_id", purchase.ID, "error", serr)
		}
		if errors.Is(err, payments.ErrDisabled) {
			return apperr.Upstream("Payments are not available", err)
		}
		return apperr.Upstream("Payment provider unavailable", err)
	}

	if err := pc.Purchases.SetExternalRef(ctx, purchase.ID, session.ID); err != nil {
		return err
	}

	pc.Log.Info("checkout started", "purchase_id", purchase.ID, "course_id", course.ID, "user_id", user.ID)
	return utils.OK(c, fiber.Map{"sessionUrl": session.URL, "purchaseId": purchase.ID})
}

// PaymentWebhook settles purchases from provider deliveries. Deliveries that were
// already applied are acknowledged so the provider stops retrying.
func (pc *PurchaseController) PaymentWebhook(c *fiber.Ctx) error {
	ev, err := pc.Gateway.ParseEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		pc.Log.Warn("payment webhook rejected", "error", err)
		return apperr.Validation("Webhook Error")
	}
	if ev == nil {
		return c.JSON(fiber.Map{"received": true})
	}

	ctx := c.UserContext()
	purchase, err := pc.resolvePurchase(ctx, ev)
	if apperr.Is(err, apperr.KindNotFound) {
		pc.Log.Warn("payment webhook for unknown purchase", "ref", ev.Ref, "purchase_id", ev.PurchaseID)
		return c.JSON(fiber.Map{"received": true})
	}
	if err != nil {
		return err
	}

	changed, err := pc.Purchases.Settle(ctx, purchase.ID, ev.Outcome)
	switch {
	case apperr.Is(err, apperr.KindConflict):
		pc.Log.Warn("payment outcome for settled purchase", "purchase_id", purchase.ID, "outcome", ev.Outcome)
	case err != nil:
		return err
	case changed:
		pc.Log.Info("purchase settled", "purchase_id", purchase.ID, "status", ev.Outcome)
	}
	return c.JSON(fiber.Map{"received": true})
}

func (pc *PurchaseController) resolvePurchase(ctx context.Context, ev *payments.Event) (*models.Purchase, error) {
	if ev.Ref != "" {
		p, err := pc.Purchases.FindByExternalRef(ctx, ev.Ref)
		if err == nil {
			return p, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) || ev.PurchaseID == "" {
			return nil, err
		}
	}
	if ev.PurchaseID == "" {
		return nil, apperr.NotFound("Purchase not found")
	}
	return pc.Purchases.FindByID(ctx, ev.PurchaseID)
}
