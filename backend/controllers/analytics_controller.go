package controllers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/services"
	"lms/backend/utils"
)

// AnalyticsController serves the educator dashboard.
type AnalyticsController struct {
	Courses   *repository.CourseRepository
	Purchases *repository.PurchaseRepository
}

func NewAnalyticsController(courses *repository.CourseRepository, purchases *repository.PurchaseRepository) *AnalyticsController {
	return &AnalyticsController{Courses: courses, Purchases: purchases}
}

// GetDashboard godoc
// @Summary Educator dashboard
// @Description Totals over the requester's courses and their completed purchases
// @Tags educator
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /educator/dashboard [get]
func (ac *AnalyticsController) GetDashboard(c *fiber.Ctx) error {
	educatorID := middleware.Identity(c).UserID

	var (
		courses   []models.Course
		purchases []models.Purchase
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		courses, err = ac.Courses.ListByEducator(ctx, educatorID)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = ac.Purchases.CompletedForEducator(ctx, educatorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	summary := services.ComputeDashboard(courses, services.EnrollmentRecordsFrom(purchases))
	perf := services.CoursePerformance(summary)

	return utils.OK(c, fiber.Map{
		"dashboardData": fiber.Map{
			"totalCourses":         summary.TotalCourses,
			"totalEarnings":        utils.Money(summary.TotalEarnings),
			"enrolledStudentsData": summary.EnrolledStudentsData,
			"uniqueStudentsCount":  summary.UniqueStudentsCount,
			"performance": fiber.Map{
				"avgEnrollmentsPerCourse": utils.Money(perf.AvgEnrollmentsPerCourse),
				"avgEarningPerEnrollment": utils.Money(perf.AvgEarningPerEnrollment),
			},
		},
	})
}

// GetEnrolledStudents lists every completed enrollment in the requester's courses,
// oldest first.
func (ac *AnalyticsController) GetEnrolledStudents(c *fiber.Ctx) error {
	purchases, err := ac.Purchases.CompletedForEducator(c.UserContext(), middleware.Identity(c).UserID)
	if err != nil {
		return err
	}
	entries := services.EnrolledStudents(services.EnrollmentRecordsFrom(purchases))
	return utils.OK(c, fiber.Map{"enrolledStudents": entries})
}
