package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/services"
	"lms/backend/utils"
)

type RatingsController struct {
	Courses *repository.CourseRepository
}

func NewRatingsController(courses *repository.CourseRepository) *RatingsController {
	return &RatingsController{Courses: courses}
}

// AddRating godoc
// @Summary Rate a course
// @Description Stores or replaces the requester's rating; only enrolled students may rate
// @Tags user
// @Accept json
// @Produce json
// @Param rating body models.RatingPayload true "Rating"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/add-rating [post]
func (rc *RatingsController) AddRating(c *fiber.Ctx) error {
	userID := middleware.Identity(c).UserID

	var payload models.RatingPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := models.Validate(&payload, "Invalid rating"); err != nil {
		return err
	}

	course, err := rc.Courses.Mutate(c.UserContext(), payload.CourseID, func(course *models.Course) error {
		if !course.HasStudent(userID) {
			return apperr.Forbidden("User has not purchased this course")
		}
		course.SetRating(userID, payload.Rating)
		return nil
	})
	if err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"message":       "Rating added",
		"averageRating": services.ComputeAverageRating(*course),
	})
}
