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

// CatalogController serves the public course catalogue.
type CatalogController struct {
	Courses *repository.CourseRepository
}

func NewCatalogController(courses *repository.CourseRepository) *CatalogController {
	return &CatalogController{Courses: courses}
}

// GetAllCourses godoc
// @Summary List published courses
// @Description Returns published courses without chapter content, optionally filtered by title
// @Tags courses
// @Produce json
// @Param search query string false "Title search"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponse
// @Router /course/all [get]
func (cc *CatalogController) GetAllCourses(c *fiber.Ctx) error {
	courses, err := cc.Courses.ListPublished(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}

	result := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		result = append(result, services.ProjectForListing(course))
	}
	return utils.OK(c, fiber.Map{"courses": result})
}

// GetCourse godoc
// @Summary Get course details
// @Description Returns a course with lecture links hidden unless the lecture is a free preview, whoever asks
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /course/{id} [get]
func (cc *CatalogController) GetCourse(c *fiber.Ctx) error {
	viewer := middleware.Identity(c).UserID

	course, err := cc.Courses.FindCached(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !course.IsPublished && course.EducatorID != viewer {
		return apperr.NotFound(services.MsgCourseNotFound)
	}

	return utils.OK(c, fiber.Map{
		"courseData":    services.ProjectForViewer(*course, services.AnonymousViewer),
		"averageRating": services.ComputeAverageRating(*course),
	})
}
