package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/utils"
)

type ProgressController struct {
	Progress *repository.ProgressRepository
	Courses  *repository.CourseRepository
}

func NewProgressController(progress *repository.ProgressRepository, courses *repository.CourseRepository) *ProgressController {
	return &ProgressController{Progress: progress, Courses: courses}
}

// UpdateCourseProgress godoc
// @Summary Mark a lecture completed
// @Tags user
// @Accept json
// @Produce json
// @Param progress body models.ProgressPayload true "Lecture"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/update-course-progress [post]
func (pc *ProgressController) UpdateCourseProgress(c *fiber.Ctx) error {
	userID := middleware.Identity(c).UserID

	var payload models.ProgressPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := models.Validate(&payload, "Invalid progress data"); err != nil {
		return err
	}
	if payload.LectureID == "" {
		return apperr.Validation("Invalid progress data", apperr.FieldError{Field: "lectureId", Error: "is required"})
	}

	course, err := pc.Courses.FindCached(c.UserContext(), payload.CourseID)
	if err != nil {
		return err
	}
	if !course.HasStudent(userID) && course.EducatorID != userID {
		return apperr.Forbidden("User has not purchased this course")
	}
	if !hasLecture(course, payload.LectureID) {
		return apperr.NotFound("Lecture not found")
	}

	added, err := pc.Progress.MarkLecture(c.UserContext(), userID, course, payload.LectureID)
	if err != nil {
		return err
	}
	if !added {
		return utils.Message(c, "Lecture Already Completed")
	}
	return utils.Message(c, "Progress Updated")
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	var payload models.ProgressPayload
	if err := c.BodyParser(&payload); err != nil || payload.CourseID == "" {
		payload.CourseID = c.Query("courseId")
	}
	if payload.CourseID == "" {
		return apperr.Validation("Invalid progress data", apperr.FieldError{Field: "courseId", Error: "is required"})
	}

	progress, err := pc.Progress.Get(c.UserContext(), middleware.Identity(c).UserID, payload.CourseID)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"progressData": progress})
}

func hasLecture(course *models.Course, lectureID string) bool {
	for _, ch := range course.Chapters {
		for _, l := range ch.Lectures {
			if l.ID == lectureID {
				return true
			}
		}
	}
	return false
}
