package controllers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lms/backend/apperr"
	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/services"
	"lms/backend/storage"
	"lms/backend/utils"
)

// CoursesController handles course authoring by educators. Every change to an
// existing course goes through the ownership gate first.
type CoursesController struct {
	Courses   *repository.CourseRepository
	Purchases *repository.PurchaseRepository
	Store     storage.Store
	Gate      services.Gate
	Cfg       *config.Config
	Log       *utils.Logger
}

func NewCoursesController(
	courses *repository.CourseRepository,
	purchases *repository.PurchaseRepository,
	store storage.Store,
	cfg *config.Config,
	log *utils.Logger,
) *CoursesController {
	return &CoursesController{
		Courses:   courses,
		Purchases: purchases,
		Store:     store,
		Gate:      services.Gate{HideForeign: cfg.HideForeignCourses},
		Cfg:       cfg,
		Log:       log,
	}
}

type educatorCourseView struct {
	models.Course
	EnrollmentCount int         `json:"enrollmentCount"`
	Earnings        json.Number `json:"earnings"`
	AverageRating   float64     `json:"averageRating"`
}

// AddCourse godoc
// @Summary Create a course
// @Description Multipart form with a courseData JSON field and an image file
// @Tags educator
// @Accept multipart/form-data
// @Produce json
// @Param courseData formData string true "Course JSON"
// @Param image formData file true "Thumbnail"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /educator/add-course [post]
func (cc *CoursesController) AddCourse(c *fiber.Ctx) error {
	educator := middleware.Identity(c)

	payload, err := readCoursePayload(c)
	if err != nil {
		return err
	}
	image, err := c.FormFile("image")
	if err != nil {
		return apperr.Validation("Thumbnail Not Attached")
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		EducatorID:  educator.UserID,
		IsPublished: true,
	}
	payload.ApplyTo(course)

	if err := cc.attachThumbnail(c.UserContext(), course, image); err != nil {
		return err
	}
	if err := cc.Courses.Create(c.UserContext(), course); err != nil {
		cc.removeThumbnail(course.ThumbnailKey)
		return err
	}

	cc.Log.Info("course created", "course_id", course.ID, "educator_id", educator.UserID)
	return utils.Created(c, fiber.Map{"message": "Course Added", "course": course})
}

// GetEducatorCourses returns the requester's courses with enrollment figures.
func (cc *CoursesController) GetEducatorCourses(c *fiber.Ctx) error {
	educator := middleware.Identity(c)

	courses, err := cc.Courses.ListByEducator(c.UserContext(), educator.UserID)
	if err != nil {
		return err
	}

	result := make([]educatorCourseView, 0, len(courses))
	for _, course := range courses {
		result = append(result, educatorCourseView{
			Course:          course,
			EnrollmentCount: len(course.EnrolledStudents),
			Earnings:        utils.Money(services.ComputeEarnings(course)),
			AverageRating:   services.ComputeAverageRating(course),
		})
	}
	return utils.OK(c, fiber.Map{"courses": result})
}

func (cc *CoursesController) GetCourseForEdit(c *fiber.Ctx) error {
	course, err := cc.Courses.LoadOwned(c.UserContext(), cc.Gate, c.Params("id"), middleware.Identity(c).UserID, "view")
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"courseData": course})
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Replaces the editable fields of a course owned by the requester; image is optional
// @Tags educator
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /educator/course/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	ctx := c.UserContext()
	course, err := cc.Courses.LoadOwned(ctx, cc.Gate, c.Params("id"), middleware.Identity(c).UserID, "update")
	if err != nil {
		return err
	}

	payload, err := readCoursePayload(c)
	if err != nil {
		return err
	}
	payload.ApplyTo(course)

	oldKey := course.ThumbnailKey
	replaced := false
	if image, err := c.FormFile("image"); err == nil {
		if err := cc.attachThumbnail(ctx, course, image); err != nil {
			return err
		}
		replaced = true
	}

	if err := cc.Courses.Save(ctx, course); err != nil {
		if replaced {
			cc.removeThumbnail(course.ThumbnailKey)
		}
		return err
	}
	if replaced && oldKey != "" {
		cc.removeThumbnail(oldKey)
	}
	return utils.OK(c, fiber.Map{"message": "Course updated successfully", "course": course})
}

// DeleteCourse removes a course nobody is enrolled in and nobody is paying for.
// Courses with students or an open checkout can only be unpublished.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	ctx := c.UserContext()
	course, err := cc.Courses.LoadOwned(ctx, cc.Gate, c.Params("id"), middleware.Identity(c).UserID, "delete")
	if err != nil {
		return err
	}
	if len(course.EnrolledStudents) > 0 {
		return apperr.Conflict("Course has enrolled students; unpublish it instead")
	}
	pending, err := cc.Purchases.HasPending(ctx, course.ID)
	if err != nil {
		return err
	}
	if pending {
		return apperr.Conflict("Course has a checkout in progress; unpublish it instead")
	}

	if err := cc.Courses.Delete(ctx, course.ID); err != nil {
		return err
	}
	cc.removeThumbnail(course.ThumbnailKey)
	return utils.Message(c, "Course deleted successfully")
}

// readCoursePayload accepts the courseData field of a multipart form or a plain
// JSON body.
func readCoursePayload(c *fiber.Ctx) (*models.CoursePayload, error) {
	raw := []byte(c.FormValue("courseData"))
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		raw = c.Body()
	}
	if len(raw) == 0 {
		return nil, apperr.Validation("Course title and price are required")
	}

	var payload models.CoursePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperr.Validation("Invalid course data")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (cc *CoursesController) attachThumbnail(ctx context.Context, course *models.Course, fh *multipart.FileHeader) error {
	if storage.ContentTypeForKey(fh.Filename) == "" {
		return apperr.Validation("Thumbnail must be an image")
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Validation("Thumbnail could not be read")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, cc.Cfg.OutboundTimeout)
	defer cancel()

	key := storage.ThumbnailKey(course.ID, fh.Filename)
	url, err := cc.Store.Upload(ctx, key, f)
	if err != nil {
		return apperr.Upstream("Thumbnail upload failed", err)
	}
	course.Thumbnail = url
	course.ThumbnailKey = key
	return nil
}

// removeThumbnail is best effort; a leftover object is only logged.
func (cc *CoursesController) removeThumbnail(key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cc.Cfg.OutboundTimeout)
	defer cancel()
	if err := cc.Store.Delete(ctx, key); err != nil {
		cc.Log.Warn("thumbnail cleanup failed", "key", key, "error", err)
	}
}
