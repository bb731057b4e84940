package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
	"lms/backend/middleware"
	"lms/backend/repository"
	"lms/backend/services"
	"lms/backend/utils"
)

type UserController struct {
	Users   *repository.UserRepository
	Courses *repository.CourseRepository
}

func NewUserController(users *repository.UserRepository, courses *repository.CourseRepository) *UserController {
	return &UserController{Users: users, Courses: courses}
}

// GetUserData godoc
// @Summary Current user
// @Tags user
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/data [get]
func (uc *UserController) GetUserData(c *fiber.Ctx) error {
	user, err := uc.Users.Ensure(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"user": user})
}

// GetEnrolledCourses returns the full content of every course the user bought.
func (uc *UserController) GetEnrolledCourses(c *fiber.Ctx) error {
	user, err := uc.Users.Ensure(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return err
	}
	courses, err := uc.Courses.ListByIDs(c.UserContext(), user.EnrolledCourses)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"enrolledCourses": courses})
}

// GetCourse serves the player view: enrolled students and the owner get every
// lecture link, everybody else the public projection.
func (uc *UserController) GetCourse(c *fiber.Ctx) error {
	userID := middleware.Identity(c).UserID

	course, err := uc.Courses.FindCached(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !course.IsPublished && course.EducatorID != userID && !course.HasStudent(userID) {
		return apperr.NotFound(services.MsgCourseNotFound)
	}
	return utils.OK(c, fiber.Map{"courseData": services.ProjectForMember(*course, userID)})
}
