package services

import (
	"lms/backend/apperr"
	"lms/backend/models"
)

const MsgCourseNotFound = "Course not found"

// Gate decides whether a requester may change a course.
type Gate struct {
	// HideForeign reports courses owned by someone else as missing so that course
	// ids cannot be enumerated.
	HideForeign bool
}

// Authorize fails with a not-found error for a nil course and with an authorization
// error when requesterID does not own it. action names the attempted change
// ("update", "delete", ...).
func (g Gate) Authorize(course *models.Course, requesterID, action string) error {
	if course == nil {
		return apperr.NotFound(MsgCourseNotFound)
	}
	if requesterID != "" && course.EducatorID == requesterID {
		return nil
	}
	if g.HideForeign {
		return apperr.NotFound(MsgCourseNotFound)
	}
	return apperr.Forbidden("Unauthorized to " + action + " this course")
}

// AuthorizeOwner applies the default gate.
func AuthorizeOwner(course *models.Course, requesterID, action string) error {
	return Gate{}.Authorize(course, requesterID, action)
}
