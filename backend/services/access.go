package services

import "lms/backend/models"

// AnonymousViewer is the viewer id of an unauthenticated request.
const AnonymousViewer = ""

// ProjectForViewer returns the course as viewerID may see it. The owning educator
// gets it unmodified; everyone else gets a copy with the URL of every non-preview
// lecture blanked. The input is never mutated.
func ProjectForViewer(course models.Course, viewerID string) models.Course {
	if viewerID != AnonymousViewer && viewerID == course.EducatorID {
		return course
	}
	out := course.Clone()
	for i := range out.Chapters {
		for j := range out.Chapters[i].Lectures {
			if !out.Chapters[i].Lectures[j].IsPreviewFree {
				out.Chapters[i].Lectures[j].URL = ""
			}
		}
	}
	return out
}

// ProjectForListing drops chapters and enrolled students for catalogue listings.
func ProjectForListing(course models.Course) models.Course {
	out := course.Clone()
	out.Chapters = nil
	out.EnrolledStudents = nil
	return out
}

// ProjectForMember serves full content to the owner and to enrolled students,
// and the redacted view to anyone else.
func ProjectForMember(course models.Course, viewerID string) models.Course {
	if viewerID != AnonymousViewer && course.HasStudent(viewerID) {
		return course
	}
	return ProjectForViewer(course, viewerID)
}
