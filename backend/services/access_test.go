package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/models"
)

func sampleCourse() models.Course {
	return models.Course{
		ID:         "c1",
		Title:      "Go in practice",
		EducatorID: "edu",
		Chapters: []models.Chapter{
			{
				ID:    "ch1",
				Order: 1,
				Lectures: []models.Lecture{
					{ID: "l1", Title: "Intro", URL: "https://video/intro", IsPreviewFree: true, Order: 1},
					{ID: "l2", Title: "Paid", URL: "https://video/paid", Order: 2},
				},
			},
		},
		EnrolledStudents: []string{"s1"},
	}
}

func TestProjectForViewerRedactsNonPreview(t *testing.T) {
	course := sampleCourse()

	for _, viewer := range []string{AnonymousViewer, "s1", "someone"} {
		got := ProjectForViewer(course, viewer)
		assert.Equal(t, "https://video/intro", got.Chapters[0].Lectures[0].URL, viewer)
		assert.Equal(t, "", got.Chapters[0].Lectures[1].URL, viewer)
	}
}

func TestProjectForViewerOwnerSeesEverything(t *testing.T) {
	course := sampleCourse()
	got := ProjectForViewer(course, "edu")
	assert.Equal(t, "https://video/paid", got.Chapters[0].Lectures[1].URL)
}

func TestProjectForViewerDoesNotMutateInput(t *testing.T) {
	course := sampleCourse()
	before, err := json.Marshal(course)
	require.NoError(t, err)

	_ = ProjectForViewer(course, "someone")

	after, err := json.Marshal(course)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestProjectForViewerIsIdempotent(t *testing.T) {
	course := sampleCourse()
	once := ProjectForViewer(course, "someone")
	twice := ProjectForViewer(once, "someone")
	assert.Equal(t, once, twice)
}

func TestProjectForViewerAnonymousWithUnownedCourse(t *testing.T) {
	course := sampleCourse()
	course.EducatorID = ""
	got := ProjectForViewer(course, AnonymousViewer)
	assert.Equal(t, "", got.Chapters[0].Lectures[1].URL)
}

func TestProjectForListing(t *testing.T) {
	course := sampleCourse()
	got := ProjectForListing(course)

	assert.Nil(t, got.Chapters)
	assert.Nil(t, got.EnrolledStudents)
	assert.Equal(t, course.Title, got.Title)
	assert.Len(t, course.Chapters, 1)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "https://video/paid")
	assert.NotContains(t, string(raw), "enrolledStudents")
}

func TestProjectForMember(t *testing.T) {
	course := sampleCourse()

	assert.Equal(t, "https://video/paid", ProjectForMember(course, "s1").Chapters[0].Lectures[1].URL)
	assert.Equal(t, "https://video/paid", ProjectForMember(course, "edu").Chapters[0].Lectures[1].URL)
	assert.Equal(t, "", ProjectForMember(course, "stranger").Chapters[0].Lectures[1].URL)
	assert.Equal(t, "", ProjectForMember(course, AnonymousViewer).Chapters[0].Lectures[1].URL)
}
