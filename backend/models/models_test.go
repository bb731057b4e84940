package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/apperr"
)

func TestNormalizeSortsByOrderAndKeepsGaps(t *testing.T) {
	c := Course{Chapters: []Chapter{
		{ID: "b", Order: 3, Lectures: []Lecture{{ID: "y", Order: 5}, {ID: "x", Order: 2}}},
		{ID: "a", Order: 1},
	}}
	c.Normalize()

	assert.Equal(t, "a", c.Chapters[0].ID)
	assert.Equal(t, 3, c.Chapters[1].Order)
	assert.Equal(t, "x", c.Chapters[1].Lectures[0].ID)
}

func TestAddStudentIsASet(t *testing.T) {
	var c Course
	assert.True(t, c.AddStudent("u1"))
	assert.False(t, c.AddStudent("u1"))
	assert.False(t, c.AddStudent(""))
	assert.Equal(t, []string{"u1"}, []string(c.EnrolledStudents))
}

func TestSetRatingReplacesPrevious(t *testing.T) {
	var c Course
	c.SetRating("u1", 3)
	c.SetRating("u2", 5)
	c.SetRating("u1", 4)

	require.Len(t, c.Ratings, 2)
	assert.Equal(t, Rating{UserID: "u1", Rating: 4}, c.Ratings[0])
}

func TestCloneSharesNothing(t *testing.T) {
	c := Course{
		Chapters:         []Chapter{{ID: "a", Lectures: []Lecture{{ID: "l", URL: "u"}}}},
		EnrolledStudents: []string{"s"},
		Educator:         &User{ID: "e"},
	}
	cp := c.Clone()
	cp.Chapters[0].Lectures[0].URL = ""
	cp.EnrolledStudents[0] = "other"
	cp.Educator.Name = "x"

	assert.Equal(t, "u", c.Chapters[0].Lectures[0].URL)
	assert.Equal(t, "s", c.EnrolledStudents[0])
	assert.Equal(t, "", c.Educator.Name)
}

func TestCoursePayloadValidate(t *testing.T) {
	var p CoursePayload
	require.NoError(t, json.Unmarshal([]byte(`{"courseDescription":"d"}`), &p))
	err := p.Validate()
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Course title and price are required", err.Error())

	require.NoError(t, json.Unmarshal([]byte(`{"courseTitle":"Go","coursePrice":0}`), &p))
	assert.NoError(t, p.Validate())

	p = CoursePayload{}
	require.NoError(t, json.Unmarshal([]byte(`{"courseTitle":"Go","coursePrice":10,"discount":120}`), &p))
	err = p.Validate()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "discount", appErr.Fields[0].Field)
}

func TestCoursePayloadValidateNestedFields(t *testing.T) {
	var p CoursePayload
	raw := `{"courseTitle":"Go","coursePrice":"10","courseContent":[{"chapterTitle":"","chapterOrder":1,
		"chapterContent":[{"lectureTitle":"L","lectureUrl":"u","lectureDuration":-3}]}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	err := p.Validate()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	fields := map[string]string{}
	for _, f := range appErr.Fields {
		fields[f.Field] = f.Error
	}
	assert.Contains(t, fields, "courseContent[0].chapterTitle")
	assert.Contains(t, fields, "courseContent[0].chapterContent[0].lectureDuration")
}

func TestCoursePayloadApplyTo(t *testing.T) {
	price := decimal.NewFromInt(50)
	published := false
	p := CoursePayload{
		Title:       "Go",
		Price:       &price,
		IsPublished: &published,
		Chapters: []ChapterPayload{
			{Title: "Second", Order: 2, Lectures: []LecturePayload{{Title: "b", URL: "u", Order: 2}, {Title: "a", URL: "u", Order: 1}}},
			{ID: "keep", Title: "First", Order: 1},
		},
	}
	c := Course{
		ID:               "c1",
		EducatorID:       "edu",
		IsPublished:      true,
		EnrolledStudents: []string{"s1"},
		Discount:         decimal.NewFromInt(10),
	}
	p.ApplyTo(&c)

	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "edu", c.EducatorID)
	assert.Equal(t, []string{"s1"}, []string(c.EnrolledStudents))
	assert.False(t, c.IsPublished)
	assert.True(t, c.Discount.IsZero())
	assert.Equal(t, "keep", c.Chapters[0].ID)
	assert.NotEmpty(t, c.Chapters[1].ID)
	assert.Equal(t, "a", c.Chapters[1].Lectures[0].Title)
	assert.NotEmpty(t, c.Chapters[1].Lectures[0].ID)
}

func TestPurchaseTransition(t *testing.T) {
	p := Purchase{Status: PurchasePending}

	changed, err := p.Transition(PurchaseCompleted)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.Transition(PurchaseCompleted)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = p.Transition(PurchaseFailed)
	assert.ErrorIs(t, err, ErrPurchaseSettled)
	assert.Equal(t, PurchaseCompleted, p.Status)

	_, err = p.Transition(PurchasePending)
	assert.Error(t, err)
}

func TestCourseProgress(t *testing.T) {
	course := &Course{Chapters: []Chapter{{Lectures: []Lecture{{ID: "l1"}, {ID: "l2"}}}}}
	var p CourseProgress

	assert.True(t, p.MarkLecture("l1"))
	assert.False(t, p.MarkLecture("l1"))
	assert.InDelta(t, 0.5, p.CompletionRate(course), 1e-9)
	assert.Equal(t, 0.0, p.CompletionRate(&Course{}))
}
