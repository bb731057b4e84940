package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lms/backend/apperr"
)

var (
	validate = newValidator()

	hundred = decimal.NewFromInt(100)
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct tags of v through the shared validator.
func Validate(v any, msg string) error {
	if err := validate.Struct(v); err != nil {
		return apperr.FromValidator(err, msg)
	}
	return nil
}

// CoursePayload is the editable part of a course as submitted by an educator.
type CoursePayload struct {
	Title       string           `json:"courseTitle" validate:"required"`
	Description string           `json:"courseDescription"`
	Price       *decimal.Decimal `json:"coursePrice"`
	Discount    *decimal.Decimal `json:"discount"`
	IsPublished *bool            `json:"isPublished"`
	Chapters    []ChapterPayload `json:"courseContent" validate:"dive"`
}

type ChapterPayload struct {
	ID       string           `json:"chapterId"`
	Order    int              `json:"chapterOrder" validate:"gte=0"`
	Title    string           `json:"chapterTitle" validate:"required"`
	Lectures []LecturePayload `json:"chapterContent" validate:"dive"`
}

type LecturePayload struct {
	ID            string  `json:"lectureId"`
	Title         string  `json:"lectureTitle" validate:"required"`
	Duration      float64 `json:"lectureDuration" validate:"gte=0"`
	URL           string  `json:"lectureUrl" validate:"required"`
	IsPreviewFree bool    `json:"isPreviewFree"`
	Order         int     `json:"lectureOrder" validate:"gte=0"`
}

const msgTitleAndPrice = "Course title and price are required"

// Validate checks the payload before anything is persisted.
func (p *CoursePayload) Validate() error {
	if p.Title == "" || p.Price == nil {
		return apperr.Validation(msgTitleAndPrice)
	}
	if err := Validate(p, "Invalid course data"); err != nil {
		return err
	}
	var fields []apperr.FieldError
	if p.Price.IsNegative() {
		fields = append(fields, apperr.FieldError{Field: "coursePrice", Error: "must not be negative"})
	}
	if p.Discount != nil && (p.Discount.IsNegative() || p.Discount.GreaterThan(hundred)) {
		fields = append(fields, apperr.FieldError{Field: "discount", Error: "must be between 0 and 100"})
	}
	if len(fields) > 0 {
		return apperr.Validation("Invalid course data", fields...)
	}
	return nil
}

// ApplyTo copies the editable fields onto c. Identity, ownership, enrollment and
// ratings are left as they are. Missing chapter and lecture ids are generated.
func (p *CoursePayload) ApplyTo(c *Course) {
	c.Title = p.Title
	c.Description = p.Description
	c.Price = *p.Price
	c.Discount = decimal.Zero
	if p.Discount != nil {
		c.Discount = *p.Discount
	}
	if p.IsPublished != nil {
		c.IsPublished = *p.IsPublished
	}

	chapters := make([]Chapter, 0, len(p.Chapters))
	for _, chp := range p.Chapters {
		ch := Chapter{ID: chp.ID, Order: chp.Order, Title: chp.Title}
		if ch.ID == "" {
			ch.ID = uuid.NewString()
		}
		ch.Lectures = make([]Lecture, 0, len(chp.Lectures))
		for _, lp := range chp.Lectures {
			l := Lecture{
				ID:            lp.ID,
				Title:         lp.Title,
				Duration:      lp.Duration,
				URL:           lp.URL,
				IsPreviewFree: lp.IsPreviewFree,
				Order:         lp.Order,
			}
			if l.ID == "" {
				l.ID = uuid.NewString()
			}
			ch.Lectures = append(ch.Lectures, l)
		}
		chapters = append(chapters, ch)
	}
	c.Chapters = chapters
	c.Normalize()
}

// RatingPayload is a student's rating of a course they are enrolled in.
type RatingPayload struct {
	CourseID string `json:"courseId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

type ProgressPayload struct {
	CourseID  string `json:"courseId" validate:"required"`
	LectureID string `json:"lectureId"`
}

type PurchasePayload struct {
	CourseID string `json:"courseId" validate:"required"`
}
