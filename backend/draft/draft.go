// Package draft models a course while an educator is still editing it. A draft is
// turned into a models.CoursePayload once it is ready to be submitted.
package draft

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lms/backend/apperr"
	"lms/backend/models"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrLectureNotFound = errors.New("lecture not found")
)

type Chapter struct {
	ID        string
	Title     string
	Order     int
	Collapsed bool
	Lectures  []models.LecturePayload
}

type LectureInput struct {
	Title         string
	Duration      float64
	URL           string
	IsPreviewFree bool
}

type Draft struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Published   bool
	Chapters    []Chapter
}

func New(title, description string, price, discount decimal.Decimal) *Draft {
	return &Draft{
		Title:       title,
		Description: description,
		Price:       price,
		Discount:    discount,
		Published:   true,
	}
}

// AddChapter appends a chapter ordered after the highest existing one. Removed
// chapters leave gaps; orders are never renumbered.
func (d *Draft) AddChapter(title string) (Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Chapter{}, apperr.Validation("Chapter title is required")
	}
	order := 1
	for _, ch := range d.Chapters {
		if ch.Order >= order {
			order = ch.Order + 1
		}
	}
	ch := Chapter{ID: uuid.NewString(), Title: title, Order: order}
	d.Chapters = append(d.Chapters, ch)
	return ch, nil
}

func (d *Draft) RemoveChapter(id string) error {
	i := d.chapterIndex(id)
	if i < 0 {
		return ErrChapterNotFound
	}
	d.Chapters = append(d.Chapters[:i], d.Chapters[i+1:]...)
	return nil
}

// ToggleChapter flips the collapsed flag and returns the new value.
func (d *Draft) ToggleChapter(id string) (bool, error) {
	i := d.chapterIndex(id)
	if i < 0 {
		return false, ErrChapterNotFound
	}
	d.Chapters[i].Collapsed = !d.Chapters[i].Collapsed
	return d.Chapters[i].Collapsed, nil
}

func (d *Draft) AddLecture(chapterID string, in LectureInput) (models.LecturePayload, error) {
	i := d.chapterIndex(chapterID)
	if i < 0 {
		return models.LecturePayload{}, ErrChapterNotFound
	}
	var fields []apperr.FieldError
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, apperr.FieldError{Field: "lectureTitle", Error: "is required"})
	}
	if strings.TrimSpace(in.URL) == "" {
		fields = append(fields, apperr.FieldError{Field: "lectureUrl", Error: "is required"})
	}
	if in.Duration < 0 {
		fields = append(fields, apperr.FieldError{Field: "lectureDuration", Error: "must not be negative"})
	}
	if len(fields) > 0 {
		return models.LecturePayload{}, apperr.Validation("Invalid lecture", fields...)
	}

	ch := &d.Chapters[i]
	order := 1
	for _, l := range ch.Lectures {
		if l.Order >= order {
			order = l.Order + 1
		}
	}
	lecture := models.LecturePayload{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(in.Title),
		Duration:      in.Duration,
		URL:           strings.TrimSpace(in.URL),
		IsPreviewFree: in.IsPreviewFree,
		Order:         order,
	}
	ch.Lectures = append(ch.Lectures, lecture)
	return lecture, nil
}

func (d *Draft) RemoveLecture(chapterID, lectureID string) error {
	i := d.chapterIndex(chapterID)
	if i < 0 {
		return ErrChapterNotFound
	}
	ch := &d.Chapters[i]
	for j, l := range ch.Lectures {
		if l.ID == lectureID {
			ch.Lectures = append(ch.Lectures[:j], ch.Lectures[j+1:]...)
			return nil
		}
	}
	return ErrLectureNotFound
}

// Build produces the payload submitted to the course endpoints. The collapsed
// flag stays in the draft.
func (d *Draft) Build() models.CoursePayload {
	price := d.Price
	discount := d.Discount
	published := d.Published
	payload := models.CoursePayload{
		Title:       d.Title,
		Description: d.Description,
		Price:       &price,
		Discount:    &discount,
		IsPublished: &published,
		Chapters:    make([]models.ChapterPayload, 0, len(d.Chapters)),
	}
	for _, ch := range d.Chapters {
		payload.Chapters = append(payload.Chapters, models.ChapterPayload{
			ID:       ch.ID,
			Order:    ch.Order,
			Title:    ch.Title,
			Lectures: append([]models.LecturePayload(nil), ch.Lectures...),
		})
	}
	return payload
}

func (d *Draft) chapterIndex(id string) int {
	for i, ch := range d.Chapters {
		if ch.ID == id {
			return i
		}
	}
	return -1
}
