package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// prices are rendered as JSON numbers, as the web client expects
	decimal.MarshalJSONWithoutQuotes = true
}

// Course is stored as one document: chapters, enrolled students and ratings live in
// JSON columns so that an update always rewrites the whole course.
type Course struct {
	ID               string                       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title            string                       `gorm:"not null" json:"courseTitle"`
	Description      string                       `gorm:"type:text" json:"courseDescription"`
	Price            decimal.Decimal              `gorm:"type:numeric(12,2);not null" json:"coursePrice"`
	Discount         decimal.Decimal              `gorm:"type:numeric(5,2);not null;default:0" json:"discount"`
	Thumbnail        string                       `json:"courseThumbnail"`
	ThumbnailKey     string                       `json:"-"`
	Chapters         datatypes.JSONSlice[Chapter] `json:"courseContent,omitempty"`
	IsPublished      bool                         `gorm:"index" json:"isPublished"`
	EducatorID       string                       `gorm:"type:varchar(64);index;not null" json:"educatorId"`
	Educator         *User                        `gorm:"foreignKey:EducatorID" json:"educator,omitempty"`
	EnrolledStudents datatypes.JSONSlice[string]  `json:"enrolledStudents,omitempty"`
	Ratings          datatypes.JSONSlice[Rating]  `json:"courseRatings"`
	CreatedAt        time.Time                    `json:"createdAt"`
	UpdatedAt        time.Time                    `json:"updatedAt"`
}

type Chapter struct {
	ID       string    `json:"chapterId"`
	Order    int       `json:"chapterOrder"`
	Title    string    `json:"chapterTitle"`
	Lectures []Lecture `json:"chapterContent"`
}

type Lecture struct {
	ID            string  `json:"lectureId"`
	Title         string  `json:"lectureTitle"`
	Duration      float64 `json:"lectureDuration"` // minutes
	URL           string  `json:"lectureUrl"`
	IsPreviewFree bool    `json:"isPreviewFree"`
	Order         int     `json:"lectureOrder"`
}

type Rating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Normalize()
	return nil
}

func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.Normalize()
	return nil
}

// Normalize sorts chapters by order and every chapter's lectures by order.
// Gaps in the numbering are kept.
func (c *Course) Normalize() {
	slices.SortStableFunc(c.Chapters, func(a, b Chapter) int { return a.Order - b.Order })
	for i := range c.Chapters {
		slices.SortStableFunc(c.Chapters[i].Lectures, func(a, b Lecture) int { return a.Order - b.Order })
	}
}

func (c *Course) HasStudent(userID string) bool {
	return slices.Contains(c.EnrolledStudents, userID)
}

// AddStudent enrolls userID once. It reports whether the set changed.
func (c *Course) AddStudent(userID string) bool {
	if userID == "" || c.HasStudent(userID) {
		return false
	}
	c.EnrolledStudents = append(c.EnrolledStudents, userID)
	return true
}

// SetRating replaces the user's previous rating or appends a new one.
func (c *Course) SetRating(userID string, rating int) {
	for i := range c.Ratings {
		if c.Ratings[i].UserID == userID {
			c.Ratings[i].Rating = rating
			return
		}
	}
	c.Ratings = append(c.Ratings, Rating{UserID: userID, Rating: rating})
}

// Clone returns a copy that shares no slices with c.
func (c Course) Clone() Course {
	out := c
	if c.Chapters != nil {
		out.Chapters = make(datatypes.JSONSlice[Chapter], len(c.Chapters))
		for i, ch := range c.Chapters {
			ch.Lectures = slices.Clone(ch.Lectures)
			out.Chapters[i] = ch
		}
	}
	out.EnrolledStudents = slices.Clone(c.EnrolledStudents)
	out.Ratings = slices.Clone(c.Ratings)
	if c.Educator != nil {
		educator := *c.Educator
		out.Educator = &educator
	}
	return out
}

// LectureCount is the number of lectures across all chapters.
func (c *Course) LectureCount() int {
	n := 0
	for _, ch := range c.Chapters {
		n += len(ch.Lectures)
	}
	return n
}
