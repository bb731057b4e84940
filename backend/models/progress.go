package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// CourseProgress tracks the lectures a user finished in one course.
type CourseProgress struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	UserID           string                      `gorm:"type:varchar(64);uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID         string                      `gorm:"type:varchar(36);uniqueIndex:idx_progress_user_course;not null" json:"courseId"`
	Completed        bool                        `json:"completed"`
	LectureCompleted datatypes.JSONSlice[string] `json:"lectureCompleted"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}

// MarkLecture records lectureID once and reports whether it was new.
func (p *CourseProgress) MarkLecture(lectureID string) bool {
	if slices.Contains(p.LectureCompleted, lectureID) {
		return false
	}
	p.LectureCompleted = append(p.LectureCompleted, lectureID)
	return true
}

// CompletionRate is the share of the course's lectures finished, in [0, 1].
func (p *CourseProgress) CompletionRate(course *Course) float64 {
	total := course.LectureCount()
	if total == 0 {
		return 0
	}
	done := 0
	for _, ch := range course.Chapters {
		for _, l := range ch.Lectures {
			if slices.Contains(p.LectureCompleted, l.ID) {
				done++
			}
		}
	}
	return float64(done) / float64(total)
}
