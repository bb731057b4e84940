package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lms/backend/models"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get returns nil when the user has not started the course.
func (r *ProgressRepository) Get(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	var p models.CourseProgress
	err := r.db.WithContext(ctx).First(&p, "user_id = ? AND course_id = ?", userID, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkLecture records lectureID as completed. It reports false when the lecture was
// already recorded. course is used to decide whether the course is now complete.
func (r *ProgressRepository) MarkLecture(ctx context.Context, userID string, course *models.Course, lectureID string) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := models.CourseProgress{UserID: userID, CourseID: course.ID}
		if err := forUpdate(tx).
			Where(models.CourseProgress{UserID: userID, CourseID: course.ID}).
			FirstOrCreate(&p).Error; err != nil {
			return err
		}
		if !p.MarkLecture(lectureID) {
			return nil
		}
		added = true
		p.Completed = p.CompletionRate(course) >= 1
		return tx.Save(&p).Error
	})
	return added, err
}
