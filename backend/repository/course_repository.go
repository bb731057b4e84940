// Package repository persists courses, purchases, users and progress with gorm.
// Not-found results are reported as apperr not-found errors.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/backend/apperr"
	"lms/backend/models"
	"lms/backend/services"
)

type CourseRepository struct {
	db    *gorm.DB
	cache *CourseCache
}

func NewCourseRepository(db *gorm.DB, cache *CourseCache) *CourseRepository {
	return &CourseRepository{db: db, cache: cache}
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error; err != nil {
		return err
	}
	r.cache.Invalidate(ctx, course.ID)
	return nil
}

// FindByID loads a course with its educator, bypassing the cache.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Preload("Educator").First(&course, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, services.MsgCourseNotFound)
	}
	return &course, nil
}

// FindCached is FindByID through the catalogue cache. The result must be treated as
// read-only.
func (r *CourseRepository) FindCached(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := r.cache.getDetail(ctx, id); ok {
		return course, nil
	}
	course, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.putDetail(ctx, course)
	return course, nil
}

// ListPublished returns published courses, newest first, optionally filtered by a
// case-insensitive title search.
func (r *CourseRepository) ListPublished(ctx context.Context, search string) ([]models.Course, error) {
	search = strings.TrimSpace(search)
	if courses, ok := r.cache.getList(ctx, search); ok {
		return courses, nil
	}

	query := r.db.WithContext(ctx).
		Preload("Educator").
		Where("is_published = ?", true)
	if search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var courses []models.Course
	if err := query.Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, err
	}
	r.cache.putList(ctx, search, courses)
	return courses, nil
}

func (r *CourseRepository) ListByEducator(ctx context.Context, educatorID string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Order("created_at desc").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Preload("Educator").
		Where("id IN ?", ids).
		Order("created_at desc").
		Find(&courses).Error
	return courses, err
}

// LoadOwned loads a course for a change by requesterID. The gate runs before the
// caller gets a chance to write anything.
func (r *CourseRepository) LoadOwned(ctx context.Context, gate services.Gate, id, requesterID, action string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var loaded *models.Course
	if err == nil {
		loaded = &course
	}
	if err := gate.Authorize(loaded, requesterID, action); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Save writes the full course document.
func (r *CourseRepository) Save(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error; err != nil {
		return err
	}
	r.cache.Invalidate(ctx, course.ID)
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(services.MsgCourseNotFound)
	}
	r.cache.Invalidate(ctx, id)
	return nil
}

// Mutate loads the course under a row lock, applies fn and writes the document
// back in the same transaction. Nothing is written when fn fails.
func (r *CourseRepository) Mutate(ctx context.Context, id string, fn func(*models.Course) error) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&course, "id = ?", id).Error; err != nil {
			return notFound(err, services.MsgCourseNotFound)
		}
		if err := fn(&course); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&course).Error
	})
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, id)
	return &course, nil
}
