package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/backend/apperr"
	"lms/backend/models"
)

const msgPurchaseNotFound = "Purchase not found"

type PurchaseRepository struct {
	db    *gorm.DB
	cache *CourseCache
}

func NewPurchaseRepository(db *gorm.DB, cache *CourseCache) *PurchaseRepository {
	return &PurchaseRepository{db: db, cache: cache}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *models.Purchase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, msgPurchaseNotFound)
	}
	return &p, nil
}

func (r *PurchaseRepository) FindByExternalRef(ctx context.Context, ref string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.WithContext(ctx).First(&p, "external_ref = ?", ref).Error; err != nil {
		return nil, notFound(err, msgPurchaseNotFound)
	}
	return &p, nil
}

func (r *PurchaseRepository) SetExternalRef(ctx context.Context, id, ref string) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Update("external_ref", ref).Error
}

// CompletedForEducator returns completed purchases of courses owned by educatorID,
// oldest first, with course and buyer loaded.
func (r *PurchaseRepository) CompletedForEducator(ctx context.Context, educatorID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Joins("JOIN courses ON courses.id = purchases.course_id").
		Where("courses.educator_id = ? AND purchases.status = ?", educatorID, models.PurchaseCompleted).
		Preload("Course").
		Preload("User").
		Order("purchases.created_at asc").
		Find(&purchases).Error
	return purchases, err
}

// HasPending reports whether courseID has a checkout that is not settled yet.
func (r *PurchaseRepository) HasPending(ctx context.Context, courseID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("course_id = ? AND status = ?", courseID, models.PurchasePending).
		Count(&n).Error
	return n > 0, err
}

// Settle moves purchase id to a terminal status. A completed purchase enrolls the
// buyer in the course and adds the course to the buyer's projection, both with set
// semantics, in the same transaction. Settling twice to the same status changes
// nothing and reports changed == false.
func (r *PurchaseRepository) Settle(ctx context.Context, id string, to models.PurchaseStatus) (changed bool, err error) {
	var courseID string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := forUpdate(tx).First(&p, "id = ?", id).Error; err != nil {
			return notFound(err, msgPurchaseNotFound)
		}
		ok, err := p.Transition(to)
		if err != nil {
			if errors.Is(err, models.ErrPurchaseSettled) {
				return apperr.New(apperr.KindConflict, "Purchase already settled", err)
			}
			return err
		}
		if !ok {
			return nil
		}
		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", p.ID, models.PurchasePending).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		courseID = p.CourseID
		if to == models.PurchaseCompleted {
			return enroll(tx, p.CourseID, p.UserID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed && courseID != "" {
		r.cache.Invalidate(ctx, courseID)
	}
	return changed, nil
}

func enroll(tx *gorm.DB, courseID, userID string) error {
	var course models.Course
	if err := forUpdate(tx).First(&course, "id = ?", courseID).Error; err != nil {
		return notFound(err, "Course not found")
	}
	if course.AddStudent(userID) {
		if err := tx.Model(&course).Update("enrolled_students", course.EnrolledStudents).Error; err != nil {
			return err
		}
	}

	user := models.User{ID: userID}
	if err := forUpdate(tx).Where(models.User{ID: userID}).FirstOrCreate(&user).Error; err != nil {
		return err
	}
	for _, id := range user.EnrolledCourses {
		if id == courseID {
			return nil
		}
	}
	user.EnrolledCourses = append(user.EnrolledCourses, courseID)
	return tx.Model(&user).Update("enrolled_courses", user.EnrolledCourses).Error
}
