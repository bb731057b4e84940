package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/backend/models"
)

const msgUserNotFound = "User Not Found"

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return &user, nil
}

// Upsert writes the profile fields of u. Enrollment is never taken from the caller.
func (r *UserRepository) Upsert(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "image_url", "updated_at"}),
	}).Create(u).Error
}

// Ensure returns the stored projection of id, creating it from the token profile
// when the identity provider webhook has not delivered it yet.
func (r *UserRepository) Ensure(ctx context.Context, id models.Identity) (*models.User, error) {
	user := id.AsUser()
	err := r.db.WithContext(ctx).
		Where(models.User{ID: id.UserID}).
		Attrs(models.User{Name: user.Name, Email: user.Email, ImageURL: user.ImageURL}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}
