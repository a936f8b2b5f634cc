package repository

import (
	"context"
	"moderation-api/internal/models"
	"moderation-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FirstOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get user by ID")
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get user by email")
	}

	return &user, nil
}

// FirstOrCreateByEmail returns the account for the email, creating it
// when a key is issued for a user we have not seen before.
func (r *userRepository) FirstOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).
		Where("email = ?", email).
		Attrs(models.User{Email: email, Name: name}).
		FirstOrCreate(&user)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to locate or create user")
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"email":      user.Email,
		"name":       user.Name,
		"updated_at": user.UpdatedAt,
	})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update user")
	}

	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete user")
	}

	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}

	return nil
}
