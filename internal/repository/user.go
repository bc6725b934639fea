// Package repository implements the data access layer for the application.
// Every query against a table with a status column filters on it
// explicitly; there are no global scopes.
package repository

import (
	"context"
	"errors"

	"boardapi/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithDeleted(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	ListActive(ctx context.Context) ([]models.PublicUser, error)
	UpdateNickname(ctx context.Context, id uint, nickname string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateProfileImage(ctx context.Context, id uint, url string) error
	SoftDelete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, models.NewUserNotFoundError(id))
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithDeleted(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, models.NewUserNotFoundError(id))
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no active user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND status = ?", email, models.StatusActive).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Status = models.StatusActive
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) ListActive(ctx context.Context) ([]models.PublicUser, error) {
	users := make([]models.PublicUser, 0)
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, nickname, profile_image").
		Where("status = ?", models.StatusActive).
		Order("id ASC").
		Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	return r.updateActive(ctx, id, map[string]any{"nickname": nickname})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.updateActive(ctx, id, map[string]any{"password": passwordHash})
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, id uint, url string) error {
	return r.updateActive(ctx, id, map[string]any{"profile_image": url})
}

// SoftDelete deactivates the account and releases its email for reuse.
func (r *userRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.updateActive(ctx, id, map[string]any{
		"status":        models.StatusInactive,
		"email":         nil,
		"profile_image": "",
	})
}

func (r *userRepository) updateActive(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewUserNotFoundError(id)
	}
	return nil
}
