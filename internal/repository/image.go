package repository

import (
	"context"

	"boardapi/internal/cache"
	"boardapi/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines persistence operations for board images.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	ListActiveByBoards(ctx context.Context, boardIDs []uint) ([]models.Image, error)
	Deactivate(ctx context.Context, boardID uint, imageIDs []uint) (int64, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	image.Status = models.StatusActive
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}

// GetByID returns an active image.
func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		First(&image).Error
	if err != nil {
		return nil, notFoundOr(err, models.NewNotFoundError("Image", id))
	}
	return &image, nil
}

func (r *imageRepository) ListActiveByBoards(ctx context.Context, boardIDs []uint) ([]models.Image, error) {
	images := make([]models.Image, 0)
	if len(boardIDs) == 0 {
		return images, nil
	}
	err := r.db.WithContext(ctx).
		Where("board_id IN ? AND status = ?", boardIDs, models.StatusActive).
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

// Deactivate flips the listed images of boardID to inactive and reports how
// many were active. Images of other boards are never touched.
func (r *imageRepository) Deactivate(ctx context.Context, boardID uint, imageIDs []uint) (int64, error) {
	if len(imageIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("board_id = ? AND id IN ? AND status = ?", boardID, imageIDs, models.StatusActive).
		Update("status", models.StatusInactive)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateBoardListings(ctx)
	}
	return res.RowsAffected, nil
}
