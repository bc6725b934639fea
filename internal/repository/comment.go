package repository

import (
	"context"

	"boardapi/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByBoard(ctx context.Context, boardID uint) ([]models.CommentView, error)
	SoftDelete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.Status = models.StatusActive
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns an active comment.
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		First(&comment).Error
	if err != nil {
		return nil, notFoundOr(err, models.NewNotFoundError("Comment", id))
	}
	return &comment, nil
}

// ListByBoard returns the active comments of a board, oldest first, with
// each author's nickname.
func (r *commentRepository) ListByBoard(ctx context.Context, boardID uint) ([]models.CommentView, error) {
	comments := make([]models.CommentView, 0)
	err := r.db.WithContext(ctx).
		Table("comments").
		Select("comments.id, comments.board_id, comments.user_id, users.nickname, comments.content, comments.created_at").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.board_id = ? AND comments.status = ?", boardID, models.StatusActive).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Update("status", models.StatusInactive)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
