package service

import (
	"context"
	"strings"

	"boardapi/internal/models"
	"boardapi/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	boardRepo   repository.BoardRepository
}

type CreateCommentInput struct {
	UserID  uint
	BoardID uint
	Content string
}

type DeleteCommentInput struct {
	UserID    uint
	BoardID   uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	boardRepo repository.BoardRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		boardRepo:   boardRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if _, err := s.boardRepo.GetByID(ctx, in.BoardID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		BoardID: in.BoardID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, boardID uint) ([]models.CommentView, error) {
	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByBoard(ctx, boardID)
}

// DeleteComment soft-deletes a comment. Only its author may delete it, and
// the comment must belong to BoardID.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if comment.BoardID != in.BoardID {
		return models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.SoftDelete(ctx, in.CommentID)
}
