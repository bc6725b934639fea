package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"boardapi/internal/middleware"
	"boardapi/internal/models"
	"boardapi/internal/repository"
)

const (
	maxCategoryLen = 50
	maxTitleLen    = 300
	maxContentLen  = 50000
)

// BoardEventPublisher pushes board changes to live feed subscribers.
type BoardEventPublisher interface {
	PublishBoardEvent(ctx context.Context, ev models.BoardEvent) error
}

// BoardService handles board writes and per-user reactions.
type BoardService struct {
	boardRepo repository.BoardRepository
	imageRepo repository.ImageRepository
	events    BoardEventPublisher
	now       func() time.Time
}

type CreateBoardInput struct {
	UserID   uint
	Category string
	Title    string
	Content  string
}

// UpdateBoardInput leaves nil fields unchanged. RemoveImageIDs deactivates
// images of this board; ids of other boards are ignored.
type UpdateBoardInput struct {
	UserID         uint
	BoardID        uint
	Category       *string
	Title          *string
	Content        *string
	RemoveImageIDs []uint
}

type DeleteBoardInput struct {
	UserID  uint
	BoardID uint
}

// NewBoardService builds a BoardService. events may be nil.
func NewBoardService(
	boardRepo repository.BoardRepository,
	imageRepo repository.ImageRepository,
	events BoardEventPublisher,
) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
		imageRepo: imageRepo,
		events:    events,
		now:       time.Now,
	}
}

func (s *BoardService) CreateBoard(ctx context.Context, in CreateBoardInput) (*models.Board, error) {
	category := strings.TrimSpace(in.Category)
	if err := validateBoardFields(&category, &in.Title, &in.Content); err != nil {
		return nil, err
	}

	board := &models.Board{
		UserID:   in.UserID,
		Category: category,
		Title:    in.Title,
		Content:  in.Content,
	}
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, err
	}
	board.Images = make([]models.Image, 0)

	s.publish(ctx, models.EventBoardCreated, board)
	return board, nil
}

func (s *BoardService) GetBoard(ctx context.Context, id uint) (*models.Board, error) {
	return s.boardRepo.GetByID(ctx, id)
}

func (s *BoardService) UpdateBoard(ctx context.Context, in UpdateBoardInput) (*models.Board, error) {
	board, err := s.ownedBoard(ctx, in.UserID, in.BoardID, "update")
	if err != nil {
		return nil, err
	}

	if in.Category != nil {
		trimmed := strings.TrimSpace(*in.Category)
		in.Category = &trimmed
	}
	if err := validateBoardFields(in.Category, in.Title, in.Content); err != nil {
		return nil, err
	}

	update := repository.BoardUpdate{Category: in.Category, Title: in.Title, Content: in.Content}
	if err := s.boardRepo.Update(ctx, board.ID, update); err != nil {
		return nil, err
	}
	if len(in.RemoveImageIDs) > 0 {
		if _, err := s.imageRepo.Deactivate(ctx, board.ID, in.RemoveImageIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.boardRepo.GetByID(ctx, board.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventBoardUpdated, updated)
	return updated, nil
}

// DeleteBoard soft-deletes the board; it stays readable through
// BoardRepository.GetByIDWithDeleted.
func (s *BoardService) DeleteBoard(ctx context.Context, in DeleteBoardInput) error {
	board, err := s.ownedBoard(ctx, in.UserID, in.BoardID, "delete")
	if err != nil {
		return err
	}
	if err := s.boardRepo.SoftDelete(ctx, board.ID); err != nil {
		return err
	}
	s.publish(ctx, models.EventBoardDeleted, board)
	return nil
}

func (s *BoardService) Like(ctx context.Context, userID, boardID uint) error {
	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		return err
	}
	return s.boardRepo.Like(ctx, userID, boardID)
}

func (s *BoardService) Unlike(ctx context.Context, userID, boardID uint) error {
	return s.boardRepo.Unlike(ctx, userID, boardID)
}

func (s *BoardService) Bookmark(ctx context.Context, userID, boardID uint) error {
	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		return err
	}
	return s.boardRepo.Bookmark(ctx, userID, boardID)
}

func (s *BoardService) Unbookmark(ctx context.Context, userID, boardID uint) error {
	return s.boardRepo.Unbookmark(ctx, userID, boardID)
}

// ownedBoard loads an active board and checks userID wrote it.
func (s *BoardService) ownedBoard(ctx context.Context, userID, boardID uint, action string) (*models.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.UserID != userID {
		return nil, models.NewForbiddenError("You can only " + action + " your own boards")
	}
	return board, nil
}

// publish is best effort: a feed outage never fails the write.
func (s *BoardService) publish(ctx context.Context, eventType string, board *models.Board) {
	if s.events == nil {
		return
	}
	ev := models.BoardEvent{
		Type:       eventType,
		BoardID:    board.ID,
		UserID:     board.UserID,
		Category:   board.Category,
		Title:      board.Title,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishBoardEvent(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "board event publish failed",
			slog.String("event", eventType),
			slog.Uint64("board_id", uint64(board.ID)),
			slog.String("error", err.Error()))
	}
}

// validateBoardFields checks the non-nil fields. Create passes all three.
func validateBoardFields(category, title, content *string) error {
	if category != nil {
		if *category == "" {
			return models.NewValidationError("Category is required")
		}
		if len(*category) > maxCategoryLen {
			return models.NewValidationError("Category too long (max 50 characters)")
		}
	}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return models.NewValidationError("Title is required")
		}
		if len(*title) > maxTitleLen {
			return models.NewValidationError("Title too long (max 300 characters)")
		}
	}
	if content != nil {
		if strings.TrimSpace(*content) == "" {
			return models.NewValidationError("Content is required")
		}
		if len(*content) > maxContentLen {
			return models.NewValidationError("Content too long (max 50000 characters)")
		}
	}
	return nil
}
