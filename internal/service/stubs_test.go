package service

import (
	"context"
	"errors"
	"testing"

	"boardapi/internal/models"
	"boardapi/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boardRepoStub struct {
	createFn             func(ctx context.Context, board *models.Board) error
	getByIDFn            func(ctx context.Context, id uint) (*models.Board, error)
	getByIDWithDeletedFn func(ctx context.Context, id uint) (*models.Board, error)
	listSummariesFn      func(ctx context.Context) ([]models.BoardListing, error)
	listByCategoryFn     func(ctx context.Context, category string) ([]models.Board, error)
	updateFn             func(ctx context.Context, id uint, update repository.BoardUpdate) error
	softDeleteFn         func(ctx context.Context, id uint) error
	listOwnedFn          func(ctx context.Context, q repository.OwnedBoardsQuery) ([]models.UserBoardRow, error)
	listCommentedFn      func(ctx context.Context, q repository.CommentedBoardsQuery) ([]models.UserBoardRow, error)
	listBookmarkedFn     func(ctx context.Context, q repository.BookmarkedBoardsQuery) ([]models.UserBoardRow, error)
	likeFn               func(ctx context.Context, userID, boardID uint) error
	unlikeFn             func(ctx context.Context, userID, boardID uint) error
	bookmarkFn           func(ctx context.Context, userID, boardID uint) error
	unbookmarkFn         func(ctx context.Context, userID, boardID uint) error
}

func noopBoardRepo() *boardRepoStub {
	return &boardRepoStub{
		createFn: func(_ context.Context, b *models.Board) error {
			b.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Board, error) {
			return nil, models.NewNotFoundError("Board", id)
		},
		getByIDWithDeletedFn: func(_ context.Context, id uint) (*models.Board, error) {
			return nil, models.NewNotFoundError("Board", id)
		},
		listSummariesFn:  func(context.Context) ([]models.BoardListing, error) { return nil, nil },
		listByCategoryFn: func(context.Context, string) ([]models.Board, error) { return nil, nil },
		updateFn:         func(context.Context, uint, repository.BoardUpdate) error { return nil },
		softDeleteFn:     func(context.Context, uint) error { return nil },
		listOwnedFn: func(context.Context, repository.OwnedBoardsQuery) ([]models.UserBoardRow, error) {
			return nil, nil
		},
		listCommentedFn: func(context.Context, repository.CommentedBoardsQuery) ([]models.UserBoardRow, error) {
			return nil, nil
		},
		listBookmarkedFn: func(context.Context, repository.BookmarkedBoardsQuery) ([]models.UserBoardRow, error) {
			return nil, nil
		},
		likeFn:       func(context.Context, uint, uint) error { return nil },
		unlikeFn:     func(context.Context, uint, uint) error { return nil },
		bookmarkFn:   func(context.Context, uint, uint) error { return nil },
		unbookmarkFn: func(context.Context, uint, uint) error { return nil },
	}
}

// withBoard makes GetByID return a copy of board for its ID.
func (s *boardRepoStub) withBoard(board models.Board) *boardRepoStub {
	s.getByIDFn = func(_ context.Context, id uint) (*models.Board, error) {
		if id != board.ID {
			return nil, models.NewNotFoundError("Board", id)
		}
		b := board
		return &b, nil
	}
	return s
}

func (s *boardRepoStub) Create(ctx context.Context, board *models.Board) error {
	return s.createFn(ctx, board)
}

func (s *boardRepoStub) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	return s.getByIDFn(ctx, id)
}

func (s *boardRepoStub) GetByIDWithDeleted(ctx context.Context, id uint) (*models.Board, error) {
	return s.getByIDWithDeletedFn(ctx, id)
}

func (s *boardRepoStub) ListSummaries(ctx context.Context) ([]models.BoardListing, error) {
	return s.listSummariesFn(ctx)
}

func (s *boardRepoStub) ListByCategory(ctx context.Context, category string) ([]models.Board, error) {
	return s.listByCategoryFn(ctx, category)
}

func (s *boardRepoStub) Update(ctx context.Context, id uint, update repository.BoardUpdate) error {
	return s.updateFn(ctx, id, update)
}

func (s *boardRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

func (s *boardRepoStub) ListOwned(ctx context.Context, q repository.OwnedBoardsQuery) ([]models.UserBoardRow, error) {
	return s.listOwnedFn(ctx, q)
}

func (s *boardRepoStub) ListCommented(ctx context.Context, q repository.CommentedBoardsQuery) ([]models.UserBoardRow, error) {
	return s.listCommentedFn(ctx, q)
}

func (s *boardRepoStub) ListBookmarked(ctx context.Context, q repository.BookmarkedBoardsQuery) ([]models.UserBoardRow, error) {
	return s.listBookmarkedFn(ctx, q)
}

func (s *boardRepoStub) Like(ctx context.Context, userID, boardID uint) error {
	return s.likeFn(ctx, userID, boardID)
}

func (s *boardRepoStub) Unlike(ctx context.Context, userID, boardID uint) error {
	return s.unlikeFn(ctx, userID, boardID)
}

func (s *boardRepoStub) Bookmark(ctx context.Context, userID, boardID uint) error {
	return s.bookmarkFn(ctx, userID, boardID)
}

func (s *boardRepoStub) Unbookmark(ctx context.Context, userID, boardID uint) error {
	return s.unbookmarkFn(ctx, userID, boardID)
}

type commentRepoStub struct {
	createFn      func(ctx context.Context, comment *models.Comment) error
	getByIDFn     func(ctx context.Context, id uint) (*models.Comment, error)
	listByBoardFn func(ctx context.Context, boardID uint) ([]models.CommentView, error)
	softDeleteFn  func(ctx context.Context, id uint) error
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		},
		listByBoardFn: func(context.Context, uint) ([]models.CommentView, error) {
			return []models.CommentView{}, nil
		},
		softDeleteFn: func(context.Context, uint) error { return nil },
	}
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}

func (s *commentRepoStub) ListByBoard(ctx context.Context, boardID uint) ([]models.CommentView, error) {
	return s.listByBoardFn(ctx, boardID)
}

func (s *commentRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

type userRepoStub struct {
	getByIDFn            func(ctx context.Context, id uint) (*models.User, error)
	getByIDWithDeletedFn func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn         func(ctx context.Context, email string) (*models.User, error)
	createFn             func(ctx context.Context, user *models.User) error
	listActiveFn         func(ctx context.Context) ([]models.PublicUser, error)
	updateNicknameFn     func(ctx context.Context, id uint, nickname string) error
	updatePasswordFn     func(ctx context.Context, id uint, hash string) error
	updateProfileImageFn func(ctx context.Context, id uint, url string) error
	softDeleteFn         func(ctx context.Context, id uint) error
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewUserNotFoundError(id)
		},
		getByIDWithDeletedFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewUserNotFoundError(id)
		},
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		listActiveFn:         func(context.Context) ([]models.PublicUser, error) { return []models.PublicUser{}, nil },
		updateNicknameFn:     func(context.Context, uint, string) error { return nil },
		updatePasswordFn:     func(context.Context, uint, string) error { return nil },
		updateProfileImageFn: func(context.Context, uint, string) error { return nil },
		softDeleteFn:         func(context.Context, uint) error { return nil },
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByIDWithDeleted(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithDeletedFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) ListActive(ctx context.Context) ([]models.PublicUser, error) {
	return s.listActiveFn(ctx)
}

func (s *userRepoStub) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	return s.updateNicknameFn(ctx, id, nickname)
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}

func (s *userRepoStub) UpdateProfileImage(ctx context.Context, id uint, url string) error {
	return s.updateProfileImageFn(ctx, id, url)
}

func (s *userRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

// eventRecorder captures published board events.
type eventRecorder struct {
	events []models.BoardEvent
	err    error
}

func (r *eventRecorder) PublishBoardEvent(_ context.Context, ev models.BoardEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *eventRecorder) types() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}
