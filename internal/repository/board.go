package repository

import (
	"context"
	"time"

	"boardapi/internal/cache"
	"boardapi/internal/models"
	"boardapi/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoardUpdate carries the editable board fields; nil fields are left alone.
type BoardUpdate struct {
	Category *string
	Title    *string
	Content  *string
}

func (u BoardUpdate) fields() map[string]any {
	fields := make(map[string]any, 3)
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Content != nil {
		fields["content"] = *u.Content
	}
	return fields
}

// BoardRepository defines persistence operations for boards and the
// per-user reactions on them.
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	GetByID(ctx context.Context, id uint) (*models.Board, error)
	GetByIDWithDeleted(ctx context.Context, id uint) (*models.Board, error)
	ListSummaries(ctx context.Context) ([]models.BoardListing, error)
	ListByCategory(ctx context.Context, category string) ([]models.Board, error)
	Update(ctx context.Context, id uint, update BoardUpdate) error
	SoftDelete(ctx context.Context, id uint) error

	ListOwned(ctx context.Context, q OwnedBoardsQuery) ([]models.UserBoardRow, error)
	ListCommented(ctx context.Context, q CommentedBoardsQuery) ([]models.UserBoardRow, error)
	ListBookmarked(ctx context.Context, q BookmarkedBoardsQuery) ([]models.UserBoardRow, error)

	Like(ctx context.Context, userID, boardID uint) error
	Unlike(ctx context.Context, userID, boardID uint) error
	Bookmark(ctx context.Context, userID, boardID uint) error
	Unbookmark(ctx context.Context, userID, boardID uint) error
}

type boardRepository struct {
	db         *gorm.DB
	images     ImageRepository
	listingTTL time.Duration
}

// BoardRepositoryOption customizes NewBoardRepository.
type BoardRepositoryOption func(*boardRepository)

// WithListingCacheTTL sets how long ListSummaries results stay in Redis.
// Zero disables the listing cache.
func WithListingCacheTTL(ttl time.Duration) BoardRepositoryOption {
	return func(r *boardRepository) {
		r.listingTTL = ttl
	}
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *gorm.DB, opts ...BoardRepositoryOption) BoardRepository {
	r := &boardRepository{
		db:         db,
		images:     NewImageRepository(db),
		listingTTL: cache.DefaultBoardSummariesTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	board.Status = models.StatusActive
	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		First(&board).Error
	if err != nil {
		return nil, notFoundOr(err, models.NewNotFoundError("Board", id))
	}

	boards := []models.Board{board}
	if err := r.attachImages(ctx, boards); err != nil {
		return nil, err
	}
	return &boards[0], nil
}

// GetByIDWithDeleted ignores status; images are not attached.
func (r *boardRepository) GetByIDWithDeleted(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, notFoundOr(err, models.NewNotFoundError("Board", id))
	}
	return &board, nil
}

func (r *boardRepository) ListSummaries(ctx context.Context) ([]models.BoardListing, error) {
	var rows []models.BoardListing
	err := cache.Aside(ctx, cache.BoardSummariesKey, &rows, r.listingTTL, func() error {
		defer observability.TrackQuery("list_summaries", "boards")()
		qctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListSummaries", "boards")
		defer span.End()
		rows = make([]models.BoardListing, 0)
		return r.db.WithContext(qctx).
			Model(&models.Board{}).
			Select(listingSelect, models.StatusActive, models.StatusActive).
			Where("boards.status = ?", models.StatusActive).
			Order(newestFirst).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if rows == nil {
		rows = make([]models.BoardListing, 0)
	}
	return rows, nil
}

func (r *boardRepository) ListByCategory(ctx context.Context, category string) ([]models.Board, error) {
	boards := make([]models.Board, 0)
	err := r.db.WithContext(ctx).
		Where("category = ? AND status = ?", category, models.StatusActive).
		Order("created_at DESC, id DESC").
		Find(&boards).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachImages(ctx, boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// attachImages fills Images for boards with one IN query.
func (r *boardRepository) attachImages(ctx context.Context, boards []models.Board) error {
	if len(boards) == 0 {
		return nil
	}
	ids := make([]uint, len(boards))
	for i := range boards {
		ids[i] = boards[i].ID
		boards[i].Images = make([]models.Image, 0)
	}

	images, err := r.images.ListActiveByBoards(ctx, ids)
	if err != nil {
		return err
	}

	index := make(map[uint]int, len(boards))
	for i := range boards {
		index[boards[i].ID] = i
	}
	for _, img := range images {
		if i, ok := index[img.BoardID]; ok {
			boards[i].Images = append(boards[i].Images, img)
		}
	}
	return nil
}

func (r *boardRepository) Update(ctx context.Context, id uint, update BoardUpdate) error {
	fields := update.fields()
	if len(fields) == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}
	return r.updateActive(ctx, id, fields)
}

func (r *boardRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.updateActive(ctx, id, map[string]any{"status": models.StatusInactive})
}

func (r *boardRepository) updateActive(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Board{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Board", id)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}

func (r *boardRepository) ListOwned(ctx context.Context, q OwnedBoardsQuery) ([]models.UserBoardRow, error) {
	return r.userBoards(ctx, "owned", q.scope)
}

func (r *boardRepository) ListCommented(ctx context.Context, q CommentedBoardsQuery) ([]models.UserBoardRow, error) {
	return r.userBoards(ctx, "commented", q.scope)
}

func (r *boardRepository) ListBookmarked(ctx context.Context, q BookmarkedBoardsQuery) ([]models.UserBoardRow, error) {
	return r.userBoards(ctx, "bookmarked", q.scope)
}

// userBoards runs the shared per-user aggregation: active boards narrowed by
// scope, joined to the owner and to active images only.
func (r *boardRepository) userBoards(ctx context.Context, relation string, scope func(*gorm.DB) *gorm.DB) ([]models.UserBoardRow, error) {
	defer observability.TrackQuery("list_"+relation, "boards")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListUserBoards", "boards")
	span.SetAttributes(attribute.String("board.relation", relation))
	defer span.End()

	rows := make([]models.UserBoardRow, 0)
	err := r.db.WithContext(ctx).
		Table("boards").
		Select(userBoardSelect).
		Joins("JOIN users ON users.id = boards.user_id").
		Joins("LEFT JOIN images ON images.board_id = boards.id AND images.status = ?", models.StatusActive).
		Where("boards.status = ?", models.StatusActive).
		Scopes(scope).
		Group(userBoardColumns).
		Order(newestFirst).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// Like is idempotent: liking twice leaves one row.
func (r *boardRepository) Like(ctx context.Context, userID, boardID uint) error {
	like := models.Like{UserID: userID, BoardID: boardID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "board_id"}},
			DoNothing: true,
		}).
		Create(&like).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}

func (r *boardRepository) Unlike(ctx context.Context, userID, boardID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND board_id = ?", userID, boardID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}

// Bookmark creates the bookmark or reactivates a previously removed one.
func (r *boardRepository) Bookmark(ctx context.Context, userID, boardID uint) error {
	bookmark := models.Bookmark{UserID: userID, BoardID: boardID, Status: models.StatusActive}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "board_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&bookmark).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}

func (r *boardRepository) Unbookmark(ctx context.Context, userID, boardID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("user_id = ? AND board_id = ? AND status = ?", userID, boardID, models.StatusActive).
		Update("status", models.StatusInactive).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoardListings(ctx)
	return nil
}
