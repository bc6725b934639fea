package service

import (
	"context"

	"boardapi/internal/models"
	"boardapi/internal/observability"
	"boardapi/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// BoardAggregator collects the boards a user is related to: the ones they
// wrote, commented on, or bookmarked. Rows carry the raw creation time.
type BoardAggregator struct {
	boards repository.BoardRepository
}

func NewBoardAggregator(boards repository.BoardRepository) *BoardAggregator {
	return &BoardAggregator{boards: boards}
}

// Aggregate returns one row per active board related to userID, newest
// first. A user with no related boards gets an empty slice.
func (a *BoardAggregator) Aggregate(ctx context.Context, userID uint, relation models.BoardRelation) ([]models.UserBoardRow, error) {
	span, ctx := observability.NewSpan(ctx, "BoardAggregator.Aggregate",
		attribute.Int64("user.id", int64(userID)),
		attribute.String("board.relation", string(relation)),
	)
	defer span.End()

	var (
		rows []models.UserBoardRow
		err  error
	)
	switch relation {
	case models.RelationOwnPosts:
		rows, err = a.boards.ListOwned(ctx, repository.OwnedBoardsQuery{UserID: userID})
	case models.RelationCommentedPosts:
		rows, err = a.boards.ListCommented(ctx, repository.CommentedBoardsQuery{CommenterID: userID})
	case models.RelationBookmarkedPosts:
		rows, err = a.boards.ListBookmarked(ctx, repository.BookmarkedBoardsQuery{UserID: userID})
	default:
		err = models.NewValidationError("Unknown board relation: " + string(relation))
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if rows == nil {
		rows = make([]models.UserBoardRow, 0)
	}
	span.AddAttributes(attribute.Int("board.count", len(rows)))
	return rows, nil
}
