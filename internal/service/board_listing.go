package service

import (
	"context"
	"strings"
	"time"

	"boardapi/internal/models"
	"boardapi/internal/observability"
	"boardapi/internal/reltime"
	"boardapi/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// BoardListingService builds the read-side board views. Creation times are
// rendered as relative labels against the service clock on every call;
// labels are never stored.
type BoardListingService struct {
	boards     repository.BoardRepository
	aggregator *BoardAggregator
	labels     *reltime.Formatter
	now        func() time.Time
}

func NewBoardListingService(
	boards repository.BoardRepository,
	aggregator *BoardAggregator,
	labels *reltime.Formatter,
) *BoardListingService {
	if labels == nil {
		labels = reltime.New(reltime.English)
	}
	return &BoardListingService{
		boards:     boards,
		aggregator: aggregator,
		labels:     labels,
		now:        time.Now,
	}
}

// ListAll returns every active board, newest first, with its counters.
func (s *BoardListingService) ListAll(ctx context.Context) ([]models.BoardSummary, error) {
	span, ctx := observability.NewSpan(ctx, "BoardListingService.ListAll")
	defer span.End()

	rows, err := s.boards.ListSummaries(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	now := s.now()
	out := make([]models.BoardSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.BoardSummary{
			BoardID:       r.BoardID,
			Category:      r.Category,
			Title:         r.Title,
			Content:       r.Content,
			CreatedAt:     s.labels.Format(now, r.CreatedAt),
			ImageCount:    r.ImageCount,
			BookmarkCount: r.BookmarkCount,
			LikeCount:     r.LikeCount,
		})
	}
	span.AddAttributes(attribute.Int("board.count", len(out)))
	return out, nil
}

// Search narrows ListAll to boards whose title or content contains keyword,
// ignoring case.
func (s *BoardListingService) Search(ctx context.Context, keyword string) ([]models.BoardSummary, error) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil, models.NewValidationError("Search keyword is required")
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]models.BoardSummary, 0)
	for _, b := range all {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Content), needle) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

// ListByCategory returns the active boards whose category equals category
// exactly, each with its active images.
func (s *BoardListingService) ListByCategory(ctx context.Context, category string) ([]models.Board, error) {
	if strings.TrimSpace(category) == "" {
		return nil, models.NewValidationError("Category is required")
	}
	return s.boards.ListByCategory(ctx, category)
}

// ListForUser is the BoardAggregator output with labelled creation times.
func (s *BoardListingService) ListForUser(ctx context.Context, userID uint, relation models.BoardRelation) ([]models.UserBoardSummary, error) {
	rows, err := s.aggregator.Aggregate(ctx, userID, relation)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]models.UserBoardSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.UserBoardSummary{
			BoardID:    r.BoardID,
			Nickname:   r.Nickname,
			Category:   r.Category,
			Title:      r.Title,
			Content:    r.Content,
			CreatedAt:  s.labels.Format(now, r.CreatedAt),
			ImageCount: r.ImageCount,
		})
	}
	return out, nil
}
