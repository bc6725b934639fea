package models

import (
	"strings"
	"time"
)

// BoardRelation selects which of a user's boards an aggregation returns.
type BoardRelation string

const (
	// RelationOwnPosts selects boards the user wrote.
	RelationOwnPosts BoardRelation = "posts"
	// RelationCommentedPosts selects boards the user commented on.
	RelationCommentedPosts BoardRelation = "comments"
	// RelationBookmarkedPosts selects boards the user bookmarked.
	RelationBookmarkedPosts BoardRelation = "bookmarks"
)

// ParseBoardRelation maps a route segment to a BoardRelation.
func ParseBoardRelation(s string) (BoardRelation, error) {
	switch BoardRelation(strings.ToLower(strings.TrimSpace(s))) {
	case RelationOwnPosts:
		return RelationOwnPosts, nil
	case RelationCommentedPosts:
		return RelationCommentedPosts, nil
	case RelationBookmarkedPosts:
		return RelationBookmarkedPosts, nil
	default:
		return "", NewValidationError("relation must be one of posts, comments, bookmarks")
	}
}

// BoardListing is a raw listing row: an active board with its counters,
// before the creation time is rendered. It is cached, never persisted.
type BoardListing struct {
	BoardID       uint      `json:"board_id"`
	UserID        uint      `json:"user_id"`
	Category      string    `json:"category"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	ImageCount    int64     `json:"image_count"`
	BookmarkCount int64     `json:"bookmark_count"`
	LikeCount     int64     `json:"like_count"`
}

// BoardSummary is the listing view model. CreatedAt is a relative label
// such as "3 hours ago".
type BoardSummary struct {
	BoardID       uint   `json:"board_id"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	ImageCount    int64  `json:"image_count"`
	BookmarkCount int64  `json:"bookmark_count"`
	LikeCount     int64  `json:"like_count"`
}

// UserBoardRow is one flattened aggregation row for a user relation.
type UserBoardRow struct {
	BoardID    uint      `json:"board_id"`
	Nickname   string    `json:"nickname"`
	Category   string    `json:"category"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ImageCount int64     `json:"image_count"`
}

// UserBoardSummary is UserBoardRow with CreatedAt rendered as a label.
type UserBoardSummary struct {
	BoardID    uint   `json:"board_id"`
	Nickname   string `json:"nickname"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	ImageCount int64  `json:"image_count"`
}
