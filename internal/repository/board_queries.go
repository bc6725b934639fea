package repository

import (
	"boardapi/internal/models"

	"gorm.io/gorm"
)

// OwnedBoardsQuery selects the active boards written by UserID.
type OwnedBoardsQuery struct {
	UserID uint
}

func (q OwnedBoardsQuery) scope(db *gorm.DB) *gorm.DB {
	return db.Where("boards.user_id = ?", q.UserID)
}

// CommentedBoardsQuery selects the active boards CommenterID left at least
// one active comment on. Each board appears once however many comments match.
type CommentedBoardsQuery struct {
	CommenterID uint
}

func (q CommentedBoardsQuery) scope(db *gorm.DB) *gorm.DB {
	return db.Where(
		"EXISTS (SELECT 1 FROM comments WHERE comments.board_id = boards.id AND comments.user_id = ? AND comments.status = ?)",
		q.CommenterID, models.StatusActive,
	)
}

// BookmarkedBoardsQuery selects the active boards UserID has an active bookmark on.
type BookmarkedBoardsQuery struct {
	UserID uint
}

func (q BookmarkedBoardsQuery) scope(db *gorm.DB) *gorm.DB {
	return db.Where(
		"EXISTS (SELECT 1 FROM bookmarks WHERE bookmarks.board_id = boards.id AND bookmarks.user_id = ? AND bookmarks.status = ?)",
		q.UserID, models.StatusActive,
	)
}

// userBoardColumns is both the projection and the GROUP BY list of the
// per-user aggregation, so every board collapses to one row.
const userBoardColumns = "boards.id, users.nickname, boards.category, boards.title, boards.content, boards.created_at"

const userBoardSelect = "boards.id AS board_id, users.nickname AS nickname, boards.category AS category, " +
	"boards.title AS title, boards.content AS content, boards.created_at AS created_at, " +
	"COUNT(images.id) AS image_count"

// listingSelect projects a BoardListing with its counters as correlated
// subqueries, which keeps the counts independent of each other.
const listingSelect = "boards.id AS board_id, boards.user_id AS user_id, boards.category AS category, " +
	"boards.title AS title, boards.content AS content, boards.created_at AS created_at, " +
	"(SELECT COUNT(*) FROM images WHERE images.board_id = boards.id AND images.status = ?) AS image_count, " +
	"(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.board_id = boards.id AND bookmarks.status = ?) AS bookmark_count, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.board_id = boards.id) AS like_count"

const newestFirst = "boards.created_at DESC, boards.id DESC"
