package models

import "time"

// Bookmark marks a board as saved by a user. Removing a bookmark flips
// Status; re-adding it reactivates the same row.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmarks_user_board" json:"user_id"`
	BoardID   uint      `gorm:"not null;uniqueIndex:idx_bookmarks_user_board;index" json:"board_id"`
	Status    bool      `gorm:"not null;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Bookmark) TableName() string {
	return "bookmarks"
}

// Like is a single user's like on a board. Unlike removes the row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_board" json:"user_id"`
	BoardID   uint      `gorm:"not null;uniqueIndex:idx_likes_user_board;index" json:"board_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}
