package models

import "time"

// Board is a post on the community board.
type Board struct {
	ID       uint   `gorm:"primaryKey" json:"board_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Category string `gorm:"size:50;not null;index" json:"category"`
	Title    string `gorm:"size:300;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Status   bool   `gorm:"not null;index" json:"-"`
	// CreatedAt is set once on insert and never updated.
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Images is attached by the repository with an explicit query; it is
	// not a GORM association.
	Images []Image `gorm:"-" json:"images"`
}

// TableName specifies the table name for GORM
func (Board) TableName() string {
	return "boards"
}

// Image is a picture attached to exactly one board.
type Image struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BoardID      uint      `gorm:"not null;index" json:"board_id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	ObjectKey    string    `gorm:"size:512;not null" json:"-"`
	URL          string    `gorm:"size:1024;not null" json:"url"`
	MimeType     string    `gorm:"size:64" json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Status       bool      `gorm:"not null;index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Image) TableName() string {
	return "images"
}
