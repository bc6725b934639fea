// Package models contains data structures for the application's domain models.
package models

import "time"

// Soft-delete markers shared by every table with a status column.
// Rows are never physically removed; queries filter on status explicitly.
const (
	StatusActive   = true
	StatusInactive = false
)

// User is a registered member of the board.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Email is cleared (NULL) when the account is deleted.
	Email        *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Password     string    `gorm:"not null" json:"-"`
	Nickname     string    `gorm:"size:50;not null" json:"nickname"`
	ProfileImage string    `gorm:"size:1024" json:"profile_image"`
	Status       bool      `gorm:"not null;index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// EmailAddress returns the email or "" once it has been cleared.
func (u *User) EmailAddress() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}

// PublicUser is the projection returned by the active user listing.
type PublicUser struct {
	ID           uint   `json:"id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image"`
}
