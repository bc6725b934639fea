package models

import "time"

// Board event types published on the live feed.
const (
	EventBoardCreated = "board_created"
	EventBoardUpdated = "board_updated"
	EventBoardDeleted = "board_deleted"
)

// BoardEvent is the payload fanned out to live feed subscribers.
type BoardEvent struct {
	Type       string    `json:"type"`
	BoardID    uint      `json:"board_id"`
	UserID     uint      `json:"user_id"`
	Category   string    `json:"category,omitempty"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
