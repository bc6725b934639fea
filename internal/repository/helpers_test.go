package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"boardapi/internal/database"
	"boardapi/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every new :memory: connection is a fresh database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    strPtr(fmt.Sprintf("%s@example.com", nickname)),
		Password: "hash",
		Nickname: nickname,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createBoard(t *testing.T, db *gorm.DB, userID uint, category, title string, minute int) *models.Board {
	t.Helper()
	board := &models.Board{
		UserID:    userID,
		Category:  category,
		Title:     title,
		Content:   "content of " + title,
		Status:    models.StatusActive,
		CreatedAt: baseTime.Add(time.Duration(minute) * time.Minute),
	}
	require.NoError(t, db.Create(board).Error)
	return board
}

func addImage(t *testing.T, db *gorm.DB, boardID uint, active bool) *models.Image {
	t.Helper()
	img := &models.Image{
		BoardID:      boardID,
		OriginalName: "photo.png",
		ObjectKey:    fmt.Sprintf("boards/%d/%d.webp", boardID, time.Now().UnixNano()),
		URL:          "http://cdn.local/photo.webp",
		MimeType:     "image/webp",
		Status:       active,
	}
	require.NoError(t, db.Create(img).Error)
	return img
}

func addComment(t *testing.T, db *gorm.DB, boardID, userID uint, active bool) *models.Comment {
	t.Helper()
	c := &models.Comment{BoardID: boardID, UserID: userID, Content: "nice", Status: active}
	require.NoError(t, db.Create(c).Error)
	return c
}

func addBookmark(t *testing.T, db *gorm.DB, boardID, userID uint, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.Bookmark{BoardID: boardID, UserID: userID, Status: active}).Error)
}

func boardIDs(rows []models.UserBoardRow) []uint {
	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.BoardID
	}
	return ids
}
