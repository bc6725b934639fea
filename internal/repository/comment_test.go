package repository

import (
	"context"
	"testing"

	"boardapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByBoard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	board := createBoard(t, db, alice.ID, "free", "hello", 0)
	other := createBoard(t, db, alice.ID, "free", "other", 1)

	first := &models.Comment{BoardID: board.ID, UserID: bob.ID, Content: "first"}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Comment{BoardID: board.ID, UserID: alice.ID, Content: "second"}
	require.NoError(t, repo.Create(ctx, second))
	addComment(t, db, board.ID, bob.ID, false)
	addComment(t, db, other.ID, bob.ID, true)

	comments, err := repo.ListByBoard(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, "bob", comments[0].Nickname)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "alice", comments[1].Nickname)

	empty, err := repo.ListByBoard(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCommentRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	board := createBoard(t, db, alice.ID, "free", "hello", 0)
	c := addComment(t, db, board.ID, alice.ID, true)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "nice", got.Content)

	require.NoError(t, repo.SoftDelete(ctx, c.ID))

	_, err = repo.GetByID(ctx, c.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.SoftDelete(ctx, c.ID)))
}

func TestImageRepository_DeactivateOnlyTouchesOwnBoard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	mine := createBoard(t, db, alice.ID, "free", "mine", 0)
	theirs := createBoard(t, db, alice.ID, "free", "theirs", 1)

	a := addImage(t, db, mine.ID, true)
	b := addImage(t, db, mine.ID, true)
	foreign := addImage(t, db, theirs.ID, true)

	n, err := repo.Deactivate(ctx, mine.ID, []uint{a.ID, foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, a.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	_, err = repo.GetByID(ctx, foreign.ID)
	assert.NoError(t, err)

	images, err := repo.ListActiveByBoards(ctx, []uint{mine.ID, theirs.ID})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, b.ID, images[0].ID)
	assert.Equal(t, foreign.ID, images[1].ID)

	n, err = repo.Deactivate(ctx, mine.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImageRepository_CreateMarksActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	board := createBoard(t, db, alice.ID, "free", "mine", 0)

	img := &models.Image{BoardID: board.ID, OriginalName: "a.png", ObjectKey: "k", URL: "u", MimeType: "image/webp"}
	require.NoError(t, repo.Create(ctx, img))
	assert.True(t, img.Status)

	got, err := repo.GetByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.png", got.OriginalName)
}
