package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"boardapi/internal/models"
	"boardapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardImages(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.signup(t, "alice")
	bob, _ := env.signup(t, "bob")
	id := env.createBoard(t, alice, "free", "with a picture", "see below")

	resp, body := env.upload(t, http.MethodPost, boardPath(id, "/images"), alice, testutil.TinyPNG(t, 8, 8))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	img := decode[models.Image](t, body)
	assert.True(t, strings.HasPrefix(img.URL, "memory://boards/"), img.URL)
	assert.Equal(t, "pic.png", img.OriginalName)
	assert.Equal(t, 8, img.Width)
	assert.Len(t, env.store.Keys("boards/"), 1)

	resp, body = env.do(t, http.MethodGet, boardPath(id, ""), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[models.Board](t, body)
	require.Len(t, board.Images, 1)
	assert.Equal(t, img.ID, board.Images[0].ID)

	resp, body = env.do(t, http.MethodGet, "/api/boards", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summaries := decode[[]models.BoardSummary](t, body)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 1, summaries[0].ImageCount)

	resp, _ = env.upload(t, http.MethodPost, boardPath(id, "/images"), bob, testutil.TinyPNG(t, 8, 8))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	imagePath := boardPath(id, "/images/") + uintString(img.ID)
	resp, _ = env.do(t, http.MethodDelete, imagePath, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, imagePath, alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, imagePath, alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/boards", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decode[[]models.BoardSummary](t, body)[0].ImageCount)
}

func TestBoardImages_Rejects(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.signup(t, "alice")
	id := env.createBoard(t, alice, "free", "title", "content")

	// No multipart file at all.
	req := httptest.NewRequest(http.MethodPost, boardPath(id, "/images"), nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	resp, body := env.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", decode[models.ErrorResponse](t, body).Error)

	resp, _ = env.upload(t, http.MethodPost, boardPath(id, "/images"), alice, []byte("definitely not a png"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.upload(t, http.MethodPost, boardPath(999, "/images"), alice, testutil.TinyPNG(t, 8, 8))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Empty(t, env.store.Keys(""))
}

func TestUploadMyProfileImage(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.signup(t, "alice")

	resp, body := env.upload(t, http.MethodPut, "/api/users/me/profile-image", token, testutil.TinyPNG(t, 16, 16))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	user := decode[models.User](t, body)
	assert.Equal(t, id, user.ID)
	assert.True(t, strings.HasPrefix(user.ProfileImage, "memory://profiles/"), user.ProfileImage)
	assert.Len(t, env.store.Keys("profiles/"), 1)
}
