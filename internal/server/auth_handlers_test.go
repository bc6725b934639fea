package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boardapi/internal/config"
	"boardapi/internal/models"
	"boardapi/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a testify mock of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByIDWithDeleted(ctx context.Context, id uint) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) ListActive(ctx context.Context) ([]models.PublicUser, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.PublicUser)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	return m.Called(ctx, id, nickname).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, id uint, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newSignupApp(repo *MockUserRepository) *fiber.App {
	s := &Server{
		config:      &config.Config{JWTSecret: testSecret},
		userService: service.NewUserService(repo),
	}
	app := fiber.New()
	app.Post("/signup", s.Signup)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSignup_Mocked(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*models.User)
				u.ID = 42
			}).
			Return(nil)

		resp := postJSON(t, newSignupApp(repo), "/signup",
			`{"email":"Test@Example.com","password":"hunter22","nickname":"tester"}`)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := new(MockUserRepository)
		email := "test@example.com"
		repo.On("GetByEmail", mock.Anything, email).Return(&models.User{ID: 1, Email: &email}, nil)

		resp := postJSON(t, newSignupApp(repo), "/signup",
			`{"email":"test@example.com","password":"hunter22","nickname":"tester"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		repo := new(MockUserRepository)
		resp := postJSON(t, newSignupApp(repo), "/signup", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		repo.AssertExpectations(t)
	})

	t.Run("weak password", func(t *testing.T) {
		repo := new(MockUserRepository)
		resp := postJSON(t, newSignupApp(repo), "/signup",
			`{"email":"test@example.com","password":"short","nickname":"tester"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSigninAndSignout(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.signup(t, "alice")

	resp, _ := env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "ALICE@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	auth := decode[authResponse](t, body)
	require.NotEmpty(t, auth.Token)
	assert.Equal(t, "alice", auth.User.Nickname)

	resp, body = env.do(t, http.MethodGet, "/api/users/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	me := decode[models.User](t, body)
	assert.Equal(t, "alice@example.com", me.EmailAddress())

	resp, _ = env.do(t, http.MethodPost, "/api/auth/signout", auth.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	revoked := false
	for _, k := range env.redis.Keys() {
		if strings.HasPrefix(k, "blacklist:") {
			revoked = true
		}
	}
	assert.True(t, revoked, "signout should store the revoked jti")

	resp, body = env.do(t, http.MethodGet, "/api/users/me", auth.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "revoked")
}

func TestDeleteMyAccount(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "carol")

	resp, _ := env.do(t, http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The calling token is revoked with the account.
	resp, _ = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "carol@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeletedAccount_OtherTokensRejected(t *testing.T) {
	env := newTestEnv(t)
	first, _ := env.signup(t, "ghost")

	resp, body := env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "ghost@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	second := decode[struct {
		Token string `json:"token"`
	}](t, body).Token
	require.NotEmpty(t, second)
	require.NotEqual(t, first, second)

	resp, _ = env.do(t, http.MethodDelete, "/api/users/me", first, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/boards", second, map[string]string{
		"category": "free", "title": "after delete", "content": "still here?",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "no longer exists")

	resp, body = env.do(t, http.MethodGet, "/api/boards", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "after delete")
}

func TestProfileUpdates(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.signup(t, "dave")

	resp, body := env.do(t, http.MethodPut, "/api/users/me", token, map[string]string{"nickname": "david"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "david", decode[models.User](t, body).Nickname)

	resp, _ = env.do(t, http.MethodPut, "/api/users/me", token, map[string]string{"nickname": "_bad"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/users/me/password", token, map[string]string{"password": "newpass99"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "dave@example.com", "password": "newpass99",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decode[[]models.PublicUser](t, body)
	require.Len(t, users, 1)
	assert.Equal(t, id, users[0].ID)
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Status: models.StatusActive}, nil)
	repo.On("GetByID", mock.Anything, uint(8)).Return(nil, models.NewUserNotFoundError(8))
	repo.On("GetByID", mock.Anything, uint(9)).Return(nil, models.NewInternalError(errors.New("db down")))
	s := &Server{config: &config.Config{JWTSecret: testSecret}, userRepo: repo}
	app := fiber.New()
	app.Get("/private", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": currentUserID(c)})
	})

	now := time.Now()
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "7",
			"iss": tokenIssuer,
			"aud": tokenAudience,
			"exp": now.Add(time.Hour).Unix(),
			"iat": now.Unix(),
			"jti": "jti-1",
		}
	}
	with := func(key string, value any) jwt.MapClaims {
		c := base()
		if value == nil {
			delete(c, key)
		} else {
			c[key] = value
		}
		return c
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, base()), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + signToken(t, jwt.SigningMethodHS256, testSecret, base()), http.StatusUnauthorized},
		{"bad issuer", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("iss", "someone-else")), http.StatusUnauthorized},
		{"bad audience", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("aud", "other")), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("exp", now.Add(-time.Minute).Unix())), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("exp", nil)), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, "other-secret", base()), http.StatusUnauthorized},
		{"wrong algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS384, testSecret, base()), http.StatusUnauthorized},
		{"zero subject", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("sub", "0")), http.StatusUnauthorized},
		{"deleted user", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("sub", "8")), http.StatusUnauthorized},
		{"user lookup fails", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("sub", "9")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGenerateToken_RoundTrips(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: testSecret}}
	token, err := s.generateToken(9, "erin")
	require.NoError(t, err)

	claims, err := s.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt, time.Minute)

	_, err = (&Server{config: &config.Config{}}).generateToken(9, "erin")
	assert.Error(t, err)
}
