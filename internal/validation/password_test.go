package validation

import (
	"strings"
	"testing"

	"boardapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret123", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Exactly Max Length", strings.Repeat("a", 71) + "1", false},
		{"Too Short", "abc123", true},
		{"Too Long", strings.Repeat("a", 72) + "1", true},
		{"No Digit", "onlyletters", true},
		{"No Letter", "1234567890", true},
		{"Unicode Letters", "비밀번호비밀번호1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNickname(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		nickname string
		wantErr  bool
	}{
		{"Valid", "board_fan7", false},
		{"Hangul", "게시판", false},
		{"Too Short", "a", true},
		{"Too Long", strings.Repeat("n", 21), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNickname(tt.nickname)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type signupPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	Nickname string `json:"nickname" validate:"required,nickname"`
	Title    string `json:"title" validate:"notblank"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	valid := signupPayload{Email: "a@b.co", Password: "secret123", Nickname: "alice", Title: "x"}
	require.NoError(t, Struct(valid))

	tests := []struct {
		name    string
		mutate  func(*signupPayload)
		message string
	}{
		{"bad email", func(p *signupPayload) { p.Email = "nope" }, "email must be a valid email address"},
		{"missing password", func(p *signupPayload) { p.Password = "" }, "password is required"},
		{"weak password", func(p *signupPayload) { p.Password = "short" }, "password must be at least 8 characters long"},
		{"bad nickname", func(p *signupPayload) { p.Nickname = "a" }, "nickname must be at least 2 characters long"},
		{"blank title", func(p *signupPayload) { p.Title = "   " }, "title is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := Struct(p)
			require.Error(t, err)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
