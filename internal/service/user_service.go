package service

import (
	"context"
	"errors"
	"strings"

	"boardapi/internal/models"
	"boardapi/internal/repository"
	"boardapi/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// errInvalidCredentials is deliberately the same for unknown emails and
// wrong passwords.
var errInvalidCredentials = models.NewUnauthorizedError("Invalid email or password")

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type SignupInput struct {
	Email    string
	Password string
	Nickname string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// Signup registers an account. The email is normalized to lower case.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, models.NewValidationError("Email is required")
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    &email,
		Password: string(hash),
		Nickname: in.Nickname,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the active user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	return s.userRepo.ListActive(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateNickname(ctx context.Context, userID uint, nickname string) (*models.User, error) {
	if err := validation.ValidateNickname(nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.userRepo.UpdateNickname(ctx, userID, nickname); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *UserService) SetProfileImage(ctx context.Context, userID uint, url string) (*models.User, error) {
	if err := s.userRepo.UpdateProfileImage(ctx, userID, url); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount soft-deletes the user. A missing or already deleted user
// yields USER_NOT_FOUND.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	err := s.userRepo.SoftDelete(ctx, userID)
	var appErr *models.AppError
	if err != nil && !errors.As(err, &appErr) {
		return models.NewInternalError(err)
	}
	return err
}
