package server

import (
	"boardapi/internal/models"
	"boardapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Nickname string `json:"nickname" validate:"required,nickname"`
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required,password"`
}

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.UpdateNickname(c.UserContext(), currentUserID(c), req.Nickname)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ChangeMyPassword handles PUT /api/users/me/password
func (s *Server) ChangeMyPassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	if err := s.userService.ChangePassword(c.UserContext(), currentUserID(c), req.Password); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadMyProfileImage handles PUT /api/users/me/profile-image (multipart "image").
func (s *Server) UploadMyProfileImage(c *fiber.Ctx) error {
	userID := currentUserID(c)
	up, err := readUpload(c, "image", s.imageService.MaxUploadSizeBytes())
	if err != nil {
		return respondError(c, err)
	}

	url, err := s.imageService.UploadProfileImage(c.UserContext(), userID, up.filename, up.contentType, up.content)
	if err != nil {
		return respondError(c, err)
	}
	user, err := s.userService.SetProfileImage(c.UserContext(), userID, url)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me. The calling token is
// revoked along with the account.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.UserContext(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	s.revokeCurrentToken(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserBoards handles GET /api/users/:id/boards/:relation where relation
// is posts, comments or bookmarks.
func (s *Server) GetUserBoards(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	relation, err := models.ParseBoardRelation(c.Params("relation"))
	if err != nil {
		return respondError(c, err)
	}

	boards, err := s.listing.ListForUser(c.UserContext(), userID, relation)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(boards)
}
