package server

import (
	"boardapi/internal/models"
	"boardapi/internal/service"
	"boardapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content string `json:"content" validate:"notblank,max=10000"`
}

// GetComments handles GET /api/boards/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), boardID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/boards/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		BoardID: boardID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/boards/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		BoardID:   boardID,
		CommentID: commentID,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
