package server

import (
	"context"
	"net/url"

	"boardapi/internal/models"
	"boardapi/internal/service"
	"boardapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type createBoardRequest struct {
	Category string `json:"category" validate:"notblank,max=50"`
	Title    string `json:"title" validate:"notblank,max=300"`
	Content  string `json:"content" validate:"notblank,max=50000"`
}

type updateBoardRequest struct {
	Category       *string `json:"category" validate:"omitempty,notblank,max=50"`
	Title          *string `json:"title" validate:"omitempty,notblank,max=300"`
	Content        *string `json:"content" validate:"omitempty,notblank,max=50000"`
	RemoveImageIDs []uint  `json:"remove_image_ids"`
}

// ListBoards handles GET /api/boards
func (s *Server) ListBoards(c *fiber.Ctx) error {
	boards, err := s.listing.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(boards)
}

// SearchBoards handles GET /api/boards/search?keyword=
func (s *Server) SearchBoards(c *fiber.Ctx) error {
	boards, err := s.listing.Search(c.UserContext(), c.Query("keyword"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(boards)
}

// ListBoardsByCategory handles GET /api/boards/category/:category
func (s *Server) ListBoardsByCategory(c *fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid category"))
	}
	boards, err := s.listing.ListByCategory(c.UserContext(), category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(boards)
}

// GetBoard handles GET /api/boards/:id
func (s *Server) GetBoard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	board, err := s.boardService.GetBoard(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(board)
}

// CreateBoard handles POST /api/boards
func (s *Server) CreateBoard(c *fiber.Ctx) error {
	var req createBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	board, err := s.boardService.CreateBoard(c.UserContext(), service.CreateBoardInput{
		UserID:   currentUserID(c),
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(board)
}

// UpdateBoard handles PUT /api/boards/:id
func (s *Server) UpdateBoard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return respondError(c, err)
	}

	board, err := s.boardService.UpdateBoard(c.UserContext(), service.UpdateBoardInput{
		UserID:         currentUserID(c),
		BoardID:        id,
		Category:       req.Category,
		Title:          req.Title,
		Content:        req.Content,
		RemoveImageIDs: req.RemoveImageIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(board)
}

// DeleteBoard handles DELETE /api/boards/:id
func (s *Server) DeleteBoard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.boardService.DeleteBoard(c.UserContext(), service.DeleteBoardInput{
		UserID:  currentUserID(c),
		BoardID: id,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// react runs a (userID, boardID) reaction for the board in :id.
func (s *Server) react(c *fiber.Ctx, call func(ctx context.Context, userID, boardID uint) error) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := call(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeBoard handles POST /api/boards/:id/like
func (s *Server) LikeBoard(c *fiber.Ctx) error {
	return s.react(c, s.boardService.Like)
}

// UnlikeBoard handles DELETE /api/boards/:id/like
func (s *Server) UnlikeBoard(c *fiber.Ctx) error {
	return s.react(c, s.boardService.Unlike)
}

// BookmarkBoard handles POST /api/boards/:id/bookmark
func (s *Server) BookmarkBoard(c *fiber.Ctx) error {
	return s.react(c, s.boardService.Bookmark)
}

// UnbookmarkBoard handles DELETE /api/boards/:id/bookmark
func (s *Server) UnbookmarkBoard(c *fiber.Ctx) error {
	return s.react(c, s.boardService.Unbookmark)
}
