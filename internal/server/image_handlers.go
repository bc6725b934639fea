package server

import (
	"boardapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadBoardImage handles POST /api/boards/:id/images (multipart "image").
func (s *Server) UploadBoardImage(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	up, err := readUpload(c, "image", s.imageService.MaxUploadSizeBytes())
	if err != nil {
		return respondError(c, err)
	}

	img, err := s.imageService.AttachToBoard(c.UserContext(), service.UploadImageInput{
		UserID:      currentUserID(c),
		BoardID:     boardID,
		Filename:    up.filename,
		ContentType: up.contentType,
		Content:     up.content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

// DeleteBoardImage handles DELETE /api/boards/:id/images/:imageId
func (s *Server) DeleteBoardImage(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}
	if err := s.imageService.RemoveFromBoard(c.UserContext(), currentUserID(c), boardID, imageID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
