package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"boardapi/internal/config"
	"boardapi/internal/middleware"
	"boardapi/internal/models"
	"boardapi/internal/observability"
	"boardapi/internal/repository"
	"boardapi/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MaxImageDimension           = 2048
	WebPQuality                 = 80
	storedImageMime             = "image/webp"
)

type UploadImageInput struct {
	UserID      uint
	BoardID     uint
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService turns uploads into bounded WebP objects and records them
// against boards or profiles.
type ImageService struct {
	boardRepo          repository.BoardRepository
	imageRepo          repository.ImageRepository
	store              storage.ObjectStore
	maxUploadSizeBytes int64
}

// processedImage is an upload after validation, downscaling and re-encoding.
type processedImage struct {
	data   []byte
	width  int
	height int
}

func NewImageService(
	boardRepo repository.BoardRepository,
	imageRepo repository.ImageRepository,
	store storage.ObjectStore,
	cfg *config.Config,
) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		boardRepo:          boardRepo,
		imageRepo:          imageRepo,
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *ImageService) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// AttachToBoard stores an image on a board the user owns.
func (s *ImageService) AttachToBoard(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	board, err := s.boardRepo.GetByID(ctx, in.BoardID)
	if err != nil {
		return nil, err
	}
	if board.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only add images to your own boards")
	}

	processed, err := s.process(in.Content, in.ContentType)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey("boards", board.ID, "webp")
	url, err := s.store.Put(ctx, key, storedImageMime, processed.data)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	record := &models.Image{
		BoardID:      board.ID,
		OriginalName: originalName(in.Filename),
		ObjectKey:    key,
		URL:          url,
		MimeType:     storedImageMime,
		SizeBytes:    int64(len(processed.data)),
		Width:        processed.width,
		Height:       processed.height,
	}
	if err := s.imageRepo.Create(ctx, record); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	observability.ImageUploadBytes.Observe(float64(len(processed.data)))
	return record, nil
}

// RemoveFromBoard deactivates one image of a board the user owns. The
// stored object is kept so the record can be audited.
func (s *ImageService) RemoveFromBoard(ctx context.Context, userID, boardID, imageID uint) error {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if board.UserID != userID {
		return models.NewForbiddenError("You can only remove images from your own boards")
	}
	n, err := s.imageRepo.Deactivate(ctx, board.ID, []uint{imageID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NewNotFoundError("Image", imageID)
	}
	return nil
}

// UploadProfileImage stores a profile picture and returns its URL.
func (s *ImageService) UploadProfileImage(ctx context.Context, userID uint, filename, contentType string, content []byte) (string, error) {
	processed, err := s.process(content, contentType)
	if err != nil {
		return "", err
	}
	url, err := s.store.Put(ctx, storage.ObjectKey("profiles", userID, "webp"), storedImageMime, processed.data)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "profile image stored",
		slog.Uint64("user_id", uint64(userID)), slog.String("original_name", originalName(filename)))
	return url, nil
}

func (s *ImageService) process(content []byte, contentType string) (*processedImage, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	resized := resizeToFit(decoded, MaxImageDimension, MaxImageDimension)
	encoded, err := encodeWebP(resized, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	b := resized.Bounds()
	return &processedImage{data: encoded, width: b.Dx(), height: b.Dy()}, nil
}

func (s *ImageService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove orphaned image object",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// originalName keeps only the base name of a client supplied filename.
func originalName(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
