// Package storage keeps uploaded image bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"boardapi/internal/config"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for object keys that escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore saves and removes objects by key and tells callers the public
// URL an object is served from.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// New returns a MinIO store when MINIO_ENDPOINT is configured and a local
// disk store under IMAGE_UPLOAD_DIR otherwise.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	if cfg.MinioEndpoint != "" {
		store, err := NewMinIOStore(ctx, MinIOConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewDiskStore(cfg.ImageUploadDir, DiskURLPrefix)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ObjectKey builds a collision-free key such as "boards/12/<uuid>.webp".
func ObjectKey(prefix string, ownerID uint, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s/%d/%s.%s", prefix, ownerID, uuid.NewString(), ext)
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
