// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sort"
	"strings"
	"sync"
	"time"

	"boardapi/internal/models"
	"boardapi/internal/storage"
)

// ImageRepoStub is an in-memory repository.ImageRepository.
type ImageRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.Image
	nextID uint
	// CreateErr, when set, is returned by Create.
	CreateErr error
}

// NewImageRepoStub creates an in-memory image repository stub for tests.
func NewImageRepoStub() *ImageRepoStub {
	return &ImageRepoStub{items: make(map[uint]*models.Image), nextID: 1}
}

// Create stores image metadata in-memory.
func (s *ImageRepoStub) Create(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	img.ID = s.nextID
	s.nextID++
	img.Status = models.StatusActive
	img.CreatedAt = time.Now().UTC()
	stored := *img
	s.items[img.ID] = &stored
	return nil
}

// GetByID returns an active image.
func (s *ImageRepoStub) GetByID(_ context.Context, id uint) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || !item.Status {
		return nil, models.NewNotFoundError("Image", id)
	}
	cp := *item
	return &cp, nil
}

// ListActiveByBoards returns active images of the given boards ordered by id.
func (s *ImageRepoStub) ListActiveByBoards(_ context.Context, boardIDs []uint) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uint]bool, len(boardIDs))
	for _, id := range boardIDs {
		want[id] = true
	}
	out := make([]models.Image, 0)
	for _, item := range s.items {
		if item.Status && want[item.BoardID] {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Deactivate flips matching active images of boardID.
func (s *ImageRepoStub) Deactivate(_ context.Context, boardID uint, imageIDs []uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range imageIDs {
		if item, ok := s.items[id]; ok && item.BoardID == boardID && item.Status {
			item.Status = models.StatusInactive
			n++
		}
	}
	return n, nil
}

// MemoryStore is an in-memory storage.ObjectStore.
type MemoryStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	// PutErr, when set, is returned by Put.
	PutErr error
}

var _ storage.ObjectStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: make(map[string][]byte)}
}

// Put records data under key and returns a fake URL.
func (m *MemoryStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.Objects[key] = append([]byte(nil), data...)
	return "memory://" + key, nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

// Keys returns the stored keys with the given prefix.
func (m *MemoryStore) Keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.Objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
