package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskURLPrefix is the path the API serves DiskStore objects under.
const DiskURLPrefix = "/uploads"

// DiskStore writes objects below a local directory.
type DiskStore struct {
	root      string
	urlPrefix string
}

// NewDiskStore creates root if needed.
func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("disk store root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Root is the directory objects are written to.
func (s *DiskStore) Root() string { return s.root }

func (s *DiskStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + key, nil
}

// Delete ignores objects that are already gone.
func (s *DiskStore) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
