package imagestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	MaxImageSize = 10 * 1024 * 1024
	recipesDir   = "recipes"
)

var (
	ErrInvalidImage  = errors.New("image must be a base64 encoded picture")
	ErrImageTooLarge = errors.New("image is too large")
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store keeps recipe pictures on local disk and serves them under baseURL.
type Store struct {
	baseDir string
	baseURL string
}

func New(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Store) Dir() string { return s.baseDir }

// SaveDataURI decodes a "data:image/...;base64,..." payload (a bare base64
// string is accepted too), writes it to disk and returns its public URL.
func (s *Store) SaveDataURI(payload string) (string, error) {
	data, err := decode(payload)
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !allowedMimeTypes[mt.String()] {
		return "", ErrInvalidImage
	}

	absDir := filepath.Join(s.baseDir, recipesDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	filename := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(absDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.baseURL + "/" + recipesDir + "/" + filename, nil
}

// Remove deletes a file previously returned by SaveDataURI. Unknown URLs
// are ignored.
func (s *Store) Remove(url string) error {
	prefix := s.baseURL + "/" + recipesDir + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, prefix))
	err := os.Remove(filepath.Join(s.baseDir, recipesDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Prune removes stored images whose URL is not in keep. Files modified
// within grace are left alone so uploads in flight survive.
func (s *Store) Prune(keep map[string]bool, grace time.Duration) ([]string, error) {
	dir := filepath.Join(s.baseDir, recipesDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-grace)
	var removed []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		url := s.baseURL + "/" + recipesDir + "/" + e.Name()
		if keep[url] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return removed, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed = append(removed, url)
	}
	return removed, nil
}

func decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrInvalidImage
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, ErrInvalidImage
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	return data, nil
}
