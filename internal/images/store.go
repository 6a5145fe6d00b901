// Package images stores menu item pictures submitted as base64 data
// URLs by the menu editor.
package images

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const dataURLPrefix = "data:image/"

// Store writes decoded images under a single directory and hands back
// the relative file name recorded on the menu item.
type Store struct {
	dir string
}

// NewStore creates the backing directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// IsDataURL reports whether s looks like an inline image payload.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, dataURLPrefix)
}

// SaveDataURL decodes a data:image/<ext>;base64,<payload> string to a
// file named by a fresh UUID and returns the file name.
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	if !IsDataURL(dataURL) {
		return "", fmt.Errorf("not an image data URL")
	}

	meta, payload, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		return "", fmt.Errorf("image data URL is not base64 encoded")
	}
	ext := strings.TrimPrefix(meta, dataURLPrefix)
	if ext == "" || strings.ContainsAny(ext, "/\\.") {
		return "", fmt.Errorf("invalid image type %q", ext)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return name, nil
}

// Dir returns the backing directory, for serving files over HTTP.
func (s *Store) Dir() string {
	return s.dir
}

// URL maps a stored file name to its public path. Empty names map to
// an empty URL.
func URL(name string) string {
	if name == "" {
		return ""
	}
	return "/media/" + name
}
