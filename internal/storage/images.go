// Package storage keeps uploaded product images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which stored images are served.
const PublicPrefix = "/uploads"

// MaxImageSize bounds a single upload.
const MaxImageSize = 5 << 20

var ErrUnsupportedImage = errors.New("unsupported image type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// FileSaver persists a multipart file to a destination path. *fiber.Ctx satisfies it.
type FileSaver interface {
	SaveFile(fileheader *multipart.FileHeader, path string) error
}

// ImageStore writes uploads into a directory and names them with random ids.
type ImageStore struct {
	dir string
}

// NewImageStore creates dir if needed and returns a store rooted at it.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &ImageStore{dir: dir}, nil
}

// Dir is the directory images are stored in.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save stores fh and returns the public path clients use to fetch it.
func (s *ImageStore) Save(saver FileSaver, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	if fh.Size > MaxImageSize {
		return "", fmt.Errorf("%w: file larger than %d bytes", ErrUnsupportedImage, MaxImageSize)
	}

	name := uuid.New().String() + ext
	if err := saver.SaveFile(fh, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path.Join(PublicPrefix, name), nil
}
