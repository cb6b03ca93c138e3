// Package covers stores uploaded book cover images and computes their
// BlurHash placeholders.
package covers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MaxSize limits an uploaded cover to 10MB.
const MaxSize = 10 * 1024 * 1024

// MaxPixels limits the canvas a cover may declare, checked before decoding.
const MaxPixels = 40_000_000

// PublicPrefix is the URL path under which stored covers are served.
const PublicPrefix = "/uploads/covers/"

// Cover storage errors.
var (
	ErrEmptyImage        = errors.New("image data cannot be empty")
	ErrTooLarge          = errors.New("image exceeds maximum size")
	ErrTooManyPixels     = errors.New("image dimensions exceed maximum")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidReference  = errors.New("invalid cover reference")
)

var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// Stored describes a cover saved to disk.
type Stored struct {
	Path     string // public reference, e.g. /uploads/covers/<uuid>.png
	BlurHash string
	Format   string
	Width    int
	Height   int
	Size     int64
}

// Storage manages cover files under {uploads}/covers.
type Storage struct {
	dir string
	mu  sync.RWMutex
}

// NewStorage creates the covers directory under uploadsPath if needed.
func NewStorage(uploadsPath string) (*Storage, error) {
	if uploadsPath == "" {
		return nil, errors.New("uploads path cannot be empty")
	}

	dir := filepath.Join(uploadsPath, "covers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory covers are written to.
func (s *Storage) Dir() string {
	return s.dir
}

// Save validates and writes image data under a fresh uuid file name.
// The format is detected from content, not from any client-supplied name.
func (s *Storage) Save(data []byte) (*Stored, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty canvas", ErrUnsupportedFormat)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	ext, ok := extensions[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	hash, err := BlurHash(img)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + ext

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write cover file: %w", err)
	}

	bounds := img.Bounds()
	return &Stored{
		Path:     PublicPrefix + name,
		BlurHash: hash,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(len(data)),
	}, nil
}

// IsStored reports whether ref points at a cover managed by this package.
func IsStored(ref string) bool {
	_, err := fileName(ref)
	return err == nil
}

// Path returns the filesystem path for a stored cover reference.
func (s *Storage) Path(ref string) (string, error) {
	name, err := fileName(ref)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether the referenced cover file is present.
func (s *Storage) Exists(ref string) bool {
	path, err := s.Path(ref)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(path)
	return err == nil
}

// Delete removes a stored cover. References that were not produced by Save,
// such as external URLs or the default cover, are ignored, as are files that
// are already gone.
func (s *Storage) Delete(ref string) error {
	if !IsStored(ref) {
		return nil
	}
	path, err := s.Path(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cover file: %w", err)
	}
	return nil
}

// fileName extracts and checks the file name of a /uploads/covers reference.
func fileName(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, PublicPrefix)
	if !ok || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidReference
	}
	ext := filepath.Ext(name)
	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return "", ErrInvalidReference
	}
	return name, nil
}
