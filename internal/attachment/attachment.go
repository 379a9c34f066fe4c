// Package attachment stores complaint images on local disk and hands back
// stable references of the form "uploads/<name>".
package attachment

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is the path segment under which stored files are served.
const URLPrefix = "uploads"

var (
	// ErrNotImage is returned for uploads that are not images.
	ErrNotImage = errors.New("only image uploads are accepted")
	// ErrTooLarge is returned for uploads above the configured size.
	ErrTooLarge = errors.New("image exceeds the maximum size")
)

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Store writes uploads into a directory.
type Store struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
}

// NewStore creates the directory if needed.
func NewStore(dir string, maxBytes int64, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, log: logger}, nil
}

// Dir is the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// Check validates a file header without reading the body.
func (s *Store) Check(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return fmt.Errorf("%w: %s", ErrNotImage, fh.Filename)
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, fh.Filename)
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return fmt.Errorf("%w: %s", ErrTooLarge, fh.Filename)
	}
	return nil
}

// SaveAll checks every file first, then writes them. If any write fails the
// files already written are removed.
func (s *Store) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	for _, fh := range files {
		if err := s.Check(fh); err != nil {
			return nil, err
		}
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := s.save(fh)
		if err != nil {
			s.Remove(refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Store) save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return path.Join(URLPrefix, name), nil
}

// Remove deletes previously stored files. Missing files are ignored.
func (s *Store) Remove(refs []string) {
	for _, ref := range refs {
		name := path.Base(ref)
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove attachment", zap.String("ref", ref), zap.Error(err))
		}
	}
}
