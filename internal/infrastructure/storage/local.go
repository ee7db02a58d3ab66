// Package storage persists uploaded listing images on local disk. Stored
// files are served back by the HTTP layer under the /images route, so the
// references handed out are stable relative URL paths.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

const (
	// MaxFiles is the per-listing image count ceiling.
	MaxFiles = 3
	// MaxFileBytes is the per-file size ceiling (3 MB).
	MaxFileBytes = 3 << 20

	refPrefix = "/images/"
)

// allowedExtensions is the image type allow-list, keyed by lower-case file
// extension including the dot.
var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// LocalStore writes uploads to a single directory with random names.
type LocalStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates the upload directory if missing and returns the store.
func NewLocalStore(dir string, logger zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory uploads are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save validates and persists the uploaded files, returning one stable
// relative reference per file. Validation runs over the whole batch before
// any file is written; a write failure mid-batch removes the files already
// stored so a rejected upload leaves nothing behind.
func (s *LocalStore) Save(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > MaxFiles {
		return nil, fmt.Errorf("%w: got %d, limit %d", domain.ErrTooManyFiles, len(files), MaxFiles)
	}
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if _, ok := allowedExtensions[ext]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fh.Filename)
		}
		if fh.Size > MaxFileBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, fh.Filename, fh.Size)
		}
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := s.saveOne(fh)
		if err != nil {
			s.Remove(refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *LocalStore) saveOne(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	return refPrefix + name, nil
}

// Remove deletes stored files by reference, best-effort. Unknown or malformed
// references are skipped; failures are logged and do not propagate, because
// the database record is authoritative and a leaked file is the lesser harm.
func (s *LocalStore) Remove(refs []string) {
	for _, ref := range refs {
		name := strings.TrimPrefix(ref, refPrefix)
		// Refuse anything that is not a bare file name.
		if name == ref || name != filepath.Base(name) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("ref", ref).Msg("failed to remove stored image")
		}
	}
}
