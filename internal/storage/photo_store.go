package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// PhotoStore stores uploaded photo bytes and hands back the public URL
// they will be served under. The registration row only ever records the
// URL, never the bytes.
type PhotoStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// LocalPhotoStore writes photos to a directory on local disk. The server
// exposes that directory under the /uploads static route.
type LocalPhotoStore struct {
	baseDir   string
	urlPrefix string
}

// NewLocalPhotoStore creates a LocalPhotoStore rooted at baseDir, serving
// files under urlPrefix (e.g. "/uploads").
func NewLocalPhotoStore(baseDir, urlPrefix string) *LocalPhotoStore {
	return &LocalPhotoStore{baseDir: baseDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Save writes the photo under a timestamp-qualified name so concurrent
// submissions cannot collide, and returns its public URL.
func (s *LocalPhotoStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	photosDir := filepath.Join(s.baseDir, "photos")
	if err := os.MkdirAll(photosDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create photos directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeFilename(filename))
	filePath := filepath.Join(photosDir, name)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(filePath) // Attempt to clean up
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	return s.urlPrefix + "/photos/" + name, nil
}

// Remove deletes the photo behind a URL previously returned by Save.
// Unknown URLs are ignored.
func (s *LocalPhotoStore) Remove(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok {
		return nil
	}
	filePath := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	return nil
}

// sanitizeFilename keeps only the base name and replaces anything that is
// not a safe filename character.
func sanitizeFilename(filename string) string {
	base := path.Base(filepath.ToSlash(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "photo"
	}
	return b.String()
}
