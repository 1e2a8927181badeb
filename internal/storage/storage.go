// Package storage persists uploaded files on local disk or in an
// S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage stores and removes files by key.
type Storage interface {
	// Save writes r under key and returns the public URL of the stored file.
	Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes the file. A missing file is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-free key "<prefix>/YYYY/MM/<uuid><ext>".
func NewKey(prefix, ext string, now time.Time) string {
	return path.Join(prefix, now.Format("2006"), now.Format("01"), uuid.NewString()+strings.ToLower(ext))
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
