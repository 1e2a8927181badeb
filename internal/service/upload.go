package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"

	apperr "newsportal/internal/errors"
	"newsportal/internal/storage"
)

// DefaultMaxUploadSize is used when no limit is configured.
const DefaultMaxUploadSize = 10 << 20

var (
	// MediaTypes are accepted for media uploads.
	MediaTypes = []string{"image/jpeg", "image/png", "image/gif", "application/pdf"}
	// AvatarTypes are accepted for avatars.
	AvatarTypes = []string{"image/jpeg", "image/png", "image/gif"}

	// ErrFileTooLarge is returned for uploads over the size limit.
	ErrFileTooLarge = apperr.Validation("file is too large", "FILE_TOO_LARGE")
	// ErrFileType is returned for uploads whose content is not an accepted type.
	ErrFileType = apperr.Validation("file type is not allowed", "FILE_TYPE_NOT_ALLOWED")
	// ErrEmptyFile is returned when no file content was sent.
	ErrEmptyFile = apperr.Validation("no file uploaded", "FILE_MISSING")
)

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// StoredFile describes a file written to storage.
type StoredFile struct {
	Key      string
	URL      string
	MimeType string
	Size     int64
}

// Uploader validates uploads by content and writes them to storage.
type Uploader struct {
	store   storage.Storage
	maxSize int64
	now     func() time.Time
}

// NewUploader creates an uploader. maxSize <= 0 uses DefaultMaxUploadSize.
func NewUploader(store storage.Storage, maxSize int64) *Uploader {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &Uploader{store: store, maxSize: maxSize, now: time.Now}
}

// Save sniffs the content type, checks it against allowed and stores the
// file under prefix.
func (u *Uploader) Save(ctx context.Context, prefix string, up Upload, allowed []string) (*StoredFile, error) {
	if up.Content == nil || up.Size == 0 {
		return nil, ErrEmptyFile
	}
	if up.Size > u.maxSize {
		return nil, ErrFileTooLarge
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(up.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmptyFile
	}

	mtype := mimetype.Detect(head)
	accepted := ""
	for _, a := range allowed {
		if mtype.Is(a) {
			accepted = a
			break
		}
	}
	if accepted == "" {
		return nil, ErrFileType
	}

	key := storage.NewKey(prefix, mtype.Extension(), u.now())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), up.Content), u.maxSize)
	url, err := u.store.Save(ctx, key, accepted, body, up.Size)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return &StoredFile{Key: key, URL: url, MimeType: accepted, Size: up.Size}, nil
}

// Remove deletes a stored file.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return u.store.Delete(ctx, key)
}
