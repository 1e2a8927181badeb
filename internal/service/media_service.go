package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	"newsportal/internal/model"
	"newsportal/internal/repository"
)

const defaultMediaPageSize = 20

// MediaService stores and lists uploaded files.
type MediaService interface {
	Upload(ctx context.Context, caller *auth.Identity, name string, up Upload) (*model.Media, error)
	List(ctx context.Context, caller *auth.Identity, page, limit int) (*PageResult[model.Media], error)
	Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error
}

type mediaService struct {
	media    repository.MediaRepository
	uploader *Uploader
	acl      *access.Controller
}

// NewMediaService builds a MediaService.
func NewMediaService(media repository.MediaRepository, uploader *Uploader, acl *access.Controller) MediaService {
	return &mediaService{media: media, uploader: uploader, acl: acl}
}

// Upload validates and stores a file, then records it. When name is empty
// the client's file name is used.
func (s *mediaService) Upload(ctx context.Context, caller *auth.Identity, name string, up Upload) (*model.Media, error) {
	uploaderID, err := callerID(caller)
	if err != nil {
		return nil, err
	}

	stored, err := s.uploader.Save(ctx, "media", up, MediaTypes)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = filepath.Base(up.Filename)
	}
	if name == "" || name == "." {
		name = filepath.Base(stored.Key)
	}

	media := &model.Media{
		Name:       name,
		FileName:   stored.Key,
		FileType:   stored.MimeType,
		FileSize:   stored.Size,
		URL:        stored.URL,
		UploadedBy: uploaderID,
	}
	if err := s.media.Create(ctx, media); err != nil {
		if rmErr := s.uploader.Remove(ctx, stored.Key); rmErr != nil {
			slog.Warn("remove orphaned upload failed", "key", stored.Key, "error", rmErr)
		}
		return nil, fmt.Errorf("create media: %w", err)
	}
	return media, nil
}

// List returns media newest first. Callers without media:list_all only see
// their own uploads.
func (s *mediaService) List(ctx context.Context, caller *auth.Identity, page, limit int) (*PageResult[model.Media], error) {
	me, err := callerID(caller)
	if err != nil {
		return nil, err
	}

	var owner *uuid.UUID
	if !s.acl.Allowed(caller, access.MediaListAll) {
		owner = &me
	}

	p := normalizePage(page, limit, defaultMediaPageSize)
	items, total, err := s.media.List(ctx, owner, p)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return &PageResult[model.Media]{Items: items, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

// Delete removes the stored file best effort, then the record.
func (s *mediaService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	if err := s.acl.Authenticated(caller); err != nil {
		return err
	}
	media, err := s.media.FindByID(ctx, id)
	if err != nil {
		return notFound(err, apperr.ErrMediaNotFound)
	}
	if err := s.acl.RequireOwnerOr(caller, media.UploadedBy, access.MediaManage); err != nil {
		return err
	}

	if err := s.uploader.Remove(ctx, media.FileName); err != nil {
		slog.Warn("remove media file failed", "media_id", id, "key", media.FileName, "error", err)
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return notFound(err, apperr.ErrMediaNotFound)
	}
	return nil
}
