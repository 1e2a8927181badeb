package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	"newsportal/internal/model"
	"newsportal/internal/repository"
)

func newTestMediaService(maxSize int64) (MediaService, *MockMediaRepository, *memStorage) {
	repo := new(MockMediaRepository)
	store := newMemStorage()
	return NewMediaService(repo, NewUploader(store, maxSize), access.MustNew()), repo, store
}

func TestMediaService_Upload(t *testing.T) {
	tests := []struct {
		name          string
		filename      string
		content       []byte
		size          int64
		maxSize       int64
		wantType      string
		expectedError error
	}{
		{name: "png", filename: "photo.png", content: pngHeader, wantType: "image/png"},
		{name: "pdf", filename: "report.pdf", content: pdfHeader, wantType: "application/pdf"},
		{name: "pdf disguised as png", filename: "photo.png", content: pdfHeader, wantType: "application/pdf"},
		{name: "plain text", filename: "notes.png", content: []byte("just some words"), expectedError: ErrFileType},
		{name: "empty", filename: "x.png", content: []byte{}, expectedError: ErrEmptyFile},
		{name: "too large", filename: "big.png", content: pngHeader, size: 11 << 20, expectedError: ErrFileTooLarge},
		{name: "custom limit", filename: "p.png", content: pngHeader, maxSize: 8, expectedError: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store := newTestMediaService(tt.maxSize)
			if tt.expectedError == nil {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Media")).Return(nil)
			}
			size := tt.size
			if size == 0 {
				size = int64(len(tt.content))
			}

			m, err := svc.Upload(context.Background(), asUser(), "", Upload{Filename: tt.filename, Size: size, Content: bytes.NewReader(tt.content)})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Zero(t, store.count())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.FileType)
			assert.Equal(t, tt.filename, m.Name)
			assert.Equal(t, userID, m.UploadedBy)
			assert.True(t, strings.HasPrefix(m.FileName, "media/"))
			assert.True(t, store.has(m.FileName))
			assert.Equal(t, "/uploads/"+m.FileName, m.URL)
		})
	}
}

func TestMediaService_UploadRemovesFileWhenRecordFails(t *testing.T) {
	svc, repo, store := newTestMediaService(0)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Upload(context.Background(), asUser(), "cover", Upload{Filename: "c.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)})
	assert.Error(t, err)
	assert.Zero(t, store.count())
}

func TestMediaService_ListScope(t *testing.T) {
	tests := []struct {
		name     string
		caller   *auth.Identity
		wantSelf bool
	}{
		{name: "user sees own", caller: asUser(), wantSelf: true},
		{name: "editor sees all", caller: asEditor()},
		{name: "admin sees all", caller: asAdmin()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestMediaService(0)
			match := mock.MatchedBy(func(owner *uuid.UUID) bool {
				if !tt.wantSelf {
					return owner == nil
				}
				return owner != nil && owner.String() == tt.caller.ID
			})
			repo.On("List", mock.Anything, match, repository.Page{Page: 1, Limit: 20}).Return([]model.Media{}, int64(0), nil)

			res, err := svc.List(context.Background(), tt.caller, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, 0, res.TotalPages())
			repo.AssertExpectations(t)
		})
	}
}

func TestMediaService_ListRequiresAuth(t *testing.T) {
	svc, _, _ := newTestMediaService(0)
	_, err := svc.List(context.Background(), nil, 1, 20)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestMediaService_Delete(t *testing.T) {
	id := uuid.New()
	key := "media/2024/05/file.png"

	tests := []struct {
		name          string
		caller        *auth.Identity
		storeErr      error
		expectedError error
	}{
		{name: "owner", caller: asUser()},
		{name: "admin", caller: asAdmin()},
		{name: "file removal failure is tolerated", caller: asUser(), storeErr: errors.New("disk gone")},
		{name: "editor is not owner", caller: asEditor(), expectedError: apperr.ErrAccessDenied},
		{name: "other user", caller: asOther(), expectedError: apperr.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store := newTestMediaService(0)
			_, err := store.Save(context.Background(), key, "image/png", bytes.NewReader(pngHeader), 0)
			require.NoError(t, err)
			store.deleteErr = tt.storeErr

			repo.On("FindByID", mock.Anything, id).Return(&model.Media{ID: id, FileName: key, UploadedBy: userID}, nil)
			if tt.expectedError == nil {
				repo.On("Delete", mock.Anything, id).Return(nil)
			}

			err = svc.Delete(context.Background(), tt.caller, id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.True(t, store.has(key))
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.storeErr != nil, store.has(key))
			repo.AssertExpectations(t)
		})
	}
}

func TestMediaService_DeleteMissing(t *testing.T) {
	id := uuid.New()
	svc, repo, _ := newTestMediaService(0)
	repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), asAdmin(), id)
	assert.ErrorIs(t, err, apperr.ErrMediaNotFound)
}
