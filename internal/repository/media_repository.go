package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"newsportal/internal/model"
)

// MediaRepository defines media persistence operations.
type MediaRepository interface {
	Create(ctx context.Context, media *model.Media) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Media, error)
	// List returns media newest first; a nil uploader lists everyone's files.
	List(ctx context.Context, uploader *uuid.UUID, page Page) ([]model.Media, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *model.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *mediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	var media model.Media
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&media).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) List(ctx context.Context, uploader *uuid.UUID, page Page) ([]model.Media, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Media{})
		if uploader != nil {
			q = q.Where("uploaded_by = ?", *uploader)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Media
	if err := scope().
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Media{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
