package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsportal/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	FindInArticle(ctx context.Context, id, articleID uuid.UUID) (*model.Comment, error)
	ListApprovedTopLevel(ctx context.Context, articleID uuid.UUID, page Page) ([]model.Comment, int64, error)
	ListApprovedReplies(ctx context.Context, parentIDs []uuid.UUID) ([]model.Comment, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	DeleteReplies(ctx context.Context, parentID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo CommentRepository) error) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindInArticle(ctx context.Context, id, articleID uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND article_id = ?", id, articleID).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListApprovedTopLevel returns one page of approved top-level comments,
// newest first, with the total count of approved top-level comments.
func (r *commentRepository) ListApprovedTopLevel(ctx context.Context, articleID uuid.UUID, page Page) ([]model.Comment, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Comment{}).
			Where("article_id = ? AND parent_id IS NULL AND approved = ?", articleID, true)
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	if err := scope().
		Preload("Author").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListApprovedReplies returns approved replies of the given parents, oldest first.
func (r *commentRepository) ListApprovedReplies(ctx context.Context, parentIDs []uuid.UUID) ([]model.Comment, error) {
	var replies []model.Comment
	if len(parentIDs) == 0 {
		return replies, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("parent_id IN ? AND approved = ?", parentIDs, true).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *commentRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("approved", approved).Error
}

func (r *commentRepository) DeleteReplies(ctx context.Context, parentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Delete(&model.Comment{})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WithTransaction executes a function within a database transaction.
func (r *commentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo CommentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &commentRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
