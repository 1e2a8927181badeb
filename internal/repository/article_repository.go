package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsportal/internal/model"
)

// ArticleSortColumns maps the sortable API fields to columns.
var ArticleSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishDate": "publish_date",
	"title":       "title",
	"viewCount":   "view_count",
}

// ArticleFilter narrows an article listing. Empty fields do not filter.
type ArticleFilter struct {
	Status     string
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Tag        string
	Search     string
	SortBy     string
	SortDesc   bool
	Page       Page
}

// articleCategory is a row of the article_categories join table.
type articleCategory struct {
	ArticleID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	CategoryID uuid.UUID `gorm:"type:char(36);primaryKey"`
}

func (articleCategory) TableName() string {
	return "article_categories"
}

// ArticleRepository defines article persistence operations.
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter ArticleFilter) ([]model.Article, int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	// Delete removes the article with its comments, tags and category links
	// in one transaction and returns the number of comments removed.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(article).Error; err != nil {
			return err
		}
		if err := replaceCategories(tx, article.ID, article.Categories); err != nil {
			return err
		}
		return replaceTags(tx, article)
	})
}

func (r *articleRepository) Update(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// view_count is only ever changed by IncrementViews.
		if err := tx.Omit(clause.Associations, "view_count").Save(article).Error; err != nil {
			return err
		}
		if err := replaceCategories(tx, article.ID, article.Categories); err != nil {
			return err
		}
		return replaceTags(tx, article)
	})
}

func replaceCategories(tx *gorm.DB, articleID uuid.UUID, categories []model.Category) error {
	if err := tx.Where("article_id = ?", articleID).Delete(&articleCategory{}).Error; err != nil {
		return err
	}
	if len(categories) == 0 {
		return nil
	}
	rows := make([]articleCategory, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, articleCategory{ArticleID: articleID, CategoryID: c.ID})
	}
	return tx.Create(&rows).Error
}

func replaceTags(tx *gorm.DB, article *model.Article) error {
	if err := tx.Where("article_id = ?", article.ID).Delete(&model.ArticleTag{}).Error; err != nil {
		return err
	}
	article.SetTags(article.TagNames)
	if len(article.Tags) == 0 {
		return nil
	}
	return tx.Create(&article.Tags).Error
}

func (r *articleRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories").
		Preload("Tags")
}

func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := r.withRelations(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var article model.Article
	if err := r.withRelations(ctx).Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Article{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// filtered builds a fresh query for the filter so that counting and
// fetching do not share statement state.
func (r *articleRepository) filtered(ctx context.Context, f ArticleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Article{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.CategoryID != nil {
		sub := r.db.Model(&articleCategory{}).Select("article_id").Where("category_id = ?", *f.CategoryID)
		q = q.Where("id IN (?)", sub)
	}
	if f.Tag != "" {
		sub := r.db.Model(&model.ArticleTag{}).Select("article_id").Where("tag = ?", f.Tag)
		q = q.Where("id IN (?)", sub)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(summary) LIKE ?)", pattern, pattern, pattern)
	}
	return q
}

func (r *articleRepository) List(ctx context.Context, f ArticleFilter) ([]model.Article, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := ArticleSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}

	var articles []model.Article
	err := r.filtered(ctx, f).
		Preload("Author").
		Preload("Categories").
		Preload("Tags").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: f.SortDesc}).
		Offset(f.Page.Offset()).
		Limit(f.Page.Limit).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// IncrementViews bumps view_count in a single statement.
func (r *articleRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("article_id = ?", id).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		if err := tx.Where("article_id = ?", id).Delete(&model.ArticleTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&articleCategory{}).Error; err != nil {
			return err
		}

		res = tx.Where("id = ?", id).Delete(&model.Article{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
