package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	"newsportal/internal/markdown"
	"newsportal/internal/model"
	"newsportal/internal/repository"
	"newsportal/internal/slug"
)

const (
	defaultArticlePageSize = 10
	maxTagLength           = 100
)

var (
	// ErrSlugTaken is returned when an article slug is already in use.
	ErrSlugTaken = apperr.Validation("article with this slug already exists", "SLUG_TAKEN")
	// ErrInvalidStatus is returned for an unknown article status.
	ErrInvalidStatus = apperr.Validation("status must be one of draft, published, archived", "INVALID_STATUS")
	// ErrUnknownCategory is returned when an article references a missing category.
	ErrUnknownCategory = apperr.Validation("one or more categories do not exist", "UNKNOWN_CATEGORY")
)

// ArticleQuery holds the raw list parameters of GET /articles.
type ArticleQuery struct {
	Page      int
	Limit     int
	Status    string
	Category  string
	Author    string
	Tag       string
	Search    string
	SortBy    string
	SortOrder string
}

// ArticleInput carries a new article.
type ArticleInput struct {
	Title          string
	Slug           string
	Content        string
	Summary        string
	Categories     []string
	Tags           []string
	FeaturedImage  string
	Gallery        []string
	Status         string
	IsBreakingNews *bool
	IsFeatured     *bool
	PublishDate    *time.Time
}

// ArticleUpdate carries changes to an article. Nil fields are left unchanged;
// Title and Content are also left unchanged when empty.
type ArticleUpdate struct {
	Title          *string
	Content        *string
	Summary        *string
	Categories     []string
	Tags           []string
	FeaturedImage  *string
	Gallery        []string
	Status         *string
	IsBreakingNews *bool
	IsFeatured     *bool
	PublishDate    *time.Time
}

// ArticleService exposes article operations.
type ArticleService interface {
	List(ctx context.Context, caller *auth.Identity, q ArticleQuery) (*PageResult[model.Article], error)
	GetBySlug(ctx context.Context, caller *auth.Identity, slug string) (*model.Article, error)
	Create(ctx context.Context, caller *auth.Identity, in ArticleInput) (*model.Article, error)
	Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in ArticleUpdate) (*model.Article, error)
	Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error
}

type articleService struct {
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
	acl        *access.Controller
	now        func() time.Time
}

// NewArticleService builds an ArticleService.
func NewArticleService(articles repository.ArticleRepository, categories repository.CategoryRepository, acl *access.Controller) ArticleService {
	return &articleService{
		articles:   articles,
		categories: categories,
		acl:        acl,
		now:        time.Now,
	}
}

// canSee reports whether caller may read an article in its current status.
func (s *articleService) canSee(caller *auth.Identity, a *model.Article) bool {
	return articleVisible(s.acl, caller, a)
}

// articleVisible holds for published articles, and otherwise only for the
// author and for callers who manage articles.
func articleVisible(acl *access.Controller, caller *auth.Identity, a *model.Article) bool {
	if a.Status == model.StatusPublished {
		return true
	}
	return acl.IsOwner(caller, a.AuthorID) || acl.Allowed(caller, access.ArticleManage)
}

func (s *articleService) List(ctx context.Context, caller *auth.Identity, q ArticleQuery) (*PageResult[model.Article], error) {
	filter := repository.ArticleFilter{
		Status:   q.Status,
		Tag:      strings.TrimSpace(q.Tag),
		Search:   q.Search,
		SortBy:   q.SortBy,
		SortDesc: true,
		Page:     normalizePage(q.Page, q.Limit, defaultArticlePageSize),
	}

	if filter.Status == "" {
		filter.Status = model.StatusPublished
	}
	if !model.ValidStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	if filter.SortBy == "" {
		filter.SortBy = "createdAt"
	}
	if _, ok := repository.ArticleSortColumns[filter.SortBy]; !ok {
		return nil, apperr.Validation("unsupported sortBy: "+filter.SortBy, "INVALID_SORT")
	}
	switch strings.ToLower(q.SortOrder) {
	case "", "desc":
	case "asc":
		filter.SortDesc = false
	default:
		return nil, apperr.Validation("sortOrder must be asc or desc", "INVALID_SORT")
	}

	if q.Category != "" {
		id, err := uuid.Parse(q.Category)
		if err != nil {
			return nil, apperr.Validation("invalid category id", "INVALID_ID")
		}
		filter.CategoryID = &id
	}
	if q.Author != "" {
		id, err := uuid.Parse(q.Author)
		if err != nil {
			return nil, apperr.Validation("invalid author id", "INVALID_ID")
		}
		filter.AuthorID = &id
	}

	// Unpublished listings are limited to the caller's own articles unless
	// the caller may manage every article.
	if filter.Status != model.StatusPublished && !s.acl.Allowed(caller, access.ArticleManage) {
		me, err := callerID(caller)
		if err != nil {
			return nil, err
		}
		filter.AuthorID = &me
	}

	items, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return &PageResult[model.Article]{Items: items, Page: filter.Page.Page, Limit: filter.Page.Limit, Total: total}, nil
}

// GetBySlug returns the article and counts the read.
func (s *articleService) GetBySlug(ctx context.Context, caller *auth.Identity, slug string) (*model.Article, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, apperr.ErrArticleNotFound)
	}
	if !s.canSee(caller, article) {
		return nil, apperr.ErrArticleNotFound
	}

	if err := s.articles.IncrementViews(ctx, article.ID); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	article.ViewCount++
	return article, nil
}

func (s *articleService) Create(ctx context.Context, caller *auth.Identity, in ArticleInput) (*model.Article, error) {
	authorID, err := callerID(caller)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("title and content are required", "VALIDATION_FAILED")
	}

	articleSlug := slug.Generate(in.Slug)
	if articleSlug == "" {
		articleSlug = slug.Generate(title)
	}
	if articleSlug == "" {
		return nil, apperr.Validation("a slug could not be derived from the title", "INVALID_SLUG")
	}
	taken, err := s.articles.SlugExists(ctx, articleSlug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}

	categories, err := s.resolveCategories(ctx, in.Categories)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	html, err := markdown.ToHTML(in.Content)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	article := &model.Article{
		Title:         title,
		Slug:          articleSlug,
		Content:       in.Content,
		ContentHTML:   html,
		Summary:       in.Summary,
		AuthorID:      authorID,
		Categories:    categories,
		FeaturedImage: in.FeaturedImage,
		Gallery:       datatypes.JSONSlice[string](nonNil(in.Gallery)),
		Status:        model.StatusDraft,
		PublishDate:   s.now(),
	}
	article.TagNames = tags

	if s.acl.Allowed(caller, access.ArticlePublish) {
		if in.Status != "" {
			if !model.ValidStatus(in.Status) {
				return nil, ErrInvalidStatus
			}
			article.Status = in.Status
		}
		if in.IsBreakingNews != nil {
			article.IsBreakingNews = *in.IsBreakingNews
		}
		if in.IsFeatured != nil {
			article.IsFeatured = *in.IsFeatured
		}
		if in.PublishDate != nil {
			article.PublishDate = *in.PublishDate
		}
	} else if in.Status != "" && !model.ValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	if err := s.articles.Create(ctx, article); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create article: %w", err)
	}

	return s.reload(ctx, article)
}

func (s *articleService) Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in ArticleUpdate) (*model.Article, error) {
	if err := s.acl.Authenticated(caller); err != nil {
		return nil, err
	}
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrArticleNotFound)
	}
	if err := s.acl.RequireOwnerOr(caller, article.AuthorID, access.ArticleManage); err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		article.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) != "" {
		html, err := markdown.ToHTML(*in.Content)
		if err != nil {
			return nil, fmt.Errorf("render content: %w", err)
		}
		article.Content = *in.Content
		article.ContentHTML = html
	}
	if in.Summary != nil {
		article.Summary = *in.Summary
	}
	if in.Categories != nil {
		categories, err := s.resolveCategories(ctx, in.Categories)
		if err != nil {
			return nil, err
		}
		article.Categories = categories
	}
	if in.Tags != nil {
		tags, err := normalizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
		article.TagNames = tags
	}
	if in.FeaturedImage != nil {
		article.FeaturedImage = *in.FeaturedImage
	}
	if in.Gallery != nil {
		article.Gallery = datatypes.JSONSlice[string](in.Gallery)
	}

	elevated := s.acl.Allowed(caller, access.ArticlePublish)
	if in.Status != nil && *in.Status != "" {
		if !model.ValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		article.Status = nextStatus(elevated, article.Status, *in.Status)
	}
	if elevated {
		if in.IsBreakingNews != nil {
			article.IsBreakingNews = *in.IsBreakingNews
		}
		if in.IsFeatured != nil {
			article.IsFeatured = *in.IsFeatured
		}
		if in.PublishDate != nil {
			article.PublishDate = *in.PublishDate
		}
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return s.reload(ctx, article)
}

// nextStatus applies a requested status change. Callers who may publish
// get what they ask for. Everyone else: a draft stays a draft, a published
// article takes the requested status, and anything else is left alone.
func nextStatus(elevated bool, current, requested string) string {
	if elevated {
		return requested
	}
	if requested != model.StatusDraft && current == model.StatusDraft {
		return model.StatusDraft
	}
	if current == model.StatusPublished {
		return requested
	}
	return current
}

// Delete removes the article and all of its comments.
func (s *articleService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	if err := s.acl.Authenticated(caller); err != nil {
		return err
	}
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return notFound(err, apperr.ErrArticleNotFound)
	}
	if err := s.acl.RequireOwnerOr(caller, article.AuthorID, access.ArticleManage); err != nil {
		return err
	}

	removed, err := s.articles.Delete(ctx, id)
	if err != nil {
		return notFound(err, apperr.ErrArticleNotFound)
	}
	slog.Info("article deleted", "article_id", id, "comments_removed", removed, "by", caller.ID)
	return nil
}

func (s *articleService) resolveCategories(ctx context.Context, raw []string) ([]model.Category, error) {
	ids, err := parseIDs(raw)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Category{}, nil
	}
	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, ErrUnknownCategory
	}
	return categories, nil
}

// reload fetches the stored article with its relations; on failure the
// in-memory copy is returned.
func (s *articleService) reload(ctx context.Context, article *model.Article) (*model.Article, error) {
	fresh, err := s.articles.FindByID(ctx, article.ID)
	if err != nil {
		slog.Warn("reload article failed", "article_id", article.ID, "error", err)
		return article, nil
	}
	return fresh, nil
}

func normalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len([]rune(t)) > maxTagLength {
			return nil, apperr.Validation("tag is too long: "+t, "INVALID_TAG")
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
