package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	"newsportal/internal/cache"
	apperr "newsportal/internal/errors"
	"newsportal/internal/model"
	"newsportal/internal/repository"
	"newsportal/internal/slug"
)

const (
	categoriesCacheKey = "categories:active"
	categoriesCacheTTL = 10 * time.Minute
)

var (
	// ErrCategoryExists is returned for a duplicate category name or slug.
	ErrCategoryExists = apperr.Validation("category with this name or slug already exists", "CATEGORY_EXISTS")
	// ErrCategoryCycle is returned when a parent change would create a loop.
	ErrCategoryCycle = apperr.Validation("category cannot be its own ancestor", "CATEGORY_CYCLE")
)

// CategoryInput carries a new category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *uuid.UUID
	Image       string
}

// CategoryUpdate carries category changes. ParentSet distinguishes clearing
// the parent (ParentSet with a nil ParentID) from leaving it alone.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Image       *string
	Active      *bool
	ParentSet   bool
	ParentID    *uuid.UUID
}

// CategoryService exposes the category tree.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	Create(ctx context.Context, caller *auth.Identity, in CategoryInput) (*model.Category, error)
	Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in CategoryUpdate) (*model.Category, error)
	// Delete removes the category, or deactivates it when articles still
	// reference it. The boolean reports whether it was only deactivated.
	Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) (bool, error)
}

type categoryService struct {
	categories repository.CategoryRepository
	cache      *cache.Client
	acl        *access.Controller
}

// NewCategoryService builds a CategoryService. A nil cache disables caching.
func NewCategoryService(categories repository.CategoryRepository, c *cache.Client, acl *access.Controller) CategoryService {
	return &categoryService{categories: categories, cache: c, acl: acl}
}

// List returns active categories ordered by name, served from cache when possible.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	if data, _ := s.cache.Get(ctx, categoriesCacheKey); data != nil {
		var cached []model.Category
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		slog.Warn("discarding unreadable category cache entry")
	}

	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}

	if data, err := json.Marshal(categories); err == nil {
		_ = s.cache.Set(ctx, categoriesCacheKey, data, categoriesCacheTTL)
	}
	return categories, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.categories.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, apperr.ErrCategoryNotFound)
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, caller *auth.Identity, in CategoryInput) (*model.Category, error) {
	if err := s.acl.RequireRole(caller, access.CategoryCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("category name is required", "VALIDATION_FAILED")
	}
	categorySlug := slug.Generate(in.Slug)
	if categorySlug == "" {
		categorySlug = slug.Generate(name)
	}
	if categorySlug == "" {
		return nil, apperr.Validation("a slug could not be derived from the name", "INVALID_SLUG")
	}

	if err := s.ensureUnique(ctx, uuid.Nil, name, categorySlug); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if _, err := s.categories.FindByID(ctx, *in.ParentID); err != nil {
			return nil, notFound(err, apperr.NotFound("parent category not found", "PARENT_CATEGORY_NOT_FOUND"))
		}
	}

	category := &model.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: in.Description,
		ParentID:    in.ParentID,
		Image:       in.Image,
		Active:      true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.invalidate(ctx)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in CategoryUpdate) (*model.Category, error) {
	if err := s.acl.RequireRole(caller, access.CategoryUpdate); err != nil {
		return nil, err
	}
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrCategoryNotFound)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("category name cannot be empty", "VALIDATION_FAILED")
		}
		if name != category.Name {
			if err := s.ensureUnique(ctx, category.ID, name, ""); err != nil {
				return nil, err
			}
			category.Name = name
		}
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.Image != nil {
		category.Image = *in.Image
	}
	if in.Active != nil {
		category.Active = *in.Active
	}
	if in.ParentSet {
		if in.ParentID != nil {
			if err := s.checkParent(ctx, category.ID, *in.ParentID); err != nil {
				return nil, err
			}
		}
		category.ParentID = in.ParentID
	}
	category.Parent = nil

	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.invalidate(ctx)
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) (bool, error) {
	if err := s.acl.RequireRole(caller, access.CategoryDelete); err != nil {
		return false, err
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return false, notFound(err, apperr.ErrCategoryNotFound)
	}

	refs, err := s.categories.CountArticles(ctx, id)
	if err != nil {
		return false, fmt.Errorf("count category articles: %w", err)
	}

	deactivated := refs > 0
	if deactivated {
		err = s.categories.Deactivate(ctx, id)
	} else {
		err = s.categories.Delete(ctx, id)
	}
	if err != nil {
		return false, notFound(err, apperr.ErrCategoryNotFound)
	}

	s.invalidate(ctx)
	return deactivated, nil
}

// checkParent verifies that parentID exists and that id does not appear on
// its ancestor chain.
func (s *categoryService) checkParent(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return ErrCategoryCycle
	}
	visited := map[uuid.UUID]struct{}{id: {}}
	next := &parentID
	first := true
	for next != nil {
		if _, seen := visited[*next]; seen {
			return ErrCategoryCycle
		}
		visited[*next] = struct{}{}

		current, err := s.categories.FindByID(ctx, *next)
		if err != nil {
			if first {
				return notFound(err, apperr.NotFound("parent category not found", "PARENT_CATEGORY_NOT_FOUND"))
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		first = false
		next = current.ParentID
	}
	return nil
}

// ensureUnique rejects a name or slug already used by another category. An
// empty value skips that check.
func (s *categoryService) ensureUnique(ctx context.Context, self uuid.UUID, name, categorySlug string) error {
	if name != "" {
		existing, err := s.categories.FindByName(ctx, name)
		if err == nil && existing.ID != self {
			return ErrCategoryExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check category name: %w", err)
		}
	}
	if categorySlug != "" {
		existing, err := s.categories.FindBySlug(ctx, categorySlug)
		if err == nil && existing.ID != self {
			return ErrCategoryExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check category slug: %w", err)
		}
	}
	return nil
}

func (s *categoryService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, categoriesCacheKey)
}
