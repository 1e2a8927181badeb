package service

import (
	"context"
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
)

func newTestCategoryService() (CategoryService, *MockCategoryRepository) {
	categories := new(MockCategoryRepository)
	return NewCategoryService(categories, nil, access.MustNew()), categories
}

func TestCategoryService_CreateGate(t *testing.T) {
	tests := []struct {
		name          string
		caller        *auth.Identity
		expectedError error
	}{
		{name: "editor", caller: asEditor()},
		{name: "admin", caller: asAdmin()},
		{name: "user", caller: asUser(), expectedError: apperr.ErrAccessDenied},
		{name: "anonymous", caller: nil, expectedError: apperr.ErrAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, categories := newTestCategoryService()
			if tt.expectedError == nil {
				categories.On("FindByName", mock.Anything, "World News").Return(nil, gorm.ErrRecordNotFound)
				categories.On("FindBySlug", mock.Anything, "world-news").Return(nil, gorm.ErrRecordNotFound)
				categories.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)
			}

			c, err := svc.Create(context.Background(), tt.caller, CategoryInput{Name: " World News "})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "World News", c.Name)
			assert.Equal(t, "world-news", c.Slug)
			assert.True(t, c.Active)
			categories.AssertExpectations(t)
		})
	}
}

func TestCategoryService_CreateDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockCategoryRepository)
	}{
		{
			name: "name taken",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByName", mock.Anything, "Sport").Return(&model.Category{ID: uuid.New()}, nil)
			},
		},
		{
			name: "slug taken",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByName", mock.Anything, "Sport").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindBySlug", mock.Anything, "sport").Return(&model.Category{ID: uuid.New()}, nil)
			},
		},
		{
			name: "race lost on insert",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByName", mock.Anything, "Sport").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindBySlug", mock.Anything, "sport").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, categories := newTestCategoryService()
			tt.setupMock(categories)

			_, err := svc.Create(context.Background(), asEditor(), CategoryInput{Name: "Sport"})
			assert.ErrorIs(t, err, ErrCategoryExists)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCategoryService_UpdateRejectsCycles(t *testing.T) {
	root := uuid.New()
	mid := uuid.New()
	leaf := uuid.New()

	svc, categories := newTestCategoryService()
	categories.On("FindByID", mock.Anything, root).Return(&model.Category{ID: root, Name: "Root"}, nil)
	categories.On("FindByID", mock.Anything, mid).Return(&model.Category{ID: mid, Name: "Mid", ParentID: &root}, nil)
	categories.On("FindByID", mock.Anything, leaf).Return(&model.Category{ID: leaf, Name: "Leaf", ParentID: &mid}, nil)

	_, err := svc.Update(context.Background(), asEditor(), root, CategoryUpdate{ParentSet: true, ParentID: &leaf})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	_, err = svc.Update(context.Background(), asEditor(), mid, CategoryUpdate{ParentSet: true, ParentID: &mid})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	categories.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategoryService_UpdateParent(t *testing.T) {
	id := uuid.New()
	parent := uuid.New()
	missing := uuid.New()

	t.Run("set parent", func(t *testing.T) {
		svc, categories := newTestCategoryService()
		categories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id, Name: "Tech"}, nil)
		categories.On("FindByID", mock.Anything, parent).Return(&model.Category{ID: parent, Name: "Science"}, nil)
		categories.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

		c, err := svc.Update(context.Background(), asEditor(), id, CategoryUpdate{ParentSet: true, ParentID: &parent})
		require.NoError(t, err)
		require.NotNil(t, c.ParentID)
		assert.Equal(t, parent, *c.ParentID)
	})

	t.Run("clear parent", func(t *testing.T) {
		svc, categories := newTestCategoryService()
		categories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id, Name: "Tech", ParentID: &parent}, nil)
		categories.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

		c, err := svc.Update(context.Background(), asEditor(), id, CategoryUpdate{ParentSet: true})
		require.NoError(t, err)
		assert.Nil(t, c.ParentID)
	})

	t.Run("missing parent", func(t *testing.T) {
		svc, categories := newTestCategoryService()
		categories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id, Name: "Tech"}, nil)
		categories.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Update(context.Background(), asEditor(), id, CategoryUpdate{ParentSet: true, ParentID: &missing})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("user is denied", func(t *testing.T) {
		svc, _ := newTestCategoryService()
		_, err := svc.Update(context.Background(), asUser(), id, CategoryUpdate{Name: ptr("x")})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name            string
		caller          *auth.Identity
		refs            int64
		wantDeactivated bool
		expectedError   error
	}{
		{name: "unreferenced is removed", caller: asAdmin(), refs: 0},
		{name: "referenced is deactivated", caller: asAdmin(), refs: 2, wantDeactivated: true},
		{name: "editor is denied", caller: asEditor(), expectedError: apperr.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, categories := newTestCategoryService()
			if tt.expectedError == nil {
				categories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id}, nil)
				categories.On("CountArticles", mock.Anything, id).Return(tt.refs, nil)
				if tt.wantDeactivated {
					categories.On("Deactivate", mock.Anything, id).Return(nil)
				} else {
					categories.On("Delete", mock.Anything, id).Return(nil)
				}
			}

			deactivated, err := svc.Delete(context.Background(), tt.caller, id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeactivated, deactivated)
			categories.AssertExpectations(t)
		})
	}
}

func TestCategoryService_ListWithoutCache(t *testing.T) {
	svc, categories := newTestCategoryService()
	categories.On("ListActive", mock.Anything).Return(nil, nil).Once()
	categories.On("ListActive", mock.Anything).Return([]model.Category{{Name: "A"}}, nil).Once()

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, first)
	assert.Empty(t, first)

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestCategoryService_GetBySlug(t *testing.T) {
	svc, categories := newTestCategoryService()
	categories.On("FindActiveBySlug", mock.Anything, "tech").Return(&model.Category{Slug: "tech"}, nil)
	categories.On("FindActiveBySlug", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound)

	c, err := svc.GetBySlug(context.Background(), "tech")
	require.NoError(t, err)
	assert.Equal(t, "tech", c.Slug)

	_, err = svc.GetBySlug(context.Background(), "gone")
	assert.ErrorIs(t, err, apperr.ErrCategoryNotFound)
}
