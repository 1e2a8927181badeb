package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"newsportal/internal/auth"
	"newsportal/internal/middleware"
	"newsportal/internal/model"
	"newsportal/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

var testTokens = auth.NewJWTService("handler-test-secret", time.Hour)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	return e
}

func bearer(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	token, err := testTokens.Issue(auth.Identity{ID: id.String(), Username: "tester", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func requireAuth() echo.MiddlewareFunc {
	return middleware.RequireAuth(testTokens)
}

func optionalAuth() echo.MiddlewareFunc {
	return middleware.OptionalAuth(testTokens)
}

func request(e *echo.Echo, method, target, body, authHeader string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func isCaller(id uuid.UUID) interface{} {
	return mock.MatchedBy(func(c *auth.Identity) bool { return c != nil && c.ID == id.String() })
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, caller *auth.Identity) (*model.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, caller *auth.Identity, in service.ProfileInput) (*model.User, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, caller *auth.Identity, current, next string) error {
	args := m.Called(ctx, caller, current, next)
	return args.Error(0)
}

func (m *MockAuthService) UpdateAvatar(ctx context.Context, caller *auth.Identity, up service.Upload) (*model.User, error) {
	args := m.Called(ctx, caller, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockArticleService is a mock implementation of ArticleService.
type MockArticleService struct {
	mock.Mock
}

func (m *MockArticleService) List(ctx context.Context, caller *auth.Identity, q service.ArticleQuery) (*service.PageResult[model.Article], error) {
	args := m.Called(ctx, caller, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageResult[model.Article]), args.Error(1)
}

func (m *MockArticleService) GetBySlug(ctx context.Context, caller *auth.Identity, slug string) (*model.Article, error) {
	args := m.Called(ctx, caller, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Create(ctx context.Context, caller *auth.Identity, in service.ArticleInput) (*model.Article, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in service.ArticleUpdate) (*model.Article, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

// MockCommentService is a mock implementation of CommentService.
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, caller *auth.Identity, articleID uuid.UUID, page, limit int) (*service.PageResult[model.Comment], error) {
	args := m.Called(ctx, caller, articleID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageResult[model.Comment]), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, caller *auth.Identity, articleID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error) {
	args := m.Called(ctx, caller, articleID, content, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Moderate(ctx context.Context, caller *auth.Identity, id uuid.UUID, approved bool) (*model.Comment, error) {
	args := m.Called(ctx, caller, id, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, caller *auth.Identity, in service.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in service.CategoryUpdate) (*model.Category, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, caller, id)
	return args.Bool(0), args.Error(1)
}

// MockMediaService is a mock implementation of MediaService.
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, caller *auth.Identity, name string, up service.Upload) (*model.Media, error) {
	args := m.Called(ctx, caller, name, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

func (m *MockMediaService) List(ctx context.Context, caller *auth.Identity, page, limit int) (*service.PageResult[model.Media], error) {
	args := m.Called(ctx, caller, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageResult[model.Media]), args.Error(1)
}

func (m *MockMediaService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}
