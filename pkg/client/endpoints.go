package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Login verifies credentials and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the caller's names and bio.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileRequest) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/profile", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/auth/change-password", nil, body, nil)
}

// UpdateAvatar uploads a new avatar image.
func (c *Client) UpdateAvatar(ctx context.Context, filename string, content io.Reader) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.upload(ctx, "/auth/avatar", "avatar", filename, content, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListArticles returns one page of articles.
func (c *Client) ListArticles(ctx context.Context, params ArticleListParams) (*Page[Article], error) {
	q := pageQuery(params.Page, params.Limit)
	for key, value := range map[string]string{
		"status":    params.Status,
		"category":  params.Category,
		"author":    params.Author,
		"tag":       params.Tag,
		"search":    params.Search,
		"sortBy":    params.SortBy,
		"sortOrder": params.SortOrder,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	var page Page[Article]
	if err := c.do(ctx, http.MethodGet, "/articles", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetArticle returns an article by slug. Each call counts as one view.
func (c *Client) GetArticle(ctx context.Context, slug string) (*Article, error) {
	var article Article
	if err := c.do(ctx, http.MethodGet, "/articles/"+url.PathEscape(slug), nil, nil, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// CreateArticle creates an article owned by the caller.
func (c *Client) CreateArticle(ctx context.Context, req ArticleRequest) (*Article, error) {
	var resp ArticleResponse
	if err := c.do(ctx, http.MethodPost, "/articles", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Article, nil
}

// UpdateArticle changes an article.
func (c *Client) UpdateArticle(ctx context.Context, id string, req ArticleUpdate) (*Article, error) {
	var resp ArticleResponse
	if err := c.do(ctx, http.MethodPut, "/articles/"+url.PathEscape(id), nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Article, nil
}

// DeleteArticle removes an article and its comments.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/articles/"+url.PathEscape(id), nil, nil, nil)
}

// ListComments returns approved comments of an article with their replies.
func (c *Client) ListComments(ctx context.Context, articleID string, page, limit int) (*Page[Comment], error) {
	var res Page[Comment]
	path := fmt.Sprintf("/articles/%s/comments", url.PathEscape(articleID))
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateComment comments on an article. parentID may be empty.
func (c *Client) CreateComment(ctx context.Context, articleID, content, parentID string) (*CommentResponse, error) {
	body := map[string]interface{}{"content": content}
	if parentID != "" {
		body["parentComment"] = parentID
	}
	var resp CommentResponse
	path := fmt.Sprintf("/articles/%s/comments", url.PathEscape(articleID))
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModerateComment approves or rejects a comment.
func (c *Client) ModerateComment(ctx context.Context, id string, approved bool) (*Comment, error) {
	var resp CommentResponse
	path := fmt.Sprintf("/comments/%s/moderate", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, nil, map[string]bool{"approved": approved}, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

// DeleteComment removes a comment and, for top-level comments, its replies.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, nil, nil)
}

// ListCategories returns the active categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns an active category by slug.
func (c *Client) GetCategory(ctx context.Context, slug string) (*Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodGet, "/categories/"+url.PathEscape(slug), nil, nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	var resp CategoryResponse
	if err := c.do(ctx, http.MethodPost, "/categories", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

// UpdateCategory changes a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, req CategoryUpdate) (*Category, error) {
	var resp CategoryResponse
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

// DeleteCategory deletes a category, or deactivates it when articles still
// use it. The server's message tells which happened.
func (c *Client) DeleteCategory(ctx context.Context, id string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UploadMedia uploads a file. An empty name defaults to the filename.
func (c *Client) UploadMedia(ctx context.Context, name, filename string, content io.Reader) (*Media, error) {
	var resp MediaResponse
	if err := c.upload(ctx, "/media/upload", "file", filename, content, map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return resp.Media, nil
}

// ListMedia returns one page of uploads visible to the caller.
func (c *Client) ListMedia(ctx context.Context, page, limit int) (*Page[Media], error) {
	var res Page[Media]
	if err := c.do(ctx, http.MethodGet, "/media", pageQuery(page, limit), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteMedia removes an upload.
func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/media/"+url.PathEscape(id), nil, nil, nil)
}
