package client

import (
	"encoding/json"
	"strings"
	"time"
)

// User is an account as returned by the API.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      string     `json:"role"`
	Bio       string     `json:"bio"`
	Avatar    *string    `json:"avatar"`
	Active    bool       `json:"active"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Author is the public projection of a user embedded in articles and comments.
type Author struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Avatar    *string `json:"avatar"`
}

// Category groups articles.
type Category struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	ParentCategoryID *string   `json:"parentCategoryId"`
	ParentCategory   *Category `json:"parentCategory,omitempty"`
	Image            string    `json:"image"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Article is a news item.
type Article struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	ContentHTML    string     `json:"contentHtml"`
	Summary        string     `json:"summary"`
	AuthorID       string     `json:"authorId"`
	Author         *Author    `json:"author,omitempty"`
	Categories     []Category `json:"categories"`
	Tags           []string   `json:"tags"`
	FeaturedImage  string     `json:"featuredImage"`
	Gallery        []string   `json:"gallery"`
	Status         string     `json:"status"`
	ViewCount      int64      `json:"viewCount"`
	IsBreakingNews bool       `json:"isBreakingNews"`
	IsFeatured     bool       `json:"isFeatured"`
	PublishDate    time.Time  `json:"publishDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Comment is a reader comment. Top-level comments carry their replies.
type Comment struct {
	ID            string    `json:"id"`
	ArticleID     string    `json:"articleId"`
	AuthorID      string    `json:"authorId"`
	Author        *Author   `json:"author,omitempty"`
	Content       string    `json:"content"`
	ParentComment *string   `json:"parentComment"`
	Approved      bool      `json:"approved"`
	Replies       []Comment `json:"replies,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Media is an uploaded file.
type Media struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	URL        string    `json:"url"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Page is one page of a listing. Total is read from the endpoint's
// total<Entity> field.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	TotalPages int
	Total      int64
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := map[string]interface{}{
		"items":      &p.Items,
		"page":       &p.Page,
		"limit":      &p.Limit,
		"totalPages": &p.TotalPages,
	}
	for key, value := range raw {
		target, ok := fields[key]
		if !ok {
			if !strings.HasPrefix(key, "total") {
				continue
			}
			target = &p.Total
		}
		if err := json.Unmarshal(value, target); err != nil {
			return err
		}
	}
	return nil
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// RegisterRequest carries a new account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// ProfileRequest carries profile changes. Empty fields are left unchanged.
type ProfileRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// ArticleListParams filters GET /articles. Zero values use server defaults.
type ArticleListParams struct {
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

// ArticleRequest creates an article.
type ArticleRequest struct {
	Title          string     `json:"title"`
	Slug           string     `json:"slug,omitempty"`
	Content        string     `json:"content"`
	Summary        string     `json:"summary,omitempty"`
	Categories     []string   `json:"categories,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	FeaturedImage  string     `json:"featuredImage,omitempty"`
	Gallery        []string   `json:"gallery,omitempty"`
	Status         string     `json:"status,omitempty"`
	IsBreakingNews *bool      `json:"isBreakingNews,omitempty"`
	IsFeatured     *bool      `json:"isFeatured,omitempty"`
	PublishDate    *time.Time `json:"publishDate,omitempty"`
}

// ArticleUpdate changes an article. Nil fields are not sent.
type ArticleUpdate struct {
	Title          *string    `json:"title,omitempty"`
	Content        *string    `json:"content,omitempty"`
	Summary        *string    `json:"summary,omitempty"`
	Categories     []string   `json:"categories,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	FeaturedImage  *string    `json:"featuredImage,omitempty"`
	Gallery        []string   `json:"gallery,omitempty"`
	Status         *string    `json:"status,omitempty"`
	IsBreakingNews *bool      `json:"isBreakingNews,omitempty"`
	IsFeatured     *bool      `json:"isFeatured,omitempty"`
	PublishDate    *time.Time `json:"publishDate,omitempty"`
}

// ArticleResponse wraps an article with the server's message.
type ArticleResponse struct {
	Message string   `json:"message"`
	Article *Article `json:"article"`
}

// CommentResponse wraps a comment with the server's message.
type CommentResponse struct {
	Message string   `json:"message"`
	Comment *Comment `json:"comment"`
}

// CategoryRequest creates a category.
type CategoryRequest struct {
	Name           string `json:"name"`
	Slug           string `json:"slug,omitempty"`
	Description    string `json:"description,omitempty"`
	ParentCategory string `json:"parentCategory,omitempty"`
	Image          string `json:"image,omitempty"`
}

// CategoryUpdate changes a category. Set DetachParent to clear the parent.
type CategoryUpdate struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	ParentCategory *string `json:"parentCategory,omitempty"`
	Image          *string `json:"image,omitempty"`
	Active         *bool   `json:"active,omitempty"`
	DetachParent   bool    `json:"-"`
}

func (u CategoryUpdate) MarshalJSON() ([]byte, error) {
	type plain CategoryUpdate
	if !u.DetachParent {
		return json.Marshal(plain(u))
	}
	data, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m["parentCategory"] = nil
	return json.Marshal(m)
}

// CategoryResponse wraps a category with the server's message.
type CategoryResponse struct {
	Message  string    `json:"message"`
	Category *Category `json:"category"`
}

// MediaResponse wraps an uploaded file with the server's message.
type MediaResponse struct {
	Message string `json:"message"`
	Media   *Media `json:"media"`
}

type messageResponse struct {
	Message string `json:"message"`
}
