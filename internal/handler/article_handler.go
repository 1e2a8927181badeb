package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"newsportal/internal/middleware"
	"newsportal/internal/model"
	"newsportal/internal/service"
)

// ArticleHandler handles article endpoints.
type ArticleHandler struct {
	articleService service.ArticleService
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(articleService service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// CreateArticleRequest represents a new article. Status, flags and
// publishDate only take effect for editors and admins.
type CreateArticleRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Slug           string     `json:"slug" validate:"max=200"`
	Content        string     `json:"content" validate:"required"`
	Summary        string     `json:"summary" validate:"max=500"`
	Categories     []string   `json:"categories" validate:"dive,uuid"`
	Tags           []string   `json:"tags" validate:"max=50"`
	FeaturedImage  string     `json:"featuredImage" validate:"max=512"`
	Gallery        []string   `json:"gallery"`
	Status         string     `json:"status"`
	IsBreakingNews *bool      `json:"isBreakingNews"`
	IsFeatured     *bool      `json:"isFeatured"`
	PublishDate    *time.Time `json:"publishDate"`
}

// UpdateArticleRequest represents article changes. Omitted fields are left
// unchanged; an empty list clears categories, tags or gallery.
type UpdateArticleRequest struct {
	Title          *string    `json:"title" validate:"omitempty,max=200"`
	Content        *string    `json:"content"`
	Summary        *string    `json:"summary" validate:"omitempty,max=500"`
	Categories     []string   `json:"categories" validate:"dive,uuid"`
	Tags           []string   `json:"tags" validate:"max=50"`
	FeaturedImage  *string    `json:"featuredImage" validate:"omitempty,max=512"`
	Gallery        []string   `json:"gallery"`
	Status         *string    `json:"status"`
	IsBreakingNews *bool      `json:"isBreakingNews"`
	IsFeatured     *bool      `json:"isFeatured"`
	PublishDate    *time.Time `json:"publishDate"`
}

// ArticleResponse wraps an article with an outcome message.
type ArticleResponse struct {
	Message string         `json:"message"`
	Article *model.Article `json:"article"`
}

// List godoc
// @Summary List articles
// @Tags articles
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param status query string false "draft, published or archived" default(published)
// @Param category query string false "Category id"
// @Param author query string false "Author id"
// @Param tag query string false "Tag"
// @Param search query string false "Substring of title, content or summary"
// @Param sortBy query string false "createdAt, updatedAt, publishDate, title or viewCount" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	res, err := h.articleService.List(c.Request().Context(), middleware.Identity(c), service.ArticleQuery{
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
		Status:    c.QueryParam("status"),
		Category:  c.QueryParam("category"),
		Author:    c.QueryParam("author"),
		Tag:       c.QueryParam("tag"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page(res, "totalArticles"))
}

// Get godoc
// @Summary Article by slug
// @Description Counts one view per successful read.
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} model.Article
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/{slug} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	article, err := h.articleService.GetBySlug(c.Request().Context(), middleware.Identity(c), c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

// Create godoc
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateArticleRequest true "Article"
// @Success 201 {object} ArticleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	var req CreateArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	article, err := h.articleService.Create(c.Request().Context(), middleware.Identity(c), service.ArticleInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Content:        req.Content,
		Summary:        req.Summary,
		Categories:     req.Categories,
		Tags:           req.Tags,
		FeaturedImage:  req.FeaturedImage,
		Gallery:        req.Gallery,
		Status:         req.Status,
		IsBreakingNews: req.IsBreakingNews,
		IsFeatured:     req.IsFeatured,
		PublishDate:    req.PublishDate,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, ArticleResponse{Message: "article created", Article: article})
}

// Update godoc
// @Summary Update an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article id"
// @Param request body UpdateArticleRequest true "Changes"
// @Success 200 {object} ArticleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	article, err := h.articleService.Update(c.Request().Context(), middleware.Identity(c), id, service.ArticleUpdate{
		Title:          req.Title,
		Content:        req.Content,
		Summary:        req.Summary,
		Categories:     req.Categories,
		Tags:           req.Tags,
		FeaturedImage:  req.FeaturedImage,
		Gallery:        req.Gallery,
		Status:         req.Status,
		IsBreakingNews: req.IsBreakingNews,
		IsFeatured:     req.IsFeatured,
		PublishDate:    req.PublishDate,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ArticleResponse{Message: "article updated", Article: article})
}

// Delete godoc
// @Summary Delete an article and its comments
// @Tags articles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article id"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.articleService.Delete(c.Request().Context(), middleware.Identity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "article and its comments deleted"})
}
