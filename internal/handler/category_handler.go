package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"newsportal/internal/middleware"
	"newsportal/internal/model"
	"newsportal/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents a new category.
type CreateCategoryRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Slug           string  `json:"slug" validate:"max=120"`
	Description    string  `json:"description" validate:"max=2000"`
	ParentCategory *string `json:"parentCategory" validate:"omitempty,uuid"`
	Image          string  `json:"image" validate:"max=512"`
}

// UpdateCategoryRequest represents category changes. Sending
// "parentCategory": null detaches the category from its parent.
type UpdateCategoryRequest struct {
	Name           *string    `json:"name" validate:"omitempty,max=100"`
	Description    *string    `json:"description" validate:"omitempty,max=2000"`
	ParentCategory nullableID `json:"parentCategory" swaggertype:"string"`
	Image          *string    `json:"image" validate:"omitempty,max=512"`
	Active         *bool      `json:"active"`
}

// nullableID tells an absent JSON field apart from an explicit null.
type nullableID struct {
	Set   bool
	Value *string
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// CategoryResponse wraps a category with an outcome message.
type CategoryResponse struct {
	Message  string          `json:"message"`
	Category *model.Category `json:"category"`
}

// List godoc
// @Summary Active categories
// @Tags categories
// @Produce json
// @Success 200 {array} model.Category
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Get godoc
// @Summary Active category by slug
// @Tags categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} model.Category
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{slug} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.categoryService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CreateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.ParentCategory != nil && *req.ParentCategory != "" {
		id, err := uuid.Parse(*req.ParentCategory)
		if err != nil {
			return badRequest("invalid parentCategory", "INVALID_ID")
		}
		in.ParentID = &id
	}

	category, err := h.categoryService.Create(c.Request().Context(), middleware.Identity(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, CategoryResponse{Message: "category created", Category: category})
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category id"
// @Param request body UpdateCategoryRequest true "Changes"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Active:      req.Active,
		ParentSet:   req.ParentCategory.Set,
	}
	if v := req.ParentCategory.Value; v != nil && *v != "" {
		parent, err := uuid.Parse(*v)
		if err != nil {
			return badRequest("invalid parentCategory", "INVALID_ID")
		}
		in.ParentID = &parent
	}

	category, err := h.categoryService.Update(c.Request().Context(), middleware.Identity(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, CategoryResponse{Message: "category updated", Category: category})
}

// Delete godoc
// @Summary Delete or deactivate a category
// @Description Categories still used by articles are deactivated instead of removed.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category id"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	deactivated, err := h.categoryService.Delete(c.Request().Context(), middleware.Identity(c), id)
	if err != nil {
		return fail(c, err)
	}
	if deactivated {
		return c.JSON(http.StatusOK, MessageResponse{Message: "category deactivated because articles still use it"})
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "category deleted"})
}
