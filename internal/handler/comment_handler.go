package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"newsportal/internal/middleware"
	"newsportal/internal/model"
	"newsportal/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest represents a new comment or reply.
type CreateCommentRequest struct {
	Content       string  `json:"content" validate:"required,max=1000"`
	ParentComment *string `json:"parentComment" validate:"omitempty,uuid"`
}

// ModerateCommentRequest sets a comment's approval.
type ModerateCommentRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// CommentResponse wraps a comment with an outcome message.
type CommentResponse struct {
	Message string         `json:"message"`
	Comment *model.Comment `json:"comment"`
}

// List godoc
// @Summary Approved comments of an article
// @Tags comments
// @Produce json
// @Param id path string true "Article id"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.commentService.List(c.Request().Context(), middleware.Identity(c), articleID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page(res, "totalComments"))
}

// Create godoc
// @Summary Comment on an article
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article id"
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var parentID *uuid.UUID
	if req.ParentComment != nil && *req.ParentComment != "" {
		id, err := uuid.Parse(*req.ParentComment)
		if err != nil {
			return badRequest("invalid parentComment", "INVALID_ID")
		}
		parentID = &id
	}

	comment, err := h.commentService.Create(c.Request().Context(), middleware.Identity(c), articleID, req.Content, parentID)
	if err != nil {
		return fail(c, err)
	}

	message := "comment sent to moderation"
	if comment.Approved {
		message = "comment added"
	}
	return c.JSON(http.StatusCreated, CommentResponse{Message: message, Comment: comment})
}

// Moderate godoc
// @Summary Approve or reject a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment id"
// @Param request body ModerateCommentRequest true "Approval"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id}/moderate [put]
func (h *CommentHandler) Moderate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ModerateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.Moderate(c.Request().Context(), middleware.Identity(c), id, *req.Approved)
	if err != nil {
		return fail(c, err)
	}

	message := "comment rejected"
	if comment.Approved {
		message = "comment approved"
	}
	return c.JSON(http.StatusOK, CommentResponse{Message: message, Comment: comment})
}

// Delete godoc
// @Summary Delete a comment and its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment id"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.commentService.Delete(c.Request().Context(), middleware.Identity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "comment deleted"})
}
