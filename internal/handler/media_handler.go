package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"newsportal/internal/middleware"
	"newsportal/internal/model"
	"newsportal/internal/service"
)

// MediaHandler handles media endpoints.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// MediaResponse wraps a media record with an outcome message.
type MediaResponse struct {
	Message string       `json:"message"`
	Media   *model.Media `json:"media"`
}

// Upload godoc
// @Summary Upload a file
// @Description Accepts JPEG, PNG, GIF and PDF up to the configured size limit.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param name formData string false "Display name"
// @Success 201 {object} MediaResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /media/upload [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	up, closeFn, err := fileUpload(c, "file")
	if err != nil {
		return err
	}
	defer closeFn()

	media, err := h.mediaService.Upload(c.Request().Context(), middleware.Identity(c), c.FormValue("name"), up)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, MediaResponse{Message: "file uploaded", Media: media})
}

// List godoc
// @Summary List uploaded files
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /media [get]
func (h *MediaHandler) List(c echo.Context) error {
	res, err := h.mediaService.List(c.Request().Context(), middleware.Identity(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page(res, "totalMedia"))
}

// Delete godoc
// @Summary Delete an uploaded file
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media id"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /media/{id} [delete]
func (h *MediaHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.mediaService.Delete(c.Request().Context(), middleware.Identity(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "file deleted"})
}
