package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/internal/service"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type exportService interface {
	ExportLessons(ctx context.Context, viewer calendar.Viewer, filter models.LessonFilter, format string) (*service.ExportFile, error)
	ResolveDownload(token string) (*service.ExportDownload, error)
}

// ExportHandler streams generated files.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Lessons godoc
// @Summary Export lessons
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param from query string false "Start of range"
// @Param to query string false "End of range"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exports/lessons [get]
func (h *ExportHandler) Lessons(c *gin.Context) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.service.ExportLessons(c.Request.Context(), viewer, filter, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Download godoc
// @Summary Download a stored export
// @Description Serves a file behind a signed, expiring token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, nil)
}
