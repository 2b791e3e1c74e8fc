package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type availabilityService interface {
	List(ctx context.Context, viewer calendar.Viewer, teacherID *int64) ([]models.AvailabilityWindow, error)
	Create(ctx context.Context, viewer calendar.Viewer, req dto.CreateAvailabilityRequest, meta models.RequestMeta) (*models.AvailabilityWindow, error)
	Delete(ctx context.Context, viewer calendar.Viewer, id int64, meta models.RequestMeta) error
}

// AvailabilityHandler manages teacher availability windows.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// List godoc
// @Summary List availability windows
// @Tags Availability
// @Produce json
// @Param teacher_id query int false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	teacherID, err := queryID(c, "teacher_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	windows, err := h.service.List(c.Request.Context(), viewer, teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.AvailabilityResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, dto.NewAvailabilityResponse(w))
	}
	middleware.SetMeta(c, "count", len(out))
	response.JSON(c, http.StatusOK, out, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.CreateAvailabilityRequest true "Window"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /availability [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}

	window, err := h.service.Create(c.Request.Context(), viewer, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewAvailabilityResponse(*window))
}

// Delete godoc
// @Summary Delete availability window
// @Tags Availability
// @Param id path int true "Window ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availability/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), viewer, id, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
