package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type calendarService interface {
	LoadUnifiedView(ctx context.Context, viewer calendar.Viewer) (calendar.View, error)
	ReconcileBatch(ctx context.Context, viewer calendar.Viewer, batch calendar.Batch) (calendar.Result, error)
	CheckEditable(ctx context.Context, viewer calendar.Viewer, lessonID int64) error
	Duration(classType string, start *time.Time) dto.DurationResponse
}

// CalendarHandler serves the scheduling calendar. Load and sync answer with
// the bare {success, ...} body the calendar client reads.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Load godoc
// @Summary Load unified calendar
// @Description Teachers as resources, lessons as events and availability as time ranges, filtered by the caller's role
// @Tags Calendar
// @Produce json
// @Success 200 {object} dto.CalendarLoadResponse
// @Failure 500 {object} response.CalendarFailure
// @Router /calendar [get]
func (h *CalendarHandler) Load(c *gin.Context) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.CalendarError(c, err)
		return
	}

	view, err := h.service.LoadUnifiedView(c.Request.Context(), viewer)
	if err != nil {
		response.CalendarError(c, err)
		return
	}

	response.Raw(c, http.StatusOK, dto.NewCalendarLoadResponse(view))
}

// Sync godoc
// @Summary Apply calendar changes
// @Description Creates, patches and deletes lessons in one batch and maps phantom ids to stored ids
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.SyncRequest true "Sync payload"
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} response.CalendarFailure
// @Failure 403 {object} response.CalendarFailure
// @Failure 404 {object} response.CalendarFailure
// @Router /calendar/sync [post]
func (h *CalendarHandler) Sync(c *gin.Context) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.CalendarError(c, err)
		return
	}

	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CalendarError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
		return
	}
	batch, err := req.ToBatch()
	if err != nil {
		response.CalendarError(c, err)
		return
	}

	result, err := h.service.ReconcileBatch(c.Request.Context(), viewer, batch)
	if err != nil {
		if len(result.Events) == 0 && len(result.Assignments) == 0 {
			response.CalendarError(c, err)
			return
		}
		response.Raw(c, appErrors.FromError(err).Status, dto.NewSyncFailure(result, err))
		return
	}

	response.Raw(c, http.StatusOK, dto.NewSyncResponse(result))
}

// Editable godoc
// @Summary Check whether a lesson may be edited
// @Tags Calendar
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/events/{id}/editable [get]
func (h *CalendarHandler) Editable(c *gin.Context) {
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

	if err := h.service.CheckEditable(c.Request.Context(), viewer, id); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status != http.StatusForbidden {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dto.EditableResponse{Editable: false, Reason: appErr.Message}, nil)
		return
	}

	response.JSON(c, http.StatusOK, dto.EditableResponse{Editable: true}, nil)
}

// Duration godoc
// @Summary Default lesson length for a class type
// @Tags Calendar
// @Produce json
// @Param class_type query string false "Class type"
// @Param start query string false "Lesson start"
// @Success 200 {object} response.Envelope
// @Router /calendar/duration [get]
func (h *CalendarHandler) Duration(c *gin.Context) {
	start, err := queryInstant(c, "start")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Duration(c.Query("class_type"), start), nil)
}
