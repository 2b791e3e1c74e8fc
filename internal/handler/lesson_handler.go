package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type lessonService interface {
	List(ctx context.Context, viewer calendar.Viewer, filter models.LessonFilter) ([]models.LessonDetail, error)
	Get(ctx context.Context, viewer calendar.Viewer, id int64) (*models.LessonDetail, error)
}

// LessonHandler serves lesson listings outside the calendar.
type LessonHandler struct {
	service lessonService
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(svc lessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// List godoc
// @Summary List lessons
// @Description Teachers see their own lessons and students their own bookings
// @Tags Lessons
// @Produce json
// @Param teacher_id query int false "Teacher ID"
// @Param student_id query int false "Student ID"
// @Param class_status query string false "Class status"
// @Param from query string false "Start of range"
// @Param to query string false "End of range"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
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

	lessons, err := h.service.List(c.Request.Context(), viewer, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(lessons))
	response.JSON(c, http.StatusOK, lessons, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get lesson
// @Tags Lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
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

	lesson, err := h.service.Get(c.Request.Context(), viewer, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

func lessonFilterFromQuery(c *gin.Context) (models.LessonFilter, error) {
	var filter models.LessonFilter
	var err error
	if filter.TeacherID, err = queryID(c, "teacher_id"); err != nil {
		return filter, err
	}
	if filter.StudentID, err = queryID(c, "student_id"); err != nil {
		return filter, err
	}
	if filter.From, err = queryInstant(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryInstant(c, "to"); err != nil {
		return filter, err
	}
	if raw := c.Query("class_status"); raw != "" {
		status := models.ClassStatus(raw)
		filter.ClassStatus = &status
	}
	return filter, nil
}
