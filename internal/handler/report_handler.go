package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type salaryService interface {
	Report(ctx context.Context, from, to time.Time) (*models.SalaryReport, error)
	PostNoShowAdjustments(ctx context.Context, from, to time.Time, actorID int64, meta models.RequestMeta) (*dto.AdjustmentResponse, error)
}

type dailyReportService interface {
	Enqueue(ctx context.Context, date string, actorID *int64) (*dto.DailyReportResponse, error)
}

// ReportHandler exposes salary and daily reporting endpoints.
type ReportHandler struct {
	salary salaryService
	daily  dailyReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(salary salaryService, daily dailyReportService) *ReportHandler {
	return &ReportHandler{salary: salary, daily: daily}
}

// Salary godoc
// @Summary Teacher salary report
// @Description Minutes and pay for given lessons per teacher, plus pending no-show lessons
// @Tags Reports
// @Produce json
// @Param from query string true "Start of period"
// @Param to query string true "End of period"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/salary [get]
func (h *ReportHandler) Salary(c *gin.Context) {
	from, to, err := requiredRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.salary.Report(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// PostAdjustments godoc
// @Summary Post no-show credits
// @Description Writes one no_show_credit payment per no-show-teacher lesson in the period; lessons already credited are skipped
// @Tags Reports
// @Produce json
// @Param from query string true "Start of period"
// @Param to query string true "End of period"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/salary/adjustments [post]
func (h *ReportHandler) PostAdjustments(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, to, err := requiredRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.salary.PostNoShowAdjustments(c.Request.Context(), from, to, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// TriggerDaily godoc
// @Summary Queue the daily lesson report
// @Description Date defaults to yesterday (UTC)
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.DailyReportRequest false "Report date"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/daily [post]
func (h *ReportHandler) TriggerDaily(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	actorID := claims.UserID
	res, err := h.daily.Enqueue(c.Request.Context(), req.Date, &actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, res, nil)
}
