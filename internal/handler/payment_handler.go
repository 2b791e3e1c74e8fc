package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type paymentService interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	Create(ctx context.Context, req dto.CreatePaymentRequest, actorID int64, meta models.RequestMeta) (*models.Payment, error)
}

// PaymentHandler exposes tuition and salary payments.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(svc paymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param student_id query int false "Student ID"
// @Param teacher_id query int false "Teacher ID"
// @Param kind query string false "tuition, salary or no_show_credit"
// @Param from query string false "Paid at or after"
// @Param to query string false "Paid before"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter models.PaymentFilter
	var err error
	if filter.StudentID, err = queryID(c, "student_id"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.TeacherID, err = queryID(c, "teacher_id"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.From, err = queryInstant(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.To, err = queryInstant(c, "to"); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("kind"); raw != "" {
		kind := models.PaymentKind(raw)
		filter.Kind = &kind
	}

	payments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(payments))
	response.JSON(c, http.StatusOK, payments, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.service.Create(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}
