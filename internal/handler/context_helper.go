package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func viewerFromContext(c *gin.Context) (calendar.Viewer, error) {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return calendar.Viewer{}, appErrors.ErrUnauthorized
	}
	return viewer, nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return &id, nil
}

func queryInstant(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := dto.ParseInstant(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+name)
	}
	return &t, nil
}

// requiredRange reads from/to query parameters, both mandatory.
func requiredRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := queryInstant(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryInstant(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "from and to are required")
	}
	if !to.After(*from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	return *from, *to, nil
}

func bindJSON(c *gin.Context, dst interface{}, message string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
	}
	return nil
}

// actorID returns the authenticated user id.
func actorID(c *gin.Context) (int64, error) {
	claims := middleware.Claims(c)
	if claims == nil {
		return 0, appErrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
