package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

type permissionService interface {
	HasCapability(ctx context.Context, role models.Role, menuPath string, capability models.Capability) (bool, error)
	SetCapabilities(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error)
	CreatePermissionRow(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error)
	List(ctx context.Context, role *models.Role) ([]models.Permission, error)
	Menus(ctx context.Context) ([]models.Menu, error)
}

// PermissionHandler exposes the role/menu capability matrix.
type PermissionHandler struct {
	service  permissionService
	roles    models.RoleTable
	validate *validator.Validate
}

// NewPermissionHandler constructs the handler.
func NewPermissionHandler(svc permissionService, roles models.RoleTable, validate *validator.Validate) *PermissionHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &PermissionHandler{service: svc, roles: roles, validate: validate}
}

// List godoc
// @Summary List permission rows
// @Tags Permissions
// @Produce json
// @Param role query string false "Role"
// @Success 200 {object} response.Envelope
// @Router /permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	var role *models.Role
	if raw := c.Query("role"); raw != "" {
		parsed, err := h.roles.Parse(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return
		}
		role = &parsed
	}

	perms, err := h.service.List(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, perms, nil)
}

// Menus godoc
// @Summary List menus
// @Tags Permissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /permissions/menus [get]
func (h *PermissionHandler) Menus(c *gin.Context) {
	menus, err := h.service.Menus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, menus, nil)
}

// Set godoc
// @Summary Set capabilities for a role and menu
// @Description Updates the newest row for the pair or inserts one
// @Tags Permissions
// @Accept json
// @Produce json
// @Param payload body dto.PermissionRequest true "Permission"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /permissions [put]
func (h *PermissionHandler) Set(c *gin.Context) {
	h.write(c, http.StatusOK, h.service.SetCapabilities)
}

// Create godoc
// @Summary Append a permission row
// @Description Inserts a new row; the newest row for a pair wins
// @Tags Permissions
// @Accept json
// @Produce json
// @Param payload body dto.PermissionRequest true "Permission"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /permissions [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	h.write(c, http.StatusCreated, h.service.CreatePermissionRow)
}

type permissionWriter func(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error)

func (h *PermissionHandler) write(c *gin.Context, status int, fn permissionWriter) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid permission payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid permission payload"))
		return
	}
	role, err := h.roles.Parse(req.Role)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	perm, err := fn(c.Request.Context(), role, req.MenuPath, req.Capabilities, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, perm, nil)
}

// Check godoc
// @Summary Check a capability
// @Description Defaults to the caller's role
// @Tags Permissions
// @Produce json
// @Param role query string false "Role"
// @Param menu_path query string true "Menu path"
// @Param capability query string true "Capability"
// @Success 200 {object} response.Envelope
// @Router /permissions/check [get]
func (h *PermissionHandler) Check(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	role := claims.Role
	if raw := c.Query("role"); raw != "" {
		parsed, err := h.roles.Parse(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return
		}
		role = parsed
	}
	menuPath := c.Query("menu_path")
	capability := models.Capability(c.Query("capability"))
	if menuPath == "" || !capability.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "menu_path and a valid capability are required"))
		return
	}

	allowed, err := h.service.HasCapability(c.Request.Context(), role, menuPath, capability)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CapabilityCheckResponse{
		Role:       role,
		MenuPath:   menuPath,
		Capability: capability,
		Allowed:    allowed,
	}, nil)
}
