package dto

import "github.com/noah-isme/tutoring-admin-api/internal/models"

// PermissionRequest sets or creates a permission row.
type PermissionRequest struct {
	Role         string              `json:"role" validate:"required"`
	MenuPath     string              `json:"menu_path" validate:"required,startswith=/"`
	Capabilities models.Capabilities `json:"capabilities"`
}

// CapabilityCheckResponse answers GET /permissions/check.
type CapabilityCheckResponse struct {
	Role       models.Role       `json:"role"`
	MenuPath   string            `json:"menu_path"`
	Capability models.Capability `json:"capability"`
	Allowed    bool              `json:"allowed"`
}
