package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

type permissionServiceMock struct {
	granted   map[string]bool
	listRole  *models.Role
	written   []models.Permission
	writeKind string
}

func (m *permissionServiceMock) HasCapability(ctx context.Context, role models.Role, menuPath string, capability models.Capability) (bool, error) {
	return m.granted[string(role)+menuPath+string(capability)], nil
}

func (m *permissionServiceMock) SetCapabilities(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error) {
	m.writeKind = "set"
	return m.write(role, menuPath, caps), nil
}

func (m *permissionServiceMock) CreatePermissionRow(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error) {
	m.writeKind = "create"
	return m.write(role, menuPath, caps), nil
}

func (m *permissionServiceMock) write(role models.Role, menuPath string, caps models.Capabilities) *models.Permission {
	perm := models.Permission{ID: int64(len(m.written) + 1), Role: role, MenuPath: menuPath, Capabilities: caps}
	m.written = append(m.written, perm)
	return &perm
}

func (m *permissionServiceMock) List(ctx context.Context, role *models.Role) ([]models.Permission, error) {
	m.listRole = role
	return []models.Permission{}, nil
}

func (m *permissionServiceMock) Menus(ctx context.Context) ([]models.Menu, error) {
	return []models.Menu{{Path: "/calendar"}}, nil
}

func TestPermissionListParsesRole(t *testing.T) {
	svc := &permissionServiceMock{}
	h := NewPermissionHandler(svc, models.DefaultRoleTable(), nil)
	r := newTestRouter(asUser(99, models.RoleAdmin))
	r.GET("/permissions", h.List)

	w := perform(r, http.MethodGet, "/permissions?role=Teacher", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.listRole)
	assert.Equal(t, models.RoleTeacher, *svc.listRole)

	w = perform(r, http.MethodGet, "/permissions?role=janitor", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermissionSetAndCreate(t *testing.T) {
	svc := &permissionServiceMock{}
	h := NewPermissionHandler(svc, models.DefaultRoleTable(), nil)
	r := newTestRouter(asUser(99, models.RoleAdmin))
	r.PUT("/permissions", h.Set)
	r.POST("/permissions", h.Create)

	body := `{"role": "accountant", "menu_path": "/payments", "capabilities": {"read": true, "download": true}}`
	w := perform(r, http.MethodPut, "/permissions", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "set", svc.writeKind)
	require.Len(t, svc.written, 1)
	assert.Equal(t, models.RoleAccountant, svc.written[0].Role)
	assert.True(t, svc.written[0].Capabilities.Download)
	assert.False(t, svc.written[0].Capabilities.Create)

	w = perform(r, http.MethodPost, "/permissions", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "create", svc.writeKind)

	w = perform(r, http.MethodPut, "/permissions", `{"role": "accountant", "menu_path": "payments"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = perform(r, http.MethodPut, "/permissions", `{"role": "ghost", "menu_path": "/payments"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.written, 2)
}

func TestPermissionCheckDefaultsToCaller(t *testing.T) {
	svc := &permissionServiceMock{granted: map[string]bool{"teacher/calendarupdate": true}}
	h := NewPermissionHandler(svc, models.DefaultRoleTable(), nil)
	r := newTestRouter(asUser(1, models.RoleTeacher))
	r.GET("/permissions/check", h.Check)

	w := perform(r, http.MethodGet, "/permissions/check?menu_path=/calendar&capability=update", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["allowed"])
	assert.Equal(t, "teacher", data["role"])

	w = perform(r, http.MethodGet, "/permissions/check?menu_path=/calendar&capability=update&role=student", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["data"].(map[string]interface{})["allowed"])

	w = perform(r, http.MethodGet, "/permissions/check?menu_path=/calendar&capability=approve", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
