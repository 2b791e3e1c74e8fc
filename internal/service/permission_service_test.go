package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type mockPermissionRepo struct {
	rows    []models.Permission
	menus   []models.Menu
	nextID  int64
	findErr error
}

func (m *mockPermissionRepo) FindLatest(ctx context.Context, role models.Role, menuPath string) (*models.Permission, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].Role == role && m.rows[i].MenuPath == menuPath {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockPermissionRepo) Create(ctx context.Context, perm *models.Permission) error {
	m.nextID++
	perm.ID = m.nextID
	m.rows = append(m.rows, *perm)
	return nil
}

func (m *mockPermissionRepo) UpdateCapabilities(ctx context.Context, id int64, caps models.Capabilities) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Capabilities = caps
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockPermissionRepo) List(ctx context.Context, role *models.Role) ([]models.Permission, error) {
	var out []models.Permission
	for _, row := range m.rows {
		if role == nil || row.Role == *role {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockPermissionRepo) ListMenus(ctx context.Context) ([]models.Menu, error) {
	return m.menus, nil
}

func (m *mockPermissionRepo) CreateIfAbsent(ctx context.Context, perm *models.Permission) (bool, error) {
	if _, err := m.FindLatest(ctx, perm.Role, perm.MenuPath); err == nil {
		return false, nil
	}
	return true, m.Create(ctx, perm)
}

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func stockMenus() []models.Menu {
	return []models.Menu{
		{ID: 1, Path: MenuCalendar},
		{ID: 2, Path: MenuAvailability},
		{ID: 3, Path: MenuLessons},
		{ID: 4, Path: MenuPayments},
		{ID: 5, Path: MenuReports},
		{ID: 6, Path: MenuUsers},
		{ID: 7, Path: MenuPermissions},
	}
}

func TestHasCapabilityMissingRowDenies(t *testing.T) {
	svc := NewPermissionService(&mockPermissionRepo{}, nil, models.DefaultRoleTable(), zap.NewNop())

	ok, err := svc.HasCapability(context.Background(), models.RoleTeacher, MenuCalendar, models.CapabilityRead)
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Require(context.Background(), models.RoleTeacher, MenuCalendar, models.CapabilityRead)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestHasCapabilityUsesNewestRow(t *testing.T) {
	repo := &mockPermissionRepo{}
	svc := NewPermissionService(repo, nil, models.DefaultRoleTable(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreatePermissionRow(ctx, models.RoleTeacher, MenuLessons, models.Capabilities{Read: true}, 1)
	require.NoError(t, err)
	_, err = svc.CreatePermissionRow(ctx, models.RoleTeacher, MenuLessons+"/", models.Capabilities{Read: false, Download: true}, 1)
	require.NoError(t, err)

	read, err := svc.HasCapability(ctx, models.RoleTeacher, MenuLessons, models.CapabilityRead)
	require.NoError(t, err)
	assert.False(t, read)

	download, err := svc.HasCapability(ctx, models.RoleTeacher, MenuLessons, models.CapabilityDownload)
	require.NoError(t, err)
	assert.True(t, download)
}

func TestHasCapabilityStoreFailure(t *testing.T) {
	svc := NewPermissionService(&mockPermissionRepo{findErr: errors.New("timeout")}, nil, models.DefaultRoleTable(), zap.NewNop())

	_, err := svc.HasCapability(context.Background(), models.RoleAdmin, MenuUsers, models.CapabilityRead)
	assert.True(t, appErrors.Is(err, appErrors.ErrStore))
}

func TestSetCapabilitiesUpdatesOrInserts(t *testing.T) {
	repo := &mockPermissionRepo{}
	audit := &recordingAudit{}
	svc := NewPermissionService(repo, audit, models.DefaultRoleTable(), zap.NewNop())
	ctx := context.Background()

	created, err := svc.SetCapabilities(ctx, models.RoleAccountant, MenuPayments, models.Capabilities{Read: true}, 9)
	require.NoError(t, err)
	require.Len(t, repo.rows, 1)

	updated, err := svc.SetCapabilities(ctx, models.RoleAccountant, MenuPayments, models.Capabilities{Read: true, Download: true}, 9)
	require.NoError(t, err)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, repo.rows[0].Download)

	require.Len(t, audit.logs, 2)
	assert.Nil(t, audit.logs[0].OldValues)
	assert.NotEmpty(t, audit.logs[1].OldValues)
	assert.Equal(t, models.AuditActionPermissionUpdate, audit.logs[1].Action)
}

func TestSetCapabilitiesRejectsUnknownRole(t *testing.T) {
	svc := NewPermissionService(&mockPermissionRepo{}, nil, models.DefaultRoleTable(), zap.NewNop())

	_, err := svc.SetCapabilities(context.Background(), models.Role("janitor"), MenuCalendar, models.AllCapabilities(), 1)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	repo := &mockPermissionRepo{menus: stockMenus()}
	svc := NewPermissionService(repo, nil, models.DefaultRoleTable(), zap.NewNop())
	ctx := context.Background()

	first, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Greater(t, first, 0)

	second, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Len(t, repo.rows, first)

	ok, err := svc.HasCapability(ctx, models.RoleAdmin, MenuPermissions, models.CapabilityUpdate)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasCapability(ctx, models.RoleTeacher, MenuPayments, models.CapabilityRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaultPermissionsStaffGetEverything(t *testing.T) {
	perms := DefaultPermissions(models.DefaultRoleTable(), stockMenus())

	byRole := map[models.Role]int{}
	for _, p := range perms {
		byRole[p.Role]++
		if p.Role.IsStaff() {
			assert.Equal(t, models.AllCapabilities(), p.Capabilities)
		}
	}
	assert.Equal(t, len(stockMenus()), byRole[models.RoleManager])
	assert.Equal(t, len(stockMenus()), byRole[models.RoleAdmin])
	assert.Equal(t, 3, byRole[models.RoleTeacher])
	assert.Equal(t, 1, byRole[models.RoleStudent])
}
