package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

// Menu paths gated by capability checks.
const (
	MenuCalendar     = "/calendar"
	MenuAvailability = "/availability"
	MenuLessons      = "/lessons"
	MenuPayments     = "/payments"
	MenuReports      = "/reports"
	MenuUsers        = "/users"
	MenuPermissions  = "/permissions"
)

type permissionRepository interface {
	FindLatest(ctx context.Context, role models.Role, menuPath string) (*models.Permission, error)
	Create(ctx context.Context, perm *models.Permission) error
	UpdateCapabilities(ctx context.Context, id int64, caps models.Capabilities) error
	List(ctx context.Context, role *models.Role) ([]models.Permission, error)
	ListMenus(ctx context.Context) ([]models.Menu, error)
	CreateIfAbsent(ctx context.Context, perm *models.Permission) (bool, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PermissionService answers capability checks and manages permission rows.
type PermissionService struct {
	repo   permissionRepository
	audit  auditRecorder
	roles  models.RoleTable
	logger *zap.Logger
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(repo permissionRepository, audit auditRecorder, roles models.RoleTable, logger *zap.Logger) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{repo: repo, audit: audit, roles: roles, logger: logger}
}

// HasCapability reports whether role holds capability on menuPath. A missing
// row denies; there is no wildcard or inheritance.
func (s *PermissionService) HasCapability(ctx context.Context, role models.Role, menuPath string, capability models.Capability) (bool, error) {
	perm, err := s.repo.FindLatest(ctx, role, normalizePath(menuPath))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Store(err, "failed to load permission")
	}
	return perm.Has(capability), nil
}

// Require returns FORBIDDEN unless role holds capability on menuPath.
func (s *PermissionService) Require(ctx context.Context, role models.Role, menuPath string, capability models.Capability) error {
	ok, err := s.HasCapability(ctx, role, menuPath, capability)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "missing "+string(capability)+" permission on "+menuPath)
	}
	return nil
}

// SetCapabilities overwrites the newest row for (role, menuPath), inserting one
// when none exists.
func (s *PermissionService) SetCapabilities(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error) {
	if err := s.checkRole(role); err != nil {
		return nil, err
	}
	menuPath = normalizePath(menuPath)

	perm, err := s.repo.FindLatest(ctx, role, menuPath)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		perm = &models.Permission{Role: role, MenuPath: menuPath, Capabilities: caps}
		if err := s.repo.Create(ctx, perm); err != nil {
			return nil, appErrors.Store(err, "failed to create permission")
		}
		s.record(ctx, actorID, nil, perm)
		return perm, nil
	case err != nil:
		return nil, appErrors.Store(err, "failed to load permission")
	}

	before := *perm
	if err := s.repo.UpdateCapabilities(ctx, perm.ID, caps); err != nil {
		return nil, appErrors.Store(err, "failed to update permission")
	}
	perm.Capabilities = caps
	s.record(ctx, actorID, &before, perm)
	return perm, nil
}

// CreatePermissionRow always inserts a new row; lookups then prefer it.
func (s *PermissionService) CreatePermissionRow(ctx context.Context, role models.Role, menuPath string, caps models.Capabilities, actorID int64) (*models.Permission, error) {
	if err := s.checkRole(role); err != nil {
		return nil, err
	}
	perm := &models.Permission{Role: role, MenuPath: normalizePath(menuPath), Capabilities: caps}
	if err := s.repo.Create(ctx, perm); err != nil {
		return nil, appErrors.Store(err, "failed to create permission")
	}
	s.record(ctx, actorID, nil, perm)
	return perm, nil
}

// List returns permission rows, optionally for one role.
func (s *PermissionService) List(ctx context.Context, role *models.Role) ([]models.Permission, error) {
	perms, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list permissions")
	}
	if perms == nil {
		perms = []models.Permission{}
	}
	return perms, nil
}

// Menus returns the menu registry.
func (s *PermissionService) Menus(ctx context.Context) ([]models.Menu, error) {
	menus, err := s.repo.ListMenus(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list menus")
	}
	if menus == nil {
		menus = []models.Menu{}
	}
	return menus, nil
}

// SeedDefaults writes the stock permission rows that are missing. Rows that
// already exist for a (role, path) pair are left alone, so running it twice
// changes nothing. It returns the number of rows written.
func (s *PermissionService) SeedDefaults(ctx context.Context) (int, error) {
	menus, err := s.Menus(ctx)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, perm := range DefaultPermissions(s.roles, menus) {
		perm := perm
		ok, err := s.repo.CreateIfAbsent(ctx, &perm)
		if err != nil {
			return written, appErrors.Store(err, "failed to seed permissions")
		}
		if ok {
			written++
		}
	}
	s.logger.Info("permission defaults seeded", zap.Int("written", written))
	return written, nil
}

// DefaultPermissions lists the stock grants for every role in roles. Roles
// ranked at or above manager get every capability on every menu.
func DefaultPermissions(roles models.RoleTable, menus []models.Menu) []models.Permission {
	managerRank, _ := roles.Rank(models.RoleManager)
	read := models.Capabilities{Read: true}
	edit := models.Capabilities{Create: true, Read: true, Update: true, Delete: true}
	readDownload := models.Capabilities{Read: true, Download: true}

	fixed := map[models.Role]map[string]models.Capabilities{
		models.RoleTeacher: {
			MenuCalendar:     edit,
			MenuAvailability: edit,
			MenuLessons:      read,
		},
		models.RoleAccountant: {
			MenuPayments: readDownload,
			MenuReports:  readDownload,
			MenuLessons:  readDownload,
		},
		models.RoleStudent: {
			MenuCalendar: read,
		},
	}

	var out []models.Permission
	for _, role := range roles.Roles() {
		rank, _ := roles.Rank(role)
		if managerRank > 0 && rank >= managerRank {
			for _, menu := range menus {
				out = append(out, models.Permission{Role: role, MenuPath: menu.Path, Capabilities: models.AllCapabilities()})
			}
			continue
		}
		for _, menu := range menus {
			if caps, ok := fixed[role][menu.Path]; ok {
				out = append(out, models.Permission{Role: role, MenuPath: menu.Path, Capabilities: caps})
			}
		}
	}
	return out
}

func (s *PermissionService) checkRole(role models.Role) error {
	if _, ok := s.roles.Rank(role); !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown role "+string(role))
	}
	return nil
}

func (s *PermissionService) record(ctx context.Context, actorID int64, before, after *models.Permission) {
	if s.audit == nil {
		return
	}
	var oldValues []byte
	if before != nil {
		oldValues, _ = json.Marshal(before.Capabilities)
	}
	newValues, _ := json.Marshal(after)
	resourceID := string(after.Role) + ":" + after.MenuPath
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionPermissionUpdate,
		Resource:   "permissions",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}); err != nil {
		s.logger.Warn("failed to record permission audit log", zap.Error(err))
	}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	return path
}
