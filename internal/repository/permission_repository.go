package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const permissionColumns = `id, role, menu_path, can_create, can_read, can_update, can_delete, can_download, created_at, updated_at`

// PermissionRepository reads and writes role permission rows.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs a permission repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// FindLatest returns the most recently created row for (role, menuPath).
// Duplicate rows are tolerated; the newest one wins.
func (r *PermissionRepository) FindLatest(ctx context.Context, role models.Role, menuPath string) (*models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE role = $1 AND menu_path = $2 ORDER BY created_at DESC, id DESC LIMIT 1`
	var perm models.Permission
	if err := r.db.GetContext(ctx, &perm, query, role, menuPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return &perm, nil
}

// Create inserts a permission row.
func (r *PermissionRepository) Create(ctx context.Context, perm *models.Permission) error {
	now := time.Now().UTC()
	if perm.CreatedAt.IsZero() {
		perm.CreatedAt = now
	}
	perm.UpdatedAt = now
	const query = `INSERT INTO permissions (role, menu_path, can_create, can_read, can_update, can_delete, can_download, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		perm.Role, perm.MenuPath, perm.Create, perm.Read, perm.Update, perm.Delete, perm.Download, perm.CreatedAt, perm.UpdatedAt,
	).Scan(&perm.ID)
	if err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

// UpdateCapabilities overwrites the flags of an existing row.
func (r *PermissionRepository) UpdateCapabilities(ctx context.Context, id int64, caps models.Capabilities) error {
	const query = `UPDATE permissions SET can_create = $2, can_read = $3, can_update = $4, can_delete = $5, can_download = $6, updated_at = $7 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, caps.Create, caps.Read, caps.Update, caps.Delete, caps.Download, time.Now().UTC()); err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	return nil
}

// List returns permission rows, optionally for a single role.
func (r *PermissionRepository) List(ctx context.Context, role *models.Role) ([]models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions`
	args := []interface{}{}
	if role != nil {
		query += " WHERE role = $1"
		args = append(args, *role)
	}
	query += " ORDER BY role ASC, menu_path ASC, created_at DESC, id DESC"

	var perms []models.Permission
	if err := r.db.SelectContext(ctx, &perms, query, args...); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

// ListMenus returns the menu registry.
func (r *PermissionRepository) ListMenus(ctx context.Context) ([]models.Menu, error) {
	var menus []models.Menu
	if err := r.db.SelectContext(ctx, &menus, "SELECT id, path, title, created_at FROM menus ORDER BY path ASC"); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// CreateIfAbsent inserts perm only when no row exists for its role and path.
// It reports whether a row was written.
func (r *PermissionRepository) CreateIfAbsent(ctx context.Context, perm *models.Permission) (bool, error) {
	now := time.Now().UTC()
	const query = `INSERT INTO permissions (role, menu_path, can_create, can_read, can_update, can_delete, can_download, created_at, updated_at)
SELECT $1, $2, $3, $4, $5, $6, $7, $8, $8
WHERE NOT EXISTS (SELECT 1 FROM permissions WHERE role = $1 AND menu_path = $2)`
	res, err := r.db.ExecContext(ctx, query, perm.Role, perm.MenuPath, perm.Create, perm.Read, perm.Update, perm.Delete, perm.Download, now)
	if err != nil {
		return false, fmt.Errorf("seed permission %s %s: %w", perm.Role, perm.MenuPath, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed permission %s %s: %w", perm.Role, perm.MenuPath, err)
	}
	return affected > 0, nil
}
