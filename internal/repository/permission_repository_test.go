package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

var permissionRowColumns = []string{"id", "role", "menu_path", "can_create", "can_read", "can_update", "can_delete", "can_download", "created_at", "updated_at"}

func TestPermissionFindLatestOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(permissionRowColumns).AddRow(4, "teacher", "/calendar", true, true, false, false, false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE role = $1 AND menu_path = $2 ORDER BY created_at DESC, id DESC LIMIT 1")).
		WithArgs(models.RoleTeacher, "/calendar").
		WillReturnRows(rows)

	perm, err := repo.FindLatest(context.Background(), models.RoleTeacher, "/calendar")
	require.NoError(t, err)
	assert.Equal(t, int64(4), perm.ID)
	assert.True(t, perm.Has(models.CapabilityCreate))
	assert.False(t, perm.Has(models.CapabilityDelete))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionFindLatestNoRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery("FROM permissions").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindLatest(context.Background(), models.RoleStudent, "/payments")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionCreateIfAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectExec("INSERT INTO permissions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO permissions").WillReturnResult(sqlmock.NewResult(0, 0))

	perm := &models.Permission{Role: models.RoleTeacher, MenuPath: "/lessons", Capabilities: models.Capabilities{Read: true}}
	written, err := repo.CreateIfAbsent(context.Background(), perm)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = repo.CreateIfAbsent(context.Background(), perm)
	require.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionUpdateCapabilities(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectExec("UPDATE permissions SET").
		WithArgs(int64(4), true, true, true, false, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateCapabilities(context.Background(), 4, models.Capabilities{Create: true, Read: true, Update: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
