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

const availabilitySelect = `SELECT a.id, a.teacher_id, a.start_at, a.end_at, a.recurrence_rule, a.created_at,
COALESCE(u.first_name, '') AS teacher_first_name, COALESCE(u.last_name, '') AS teacher_last_name
FROM availability_windows a
LEFT JOIN users u ON u.id = a.teacher_id`

// AvailabilityRepository stores teacher availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// List returns windows with teacher names. A nil teacherID lists every teacher.
func (r *AvailabilityRepository) List(ctx context.Context, teacherID *int64) ([]models.AvailabilityWindow, error) {
	query := availabilitySelect
	args := []interface{}{}
	if teacherID != nil {
		query += " WHERE a.teacher_id = $1"
		args = append(args, *teacherID)
	}
	query += " ORDER BY a.start_at ASC, a.id ASC"

	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return windows, nil
}

// FindByID returns a single window.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id int64) (*models.AvailabilityWindow, error) {
	query := availabilitySelect + " WHERE a.id = $1"
	var window models.AvailabilityWindow
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find availability: %w", err)
	}
	return &window, nil
}

// Create inserts a window and assigns its generated id.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	if window.CreatedAt.IsZero() {
		window.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO availability_windows (teacher_id, start_at, end_at, recurrence_rule, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		window.TeacherID, window.StartAt, window.EndAt, window.RecurrenceRule, window.CreatedAt,
	).Scan(&window.ID)
	if err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// Delete removes a window, returning sql.ErrNoRows when it does not exist.
func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM availability_windows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
