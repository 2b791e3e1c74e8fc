package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

const lessonColumns = `id, student_id, teacher_id, start_at, end_at, class_type, class_status, payment_status, recurrence_rule, created_at, updated_at`

const lessonDetailSelect = `SELECT l.id, l.student_id, l.teacher_id, l.start_at, l.end_at, l.class_type, l.class_status, l.payment_status,
l.recurrence_rule, l.created_at, l.updated_at,
COALESCE(s.first_name, '') AS student_first_name, COALESCE(s.last_name, '') AS student_last_name,
COALESCE(t.first_name, '') AS teacher_first_name, COALESCE(t.last_name, '') AS teacher_last_name
FROM lessons l
LEFT JOIN users s ON s.id = l.student_id
LEFT JOIN users t ON t.id = l.teacher_id`

// LessonRepository persists lessons shown on the calendar.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create inserts a lesson and assigns its generated id.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	if lesson.ClassStatus == "" {
		lesson.ClassStatus = models.ClassStatusScheduled
	}

	const query = `INSERT INTO lessons (student_id, teacher_id, start_at, end_at, class_type, class_status, payment_status, recurrence_rule, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		lesson.StudentID, lesson.TeacherID, lesson.StartAt, lesson.EndAt, lesson.ClassType, lesson.ClassStatus,
		lesson.PaymentStatus, lesson.RecurrenceRule, lesson.CreatedAt, lesson.UpdatedAt,
	).Scan(&lesson.ID)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// FindByID returns a stored lesson.
func (r *LessonRepository) FindByID(ctx context.Context, id int64) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &lesson, nil
}

// FindByIDs returns the stored lessons among ids. Unknown ids are skipped.
func (r *LessonRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Lesson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = ANY($1)`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find lessons: %w", err)
	}
	return lessons, nil
}

// FindDetail returns a lesson joined with participant names.
func (r *LessonRepository) FindDetail(ctx context.Context, id int64) (*models.LessonDetail, error) {
	query := lessonDetailSelect + ` WHERE l.id = $1`
	var lesson models.LessonDetail
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson detail: %w", err)
	}
	return &lesson, nil
}

// ListDetailed returns lessons matching filter ordered by start time.
func (r *LessonRepository) ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	var f filterSet
	if filter.TeacherID != nil {
		f.add("l.teacher_id = $%d", *filter.TeacherID)
	}
	if filter.StudentID != nil {
		f.add("l.student_id = $%d", *filter.StudentID)
	}
	if filter.ClassStatus != nil {
		f.add("l.class_status = $%d", *filter.ClassStatus)
	}
	if filter.From != nil {
		if filter.StartOnly {
			f.add("l.start_at >= $%d", *filter.From)
		} else {
			f.add("l.end_at > $%d", *filter.From)
		}
	}
	if filter.To != nil {
		f.add("l.start_at < $%d", *filter.To)
	}

	query := lessonDetailSelect + f.where() + " ORDER BY l.start_at ASC, l.id ASC"
	var lessons []models.LessonDetail
	if err := r.db.SelectContext(ctx, &lessons, query, f.args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Patch writes the present fields of patch. It returns sql.ErrNoRows when
// the lesson does not exist. An empty patch touches nothing.
func (r *LessonRepository) Patch(ctx context.Context, id int64, patch models.LessonPatch) error {
	if patch.Empty() {
		return nil
	}

	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if patch.StudentID != nil {
		add("student_id", *patch.StudentID)
	}
	if patch.TeacherID != nil {
		add("teacher_id", *patch.TeacherID)
	}
	if patch.StartAt != nil {
		add("start_at", *patch.StartAt)
	}
	if patch.EndAt != nil {
		add("end_at", *patch.EndAt)
	}
	if patch.ClassType != nil {
		add("class_type", *patch.ClassType)
	}
	if patch.ClassStatus != nil {
		add("class_status", *patch.ClassStatus)
	}
	if patch.PaymentStatus != nil {
		add("payment_status", *patch.PaymentStatus)
	}
	if patch.RecurrenceRule != nil {
		add("recurrence_rule", *patch.RecurrenceRule)
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE lessons SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)+1)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch lesson %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch lesson %d: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMany removes every listed lesson in a single statement and reports
// how many rows went away.
func (r *LessonRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	return affected, nil
}
