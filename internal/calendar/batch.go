package calendar

import (
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

// OpKind names the closed set of batch operations.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpPatch  OpKind = "patch"
	OpDelete OpKind = "delete"
)

// Op is one operation of a reconciliation batch. Only the types in this
// package implement it.
type Op interface {
	Kind() OpKind
	sealed()
}

// CreateLesson persists a lesson proposed under a client phantom id.
// AssignmentPhantomID is the phantom id of the assignment that named the
// teacher, if any.
type CreateLesson struct {
	PhantomID           string
	AssignmentPhantomID string
	Lesson              models.Lesson
}

// PatchLesson writes only the fields present in Patch.
type PatchLesson struct {
	ID    int64
	Patch models.LessonPatch
}

// DeleteLessons removes every listed lesson in one statement.
type DeleteLessons struct {
	IDs []int64
}

func (CreateLesson) Kind() OpKind  { return OpCreate }
func (PatchLesson) Kind() OpKind   { return OpPatch }
func (DeleteLessons) Kind() OpKind { return OpDelete }

func (CreateLesson) sealed()  {}
func (PatchLesson) sealed()   {}
func (DeleteLessons) sealed() {}

// Validate checks the proposed lesson before anything is written.
func (c CreateLesson) Validate() error {
	switch {
	case c.Lesson.StudentID <= 0:
		return appErrors.Clone(appErrors.ErrValidation, "student reference is required")
	case c.Lesson.TeacherID <= 0:
		return appErrors.Clone(appErrors.ErrValidation, "teacher reference is required")
	case c.Lesson.StartAt.IsZero() || c.Lesson.EndAt.IsZero():
		return appErrors.Clone(appErrors.ErrValidation, "start and end are required")
	case !c.Lesson.EndAt.After(c.Lesson.StartAt):
		return appErrors.Clone(appErrors.ErrValidation, "end must be after start")
	case !c.Lesson.PaymentStatus.Valid():
		return appErrors.Clone(appErrors.ErrValidation, "unknown payment status")
	}
	return nil
}

// Batch is an ordered list of operations submitted together.
type Batch struct {
	Ops []Op
}

// Empty reports whether the batch would write nothing.
func (b Batch) Empty() bool {
	for _, op := range b.Ops {
		switch o := op.(type) {
		case CreateLesson:
			return false
		case PatchLesson:
			if !o.Patch.Empty() {
				return false
			}
		case DeleteLessons:
			if len(o.IDs) > 0 {
				return false
			}
		}
	}
	return true
}

// Split groups the operations by kind. Delete ids are merged and
// de-duplicated; empty patches are dropped.
func (b Batch) Split() (creates []CreateLesson, patches []PatchLesson, deletes []int64) {
	seen := make(map[int64]struct{})
	for _, op := range b.Ops {
		switch o := op.(type) {
		case CreateLesson:
			creates = append(creates, o)
		case PatchLesson:
			if !o.Patch.Empty() {
				patches = append(patches, o)
			}
		case DeleteLessons:
			for _, id := range o.IDs {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				deletes = append(deletes, id)
			}
		}
	}
	return creates, patches, deletes
}

// IDMapping pairs a client phantom id with the server id it became.
type IDMapping struct {
	PhantomID string `json:"$PhantomId"`
	ID        int64  `json:"id"`
}

// Result carries the phantom maps of a reconciled batch. Both are empty when
// nothing was created.
type Result struct {
	Events      []IDMapping
	Assignments []IDMapping
}
