package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func mixedSource() Source {
	return Source{
		Teachers: []models.User{
			{ID: 1, FirstName: "Jane", LastName: "Doe", Role: models.RoleTeacher},
			{ID: 2, FirstName: "John", LastName: "Smith", Role: models.RoleTeacher},
		},
		Lessons: []models.LessonDetail{
			{Lesson: models.Lesson{ID: 10, TeacherID: 1, StudentID: 5, StartAt: at("10:00"), EndAt: at("11:00"), ClassType: "regular", PaymentStatus: models.PaymentStatusPaid}, StudentFirstName: "Ana", StudentLastName: "Lima"},
			{Lesson: models.Lesson{ID: 11, TeacherID: 2, StudentID: 6, StartAt: at("12:00"), EndAt: at("13:00")}, StudentFirstName: "Bo", StudentLastName: "Chen"},
			{Lesson: models.Lesson{ID: 12, TeacherID: 1, StudentID: 6, StartAt: at("14:00"), EndAt: at("14:30"), ClassType: "trial"}, StudentFirstName: "Bo", StudentLastName: "Chen"},
		},
		Windows: []models.AvailabilityWindow{
			{ID: 20, TeacherID: 1, StartAt: at("09:00"), EndAt: at("17:00"), TeacherFirstName: "Jane", TeacherLastName: "Doe"},
			{ID: 21, TeacherID: 2, StartAt: at("09:00"), EndAt: at("12:00"), TeacherFirstName: "John", TeacherLastName: "Smith"},
		},
	}
}

func TestVisibleTeacherSeesOnlyOwnRows(t *testing.T) {
	src := mixedSource()
	got := Visible(src, Viewer{UserID: 1, Role: models.RoleTeacher})

	require.Len(t, got.Teachers, 1)
	assert.EqualValues(t, 1, got.Teachers[0].ID)
	require.Len(t, got.Lessons, 2)
	for _, l := range got.Lessons {
		assert.EqualValues(t, 1, l.TeacherID)
	}
	require.Len(t, got.Windows, 1)
	assert.EqualValues(t, 1, got.Windows[0].TeacherID)

	assert.Len(t, src.Lessons, 3, "input must not be modified")
	assert.Equal(t, got, Visible(src, Viewer{UserID: 1, Role: models.RoleTeacher}))
}

func TestVisibleStaffSeeEverything(t *testing.T) {
	src := mixedSource()
	for _, role := range []models.Role{models.RoleManager, models.RoleAdmin} {
		got := Visible(src, Viewer{UserID: 99, Role: role})
		assert.Len(t, got.Teachers, 2)
		assert.Len(t, got.Lessons, 3)
		assert.Len(t, got.Windows, 2)
	}

	got := Visible(src, Viewer{UserID: 99, Role: models.RoleAdmin})
	got.Lessons[0].ClassType = "changed"
	assert.Equal(t, "regular", src.Lessons[0].ClassType, "result must not alias input")
}

func TestVisibleOtherRolesSeeNothing(t *testing.T) {
	src := mixedSource()
	for _, role := range []models.Role{models.RoleStudent, models.RoleAccountant, models.Role("guest")} {
		got := Visible(src, Viewer{UserID: 1, Role: role})
		assert.Empty(t, got.Teachers, role)
		assert.Empty(t, got.Lessons, role)
		assert.Empty(t, got.Windows, role)
		assert.NotNil(t, got.Lessons)
	}
}

func TestProject(t *testing.T) {
	view := Project(mixedSource())

	require.Len(t, view.Resources, 2)
	assert.Equal(t, Resource{ID: "1", Name: "Jane Doe", EventColor: "#485fa7"}, view.Resources[0])

	require.Len(t, view.Events, 3)
	assert.Equal(t, "Ana Lima / regular / paid", view.Events[0].Name)
	assert.Equal(t, "Bo Chen / Not assigned / Not assigned", view.Events[1].Name)
	assert.Equal(t, "5", view.Events[0].StudentName)
	assert.Equal(t, "1", view.Events[0].ResourceID)
	assert.False(t, view.Events[0].AllDay)

	require.Len(t, view.TimeRanges, 2)
	assert.Equal(t, "Jane Doe's availability", view.TimeRanges[0].Name)
	assert.Equal(t, "#485fa7", view.TimeRanges[0].Color)
	assert.EqualValues(t, 2, view.TimeRanges[1].TeacherID)
}
