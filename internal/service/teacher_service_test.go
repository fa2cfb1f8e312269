package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

func newTeacherServiceForTest(t *testing.T, db *memDB) (*TeacherService, func()) {
	tx, mock := newTxProviderMock(t)
	svc := NewTeacherService(memTeachers{db}, memLedger{db}, memSlots{db}, tx, db, nil, nil)
	return svc, func() {
		mock.ExpectBegin()
		mock.ExpectCommit()
		t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	}
}

func TestTeacherServiceCreateAppliesDefaults(t *testing.T) {
	db := newMemDB()
	svc, _ := newTeacherServiceForTest(t, db)

	teacher, err := svc.Create(context.Background(), dto.TeacherRequest{
		Name:        " Ana ",
		Gender:      "Female",
		Mobile:      strPtr("  "),
		Specialties: []string{" math ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", teacher.Name)
	assert.Equal(t, models.GenderFemale, teacher.Gender)
	assert.Nil(t, teacher.Mobile)
	assert.Equal(t, []string{"math"}, []string(teacher.Specialties))
	assert.Equal(t, "09:00", teacher.WorkingHoursStart)
	assert.Equal(t, "17:00", teacher.WorkingHoursEnd)
	assert.Equal(t, 8, teacher.MaxHoursPerDay)
	assert.Equal(t, 40, teacher.MaxHoursPerWeek)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, []string(teacher.AvailableDays))
	assert.Equal(t, 1, db.invalidated)
}

func TestTeacherServiceCreateExplicitValues(t *testing.T) {
	svc, _ := newTeacherServiceForTest(t, newMemDB())

	teacher, err := svc.Create(context.Background(), dto.TeacherRequest{
		Name:              "Ben",
		Gender:            "male",
		WorkingHoursStart: "08:30",
		WorkingHoursEnd:   "12:00",
		MaxHoursPerDay:    intPtr(0),
		MaxHoursPerWeek:   intPtr(12),
		AvailableDays:     []string{"sunday", "Monday", "monday"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, teacher.MaxHoursPerDay)
	assert.Equal(t, 12, teacher.MaxHoursPerWeek)
	assert.Equal(t, []string{"Monday", "Sunday"}, []string(teacher.AvailableDays))

	unrestricted, err := svc.Create(context.Background(), dto.TeacherRequest{Name: "Cy", Gender: "other", AvailableDays: []string{}})
	require.NoError(t, err)
	assert.Empty(t, unrestricted.AvailableDays)
	assert.NotNil(t, unrestricted.AvailableDays)
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	db := newMemDB()
	db.addTeacher("Ana")
	svc, _ := newTeacherServiceForTest(t, db)

	cases := map[string]dto.TeacherRequest{
		"duplicate name": {Name: "ANA", Gender: "female"},
		"bad gender":     {Name: "Dee", Gender: "robot"},
		"bad day":        {Name: "Dee", Gender: "female", AvailableDays: []string{"Caturday"}},
		"bad clock":      {Name: "Dee", Gender: "female", WorkingHoursStart: "9am"},
		"inverted hours": {Name: "Dee", Gender: "female", WorkingHoursStart: "18:00", WorkingHoursEnd: "09:00"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
	assert.Len(t, db.teachers, 1)
}

func TestTeacherServiceUpdateKeepsPlacement(t *testing.T) {
	db := newMemDB()
	ana := db.addTeacher("Ana")
	day := models.Monday
	db.teachers[0].BranchID = strPtr("branch-x")
	db.teachers[0].AssignedDay = &day
	svc, _ := newTeacherServiceForTest(t, db)

	updated, err := svc.Update(context.Background(), ana.ID, dto.TeacherRequest{Name: "Ana Maria", Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	require.NotNil(t, db.teachers[0].BranchID)
	assert.Equal(t, "branch-x", *db.teachers[0].BranchID)

	_, err = svc.Update(context.Background(), "ghost", dto.TeacherRequest{Name: "X", Gender: "female"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTeacherServiceGetAttachesLedger(t *testing.T) {
	db := newMemDB()
	ana := db.addTeacher("Ana")
	db.ledger = append(db.ledger, models.WeeklyAssignment{ID: "l-1", TeacherID: ana.ID, BranchID: "b", DayOfWeek: models.Monday, WeekStartDate: "2024-06-02"})
	svc, _ := newTeacherServiceForTest(t, db)

	teacher, err := svc.Get(context.Background(), ana.ID)
	require.NoError(t, err)
	assert.Len(t, teacher.WeeklyAssignments, 1)

	_, err = svc.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTeacherServiceListSortsIgnoringCase(t *testing.T) {
	db := newMemDB()
	db.addTeacher("bea")
	db.addTeacher("Ana")
	db.addTeacher("Carl")
	svc, _ := newTeacherServiceForTest(t, db)

	teachers, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", teachers[0].Name)
	assert.Equal(t, "bea", teachers[1].Name)
	assert.Equal(t, "Carl", teachers[2].Name)
}

func TestTeacherServiceRemoveCascades(t *testing.T) {
	db := newMemDB()
	ana := db.addTeacher("Ana")
	ben := db.addTeacher("Ben")
	db.ledger = append(db.ledger,
		models.WeeklyAssignment{ID: "l-1", TeacherID: ana.ID, BranchID: "b", DayOfWeek: models.Monday, WeekStartDate: "2024-06-02"},
		models.WeeklyAssignment{ID: "l-2", TeacherID: ben.ID, BranchID: "c", DayOfWeek: models.Monday, WeekStartDate: "2024-06-02"},
	)
	db.slots = append(db.slots, models.TimeSlot{ID: "s-1", TeacherID: ana.ID})
	svc, expectCommit := newTeacherServiceForTest(t, db)
	expectCommit()

	require.NoError(t, svc.Remove(context.Background(), ana.ID))
	require.Len(t, db.teachers, 1)
	require.Len(t, db.ledger, 1)
	assert.Equal(t, ben.ID, db.ledger[0].TeacherID)
	assert.Empty(t, db.slots)
	assert.Equal(t, 1, db.invalidated)
}
