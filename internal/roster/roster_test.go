package roster

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-roster-api/internal/models"
)

const week = "2024-06-02"

func strPtr(s string) *string { return &s }

func fixture() Snapshot {
	return Snapshot{
		Branches: []models.Branch{
			{ID: "b-north", Name: "North Campus", Color: "#3366ff"},
			{ID: "b-south", Name: "South Campus", Color: "bg-red-500"},
			{ID: "b-east", Name: "East Wing", Color: "bg-green-500"},
			{ID: "b-idle", Name: "Annex", Color: "bg-gray-500"},
		},
		Schedules: []models.BranchSchedule{
			{ID: "s-north", BranchID: "b-north", DayOfWeek: models.Monday, IsActive: true},
			{ID: "s-south", BranchID: "b-south", DayOfWeek: models.Monday, IsActive: true},
			{ID: "s-east", BranchID: "b-east", DayOfWeek: models.Wednesday, IsActive: true},
			{ID: "s-ghost", BranchID: "b-deleted", DayOfWeek: models.Friday, IsActive: true},
		},
		Teachers: []models.Teacher{
			{ID: "t-ana", Name: "Ana", WorkingHoursStart: "09:00", WorkingHoursEnd: "17:00", MaxHoursPerDay: 8, MaxHoursPerWeek: 40, AvailableDays: []string{"Monday", "Tuesday"}},
			{ID: "t-ben", Name: "Ben", WorkingHoursStart: "09:00", WorkingHoursEnd: "13:00"},
		},
		Assignments: []models.WeeklyAssignment{
			{ID: "w-1", TeacherID: "t-ana", BranchID: "b-north", DayOfWeek: models.Monday, WeekStartDate: week},
			{ID: "w-old", TeacherID: "t-ben", BranchID: "b-south", DayOfWeek: models.Monday, WeekStartDate: "2024-05-26"},
		},
	}
}

func TestScheduleGridPairsTeachersForWeek(t *testing.T) {
	grid := New(fixture()).ScheduleGrid(week)

	require.Len(t, grid.Days, 7)
	assert.Equal(t, models.Monday, grid.Days[0].Day)
	assert.Equal(t, models.Sunday, grid.Days[6].Day)

	monday := grid.Day(models.Monday)
	require.Len(t, monday, 2)
	assert.Equal(t, "North Campus", monday[0].Branch.Name)
	require.NotNil(t, monday[0].Teacher)
	assert.Equal(t, "Ana", monday[0].Teacher.Name)
	assert.Equal(t, "w-1", monday[0].AssignmentID)
	assert.Nil(t, monday[1].Teacher, "last week's row must not leak into this week")
}

func TestScheduleGridDropsDanglingBranch(t *testing.T) {
	grid := New(fixture()).ScheduleGrid(week)
	assert.Empty(t, grid.Day(models.Friday))
}

func TestScheduleGridDropsDanglingTeacher(t *testing.T) {
	snap := fixture()
	snap.Assignments = append(snap.Assignments, models.WeeklyAssignment{ID: "w-x", TeacherID: "t-gone", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week})

	wednesday := New(snap).ScheduleGrid(week).Day(models.Wednesday)
	require.Len(t, wednesday, 1)
	assert.Nil(t, wednesday[0].Teacher)
}

func TestScheduleGridSingleUnassignedBranch(t *testing.T) {
	snap := Snapshot{
		Branches:  []models.Branch{{ID: "n", Name: "N"}},
		Schedules: []models.BranchSchedule{{ID: "s", BranchID: "n", DayOfWeek: models.Monday, IsActive: true}},
	}
	grid := New(snap).ScheduleGrid(week)

	for _, d := range grid.Days {
		if d.Day == models.Monday {
			require.Len(t, d.Rows, 1)
			assert.Equal(t, "N", d.Rows[0].Branch.Name)
			assert.Nil(t, d.Rows[0].Teacher)
			continue
		}
		assert.Empty(t, d.Rows, string(d.Day))
	}
}

func TestAvailableBranchesForDay(t *testing.T) {
	p := New(fixture())

	names := func(bs []models.Branch) []string {
		out := make([]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, b.Name)
		}
		return out
	}

	assert.Equal(t, []string{"South Campus"}, names(p.AvailableBranchesForDay(models.Monday, week, "")))
	assert.Equal(t, []string{"North Campus", "South Campus"}, names(p.AvailableBranchesForDay(models.Monday, "2024-06-09", "")))
	assert.Empty(t, p.AvailableBranchesForDay(models.Monday, week, "north"))
	assert.Empty(t, p.AvailableBranchesForDay(models.Friday, week, ""))
}

func TestAvailableTeachersForDay(t *testing.T) {
	p := New(fixture())

	monday := p.AvailableTeachersForDay(models.Monday, week, "")
	require.Len(t, monday, 1)
	assert.Equal(t, "Ben", monday[0].Name)

	assert.Len(t, p.AvailableTeachersForDay(models.Tuesday, week, ""), 2)
	assert.Len(t, p.AvailableTeachersForDay(models.Tuesday, week, "AN"), 1)
}

func TestSearchGrid(t *testing.T) {
	grid := New(fixture()).ScheduleGrid(week)

	all := SearchGrid(grid, SearchBranch, "")
	require.Len(t, all.Days, 2)
	assert.Equal(t, models.Monday, all.Days[0].Day)
	assert.Equal(t, models.Wednesday, all.Days[1].Day)

	byBranch := SearchGrid(grid, SearchBranch, "south")
	require.Len(t, byBranch.Days, 1)
	assert.Len(t, byBranch.Days[0].Rows, 2, "matching day keeps all of its rows")

	byTeacher := SearchGrid(grid, SearchTeacher, "ANA")
	require.Len(t, byTeacher.Days, 1)
	assert.Equal(t, models.Monday, byTeacher.Days[0].Day)

	byDay := SearchGrid(grid, SearchDay, "wed")
	require.Len(t, byDay.Days, 1)
	assert.Equal(t, models.Wednesday, byDay.Days[0].Day)

	assert.Empty(t, SearchGrid(grid, SearchDay, "friday").Days)
}

func TestParseSearchType(t *testing.T) {
	st, err := ParseSearchType("")
	require.NoError(t, err)
	assert.Equal(t, SearchBranch, st)

	st, err = ParseSearchType("Teacher")
	require.NoError(t, err)
	assert.Equal(t, SearchTeacher, st)

	_, err = ParseSearchType("room")
	assert.Error(t, err)
}

func TestUnscheduledBranchesAndSorting(t *testing.T) {
	p := New(fixture())
	unscheduled := p.UnscheduledBranches()
	require.Len(t, unscheduled, 1)
	assert.Equal(t, "Annex", unscheduled[0].Name)

	branches := []models.Branch{{Name: "b"}, {Name: "B"}, {Name: "a"}}
	SortBranchesByName(branches)
	assert.Equal(t, []string{"B", "a", "b"}, []string{branches[0].Name, branches[1].Name, branches[2].Name})
}

func TestTeacherViewAttachesLedger(t *testing.T) {
	snap := fixture()
	snap.Assignments = append(snap.Assignments, models.WeeklyAssignment{ID: "w-2", TeacherID: "t-ben", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week})
	p := New(snap)

	ben, ok := p.TeacherView("t-ben")
	require.True(t, ok)
	require.Len(t, ben.WeeklyAssignments, 2)
	assert.Equal(t, week, ben.WeeklyAssignments[0].WeekStartDate)

	_, ok = p.TeacherView("nobody")
	assert.False(t, ok)
}

func TestOverview(t *testing.T) {
	ov := New(fixture()).Overview(week)
	assert.Equal(t, 4, ov.Branches)
	assert.Equal(t, 2, ov.Teachers)
	assert.Equal(t, 3, ov.ScheduledBranches)
	assert.Equal(t, 1, ov.UnscheduledBranches)
	assert.Equal(t, 1, ov.AssignedSlots)
	assert.Equal(t, 2, ov.OpenSlots)
	assert.Equal(t, 0, ov.Conflicts)
}

func TestExportRows(t *testing.T) {
	snap := fixture()
	snap.Teachers[0].Mobile = strPtr("0812")
	headers, rows := New(snap).Export(week)
	assert.Equal(t, []string{"Day", "Branch", "Teacher", "Mobile"}, headers)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Monday", "North Campus", "Ana", "0812"}, rows[0])
	assert.Equal(t, []string{"Wednesday", "East Wing", "", ""}, rows[2])
}

func TestDetectConflictsNoneForCleanWeek(t *testing.T) {
	assert.Empty(t, New(fixture()).DetectConflicts(week))
}

func TestDetectConflictsDoubleBookingAndAvailability(t *testing.T) {
	snap := fixture()
	snap.Assignments = append(snap.Assignments,
		models.WeeklyAssignment{ID: "w-dup", TeacherID: "t-ana", BranchID: "b-south", DayOfWeek: models.Monday, WeekStartDate: week},
		models.WeeklyAssignment{ID: "w-wed", TeacherID: "t-ana", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week},
	)

	conflicts := New(snap).DetectConflicts(week)
	byID := map[string]models.ScheduleConflict{}
	for _, c := range conflicts {
		byID[c.ID] = c
	}

	require.Contains(t, byID, "double_booking:t-ana:w-dup")
	assert.Equal(t, models.ConflictDoubleBooking, byID["double_booking:t-ana:w-dup"].Type)

	require.Contains(t, byID, "availability:t-ana:w-wed")
	assert.Contains(t, byID["availability:t-ana:w-wed"].Description, "Wednesday")

	// Two 8h rows on Monday exceed the 8h daily maximum.
	require.Contains(t, byID, "max_hours:t-ana:w-dup")
	assert.NotContains(t, byID, "availability:t-ana:w-1")
}

func TestDetectConflictsUsesTimeSlotHours(t *testing.T) {
	start := time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC)
	snap := fixture()
	snap.Teachers[1].MaxHoursPerDay = 3
	snap.Assignments = append(snap.Assignments,
		models.WeeklyAssignment{ID: "w-ben", TeacherID: "t-ben", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week})

	// Ben's working span is 4h, which alone breaks the 3h maximum.
	require.Len(t, New(snap).DetectConflicts(week), 1)

	// A 2h lesson at the branch replaces the working span.
	snap.TimeSlots = []models.TimeSlot{{ID: "ts-1", TeacherID: "t-ben", BranchID: strPtr("b-east"), StartsAt: start, EndsAt: start.Add(2 * time.Hour)}}
	assert.Empty(t, New(snap).DetectConflicts(week))
}

func wednesdayLessons(teacherID, branchID string, from time.Time, weeks int, recurring bool) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, weeks)
	for i := 0; i < weeks; i++ {
		start := from.AddDate(0, 0, 7*i)
		slots = append(slots, models.TimeSlot{
			ID:          fmt.Sprintf("ts-%s-%d", teacherID, i),
			TeacherID:   teacherID,
			BranchID:    strPtr(branchID),
			Subject:     "Maths",
			StartsAt:    start,
			EndsAt:      start.Add(2 * time.Hour),
			IsRecurring: recurring,
		})
	}
	return slots
}

func TestDetectConflictsCountsOnlyThisWeeksLessons(t *testing.T) {
	snap := fixture()
	snap.Teachers[0].AvailableDays = nil
	snap.Assignments = []models.WeeklyAssignment{
		{ID: "w-wed", TeacherID: "t-ana", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week},
	}

	// Ten weekly 2h lessons ending the Wednesday before this week.
	snap.TimeSlots = wednesdayLessons("t-ana", "b-east", time.Date(2024, 3, 27, 9, 0, 0, 0, time.UTC), 10, false)
	assert.Empty(t, New(snap).DetectConflicts(week))

	// Extending the run into this week and later ones adds only this week's lesson.
	snap.TimeSlots = wednesdayLessons("t-ana", "b-east", time.Date(2024, 3, 27, 9, 0, 0, 0, time.UTC), 14, false)
	snap.Teachers[0].MaxHoursPerDay = 1
	conflicts := New(snap).DetectConflicts(week)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "max_hours:t-ana:w-wed", conflicts[0].ID)
	assert.Contains(t, conflicts[0].Description, "scheduled 2 hours on Wednesday")
}

func TestDetectConflictsLessonWeekdayAndRecurrence(t *testing.T) {
	snap := fixture()
	snap.Teachers[1].MaxHoursPerDay = 3
	snap.Assignments = append(snap.Assignments,
		models.WeeklyAssignment{ID: "w-ben", TeacherID: "t-ben", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week})

	// A Monday lesson in the same week does not describe the Wednesday row,
	// so Ben's 4h working span applies.
	monday := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	snap.TimeSlots = []models.TimeSlot{{ID: "ts-mon", TeacherID: "t-ben", BranchID: strPtr("b-east"), StartsAt: monday, EndsAt: monday.Add(2 * time.Hour)}}
	require.Len(t, New(snap).DetectConflicts(week), 1)

	// A recurring Wednesday lesson first held in April counts every week.
	snap.TimeSlots = wednesdayLessons("t-ben", "b-east", time.Date(2024, 4, 3, 9, 0, 0, 0, time.UTC), 1, true)
	assert.Empty(t, New(snap).DetectConflicts(week))
}

func TestDetectConflictsWeeklyMaximum(t *testing.T) {
	snap := fixture()
	snap.Teachers[0].MaxHoursPerWeek = 10
	snap.Teachers[0].AvailableDays = nil
	snap.Assignments = append(snap.Assignments,
		models.WeeklyAssignment{ID: "w-wed", TeacherID: "t-ana", BranchID: "b-east", DayOfWeek: models.Wednesday, WeekStartDate: week})

	conflicts := New(snap).DetectConflicts(week)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "max_hours:t-ana:w-wed:week", conflicts[0].ID)
	assert.Contains(t, conflicts[0].Description, "16 hours")
}

func TestDetectConflictsIgnoresDanglingRows(t *testing.T) {
	snap := fixture()
	snap.Assignments = append(snap.Assignments,
		models.WeeklyAssignment{ID: "w-ghost", TeacherID: "t-ana", BranchID: "b-deleted", DayOfWeek: models.Monday, WeekStartDate: week})
	assert.Empty(t, New(snap).DetectConflicts(week))
}
