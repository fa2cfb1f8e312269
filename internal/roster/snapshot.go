// Package roster projects read models over a point-in-time copy of the
// branch, schedule, teacher, ledger and time-slot tables.
package roster

import (
	"sort"
	"time"

	"github.com/noah-isme/branch-roster-api/internal/models"
)

// Snapshot is the full set of rows the projector reads. Slices keep the
// storage order (creation time).
type Snapshot struct {
	Branches    []models.Branch           `json:"branches"`
	Schedules   []models.BranchSchedule   `json:"schedules"`
	Teachers    []models.Teacher          `json:"teachers"`
	Assignments []models.WeeklyAssignment `json:"assignments"`
	TimeSlots   []models.TimeSlot         `json:"time_slots"`
}

type slotKey struct {
	branchID string
	day      models.Weekday
	week     string
}

type dayWeek struct {
	day  models.Weekday
	week string
}

type lessonKey struct {
	teacherID string
	branchID  string
	day       models.Weekday
}

// Index holds keyed lookups over a Snapshot.
type Index struct {
	branches         map[string]models.Branch
	teachers         map[string]models.Teacher
	schedulesByDay   map[models.Weekday][]models.BranchSchedule
	scheduleByBranch map[string]models.BranchSchedule
	bySlot           map[slotKey]models.WeeklyAssignment
	byDayWeek        map[dayWeek][]models.WeeklyAssignment
	byTeacher        map[string][]models.WeeklyAssignment
	byWeek           map[string][]models.WeeklyAssignment
	lessons          map[lessonKey][]models.TimeSlot
}

// NewIndex builds lookups in one pass over each table. When the store holds
// duplicate rows for a unique key the first in storage order wins.
func NewIndex(s Snapshot) *Index {
	idx := &Index{
		branches:         make(map[string]models.Branch, len(s.Branches)),
		teachers:         make(map[string]models.Teacher, len(s.Teachers)),
		schedulesByDay:   make(map[models.Weekday][]models.BranchSchedule),
		scheduleByBranch: make(map[string]models.BranchSchedule, len(s.Schedules)),
		bySlot:           make(map[slotKey]models.WeeklyAssignment, len(s.Assignments)),
		byDayWeek:        make(map[dayWeek][]models.WeeklyAssignment),
		byTeacher:        make(map[string][]models.WeeklyAssignment),
		byWeek:           make(map[string][]models.WeeklyAssignment),
		lessons:          make(map[lessonKey][]models.TimeSlot),
	}

	for _, b := range s.Branches {
		idx.branches[b.ID] = b
	}
	for _, t := range s.Teachers {
		idx.teachers[t.ID] = t
	}
	for _, sc := range s.Schedules {
		idx.schedulesByDay[sc.DayOfWeek] = append(idx.schedulesByDay[sc.DayOfWeek], sc)
		if _, ok := idx.scheduleByBranch[sc.BranchID]; !ok {
			idx.scheduleByBranch[sc.BranchID] = sc
		}
	}
	for _, a := range s.Assignments {
		key := slotKey{branchID: a.BranchID, day: a.DayOfWeek, week: a.WeekStartDate}
		if _, ok := idx.bySlot[key]; !ok {
			idx.bySlot[key] = a
		}
		dw := dayWeek{day: a.DayOfWeek, week: a.WeekStartDate}
		idx.byDayWeek[dw] = append(idx.byDayWeek[dw], a)
		idx.byTeacher[a.TeacherID] = append(idx.byTeacher[a.TeacherID], a)
		idx.byWeek[a.WeekStartDate] = append(idx.byWeek[a.WeekStartDate], a)
	}
	for _, ts := range s.TimeSlots {
		if ts.BranchID == nil {
			continue
		}
		key := lessonKey{teacherID: ts.TeacherID, branchID: *ts.BranchID, day: models.WeekdayOf(ts.StartsAt.UTC())}
		idx.lessons[key] = append(idx.lessons[key], ts)
	}

	return idx
}

// Branch resolves a branch id.
func (i *Index) Branch(id string) (models.Branch, bool) {
	b, ok := i.branches[id]
	return b, ok
}

// Teacher resolves a teacher id.
func (i *Index) Teacher(id string) (models.Teacher, bool) {
	t, ok := i.teachers[id]
	return t, ok
}

// ScheduleForBranch returns the branch's schedule row, if any.
func (i *Index) ScheduleForBranch(branchID string) (models.BranchSchedule, bool) {
	sc, ok := i.scheduleByBranch[branchID]
	return sc, ok
}

// AssignmentFor returns the ledger row holding (branch, day, week).
func (i *Index) AssignmentFor(branchID string, day models.Weekday, week string) (models.WeeklyAssignment, bool) {
	a, ok := i.bySlot[slotKey{branchID: branchID, day: day, week: week}]
	return a, ok
}

// AssignmentsForTeacher returns the teacher's rows, newest week first.
func (i *Index) AssignmentsForTeacher(teacherID string) []models.WeeklyAssignment {
	rows := append([]models.WeeklyAssignment(nil), i.byTeacher[teacherID]...)
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].WeekStartDate != rows[b].WeekStartDate {
			return rows[a].WeekStartDate > rows[b].WeekStartDate
		}
		return rows[a].DayOfWeek.Index() < rows[b].DayOfWeek.Index()
	})
	return rows
}

// hoursFor is the time one ledger row commits the teacher to: the lessons
// at that branch falling on the row's weekday, else their working-hours span.
// A one-off lesson counts only in the week it starts in; a recurring one
// counts every week.
func (i *Index) hoursFor(teacher models.Teacher, a models.WeeklyAssignment) float64 {
	var from, to time.Time
	if start, err := time.Parse(models.DateLayout, a.WeekStartDate); err == nil {
		from, to = start, start.AddDate(0, 0, 7)
	}

	total := 0.0
	for _, ts := range i.lessons[lessonKey{teacherID: teacher.ID, branchID: a.BranchID, day: a.DayOfWeek}] {
		startsAt := ts.StartsAt.UTC()
		if !ts.IsRecurring && (from.IsZero() || startsAt.Before(from) || !startsAt.Before(to)) {
			continue
		}
		total += ts.Duration().Hours()
	}
	if total > 0 {
		return total
	}
	return teacher.WorkingSpan().Hours()
}

// SortBranchesByName orders branches by name, byte-wise.
func SortBranchesByName(branches []models.Branch) {
	sort.SliceStable(branches, func(a, b int) bool {
		return branches[a].Name < branches[b].Name
	})
}
