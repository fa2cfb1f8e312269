package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/branch-roster-api/internal/models"
)

// Projector answers read queries over one Snapshot. It never mutates the
// snapshot and is safe for concurrent use.
type Projector struct {
	snap Snapshot
	idx  *Index
}

// New indexes s and returns a projector over it.
func New(s Snapshot) *Projector {
	return &Projector{snap: s, idx: NewIndex(s)}
}

// Index exposes the keyed lookups.
func (p *Projector) Index() *Index { return p.idx }

// ScheduleGrid lists, for every weekday, each scheduled branch with the
// teacher assigned for that week. Schedule rows whose branch no longer
// exists are omitted, as is a ledger row whose teacher is gone.
func (p *Projector) ScheduleGrid(week string) Grid {
	grid := Grid{WeekStartDate: week, Days: make([]GridDay, 0, len(models.Weekdays))}
	for _, day := range models.Weekdays {
		rows := make([]GridRow, 0, len(p.idx.schedulesByDay[day]))
		for _, sc := range p.idx.schedulesByDay[day] {
			branch, ok := p.idx.Branch(sc.BranchID)
			if !ok {
				continue
			}
			row := GridRow{ScheduleID: sc.ID, Branch: branch}
			if a, ok := p.idx.AssignmentFor(sc.BranchID, day, week); ok {
				if teacher, ok := p.idx.Teacher(a.TeacherID); ok {
					t := teacher
					row.Teacher = &t
					row.AssignmentID = a.ID
				}
			}
			rows = append(rows, row)
		}
		grid.Days = append(grid.Days, GridDay{Day: day, Rows: rows})
	}
	return grid
}

// AvailableBranchesForDay returns branches scheduled on day that have no
// ledger row for (day, week), optionally filtered by name.
func (p *Projector) AvailableBranchesForDay(day models.Weekday, week, query string) []models.Branch {
	out := make([]models.Branch, 0)
	for _, sc := range p.idx.schedulesByDay[day] {
		branch, ok := p.idx.Branch(sc.BranchID)
		if !ok {
			continue
		}
		if _, claimed := p.idx.AssignmentFor(sc.BranchID, day, week); claimed {
			continue
		}
		if query != "" && !containsFold(branch.Name, query) {
			continue
		}
		out = append(out, branch)
	}
	return out
}

// AvailableTeachersForDay returns teachers holding no ledger row for
// (day, week), optionally filtered by name.
func (p *Projector) AvailableTeachersForDay(day models.Weekday, week, query string) []models.Teacher {
	booked := make(map[string]struct{})
	for _, a := range p.idx.byDayWeek[dayWeek{day: day, week: week}] {
		booked[a.TeacherID] = struct{}{}
	}

	out := make([]models.Teacher, 0, len(p.snap.Teachers))
	for _, t := range p.snap.Teachers {
		if _, ok := booked[t.ID]; ok {
			continue
		}
		if query != "" && !containsFold(t.Name, query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// UnscheduledBranches returns branches with no schedule row, by name.
func (p *Projector) UnscheduledBranches() []models.Branch {
	out := make([]models.Branch, 0)
	for _, b := range p.snap.Branches {
		if _, ok := p.idx.ScheduleForBranch(b.ID); !ok {
			out = append(out, b)
		}
	}
	SortBranchesByName(out)
	return out
}

// TeacherView returns the teacher with its ledger rows attached.
func (p *Projector) TeacherView(teacherID string) (models.Teacher, bool) {
	t, ok := p.idx.Teacher(teacherID)
	if !ok {
		return models.Teacher{}, false
	}
	t.WeeklyAssignments = p.idx.AssignmentsForTeacher(teacherID)
	return t, true
}

// Teachers returns every teacher with ledger rows attached, sorted by name.
func (p *Projector) Teachers() []models.Teacher {
	out := make([]models.Teacher, 0, len(p.snap.Teachers))
	for _, t := range p.snap.Teachers {
		t.WeeklyAssignments = p.idx.AssignmentsForTeacher(t.ID)
		out = append(out, t)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return strings.ToLower(out[a].Name) < strings.ToLower(out[b].Name)
	})
	return out
}

// Overview summarises one week.
type Overview struct {
	WeekStartDate       string `json:"week_start_date"`
	Branches            int    `json:"branches"`
	Teachers            int    `json:"teachers"`
	ScheduledBranches   int    `json:"scheduled_branches"`
	UnscheduledBranches int    `json:"unscheduled_branches"`
	AssignedSlots       int    `json:"assigned_slots"`
	OpenSlots           int    `json:"open_slots"`
	TimeSlots           int    `json:"time_slots"`
	Conflicts           int    `json:"conflicts"`
}

// Overview counts the registry and the week's grid.
func (p *Projector) Overview(week string) Overview {
	ov := Overview{
		WeekStartDate: week,
		Branches:      len(p.snap.Branches),
		Teachers:      len(p.snap.Teachers),
		TimeSlots:     len(p.snap.TimeSlots),
	}
	for _, d := range p.ScheduleGrid(week).Days {
		ov.ScheduledBranches += len(d.Rows)
		for _, r := range d.Rows {
			if r.Teacher != nil {
				ov.AssignedSlots++
			} else {
				ov.OpenSlots++
			}
		}
	}
	ov.UnscheduledBranches = len(p.UnscheduledBranches())
	ov.Conflicts = len(p.DetectConflicts(week))
	return ov
}

// Export flattens the week's grid into day/branch/teacher rows.
func (p *Projector) Export(week string) (headers []string, rows [][]string) {
	headers = []string{"Day", "Branch", "Teacher", "Mobile"}
	for _, d := range p.ScheduleGrid(week).Days {
		for _, r := range d.Rows {
			teacher, mobile := "", ""
			if r.Teacher != nil {
				teacher = r.Teacher.Name
				if r.Teacher.Mobile != nil {
					mobile = *r.Teacher.Mobile
				}
			}
			rows = append(rows, []string{string(d.Day), r.Branch.Name, teacher, mobile})
		}
	}
	return headers, rows
}

func conflictID(kind models.ConflictType, teacherID, slotID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, teacherID, slotID)
}
