package roster

import (
	"fmt"
	"sort"

	"github.com/noah-isme/branch-roster-api/internal/models"
)

// DetectConflicts flags over-commitment in week's ledger rows:
//   - double_booking: a teacher holds more than one row on the same day
//   - availability: the day is outside the teacher's available days
//   - max_hours: daily or weekly hours exceed the teacher's maxima
//
// Rows whose teacher or branch no longer exists are ignored.
func (p *Projector) DetectConflicts(week string) []models.ScheduleConflict {
	rows := make([]models.WeeklyAssignment, 0, len(p.idx.byWeek[week]))
	for _, a := range p.idx.byWeek[week] {
		if _, ok := p.idx.Teacher(a.TeacherID); !ok {
			continue
		}
		if _, ok := p.idx.Branch(a.BranchID); !ok {
			continue
		}
		rows = append(rows, a)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].DayOfWeek.Index() < rows[b].DayOfWeek.Index()
	})

	type teacherDay struct {
		teacherID string
		day       models.Weekday
	}
	perDay := make(map[teacherDay][]models.WeeklyAssignment)
	perTeacher := make(map[string][]models.WeeklyAssignment)
	var teacherOrder []string
	for _, a := range rows {
		key := teacherDay{teacherID: a.TeacherID, day: a.DayOfWeek}
		perDay[key] = append(perDay[key], a)
		if _, seen := perTeacher[a.TeacherID]; !seen {
			teacherOrder = append(teacherOrder, a.TeacherID)
		}
		perTeacher[a.TeacherID] = append(perTeacher[a.TeacherID], a)
	}

	var out []models.ScheduleConflict
	add := func(kind models.ConflictType, teacherID, slotID, desc string) {
		out = append(out, models.ScheduleConflict{
			ID:          conflictID(kind, teacherID, slotID),
			Type:        kind,
			TeacherID:   teacherID,
			SlotID:      slotID,
			Description: desc,
		})
	}

	for _, teacherID := range teacherOrder {
		teacher, _ := p.idx.Teacher(teacherID)
		weekly := 0.0
		weeklyFlagged := false

		for _, day := range models.Weekdays {
			dayRows := perDay[teacherDay{teacherID: teacherID, day: day}]
			if len(dayRows) == 0 {
				continue
			}

			if len(dayRows) > 1 {
				for _, a := range dayRows[1:] {
					branch, _ := p.idx.Branch(a.BranchID)
					add(models.ConflictDoubleBooking, teacherID, a.ID,
						fmt.Sprintf("%s is booked at %d branches on %s; %s is extra", teacher.Name, len(dayRows), day, branch.Name))
				}
			}

			if !teacher.AvailableOn(day) {
				for _, a := range dayRows {
					add(models.ConflictAvailability, teacherID, a.ID,
						fmt.Sprintf("%s is not available on %s", teacher.Name, day))
				}
			}

			daily := 0.0
			dailyFlagged := false
			for _, a := range dayRows {
				h := p.idx.hoursFor(teacher, a)
				daily += h
				weekly += h
				if teacher.MaxHoursPerDay > 0 && !dailyFlagged && daily > float64(teacher.MaxHoursPerDay) {
					dailyFlagged = true
					add(models.ConflictMaxHours, teacherID, a.ID,
						fmt.Sprintf("%s is scheduled %s hours on %s, above the daily maximum of %d", teacher.Name, formatHours(daily), day, teacher.MaxHoursPerDay))
				}
				if teacher.MaxHoursPerWeek > 0 && !weeklyFlagged && weekly > float64(teacher.MaxHoursPerWeek) {
					weeklyFlagged = true
					out = append(out, models.ScheduleConflict{
						ID:          conflictID(models.ConflictMaxHours, teacherID, a.ID) + ":week",
						Type:        models.ConflictMaxHours,
						TeacherID:   teacherID,
						SlotID:      a.ID,
						Description: fmt.Sprintf("%s is scheduled %s hours in the week of %s, above the weekly maximum of %d", teacher.Name, formatHours(weekly), week, teacher.MaxHoursPerWeek),
					})
				}
			}
		}
	}
	return out
}

func formatHours(h float64) string {
	if h == float64(int(h)) {
		return fmt.Sprintf("%d", int(h))
	}
	return fmt.Sprintf("%.1f", h)
}
