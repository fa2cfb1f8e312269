package models

import (
	"time"

	"github.com/lib/pq"
)

// Gender values accepted for teachers.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Teacher is an instructor who can be placed at branches.
type Teacher struct {
	ID                string         `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Mobile            *string        `db:"mobile" json:"mobile,omitempty"`
	Gender            string         `db:"gender" json:"gender"`
	Description       *string        `db:"description" json:"description,omitempty"`
	Specialties       pq.StringArray `db:"specialties" json:"specialties"`
	WorkingHoursStart string         `db:"working_hours_start" json:"working_hours_start"`
	WorkingHoursEnd   string         `db:"working_hours_end" json:"working_hours_end"`
	MaxHoursPerDay    int            `db:"max_hours_per_day" json:"max_hours_per_day"`
	MaxHoursPerWeek   int            `db:"max_hours_per_week" json:"max_hours_per_week"`
	AvailableDays     pq.StringArray `db:"available_days" json:"available_days"`
	BranchID          *string        `db:"branch_id" json:"branch_id,omitempty"`
	AssignedDay       *Weekday       `db:"assigned_day" json:"assigned_day,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`

	WeeklyAssignments []WeeklyAssignment `db:"-" json:"weekly_assignments,omitempty"`
}

// AvailableOn reports whether the teacher accepts work on day. An empty
// available-days list places no restriction.
func (t Teacher) AvailableOn(day Weekday) bool {
	if len(t.AvailableDays) == 0 {
		return true
	}
	for _, d := range t.AvailableDays {
		if parsed, err := ParseWeekday(d); err == nil && parsed == day {
			return true
		}
	}
	return false
}

// WorkingSpan is the length of the teacher's daily working window, zero when
// the window is unset or inverted.
func (t Teacher) WorkingSpan() time.Duration {
	start, err := ParseClock(t.WorkingHoursStart)
	if err != nil {
		return 0
	}
	end, err := ParseClock(t.WorkingHoursEnd)
	if err != nil || end <= start {
		return 0
	}
	return end - start
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
