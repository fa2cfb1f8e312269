package models

import "time"

// TimeSlot is a lesson window a teacher runs, optionally at a branch.
type TimeSlot struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	BranchID    *string   `db:"branch_id" json:"branch_id,omitempty"`
	Subject     string    `db:"subject" json:"subject"`
	Room        string    `db:"room" json:"room"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	IsRecurring bool      `db:"is_recurring" json:"is_recurring"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Duration is the slot length, zero when the window is inverted.
func (s TimeSlot) Duration() time.Duration {
	if !s.EndsAt.After(s.StartsAt) {
		return 0
	}
	return s.EndsAt.Sub(s.StartsAt)
}
