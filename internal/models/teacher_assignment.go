package models

import "time"

// WeeklyAssignment is one ledger row: a teacher placed at a branch on a
// weekday of the week beginning WeekStartDate.
type WeeklyAssignment struct {
	ID            string    `db:"id" json:"id"`
	TeacherID     string    `db:"teacher_id" json:"teacher_id"`
	BranchID      string    `db:"branch_id" json:"branch_id"`
	DayOfWeek     Weekday   `db:"day_of_week" json:"day_of_week"`
	WeekStartDate string    `db:"week_start_date" json:"week_start_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
