package models

import "time"

// BranchSchedule places a branch on the single weekday it operates.
type BranchSchedule struct {
	ID        string    `db:"id" json:"id"`
	BranchID  string    `db:"branch_id" json:"branch_id"`
	DayOfWeek Weekday   `db:"day_of_week" json:"day_of_week"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
