package models

// ConflictType classifies a derived scheduling conflict.
type ConflictType string

const (
	ConflictDoubleBooking ConflictType = "double_booking"
	ConflictAvailability  ConflictType = "availability"
	ConflictMaxHours      ConflictType = "max_hours"
)

// ScheduleConflict is computed on read and never stored.
type ScheduleConflict struct {
	ID          string       `json:"id"`
	Type        ConflictType `json:"type"`
	TeacherID   string       `json:"teacher_id"`
	SlotID      string       `json:"slot_id"`
	Description string       `json:"description"`
}
