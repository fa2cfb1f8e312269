package dto

import "time"

// BranchRequest creates or replaces a branch.
type BranchRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Color string `json:"color" validate:"required,max=64"`
}

// AssignBranchDayRequest places a branch on a weekday.
type AssignBranchDayRequest struct {
	BranchID  string `json:"branchId" validate:"required"`
	DayOfWeek string `json:"dayOfWeek" validate:"required,weekday"`
}

// TeacherRequest creates or replaces a teacher profile. Omitted working
// hours, maxima and available days take the form defaults.
type TeacherRequest struct {
	Name              string   `json:"name" validate:"required,max=120"`
	Mobile            *string  `json:"mobile" validate:"omitempty,max=32"`
	Gender            string   `json:"gender" validate:"required,oneof=male female other"`
	Description       *string  `json:"description" validate:"omitempty,max=1000"`
	Specialties       []string `json:"specialties" validate:"omitempty,dive,required,max=64"`
	WorkingHoursStart string   `json:"workingHoursStart" validate:"omitempty,hhmm"`
	WorkingHoursEnd   string   `json:"workingHoursEnd" validate:"omitempty,hhmm"`
	MaxHoursPerDay    *int     `json:"maxHoursPerDay" validate:"omitempty,min=0,max=24"`
	MaxHoursPerWeek   *int     `json:"maxHoursPerWeek" validate:"omitempty,min=0,max=168"`
	AvailableDays     []string `json:"availableDays" validate:"omitempty,dive,weekday"`
}

// TeacherAssignmentRequest addresses one ledger slot. Date may be any day
// in the target week; empty means the current week.
type TeacherAssignmentRequest struct {
	BranchID  string `json:"branchId" form:"branchId" validate:"required"`
	DayOfWeek string `json:"dayOfWeek" form:"dayOfWeek" validate:"required,weekday"`
	Date      string `json:"date" form:"date" validate:"omitempty,calendardate"`
}

// UnassignAllResponse reports a bulk unassign.
type UnassignAllResponse struct {
	TeacherID string `json:"teacherId"`
	Removed   int64  `json:"removed"`
}

// TimeSlotRequest creates or replaces a lesson window.
type TimeSlotRequest struct {
	TeacherID   string    `json:"teacherId" validate:"required"`
	BranchID    *string   `json:"branchId"`
	Subject     string    `json:"subject" validate:"required,max=120"`
	Room        string    `json:"room" validate:"max=64"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
	IsRecurring bool      `json:"isRecurring"`
}

// ExportRequest queues a roster export for the week containing Week.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	Week   string `json:"week" validate:"omitempty,calendardate"`
}
