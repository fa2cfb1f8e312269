package repository

import (
	"errors"

	"github.com/noah-isme/branch-roster-api/pkg/database"
)

// Sentinels for writes rejected by a unique index.
var (
	ErrDuplicateName          = errors.New("name already exists")
	ErrBranchAlreadyScheduled = errors.New("branch already has a schedule")
	ErrSlotTaken              = errors.New("branch slot already taken for this week")
	ErrTeacherBooked          = errors.New("teacher already booked for this day")
)

// Unique index names from migrations/0001_roster.sql.
const (
	constraintBranchName     = "uq_branches_name_lower"
	constraintTeacherName    = "uq_teachers_name_lower"
	constraintScheduleBranch = "uq_branch_schedules_branch"
	constraintLedgerSlot     = "uq_weekly_assignments_branch_day_week"
	constraintLedgerTeacher  = "uq_weekly_assignments_teacher_day_week"
)

var constraintErrors = map[string]error{
	constraintBranchName:     ErrDuplicateName,
	constraintTeacherName:    ErrDuplicateName,
	constraintScheduleBranch: ErrBranchAlreadyScheduled,
	constraintLedgerSlot:     ErrSlotTaken,
	constraintLedgerTeacher:  ErrTeacherBooked,
}

// mapUniqueViolation swaps a unique_violation for the matching sentinel and
// leaves any other error untouched.
func mapUniqueViolation(err error) error {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return err
	}
	if mapped, found := constraintErrors[constraint]; found {
		return mapped
	}
	return err
}
