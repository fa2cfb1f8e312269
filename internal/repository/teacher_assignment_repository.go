package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/branch-roster-api/internal/models"
)

// WeeklyAssignmentRepository persists the week-scoped teacher ledger.
type WeeklyAssignmentRepository struct {
	db *sqlx.DB
}

// NewWeeklyAssignmentRepository constructs the repository.
func NewWeeklyAssignmentRepository(db *sqlx.DB) *WeeklyAssignmentRepository {
	return &WeeklyAssignmentRepository{db: db}
}

const ledgerColumns = `id, teacher_id, branch_id, day_of_week, to_char(week_start_date, 'YYYY-MM-DD') AS week_start_date, created_at`

// List returns every ledger row in creation order.
func (r *WeeklyAssignmentRepository) List(ctx context.Context) ([]models.WeeklyAssignment, error) {
	query := `SELECT ` + ledgerColumns + ` FROM weekly_teacher_assignments ORDER BY created_at ASC, id ASC`
	var rows []models.WeeklyAssignment
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list weekly assignments: %w", err)
	}
	return rows, nil
}

// ListByTeacher returns the teacher's rows, newest week first.
func (r *WeeklyAssignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.WeeklyAssignment, error) {
	query := `SELECT ` + ledgerColumns + ` FROM weekly_teacher_assignments WHERE teacher_id = $1
ORDER BY week_start_date DESC, created_at ASC`
	var rows []models.WeeklyAssignment
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher weekly assignments: %w", err)
	}
	return rows, nil
}

// FindBySlot returns the row holding (branch, day, week) or sql.ErrNoRows.
func (r *WeeklyAssignmentRepository) FindBySlot(ctx context.Context, branchID string, day models.Weekday, weekStart string) (*models.WeeklyAssignment, error) {
	query := `SELECT ` + ledgerColumns + ` FROM weekly_teacher_assignments
WHERE branch_id = $1 AND day_of_week = $2 AND week_start_date = $3 LIMIT 1`
	return r.getOne(ctx, "get weekly assignment by slot", query, branchID, day, weekStart)
}

// FindByTeacherDay returns the teacher's row for (day, week) at any branch.
func (r *WeeklyAssignmentRepository) FindByTeacherDay(ctx context.Context, teacherID string, day models.Weekday, weekStart string) (*models.WeeklyAssignment, error) {
	query := `SELECT ` + ledgerColumns + ` FROM weekly_teacher_assignments
WHERE teacher_id = $1 AND day_of_week = $2 AND week_start_date = $3 LIMIT 1`
	return r.getOne(ctx, "get weekly assignment by teacher", query, teacherID, day, weekStart)
}

func (r *WeeklyAssignmentRepository) getOne(ctx context.Context, op, query string, args ...interface{}) (*models.WeeklyAssignment, error) {
	var row models.WeeklyAssignment
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &row, nil
}

// CreateWithTx inserts a ledger row. The unique indexes on the slot and the
// teacher-day surface as ErrSlotTaken and ErrTeacherBooked.
func (r *WeeklyAssignmentRepository) CreateWithTx(ctx context.Context, exec sqlx.ExecerContext, assignment *models.WeeklyAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO weekly_teacher_assignments (id, teacher_id, branch_id, day_of_week, week_start_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := exec.ExecContext(ctx, query,
		assignment.ID,
		assignment.TeacherID,
		assignment.BranchID,
		assignment.DayOfWeek,
		assignment.WeekStartDate,
		assignment.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create weekly assignment: %w", err)
	}
	return nil
}

// DeleteWithTx removes one ledger row addressed by its natural key.
func (r *WeeklyAssignmentRepository) DeleteWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID, branchID string, day models.Weekday, weekStart string) error {
	const query = `DELETE FROM weekly_teacher_assignments
WHERE teacher_id = $1 AND branch_id = $2 AND day_of_week = $3 AND week_start_date = $4`
	result, err := exec.ExecContext(ctx, query, teacherID, branchID, day, weekStart)
	if err != nil {
		return fmt.Errorf("delete weekly assignment: %w", err)
	}
	return expectAffected(result, "delete weekly assignment")
}

// DeleteByTeacherWithTx removes all of a teacher's rows and reports how many.
func (r *WeeklyAssignmentRepository) DeleteByTeacherWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string) (int64, error) {
	result, err := exec.ExecContext(ctx, `DELETE FROM weekly_teacher_assignments WHERE teacher_id = $1`, teacherID)
	if err != nil {
		return 0, fmt.Errorf("delete teacher weekly assignments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete teacher weekly assignments rows: %w", err)
	}
	return affected, nil
}
