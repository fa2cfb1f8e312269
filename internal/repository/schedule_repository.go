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

// BranchScheduleRepository persists branch-to-weekday placements.
type BranchScheduleRepository struct {
	db *sqlx.DB
}

// NewBranchScheduleRepository constructs the repository.
func NewBranchScheduleRepository(db *sqlx.DB) *BranchScheduleRepository {
	return &BranchScheduleRepository{db: db}
}

const scheduleColumns = `id, branch_id, day_of_week, is_active, created_at`

// List returns all schedule rows in creation order.
func (r *BranchScheduleRepository) List(ctx context.Context) ([]models.BranchSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM branch_schedules ORDER BY created_at ASC, id ASC`
	var rows []models.BranchSchedule
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list branch schedules: %w", err)
	}
	return rows, nil
}

// ListByDay returns the schedule rows for one weekday.
func (r *BranchScheduleRepository) ListByDay(ctx context.Context, day models.Weekday) ([]models.BranchSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM branch_schedules WHERE day_of_week = $1 ORDER BY created_at ASC, id ASC`
	var rows []models.BranchSchedule
	if err := r.db.SelectContext(ctx, &rows, query, day); err != nil {
		return nil, fmt.Errorf("list branch schedules by day: %w", err)
	}
	return rows, nil
}

// FindByBranch returns the branch's schedule row or sql.ErrNoRows.
func (r *BranchScheduleRepository) FindByBranch(ctx context.Context, branchID string) (*models.BranchSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM branch_schedules WHERE branch_id = $1 LIMIT 1`
	var row models.BranchSchedule
	if err := r.db.GetContext(ctx, &row, query, branchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get branch schedule: %w", err)
	}
	return &row, nil
}

// Create inserts an active schedule row.
func (r *BranchScheduleRepository) Create(ctx context.Context, schedule *models.BranchSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}
	schedule.IsActive = true
	const query = `INSERT INTO branch_schedules (id, branch_id, day_of_week, is_active, created_at)
		VALUES (:id, :branch_id, :day_of_week, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create branch schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule row; sql.ErrNoRows when absent.
func (r *BranchScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM branch_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete branch schedule: %w", err)
	}
	return expectAffected(result, "delete branch schedule")
}
