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

// TimeSlotRepository persists teacher lesson windows.
type TimeSlotRepository struct {
	db *sqlx.DB
}

func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const timeSlotColumns = `id, teacher_id, branch_id, subject, room, starts_at, ends_at, is_recurring, created_at`

func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots ORDER BY starts_at ASC, id ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

func (r *TimeSlotRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE teacher_id = $1 ORDER BY starts_at ASC, id ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher time slots: %w", err)
	}
	return slots, nil
}

func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get time slot: %w", err)
	}
	return &slot, nil
}

func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO time_slots (id, teacher_id, branch_id, subject, room, starts_at, ends_at, is_recurring, created_at)
		VALUES (:id, :teacher_id, :branch_id, :subject, :room, :starts_at, :ends_at, :is_recurring, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	const query = `UPDATE time_slots SET teacher_id = :teacher_id, branch_id = :branch_id, subject = :subject, room = :room,
		starts_at = :starts_at, ends_at = :ends_at, is_recurring = :is_recurring WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return expectAffected(result, "update time slot")
}

func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return expectAffected(result, "delete time slot")
}

// ClearBranchWithTx detaches every slot from a branch that is being removed.
func (r *TimeSlotRepository) ClearBranchWithTx(ctx context.Context, exec sqlx.ExecerContext, branchID string) (int64, error) {
	result, err := exec.ExecContext(ctx, `UPDATE time_slots SET branch_id = NULL WHERE branch_id = $1`, branchID)
	if err != nil {
		return 0, fmt.Errorf("clear time slot branch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear time slot branch rows: %w", err)
	}
	return affected, nil
}

// DeleteByTeacherWithTx removes a departing teacher's slots.
func (r *TimeSlotRepository) DeleteByTeacherWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM time_slots WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("delete teacher time slots: %w", err)
	}
	return nil
}
