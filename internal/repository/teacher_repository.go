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

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = `id, name, mobile, gender, description, specialties, working_hours_start, working_hours_end,
       max_hours_per_day, max_hours_per_week, available_days, branch_id, assigned_day, created_at, updated_at`

// List returns every teacher in creation order.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers ORDER BY created_at ASC, id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID returns sql.ErrNoRows when the teacher does not exist.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return &teacher, nil
}

// NameExists checks for a case-insensitive name match, ignoring excludeID.
func (r *TeacherRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	const query = `SELECT 1 FROM teachers WHERE LOWER(name) = LOWER($1) AND id <> $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, name, excludeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher name: %w", err)
	}
	return true, nil
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, name, mobile, gender, description, specialties, working_hours_start, working_hours_end,
		max_hours_per_day, max_hours_per_week, available_days, branch_id, assigned_day, created_at, updated_at)
		VALUES (:id, :name, :mobile, :gender, :description, :specialties, :working_hours_start, :working_hours_end,
		:max_hours_per_day, :max_hours_per_week, :available_days, :branch_id, :assigned_day, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update replaces the teacher's profile fields. Placement is owned by the
// assignment ledger and left untouched.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET name = :name, mobile = :mobile, gender = :gender, description = :description,
		specialties = :specialties, working_hours_start = :working_hours_start, working_hours_end = :working_hours_end,
		max_hours_per_day = :max_hours_per_day, max_hours_per_week = :max_hours_per_week,
		available_days = :available_days, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update teacher: %w", err)
	}
	return expectAffected(result, "update teacher")
}

// SetPlacementWithTx records the teacher's latest branch/day, or clears it
// when both are nil.
func (r *TeacherRepository) SetPlacementWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string, branchID *string, day *models.Weekday) error {
	const query = `UPDATE teachers SET branch_id = $1, assigned_day = $2, updated_at = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, branchID, day, time.Now().UTC(), teacherID)
	if err != nil {
		return fmt.Errorf("update teacher placement: %w", err)
	}
	return expectAffected(result, "update teacher placement")
}

// DeleteWithTx removes a teacher inside the caller's transaction.
func (r *TeacherRepository) DeleteWithTx(ctx context.Context, exec sqlx.ExecerContext, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return expectAffected(result, "delete teacher")
}
