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

// BranchRepository persists branches.
type BranchRepository struct {
	db *sqlx.DB
}

// NewBranchRepository constructs a BranchRepository.
func NewBranchRepository(db *sqlx.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

const branchColumns = `id, name, color, created_at, updated_at`

// List returns every branch in creation order.
func (r *BranchRepository) List(ctx context.Context) ([]models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches ORDER BY created_at ASC, id ASC`
	var branches []models.Branch
	if err := r.db.SelectContext(ctx, &branches, query); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}

// FindByID returns sql.ErrNoRows when the branch does not exist.
func (r *BranchRepository) FindByID(ctx context.Context, id string) (*models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	var branch models.Branch
	if err := r.db.GetContext(ctx, &branch, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &branch, nil
}

// NameExists checks for a case-insensitive name match, ignoring excludeID.
func (r *BranchRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	const query = `SELECT 1 FROM branches WHERE LOWER(name) = LOWER($1) AND id <> $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, name, excludeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check branch name: %w", err)
	}
	return true, nil
}

// Create inserts a branch, assigning id and timestamps when empty.
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	if branch.ID == "" {
		branch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = now
	}
	branch.UpdatedAt = now
	const query = `INSERT INTO branches (id, name, color, created_at, updated_at)
		VALUES (:id, :name, :color, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, branch); err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// Update replaces name and color.
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	branch.UpdatedAt = time.Now().UTC()
	const query = `UPDATE branches SET name = :name, color = :color, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, branch)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update branch: %w", err)
	}
	return expectAffected(result, "update branch")
}

// DeleteWithTx removes a branch inside the caller's transaction.
func (r *BranchRepository) DeleteWithTx(ctx context.Context, exec sqlx.ExecerContext, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return expectAffected(result, "delete branch")
}

// expectAffected converts a zero-row write into sql.ErrNoRows.
func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
