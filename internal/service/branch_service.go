package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/repository"
	"github.com/noah-isme/branch-roster-api/internal/roster"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

type branchRepository interface {
	List(ctx context.Context) ([]models.Branch, error)
	FindByID(ctx context.Context, id string) (*models.Branch, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, branch *models.Branch) error
	Update(ctx context.Context, branch *models.Branch) error
	DeleteWithTx(ctx context.Context, exec sqlx.ExecerContext, id string) error
}

type branchScheduleFinder interface {
	FindByBranch(ctx context.Context, branchID string) (*models.BranchSchedule, error)
}

type timeSlotBranchClearer interface {
	ClearBranchWithTx(ctx context.Context, exec sqlx.ExecerContext, branchID string) (int64, error)
}

// BranchService is the branch registry.
type BranchService struct {
	repo      branchRepository
	schedules branchScheduleFinder
	slots     timeSlotBranchClearer
	tx        txProvider
	readModel readModelInvalidator
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewBranchService constructs a BranchService.
func NewBranchService(
	repo branchRepository,
	schedules branchScheduleFinder,
	slots timeSlotBranchClearer,
	tx txProvider,
	readModel readModelInvalidator,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
) *BranchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readModel == nil {
		readModel = noopInvalidator{}
	}
	return &BranchService{
		repo:      repo,
		schedules: schedules,
		slots:     slots,
		tx:        tx,
		readModel: readModel,
		validator: ensureValidator(validate),
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns branches sorted by name.
func (s *BranchService) List(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageErr(s.logger, err, "list branches")
	}
	roster.SortBranchesByName(branches)
	return branches, nil
}

// Get returns a branch by id.
func (s *BranchService) Get(ctx context.Context, id string) (*models.Branch, error) {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "branch not found", "load branch")
	}
	return branch, nil
}

// Add registers a branch whose name is unique ignoring case.
func (s *BranchService) Add(ctx context.Context, req dto.BranchRequest) (*models.Branch, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branch payload")
	}
	if err := s.ensureUniqueName(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	branch := &models.Branch{Name: req.Name, Color: req.Color}
	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, s.writeErr(err, "create branch")
	}
	s.readModel.Invalidate(ctx)
	return branch, nil
}

// Update replaces a branch's name and color.
func (s *BranchService) Update(ctx context.Context, id string, req dto.BranchRequest) (*models.Branch, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branch payload")
	}
	branch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}

	branch.Name = req.Name
	branch.Color = req.Color
	if err := s.repo.Update(ctx, branch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, s.writeErr(err, "update branch")
	}
	s.readModel.Invalidate(ctx)
	return branch, nil
}

// Remove deletes a branch that has no schedule row and detaches any time
// slots pointing at it, atomically.
func (s *BranchService) Remove(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	_, err := s.schedules.FindByBranch(ctx, id)
	switch {
	case err == nil:
		s.metrics.RecordRuleViolation(ruleBranchInUse)
		return appErrors.Clone(appErrors.ErrRuleViolation, msgBranchHasSchedule)
	case !errors.Is(err, sql.ErrNoRows):
		return storageErr(s.logger, err, "check branch schedule")
	}

	err = runInTx(ctx, s.tx, s.logger, "delete branch", func(tx *sqlx.Tx) error {
		cleared, err := s.slots.ClearBranchWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "branch not found")
			}
			return err
		}
		if cleared > 0 {
			s.logger.Info("detached time slots from deleted branch", zap.String("branch_id", id), zap.Int64("slots", cleared))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.readModel.Invalidate(ctx)
	return nil
}

func (s *BranchService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return storageErr(s.logger, err, "check branch name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrValidation, "branch name already exists")
	}
	return nil
}

func (s *BranchService) writeErr(err error, op string) error {
	if errors.Is(err, repository.ErrDuplicateName) {
		return appErrors.Clone(appErrors.ErrValidation, "branch name already exists")
	}
	return storageErr(s.logger, err, op)
}
