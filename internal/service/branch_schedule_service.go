package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/repository"
	"github.com/noah-isme/branch-roster-api/internal/roster"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

type branchScheduleRepository interface {
	List(ctx context.Context) ([]models.BranchSchedule, error)
	ListByDay(ctx context.Context, day models.Weekday) ([]models.BranchSchedule, error)
	FindByBranch(ctx context.Context, branchID string) (*models.BranchSchedule, error)
	Create(ctx context.Context, schedule *models.BranchSchedule) error
	Delete(ctx context.Context, id string) error
}

type branchReader interface {
	List(ctx context.Context) ([]models.Branch, error)
	FindByID(ctx context.Context, id string) (*models.Branch, error)
}

// BranchScheduleService places branches on weekdays. A branch holds at most
// one schedule row.
type BranchScheduleService struct {
	repo      branchScheduleRepository
	branches  branchReader
	readModel readModelInvalidator
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewBranchScheduleService constructs a BranchScheduleService.
func NewBranchScheduleService(repo branchScheduleRepository, branches branchReader, readModel readModelInvalidator, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *BranchScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readModel == nil {
		readModel = noopInvalidator{}
	}
	return &BranchScheduleService{
		repo:      repo,
		branches:  branches,
		readModel: readModel,
		validator: ensureValidator(validate),
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns schedule rows, optionally limited to one weekday.
func (s *BranchScheduleService) List(ctx context.Context, dayRaw string) ([]models.BranchSchedule, error) {
	if dayRaw == "" {
		rows, err := s.repo.List(ctx)
		if err != nil {
			return nil, storageErr(s.logger, err, "list branch schedules")
		}
		return rows, nil
	}
	day, err := parseDay(dayRaw)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, storageErr(s.logger, err, "list branch schedules by day")
	}
	return rows, nil
}

// AssignBranchToDay creates the branch's only schedule row.
func (s *BranchScheduleService) AssignBranchToDay(ctx context.Context, req dto.AssignBranchDayRequest) (*models.BranchSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branch schedule payload")
	}
	day, err := parseDay(req.DayOfWeek)
	if err != nil {
		return nil, err
	}
	if _, err := s.branches.FindByID(ctx, req.BranchID); err != nil {
		return nil, lookupErr(s.logger, err, "branch not found", "load branch")
	}

	_, err = s.repo.FindByBranch(ctx, req.BranchID)
	switch {
	case err == nil:
		return nil, s.alreadyScheduled()
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storageErr(s.logger, err, "check branch schedule")
	}

	schedule := &models.BranchSchedule{BranchID: req.BranchID, DayOfWeek: day}
	if err := s.repo.Create(ctx, schedule); err != nil {
		if errors.Is(err, repository.ErrBranchAlreadyScheduled) {
			return nil, s.alreadyScheduled()
		}
		return nil, storageErr(s.logger, err, "create branch schedule")
	}
	s.readModel.Invalidate(ctx)
	return schedule, nil
}

// Unassign deletes a schedule row. Ledger rows stay and are ignored on read.
func (s *BranchScheduleService) Unassign(ctx context.Context, scheduleID string) error {
	if err := s.repo.Delete(ctx, scheduleID); err != nil {
		return lookupErr(s.logger, err, "branch schedule not found", "delete branch schedule")
	}
	s.readModel.Invalidate(ctx)
	return nil
}

// AvailableForAssignment lists branches that have no schedule row yet.
func (s *BranchScheduleService) AvailableForAssignment(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, storageErr(s.logger, err, "list branches")
	}
	schedules, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageErr(s.logger, err, "list branch schedules")
	}
	return roster.New(roster.Snapshot{Branches: branches, Schedules: schedules}).UnscheduledBranches(), nil
}

func (s *BranchScheduleService) alreadyScheduled() error {
	s.metrics.RecordRuleViolation(ruleBranchSchedule)
	return appErrors.Clone(appErrors.ErrRuleViolation, msgBranchAlreadyScheduled)
}
