package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/repository"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

type assignmentTeacherStore interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	SetPlacementWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string, branchID *string, day *models.Weekday) error
}

type assignmentBranchFinder interface {
	FindByID(ctx context.Context, id string) (*models.Branch, error)
}

type assignmentLedger interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.WeeklyAssignment, error)
	FindBySlot(ctx context.Context, branchID string, day models.Weekday, weekStart string) (*models.WeeklyAssignment, error)
	FindByTeacherDay(ctx context.Context, teacherID string, day models.Weekday, weekStart string) (*models.WeeklyAssignment, error)
	CreateWithTx(ctx context.Context, exec sqlx.ExecerContext, assignment *models.WeeklyAssignment) error
	DeleteWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID, branchID string, day models.Weekday, weekStart string) error
	DeleteByTeacherWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string) (int64, error)
}

// AssignmentService owns the weekly teacher ledger. Every (branch, day,
// week) holds at most one teacher and every (teacher, day, week) at most one
// branch.
type AssignmentService struct {
	teachers  assignmentTeacherStore
	branches  assignmentBranchFinder
	schedules branchScheduleFinder
	ledger    assignmentLedger
	tx        txProvider
	readModel readModelInvalidator
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(
	teachers assignmentTeacherStore,
	branches assignmentBranchFinder,
	schedules branchScheduleFinder,
	ledger assignmentLedger,
	tx txProvider,
	readModel readModelInvalidator,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readModel == nil {
		readModel = noopInvalidator{}
	}
	return &AssignmentService{
		teachers:  teachers,
		branches:  branches,
		schedules: schedules,
		ledger:    ledger,
		tx:        tx,
		readModel: readModel,
		validator: ensureValidator(validate),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// ListForTeacher returns the teacher's ledger rows, newest week first.
func (s *AssignmentService) ListForTeacher(ctx context.Context, teacherID string) ([]models.WeeklyAssignment, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, lookupErr(s.logger, err, "teacher not found", "load teacher")
	}
	rows, err := s.ledger.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storageErr(s.logger, err, "list teacher assignments")
	}
	return rows, nil
}

// Assign books the teacher at a scheduled branch for the week containing
// req.Date. The slot check runs before the teacher-day check.
func (s *AssignmentService) Assign(ctx context.Context, teacherID string, req dto.TeacherAssignmentRequest) (*models.WeeklyAssignment, error) {
	day, week, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, lookupErr(s.logger, err, "teacher not found", "load teacher")
	}
	if _, err := s.branches.FindByID(ctx, req.BranchID); err != nil {
		return nil, lookupErr(s.logger, err, "branch not found", "load branch")
	}

	schedule, err := s.schedules.FindByBranch(ctx, req.BranchID)
	switch {
	case errors.Is(err, sql.ErrNoRows) || (err == nil && schedule.DayOfWeek != day):
		return nil, s.violation(ruleNotScheduled, msgBranchNotScheduled)
	case err != nil:
		return nil, storageErr(s.logger, err, "load branch schedule")
	}

	if err := s.ensureFree(ctx, teacherID, req.BranchID, day, week); err != nil {
		return nil, err
	}

	assignment := &models.WeeklyAssignment{
		TeacherID:     teacherID,
		BranchID:      req.BranchID,
		DayOfWeek:     day,
		WeekStartDate: week,
	}
	err = runInTx(ctx, s.tx, s.logger, "assign teacher", func(tx *sqlx.Tx) error {
		if err := s.ledger.CreateWithTx(ctx, tx, assignment); err != nil {
			switch {
			case errors.Is(err, repository.ErrSlotTaken):
				return s.violation(ruleSlotTaken, msgSlotTaken)
			case errors.Is(err, repository.ErrTeacherBooked):
				return s.violation(ruleTeacherBooked, msgTeacherBooked)
			}
			return err
		}
		branchID := req.BranchID
		return s.teachers.SetPlacementWithTx(ctx, tx, teacherID, &branchID, &day)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLedgerWrite("assign", 1)
	s.readModel.Invalidate(ctx)
	s.logger.Info("teacher assigned",
		zap.String("teacher_id", teacherID),
		zap.String("branch_id", req.BranchID),
		zap.String("day", string(day)),
		zap.String("week_start", week),
	)
	return assignment, nil
}

// Unassign removes one ledger row and clears the teacher's placement when it
// still points at that branch and day.
func (s *AssignmentService) Unassign(ctx context.Context, teacherID string, req dto.TeacherAssignmentRequest) error {
	day, week, err := s.resolve(req)
	if err != nil {
		return err
	}
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return lookupErr(s.logger, err, "teacher not found", "load teacher")
	}

	err = runInTx(ctx, s.tx, s.logger, "unassign teacher", func(tx *sqlx.Tx) error {
		if err := s.ledger.DeleteWithTx(ctx, tx, teacherID, req.BranchID, day, week); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
			}
			return err
		}
		if placedAt(teacher, req.BranchID, day) {
			return s.teachers.SetPlacementWithTx(ctx, tx, teacherID, nil, nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordLedgerWrite("unassign", 1)
	s.readModel.Invalidate(ctx)
	return nil
}

// UnassignAll removes every ledger row of the teacher and clears its
// placement. It reports how many rows were removed.
func (s *AssignmentService) UnassignAll(ctx context.Context, teacherID string) (int64, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return 0, lookupErr(s.logger, err, "teacher not found", "load teacher")
	}

	var removed int64
	err := runInTx(ctx, s.tx, s.logger, "unassign teacher from all branches", func(tx *sqlx.Tx) error {
		var err error
		if removed, err = s.ledger.DeleteByTeacherWithTx(ctx, tx, teacherID); err != nil {
			return err
		}
		return s.teachers.SetPlacementWithTx(ctx, tx, teacherID, nil, nil)
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordLedgerWrite("unassign_all", int(removed))
	s.readModel.Invalidate(ctx)
	return removed, nil
}

func (s *AssignmentService) resolve(req dto.TeacherAssignmentRequest) (models.Weekday, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	day, err := parseDay(req.DayOfWeek)
	if err != nil {
		return "", "", err
	}
	week, err := models.NormalizeWeek(req.Date, s.now())
	if err != nil {
		return "", "", appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return day, week, nil
}

func (s *AssignmentService) ensureFree(ctx context.Context, teacherID, branchID string, day models.Weekday, week string) error {
	_, err := s.ledger.FindBySlot(ctx, branchID, day, week)
	switch {
	case err == nil:
		return s.violation(ruleSlotTaken, msgSlotTaken)
	case !errors.Is(err, sql.ErrNoRows):
		return storageErr(s.logger, err, "check branch slot")
	}

	_, err = s.ledger.FindByTeacherDay(ctx, teacherID, day, week)
	switch {
	case err == nil:
		return s.violation(ruleTeacherBooked, msgTeacherBooked)
	case !errors.Is(err, sql.ErrNoRows):
		return storageErr(s.logger, err, "check teacher day")
	}
	return nil
}

func (s *AssignmentService) violation(rule, msg string) error {
	s.metrics.RecordRuleViolation(rule)
	return appErrors.Clone(appErrors.ErrRuleViolation, msg)
}

func placedAt(t *models.Teacher, branchID string, day models.Weekday) bool {
	return t.BranchID != nil && *t.BranchID == branchID && t.AssignedDay != nil && *t.AssignedDay == day
}
