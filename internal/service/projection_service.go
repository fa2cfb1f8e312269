package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/roster"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

const snapshotCacheKey = "roster:snapshot"

type branchLister interface {
	List(ctx context.Context) ([]models.Branch, error)
}

type scheduleLister interface {
	List(ctx context.Context) ([]models.BranchSchedule, error)
}

type teacherLister interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

type ledgerLister interface {
	List(ctx context.Context) ([]models.WeeklyAssignment, error)
}

type timeSlotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

// ProjectionService loads roster snapshots and answers read queries through
// the pure roster projector.
type ProjectionService struct {
	branches  branchLister
	schedules scheduleLister
	teachers  teacherLister
	ledger    ledgerLister
	slots     timeSlotLister
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewProjectionService wires the five table readers. cache and metrics may be nil.
func NewProjectionService(
	branches branchLister,
	schedules scheduleLister,
	teachers teacherLister,
	ledger ledgerLister,
	slots timeSlotLister,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *ProjectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionService{
		branches:  branches,
		schedules: schedules,
		teachers:  teachers,
		ledger:    ledger,
		slots:     slots,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Invalidate drops every cached roster read model. Command services call it
// after the store confirms a write.
func (s *ProjectionService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.cache.Invalidate(ctx, rosterCachePattern)
}

// ResolveWeek normalizes a reference date (empty = today) to its week start.
func (s *ProjectionService) ResolveWeek(raw string) (string, error) {
	week, err := models.NormalizeWeek(raw, s.now())
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return week, nil
}

// Snapshot returns the current tables, from cache when possible. The bool
// reports a cache hit.
func (s *ProjectionService) Snapshot(ctx context.Context) (roster.Snapshot, bool, error) {
	var snap roster.Snapshot
	if s.cache.Get(ctx, snapshotCacheKey, &snap) {
		return snap, true, nil
	}

	start := time.Now()
	var err error
	if snap.Branches, err = s.branches.List(ctx); err != nil {
		return roster.Snapshot{}, false, storageErr(s.logger, err, "load branches")
	}
	if snap.Schedules, err = s.schedules.List(ctx); err != nil {
		return roster.Snapshot{}, false, storageErr(s.logger, err, "load branch schedules")
	}
	if snap.Teachers, err = s.teachers.List(ctx); err != nil {
		return roster.Snapshot{}, false, storageErr(s.logger, err, "load teachers")
	}
	if snap.Assignments, err = s.ledger.List(ctx); err != nil {
		return roster.Snapshot{}, false, storageErr(s.logger, err, "load weekly assignments")
	}
	if snap.TimeSlots, err = s.slots.List(ctx); err != nil {
		return roster.Snapshot{}, false, storageErr(s.logger, err, "load time slots")
	}
	s.metrics.ObserveSnapshotLoad(time.Since(start))

	s.cache.Set(ctx, snapshotCacheKey, snap, 0)
	return snap, false, nil
}

// Projector builds a projector over the current snapshot.
func (s *ProjectionService) Projector(ctx context.Context) (*roster.Projector, bool, error) {
	snap, hit, err := s.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return roster.New(snap), hit, nil
}

// Grid returns the week grid, filtered when query is non-empty.
func (s *ProjectionService) Grid(ctx context.Context, weekRef, searchType, query string) (roster.Grid, bool, error) {
	week, err := s.ResolveWeek(weekRef)
	if err != nil {
		return roster.Grid{}, false, err
	}
	st, err := roster.ParseSearchType(searchType)
	if err != nil {
		return roster.Grid{}, false, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	p, hit, err := s.Projector(ctx)
	if err != nil {
		return roster.Grid{}, false, err
	}
	grid := p.ScheduleGrid(week)
	if query != "" {
		grid = roster.SearchGrid(grid, st, query)
	}
	return grid, hit, nil
}

// AvailableBranches lists branches on day still open for the week.
func (s *ProjectionService) AvailableBranches(ctx context.Context, dayRaw, weekRef, query string) ([]models.Branch, bool, error) {
	day, err := parseDay(dayRaw)
	if err != nil {
		return nil, false, err
	}
	week, err := s.ResolveWeek(weekRef)
	if err != nil {
		return nil, false, err
	}
	p, hit, err := s.Projector(ctx)
	if err != nil {
		return nil, false, err
	}
	return p.AvailableBranchesForDay(day, week, query), hit, nil
}

// AvailableTeachers lists teachers not yet booked on day for the week.
func (s *ProjectionService) AvailableTeachers(ctx context.Context, dayRaw, weekRef, query string) ([]models.Teacher, bool, error) {
	day, err := parseDay(dayRaw)
	if err != nil {
		return nil, false, err
	}
	week, err := s.ResolveWeek(weekRef)
	if err != nil {
		return nil, false, err
	}
	p, hit, err := s.Projector(ctx)
	if err != nil {
		return nil, false, err
	}
	return p.AvailableTeachersForDay(day, week, query), hit, nil
}

// Conflicts classifies over-commitment for the week.
func (s *ProjectionService) Conflicts(ctx context.Context, weekRef string) ([]models.ScheduleConflict, bool, error) {
	week, err := s.ResolveWeek(weekRef)
	if err != nil {
		return nil, false, err
	}
	p, hit, err := s.Projector(ctx)
	if err != nil {
		return nil, false, err
	}
	conflicts := p.DetectConflicts(week)
	if conflicts == nil {
		conflicts = []models.ScheduleConflict{}
	}
	return conflicts, hit, nil
}

// Overview returns the week's stat counters.
func (s *ProjectionService) Overview(ctx context.Context, weekRef string) (roster.Overview, bool, error) {
	week, err := s.ResolveWeek(weekRef)
	if err != nil {
		return roster.Overview{}, false, err
	}
	p, hit, err := s.Projector(ctx)
	if err != nil {
		return roster.Overview{}, false, err
	}
	return p.Overview(week), hit, nil
}

// AssignmentFor returns the ledger row holding (branch, day, week).
func (s *ProjectionService) AssignmentFor(ctx context.Context, branchID, dayRaw, weekRef string) (*models.WeeklyAssignment, error) {
	day, err := parseDay(dayRaw)
	if err != nil {
		return nil, err
	}
	week, err := s.ResolveWeek(weekRef)
	if err != nil {
		return nil, err
	}
	p, _, err := s.Projector(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := p.Index().AssignmentFor(branchID, day, week)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no teacher assigned to this branch for this day and week")
	}
	return &a, nil
}

// Teachers lists teachers with their ledger rows attached.
func (s *ProjectionService) Teachers(ctx context.Context) ([]models.Teacher, bool, error) {
	p, hit, err := s.Projector(ctx)
	if err != nil {
		return nil, false, err
	}
	return p.Teachers(), hit, nil
}

// Teacher returns one teacher with ledger rows attached.
func (s *ProjectionService) Teacher(ctx context.Context, id string) (*models.Teacher, error) {
	p, _, err := s.Projector(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := p.TeacherView(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return &t, nil
}

// UnscheduledBranches lists branches without a schedule row.
func (s *ProjectionService) UnscheduledBranches(ctx context.Context) ([]models.Branch, error) {
	p, _, err := s.Projector(ctx)
	if err != nil {
		return nil, err
	}
	return p.UnscheduledBranches(), nil
}
