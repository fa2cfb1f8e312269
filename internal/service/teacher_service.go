package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/repository"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

// Form defaults applied when a teacher payload omits them.
const (
	defaultWorkingHoursStart = "09:00"
	defaultWorkingHoursEnd   = "17:00"
	defaultMaxHoursPerDay    = 8
	defaultMaxHoursPerWeek   = 40
)

var defaultAvailableDays = []string{
	string(models.Monday),
	string(models.Tuesday),
	string(models.Wednesday),
	string(models.Thursday),
	string(models.Friday),
}

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	DeleteWithTx(ctx context.Context, exec sqlx.ExecerContext, id string) error
}

type teacherLedger interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.WeeklyAssignment, error)
	DeleteByTeacherWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string) (int64, error)
}

type teacherSlotCleaner interface {
	DeleteByTeacherWithTx(ctx context.Context, exec sqlx.ExecerContext, teacherID string) error
}

// TeacherService manages teacher profiles.
type TeacherService struct {
	repo      teacherRepository
	ledger    teacherLedger
	slots     teacherSlotCleaner
	tx        txProvider
	readModel readModelInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(
	repo teacherRepository,
	ledger teacherLedger,
	slots teacherSlotCleaner,
	tx txProvider,
	readModel readModelInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readModel == nil {
		readModel = noopInvalidator{}
	}
	return &TeacherService{
		repo:      repo,
		ledger:    ledger,
		slots:     slots,
		tx:        tx,
		readModel: readModel,
		validator: ensureValidator(validate),
		logger:    logger,
	}
}

// List returns teachers ordered by name, ignoring case.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageErr(s.logger, err, "list teachers")
	}
	sort.SliceStable(teachers, func(i, j int) bool {
		return strings.ToLower(teachers[i].Name) < strings.ToLower(teachers[j].Name)
	})
	return teachers, nil
}

// Get returns a teacher with its ledger rows attached.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "teacher not found", "load teacher")
	}
	rows, err := s.ledger.ListByTeacher(ctx, id)
	if err != nil {
		return nil, storageErr(s.logger, err, "load teacher assignments")
	}
	teacher.WeeklyAssignments = rows
	return teacher, nil
}

// Create stores a new teacher profile.
func (s *TeacherService) Create(ctx context.Context, req dto.TeacherRequest) (*models.Teacher, error) {
	teacher := &models.Teacher{}
	if err := s.apply(ctx, teacher, req, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, s.writeErr(err, "create teacher")
	}
	s.readModel.Invalidate(ctx)
	return teacher, nil
}

// Update replaces a teacher's profile. Placement is left to the ledger.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.TeacherRequest) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "teacher not found", "load teacher")
	}
	if err := s.apply(ctx, teacher, req, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, s.writeErr(err, "update teacher")
	}
	s.readModel.Invalidate(ctx)
	return teacher, nil
}

// Remove deletes a teacher together with its ledger rows and time slots.
func (s *TeacherService) Remove(ctx context.Context, id string) error {
	err := runInTx(ctx, s.tx, s.logger, "delete teacher", func(tx *sqlx.Tx) error {
		removed, err := s.ledger.DeleteByTeacherWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.slots.DeleteByTeacherWithTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return err
		}
		s.logger.Info("teacher removed", zap.String("teacher_id", id), zap.Int64("assignments", removed))
		return nil
	})
	if err != nil {
		return err
	}
	s.readModel.Invalidate(ctx)
	return nil
}

func (s *TeacherService) apply(ctx context.Context, teacher *models.Teacher, req dto.TeacherRequest, excludeID string) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	req.Specialties = normalizeList(req.Specialties)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	start, end := req.WorkingHoursStart, req.WorkingHoursEnd
	if start == "" {
		start = defaultWorkingHoursStart
	}
	if end == "" {
		end = defaultWorkingHoursEnd
	}
	startAt, _ := models.ParseClock(start)
	endAt, _ := models.ParseClock(end)
	if endAt <= startAt {
		return appErrors.Clone(appErrors.ErrValidation, "working hours end must be after start")
	}

	exists, err := s.repo.NameExists(ctx, req.Name, excludeID)
	if err != nil {
		return storageErr(s.logger, err, "check teacher name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrValidation, "teacher name already exists")
	}

	teacher.Name = req.Name
	teacher.Mobile = trimPtr(req.Mobile)
	teacher.Gender = req.Gender
	teacher.Description = trimPtr(req.Description)
	teacher.Specialties = pq.StringArray(req.Specialties)
	teacher.WorkingHoursStart = start
	teacher.WorkingHoursEnd = end
	teacher.MaxHoursPerDay = intOr(req.MaxHoursPerDay, defaultMaxHoursPerDay)
	teacher.MaxHoursPerWeek = intOr(req.MaxHoursPerWeek, defaultMaxHoursPerWeek)
	teacher.AvailableDays = availableDays(req.AvailableDays)
	return nil
}

func (s *TeacherService) writeErr(err error, op string) error {
	if errors.Is(err, repository.ErrDuplicateName) {
		return appErrors.Clone(appErrors.ErrValidation, "teacher name already exists")
	}
	return storageErr(s.logger, err, op)
}

// availableDays canonicalizes day names in week order. A nil list takes the
// weekday default; an explicit empty list means no restriction.
func availableDays(raw []string) pq.StringArray {
	if raw == nil {
		return pq.StringArray(append([]string(nil), defaultAvailableDays...))
	}
	seen := make(map[models.Weekday]bool, len(raw))
	for _, d := range raw {
		if day, err := models.ParseWeekday(d); err == nil {
			seen[day] = true
		}
	}
	out := make(pq.StringArray, 0, len(seen))
	for _, day := range models.Weekdays {
		if seen[day] {
			out = append(out, string(day))
		}
	}
	return out
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
