package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

type timeSlotRepository interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// TimeSlotService manages lesson windows. Their durations feed the hour
// totals used by conflict detection.
type TimeSlotService struct {
	repo      timeSlotRepository
	teachers  teacherFinder
	branches  assignmentBranchFinder
	readModel readModelInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs the time slot service.
func NewTimeSlotService(repo timeSlotRepository, teachers teacherFinder, branches assignmentBranchFinder, readModel readModelInvalidator, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readModel == nil {
		readModel = noopInvalidator{}
	}
	return &TimeSlotService{
		repo:      repo,
		teachers:  teachers,
		branches:  branches,
		readModel: readModel,
		validator: ensureValidator(validate),
		logger:    logger,
	}
}

// List returns every time slot, or one teacher's when teacherID is set.
func (s *TimeSlotService) List(ctx context.Context, teacherID string) ([]models.TimeSlot, error) {
	var (
		slots []models.TimeSlot
		err   error
	)
	if teacherID == "" {
		slots, err = s.repo.List(ctx)
	} else {
		slots, err = s.repo.ListByTeacher(ctx, teacherID)
	}
	if err != nil {
		return nil, storageErr(s.logger, err, "list time slots")
	}
	return slots, nil
}

// Create validates and stores a new lesson window.
func (s *TimeSlotService) Create(ctx context.Context, req dto.TimeSlotRequest) (*models.TimeSlot, error) {
	slot := &models.TimeSlot{}
	if err := s.apply(ctx, slot, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, storageErr(s.logger, err, "create time slot")
	}
	s.readModel.Invalidate(ctx)
	return slot, nil
}

// Update replaces a lesson window's fields.
func (s *TimeSlotService) Update(ctx context.Context, id string, req dto.TimeSlotRequest) (*models.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "time slot not found", "load time slot")
	}
	if err := s.apply(ctx, slot, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, storageErr(s.logger, err, "update time slot")
	}
	s.readModel.Invalidate(ctx)
	return slot, nil
}

// Delete removes a lesson window.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(s.logger, err, "time slot not found", "delete time slot")
	}
	s.readModel.Invalidate(ctx)
	return nil
}

func (s *TimeSlotService) apply(ctx context.Context, slot *models.TimeSlot, req dto.TimeSlotRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Room = strings.TrimSpace(req.Room)
	req.BranchID = trimPtr(req.BranchID)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		return lookupErr(s.logger, err, "teacher not found", "load teacher")
	}
	if req.BranchID != nil {
		if _, err := s.branches.FindByID(ctx, *req.BranchID); err != nil {
			return lookupErr(s.logger, err, "branch not found", "load branch")
		}
	}

	slot.TeacherID = req.TeacherID
	slot.BranchID = req.BranchID
	slot.Subject = req.Subject
	slot.Room = req.Room
	slot.StartsAt = req.StartsAt.UTC()
	slot.EndsAt = req.EndsAt.UTC()
	slot.IsRecurring = req.IsRecurring
	return nil
}
