package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/models"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

// Rule messages surfaced to callers verbatim.
const (
	msgBranchAlreadyScheduled = "branch already assigned to a day"
	msgBranchHasSchedule      = "branch is still assigned to a day; unassign it first"
	msgBranchNotScheduled     = "branch is not scheduled on this day"
	msgSlotTaken              = "branch already assigned to a teacher for this day and week"
	msgTeacherBooked          = "teacher already assigned for this day"
)

// Rule names used as metric labels.
const (
	ruleBranchSchedule = "branch_single_day"
	ruleBranchInUse    = "branch_in_use"
	ruleNotScheduled   = "branch_not_scheduled"
	ruleSlotTaken      = "slot_taken"
	ruleTeacherBooked  = "teacher_booked"
)

const rosterCachePattern = "roster:*"

// readModelInvalidator drops cached projections after a confirmed write.
type readModelInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// newValidator returns a validator with the roster's custom tags.
func newValidator() *validator.Validate {
	v := validator.New()
	registerRosterValidations(v)
	return v
}

func registerRosterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := models.ParseWeekday(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := models.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
}

// ensureValidator adds the roster tags to a caller-provided validator.
func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return newValidator()
	}
	registerRosterValidations(v)
	return v
}

func parseDay(raw string) (models.Weekday, error) {
	day, err := models.ParseWeekday(raw)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return day, nil
}

// lookupErr converts a repository read error: sql.ErrNoRows becomes a
// NotFound with msg, anything else a logged storage failure.
func lookupErr(logger *zap.Logger, err error, msg, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, msg)
	}
	return storageErr(logger, err, op)
}

func storageErr(logger *zap.Logger, err error, op string) error {
	logger.Error("store round trip failed", zap.String("op", op), zap.Error(err))
	return appErrors.Storage(err, "failed to "+op)
}

// runInTx executes fn in a transaction, committing on success. Errors
// already typed by fn pass through; anything else becomes a storage failure.
func runInTx(ctx context.Context, provider txProvider, logger *zap.Logger, op string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := provider.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr(logger, err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		var typed *appErrors.Error
		if !errors.As(err, &typed) {
			err = storageErr(logger, err, op)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return storageErr(logger, err, "commit "+op)
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
