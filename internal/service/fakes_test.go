package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/repository"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

// memDB is an in-memory stand-in for the five roster tables. Writes made
// through *WithTx methods apply immediately; tests assert on the sqlmock
// commit/rollback expectations separately.
type memDB struct {
	seq       int
	branches  []models.Branch
	schedules []models.BranchSchedule
	teachers  []models.Teacher
	ledger    []models.WeeklyAssignment
	slots     []models.TimeSlot

	failWith    error
	createErr   error
	invalidated int
}

func newMemDB() *memDB { return &memDB{} }

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memDB) Invalidate(context.Context) { m.invalidated++ }

func (m *memDB) addBranch(name string) models.Branch {
	b := models.Branch{ID: m.nextID("branch"), Name: name, Color: "bg-blue-500"}
	m.branches = append(m.branches, b)
	return b
}

func (m *memDB) addSchedule(branchID string, day models.Weekday) models.BranchSchedule {
	s := models.BranchSchedule{ID: m.nextID("schedule"), BranchID: branchID, DayOfWeek: day, IsActive: true}
	m.schedules = append(m.schedules, s)
	return s
}

func (m *memDB) addTeacher(name string) models.Teacher {
	t := models.Teacher{ID: m.nextID("teacher"), Name: name, Gender: models.GenderFemale, WorkingHoursStart: "09:00", WorkingHoursEnd: "17:00"}
	m.teachers = append(m.teachers, t)
	return t
}

type memBranches struct{ *memDB }

func (r memBranches) List(context.Context) ([]models.Branch, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]models.Branch(nil), r.branches...), nil
}

func (r memBranches) FindByID(_ context.Context, id string) (*models.Branch, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, b := range r.branches {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memBranches) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	for _, b := range r.branches {
		if b.ID != excludeID && strings.EqualFold(b.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r memBranches) Create(_ context.Context, b *models.Branch) error {
	if r.createErr != nil {
		return r.createErr
	}
	b.ID = r.nextID("branch")
	r.memDB.branches = append(r.memDB.branches, *b)
	return nil
}

func (r memBranches) Update(_ context.Context, b *models.Branch) error {
	for i := range r.memDB.branches {
		if r.memDB.branches[i].ID == b.ID {
			r.memDB.branches[i] = *b
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memBranches) DeleteWithTx(_ context.Context, _ sqlx.ExecerContext, id string) error {
	for i, b := range r.memDB.branches {
		if b.ID == id {
			r.memDB.branches = append(r.memDB.branches[:i], r.memDB.branches[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type memSchedules struct{ *memDB }

func (r memSchedules) List(context.Context) ([]models.BranchSchedule, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]models.BranchSchedule(nil), r.schedules...), nil
}

func (r memSchedules) ListByDay(_ context.Context, day models.Weekday) ([]models.BranchSchedule, error) {
	var out []models.BranchSchedule
	for _, s := range r.schedules {
		if s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memSchedules) FindByBranch(_ context.Context, branchID string) (*models.BranchSchedule, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, s := range r.schedules {
		if s.BranchID == branchID {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memSchedules) Create(_ context.Context, s *models.BranchSchedule) error {
	if r.createErr != nil {
		return r.createErr
	}
	s.ID = r.nextID("schedule")
	s.IsActive = true
	r.memDB.schedules = append(r.memDB.schedules, *s)
	return nil
}

func (r memSchedules) Delete(_ context.Context, id string) error {
	for i, s := range r.memDB.schedules {
		if s.ID == id {
			r.memDB.schedules = append(r.memDB.schedules[:i], r.memDB.schedules[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type memTeachers struct{ *memDB }

func (r memTeachers) List(context.Context) ([]models.Teacher, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]models.Teacher(nil), r.teachers...), nil
}

func (r memTeachers) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, t := range r.teachers {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memTeachers) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	for _, t := range r.teachers {
		if t.ID != excludeID && strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r memTeachers) Create(_ context.Context, t *models.Teacher) error {
	if r.createErr != nil {
		return r.createErr
	}
	t.ID = r.nextID("teacher")
	r.memDB.teachers = append(r.memDB.teachers, *t)
	return nil
}

func (r memTeachers) Update(_ context.Context, t *models.Teacher) error {
	for i := range r.memDB.teachers {
		if r.memDB.teachers[i].ID == t.ID {
			r.memDB.teachers[i] = *t
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memTeachers) SetPlacementWithTx(_ context.Context, _ sqlx.ExecerContext, id string, branchID *string, day *models.Weekday) error {
	for i := range r.memDB.teachers {
		if r.memDB.teachers[i].ID == id {
			r.memDB.teachers[i].BranchID = branchID
			r.memDB.teachers[i].AssignedDay = day
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memTeachers) DeleteWithTx(_ context.Context, _ sqlx.ExecerContext, id string) error {
	for i, t := range r.memDB.teachers {
		if t.ID == id {
			r.memDB.teachers = append(r.memDB.teachers[:i], r.memDB.teachers[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type memLedger struct{ *memDB }

func (r memLedger) List(context.Context) ([]models.WeeklyAssignment, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]models.WeeklyAssignment(nil), r.ledger...), nil
}

func (r memLedger) ListByTeacher(_ context.Context, teacherID string) ([]models.WeeklyAssignment, error) {
	var out []models.WeeklyAssignment
	for _, a := range r.ledger {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memLedger) FindBySlot(_ context.Context, branchID string, day models.Weekday, week string) (*models.WeeklyAssignment, error) {
	for _, a := range r.ledger {
		if a.BranchID == branchID && a.DayOfWeek == day && a.WeekStartDate == week {
			cp := a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memLedger) FindByTeacherDay(_ context.Context, teacherID string, day models.Weekday, week string) (*models.WeeklyAssignment, error) {
	for _, a := range r.ledger {
		if a.TeacherID == teacherID && a.DayOfWeek == day && a.WeekStartDate == week {
			cp := a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// CreateWithTx enforces the same uniqueness the database indexes do.
func (r memLedger) CreateWithTx(ctx context.Context, _ sqlx.ExecerContext, a *models.WeeklyAssignment) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, err := r.FindBySlot(ctx, a.BranchID, a.DayOfWeek, a.WeekStartDate); err == nil {
		return repository.ErrSlotTaken
	}
	if _, err := r.FindByTeacherDay(ctx, a.TeacherID, a.DayOfWeek, a.WeekStartDate); err == nil {
		return repository.ErrTeacherBooked
	}
	a.ID = r.nextID("ledger")
	r.memDB.ledger = append(r.memDB.ledger, *a)
	return nil
}

func (r memLedger) DeleteWithTx(_ context.Context, _ sqlx.ExecerContext, teacherID, branchID string, day models.Weekday, week string) error {
	for i, a := range r.memDB.ledger {
		if a.TeacherID == teacherID && a.BranchID == branchID && a.DayOfWeek == day && a.WeekStartDate == week {
			r.memDB.ledger = append(r.memDB.ledger[:i], r.memDB.ledger[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memLedger) DeleteByTeacherWithTx(_ context.Context, _ sqlx.ExecerContext, teacherID string) (int64, error) {
	kept := r.memDB.ledger[:0]
	var removed int64
	for _, a := range r.memDB.ledger {
		if a.TeacherID == teacherID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.memDB.ledger = kept
	return removed, nil
}

type memSlots struct{ *memDB }

func (r memSlots) List(context.Context) ([]models.TimeSlot, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]models.TimeSlot(nil), r.slots...), nil
}

func (r memSlots) ListByTeacher(_ context.Context, teacherID string) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memSlots) FindByID(_ context.Context, id string) (*models.TimeSlot, error) {
	for _, s := range r.slots {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memSlots) Create(_ context.Context, s *models.TimeSlot) error {
	s.ID = r.nextID("slot")
	r.memDB.slots = append(r.memDB.slots, *s)
	return nil
}

func (r memSlots) Update(_ context.Context, s *models.TimeSlot) error {
	for i := range r.memDB.slots {
		if r.memDB.slots[i].ID == s.ID {
			r.memDB.slots[i] = *s
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memSlots) Delete(_ context.Context, id string) error {
	for i, s := range r.memDB.slots {
		if s.ID == id {
			r.memDB.slots = append(r.memDB.slots[:i], r.memDB.slots[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r memSlots) ClearBranchWithTx(_ context.Context, _ sqlx.ExecerContext, branchID string) (int64, error) {
	var n int64
	for i := range r.memDB.slots {
		if b := r.memDB.slots[i].BranchID; b != nil && *b == branchID {
			r.memDB.slots[i].BranchID = nil
			n++
		}
	}
	return n, nil
}

func (r memSlots) DeleteByTeacherWithTx(_ context.Context, _ sqlx.ExecerContext, teacherID string) error {
	kept := r.memDB.slots[:0]
	for _, s := range r.memDB.slots {
		if s.TeacherID != teacherID {
			kept = append(kept, s)
		}
	}
	r.memDB.slots = kept
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
