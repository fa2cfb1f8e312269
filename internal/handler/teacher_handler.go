package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/middleware"
	"github.com/noah-isme/branch-roster-api/internal/models"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
	"github.com/noah-isme/branch-roster-api/pkg/response"
)

type teacherService interface {
	Get(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, req dto.TeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id string, req dto.TeacherRequest) (*models.Teacher, error)
	Remove(ctx context.Context, id string) error
}

type teacherReadModel interface {
	Teachers(ctx context.Context) ([]models.Teacher, bool, error)
}

type assignmentService interface {
	ListForTeacher(ctx context.Context, teacherID string) ([]models.WeeklyAssignment, error)
	Assign(ctx context.Context, teacherID string, req dto.TeacherAssignmentRequest) (*models.WeeklyAssignment, error)
	Unassign(ctx context.Context, teacherID string, req dto.TeacherAssignmentRequest) error
	UnassignAll(ctx context.Context, teacherID string) (int64, error)
}

// TeacherHandler wires teacher profiles and the weekly ledger to HTTP routes.
type TeacherHandler struct {
	teachers    teacherService
	reads       teacherReadModel
	assignments assignmentService
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers teacherService, reads teacherReadModel, assignments assignmentService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, reads: reads, assignments: assignments}
}

// List godoc
// @Summary List teachers with their weekly assignments
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, hit, err := h.reads.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, teachers, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body dto.TeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req dto.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.TeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req dto.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// Delete godoc
// @Summary Delete teacher with its assignments and time slots
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.teachers.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAssignments godoc
// @Summary List a teacher's weekly assignments
// @Tags Teacher Assignments
// @Param id path string true "Teacher ID"
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments [get]
func (h *TeacherHandler) ListAssignments(c *gin.Context) {
	rows, err := h.assignments.ListForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Assign godoc
// @Summary Assign teacher to a branch for one weekday of a week
// @Tags Teacher Assignments
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.TeacherAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/assignments [post]
func (h *TeacherHandler) Assign(c *gin.Context) {
	var req dto.TeacherAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	row, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// Unassign godoc
// @Summary Remove one weekly assignment
// @Description Addressed by branch, weekday and any date in the week, as JSON body or query parameters.
// @Tags Teacher Assignments
// @Param id path string true "Teacher ID"
// @Param branchId query string false "Branch ID"
// @Param dayOfWeek query string false "Weekday"
// @Param date query string false "Any date in the week (YYYY-MM-DD)"
// @Success 204
// @Router /teachers/{id}/assignments [delete]
func (h *TeacherHandler) Unassign(c *gin.Context) {
	var req dto.TeacherAssignmentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if err := h.assignments.Unassign(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignAll godoc
// @Summary Remove every weekly assignment of a teacher
// @Tags Teacher Assignments
// @Param id path string true "Teacher ID"
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments/all [delete]
func (h *TeacherHandler) UnassignAll(c *gin.Context) {
	teacherID := c.Param("id")
	removed, err := h.assignments.UnassignAll(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UnassignAllResponse{TeacherID: teacherID, Removed: removed})
}
