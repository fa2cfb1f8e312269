package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
	"github.com/noah-isme/branch-roster-api/pkg/response"
)

type branchScheduleService interface {
	List(ctx context.Context, day string) ([]models.BranchSchedule, error)
	AssignBranchToDay(ctx context.Context, req dto.AssignBranchDayRequest) (*models.BranchSchedule, error)
	Unassign(ctx context.Context, scheduleID string) error
}

// BranchScheduleHandler places branches on weekdays.
type BranchScheduleHandler struct {
	schedules branchScheduleService
}

func NewBranchScheduleHandler(schedules branchScheduleService) *BranchScheduleHandler {
	return &BranchScheduleHandler{schedules: schedules}
}

// List godoc
// @Summary List branch schedules
// @Tags Branch Schedules
// @Produce json
// @Param day query string false "Weekday filter (Monday..Sunday)"
// @Success 200 {object} response.Envelope
// @Router /branch-schedules [get]
func (h *BranchScheduleHandler) List(c *gin.Context) {
	rows, err := h.schedules.List(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Create godoc
// @Summary Assign branch to a weekday
// @Tags Branch Schedules
// @Accept json
// @Produce json
// @Param payload body dto.AssignBranchDayRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /branch-schedules [post]
func (h *BranchScheduleHandler) Create(c *gin.Context) {
	var req dto.AssignBranchDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid branch schedule payload"))
		return
	}
	row, err := h.schedules.AssignBranchToDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// Delete godoc
// @Summary Remove a branch schedule
// @Tags Branch Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /branch-schedules/{id} [delete]
func (h *BranchScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Unassign(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
