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

type timeSlotService interface {
	List(ctx context.Context, teacherID string) ([]models.TimeSlot, error)
	Create(ctx context.Context, req dto.TimeSlotRequest) (*models.TimeSlot, error)
	Update(ctx context.Context, id string, req dto.TimeSlotRequest) (*models.TimeSlot, error)
	Delete(ctx context.Context, id string) error
}

type TimeSlotHandler struct {
	slots timeSlotService
}

func NewTimeSlotHandler(slots timeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slots: slots}
}

// List godoc
// @Summary List time slots
// @Tags Time Slots
// @Produce json
// @Param teacherId query string false "Teacher filter"
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	slots, err := h.slots.List(c.Request.Context(), c.Query("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots)
}

// Create godoc
// @Summary Create time slot
// @Tags Time Slots
// @Accept json
// @Produce json
// @Param payload body dto.TimeSlotRequest true "Time slot payload"
// @Success 201 {object} response.Envelope
// @Router /time-slots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	slot, err := h.slots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Replace time slot
// @Tags Time Slots
// @Accept json
// @Produce json
// @Param id path string true "Time slot ID"
// @Param payload body dto.TimeSlotRequest true "Time slot payload"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [put]
func (h *TimeSlotHandler) Update(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	slot, err := h.slots.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slot)
}

// Delete godoc
// @Summary Delete time slot
// @Tags Time Slots
// @Param id path string true "Time slot ID"
// @Success 204
// @Router /time-slots/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	if err := h.slots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
