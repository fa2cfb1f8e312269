package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/branch-roster-api/internal/middleware"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/roster"
	"github.com/noah-isme/branch-roster-api/pkg/response"
)

type rosterService interface {
	Grid(ctx context.Context, weekRef, searchType, query string) (roster.Grid, bool, error)
	AvailableBranches(ctx context.Context, day, weekRef, query string) ([]models.Branch, bool, error)
	AvailableTeachers(ctx context.Context, day, weekRef, query string) ([]models.Teacher, bool, error)
	Conflicts(ctx context.Context, weekRef string) ([]models.ScheduleConflict, bool, error)
	Overview(ctx context.Context, weekRef string) (roster.Overview, bool, error)
	AssignmentFor(ctx context.Context, branchID, day, weekRef string) (*models.WeeklyAssignment, error)
}

// RosterHandler serves the derived week views.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// Grid godoc
// @Summary Week grid of scheduled branches and their teachers
// @Tags Roster
// @Produce json
// @Param week query string false "Any date in the week (YYYY-MM-DD). Defaults to today"
// @Param searchType query string false "branch, day or teacher"
// @Param q query string false "Case-insensitive search term"
// @Success 200 {object} response.Envelope
// @Router /roster/grid [get]
func (h *RosterHandler) Grid(c *gin.Context) {
	grid, hit, err := h.service.Grid(c.Request.Context(), c.Query("week"), c.Query("searchType"), c.Query("q"))
	h.respond(c, grid, hit, err)
}

// AvailableBranches godoc
// @Summary Branches scheduled on a day with no teacher that week
// @Tags Roster
// @Produce json
// @Param day query string true "Weekday"
// @Param week query string false "Any date in the week"
// @Param q query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /roster/available-branches [get]
func (h *RosterHandler) AvailableBranches(c *gin.Context) {
	branches, hit, err := h.service.AvailableBranches(c.Request.Context(), c.Query("day"), c.Query("week"), c.Query("q"))
	h.respond(c, branches, hit, err)
}

// AvailableTeachers godoc
// @Summary Teachers not yet booked on a day that week
// @Tags Roster
// @Produce json
// @Param day query string true "Weekday"
// @Param week query string false "Any date in the week"
// @Param q query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /roster/available-teachers [get]
func (h *RosterHandler) AvailableTeachers(c *gin.Context) {
	teachers, hit, err := h.service.AvailableTeachers(c.Request.Context(), c.Query("day"), c.Query("week"), c.Query("q"))
	h.respond(c, teachers, hit, err)
}

// Conflicts godoc
// @Summary Over-commitment conflicts for a week
// @Tags Roster
// @Produce json
// @Param week query string false "Any date in the week"
// @Success 200 {object} response.Envelope
// @Router /roster/conflicts [get]
func (h *RosterHandler) Conflicts(c *gin.Context) {
	conflicts, hit, err := h.service.Conflicts(c.Request.Context(), c.Query("week"))
	h.respond(c, conflicts, hit, err)
}

// Overview godoc
// @Summary Week stat counters
// @Tags Roster
// @Produce json
// @Param week query string false "Any date in the week"
// @Success 200 {object} response.Envelope
// @Router /roster/overview [get]
func (h *RosterHandler) Overview(c *gin.Context) {
	overview, hit, err := h.service.Overview(c.Request.Context(), c.Query("week"))
	h.respond(c, overview, hit, err)
}

// Assignment godoc
// @Summary Ledger row holding a branch on a day of a week
// @Tags Roster
// @Produce json
// @Param branchId query string true "Branch ID"
// @Param day query string true "Weekday"
// @Param week query string false "Any date in the week"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roster/assignment [get]
func (h *RosterHandler) Assignment(c *gin.Context) {
	row, err := h.service.AssignmentFor(c.Request.Context(), c.Query("branchId"), c.Query("day"), c.Query("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, row)
}

func (h *RosterHandler) respond(c *gin.Context, data interface{}, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, data, middleware.ExtractMeta(c))
}
