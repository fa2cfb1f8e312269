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

type branchService interface {
	List(ctx context.Context) ([]models.Branch, error)
	Get(ctx context.Context, id string) (*models.Branch, error)
	Add(ctx context.Context, req dto.BranchRequest) (*models.Branch, error)
	Update(ctx context.Context, id string, req dto.BranchRequest) (*models.Branch, error)
	Remove(ctx context.Context, id string) error
}

type unscheduledBranchLister interface {
	AvailableForAssignment(ctx context.Context) ([]models.Branch, error)
}

// BranchHandler exposes the branch registry.
type BranchHandler struct {
	branches  branchService
	schedules unscheduledBranchLister
}

// NewBranchHandler constructs a BranchHandler.
func NewBranchHandler(branches branchService, schedules unscheduledBranchLister) *BranchHandler {
	return &BranchHandler{branches: branches, schedules: schedules}
}

// List godoc
// @Summary List branches
// @Tags Branches
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /branches [get]
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branches.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, branches)
}

// Available godoc
// @Summary List branches without a schedule day
// @Tags Branches
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /branches/available [get]
func (h *BranchHandler) Available(c *gin.Context) {
	branches, err := h.schedules.AvailableForAssignment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, branches)
}

// Get godoc
// @Summary Get branch
// @Tags Branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /branches/{id} [get]
func (h *BranchHandler) Get(c *gin.Context) {
	branch, err := h.branches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, branch)
}

// Create godoc
// @Summary Add branch
// @Tags Branches
// @Accept json
// @Produce json
// @Param payload body dto.BranchRequest true "Branch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	var req dto.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid branch payload"))
		return
	}
	branch, err := h.branches.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, branch)
}

// Update godoc
// @Summary Replace branch
// @Tags Branches
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param payload body dto.BranchRequest true "Branch payload"
// @Success 200 {object} response.Envelope
// @Router /branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	var req dto.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid branch payload"))
		return
	}
	branch, err := h.branches.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, branch)
}

// Delete godoc
// @Summary Remove branch
// @Tags Branches
// @Param id path string true "Branch ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /branches/{id} [delete]
func (h *BranchHandler) Delete(c *gin.Context) {
	if err := h.branches.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
