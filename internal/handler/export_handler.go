package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/service"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
	"github.com/noah-isme/branch-roster-api/pkg/response"
)

type exportService interface {
	Create(ctx context.Context, req dto.ExportRequest) (*models.ExportJob, error)
	Get(ctx context.Context, id string) (*models.ExportJob, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler queues roster exports and streams finished files.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler. A nil service answers 503, for
// deployments with exports disabled.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

var errExportsDisabled = appErrors.New("EXPORTS_DISABLED", http.StatusServiceUnavailable, "exports are disabled")

// Create godoc
// @Summary Queue a roster export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, errExportsDisabled)
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.exports.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// Get godoc
// @Summary Export status
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, errExportsDisabled)
		return
	}
	job, err := h.exports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// Download godoc
// @Summary Download a finished export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, errExportsDisabled)
		return
	}
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", download.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		_ = c.Error(err)
	}
}
