package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/branch-roster-api/internal/dto"
	"github.com/noah-isme/branch-roster-api/internal/models"
	"github.com/noah-isme/branch-roster-api/internal/roster"
	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
	"github.com/noah-isme/branch-roster-api/pkg/export"
	"github.com/noah-isme/branch-roster-api/pkg/jobs"
	"github.com/noah-isme/branch-roster-api/pkg/storage"
)

type rosterSource interface {
	ResolveWeek(raw string) (string, error)
	Projector(ctx context.Context) (*roster.Projector, bool, error)
}

type fileStorage interface {
	Save(name string, data []byte) error
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	Workers         int
	MaxRetries      int
	RetryDelay      time.Duration
}

// ExportDownload is an opened export artifact ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders roster week sheets on a background worker pool and
// hands out signed download links. Job status lives in memory; files live in
// storage until the cleanup ticker purges them.
type ExportService struct {
	source    rosterSource
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers map[models.ExportFormat]export.Renderer
	queue     *jobs.Queue[string]
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs an ExportService with its own worker queue.
// Call Start before creating exports.
func NewExportService(source rosterSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	s := &ExportService{
		source:  source,
		storage: files,
		signer:  signer,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportCSV: export.CSV{},
			models.ExportPDF: export.PDF{},
		},
		validator: ensureValidator(validate),
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		jobs:      make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue[string]("roster-exports", s.process, jobs.Config{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	s.queue.OnFailure(func(job jobs.Job[string], err error) {
		s.fail(job.Payload, err)
	})
	return s
}

// Start runs the worker pool and the cleanup ticker until ctx is done.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.startCleanup(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Create records a queued export and hands it to the workers.
func (s *ExportService) Create(ctx context.Context, req dto.ExportRequest) (*models.ExportJob, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	week, err := s.source.ResolveWeek(req.Week)
	if err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:            uuid.NewString(),
		Format:        models.ExportFormat(req.Format),
		WeekStartDate: week,
		Status:        models.ExportQueued,
		CreatedAt:     s.now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job[string]{ID: job.ID, Payload: job.ID}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	s.metrics.RecordExport(req.Format, string(models.ExportQueued))
	s.logger.Info("export queued", zap.String("export_id", job.ID), zap.String("format", req.Format), zap.String("week_start", week))
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyJob(job), nil
}

// Get returns the export's current status.
func (s *ExportService) Get(_ context.Context, id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	return copyJob(job), nil
}

// ResolveDownload verifies token and opens the export it points at.
func (s *ExportService) ResolveDownload(_ context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	s.mu.RLock()
	job, ok := s.jobs[claims.ExportID]
	var format models.ExportFormat
	var status models.ExportStatus
	var file string
	if ok {
		format, status, file = job.Format, job.Status, job.File
	}
	s.mu.RUnlock()

	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	if status != models.ExportFinished || file != claims.File {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	f, err := s.storage.Open(file)
	if err != nil {
		return nil, storageErr(s.logger, err, "open export file")
	}
	return &ExportDownload{
		File:        f,
		Filename:    file,
		ContentType: s.renderers[format].ContentType(),
	}, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job[string]) error {
	s.mu.Lock()
	current, ok := s.jobs[job.Payload]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	current.Status = models.ExportProcessing
	format, week := current.Format, current.WeekStartDate
	s.mu.Unlock()

	renderer, ok := s.renderers[format]
	if !ok {
		s.fail(job.Payload, fmt.Errorf("unsupported format %s", format))
		return nil
	}
	projector, _, err := s.source.Projector(ctx)
	if err != nil {
		return err
	}
	headers, rows := projector.Export(week)
	payload, err := renderer.Render(export.Table{
		Title:   "Branch roster, week of " + week,
		Headers: headers,
		Rows:    rows,
	})
	if err != nil {
		return err
	}

	name := fmt.Sprintf("roster-%s-%s.%s", week, job.Payload, renderer.Extension())
	if err := s.storage.Save(name, payload); err != nil {
		return err
	}
	token, expiresAt, err := s.signer.Sign(job.Payload, name)
	if err != nil {
		return err
	}

	finished := s.now().UTC()
	s.mu.Lock()
	current.Status = models.ExportFinished
	current.File = name
	current.Error = ""
	current.DownloadURL = strings.TrimRight(s.cfg.APIPrefix, "/") + "/exports/download/" + token
	current.ExpiresAt = &expiresAt
	current.FinishedAt = &finished
	s.mu.Unlock()

	s.metrics.RecordExport(string(format), string(models.ExportFinished))
	s.logger.Info("export finished", zap.String("export_id", job.Payload), zap.Int("rows", len(rows)))
	return nil
}

func (s *ExportService) fail(id string, cause error) {
	finished := s.now().UTC()
	s.mu.Lock()
	job, ok := s.jobs[id]
	if ok {
		job.Status = models.ExportFailed
		job.Error = cause.Error()
		job.FinishedAt = &finished
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	s.metrics.RecordExport(string(job.Format), string(models.ExportFailed))
	s.logger.Error("export failed", zap.String("export_id", id), zap.Error(cause))
}

func (s *ExportService) startCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ExportService) cleanupExpired() {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("files", len(removed)))
	}
}

// copyJob detaches a job from the status map. Callers hold mu.
func copyJob(job *models.ExportJob) *models.ExportJob {
	copied := *job
	return &copied
}
