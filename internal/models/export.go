package models

import "time"

// ExportFormat is the artifact type of a roster export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportStatus tracks an export through the worker queue.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "queued"
	ExportProcessing ExportStatus = "processing"
	ExportFinished   ExportStatus = "finished"
	ExportFailed     ExportStatus = "failed"
)

// ExportJob describes one requested roster export.
type ExportJob struct {
	ID            string       `json:"id"`
	Format        ExportFormat `json:"format"`
	WeekStartDate string       `json:"week_start_date"`
	Status        ExportStatus `json:"status"`
	File          string       `json:"-"`
	Error         string       `json:"error,omitempty"`
	DownloadURL   string       `json:"download_url,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
}
