package dto

import "github.com/noah-isme/contest-seating-api/internal/models"

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	Type   models.ExportType   `json:"type" validate:"required,oneof=registrations seating"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=xlsx csv pdf"`
	// RunID selects an allocation run for seating exports; the latest run is used when empty.
	RunID  string `json:"runId,omitempty"`
	County string `json:"county,omitempty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Type      models.ExportType   `json:"type"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
