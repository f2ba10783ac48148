package api

import (
	"time"

	"github.com/renderdeck/renderdeck-agent/internal/exporter"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State     string             `json:"state"`
	LastError string             `json:"last_error,omitempty"`
	LastBatch *BatchResponse     `json:"last_batch,omitempty"`
	Host      *HostProbeResponse `json:"host,omitempty"`
}

type HostProbeResponse struct {
	Available   bool   `json:"available"`
	IsWindows   bool   `json:"is_windows"`
	Error       string `json:"error,omitempty"`
	LastProbeAt string `json:"last_probe_at,omitempty"`
}

type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

type ExportResponse struct {
	BatchID      string `json:"batch_id"`
	Mode         string `json:"mode"`
	ItemCount    int    `json:"item_count"`
	SuccessCount int    `json:"success_count"`
	ErrorCount   int    `json:"error_count"`
	StatusLine   string `json:"status_line"`
}

type BatchResponse struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	Status       string `json:"status"`
	ItemCount    int    `json:"item_count"`
	SuccessCount int    `json:"success_count"`
	ErrorCount   int    `json:"error_count"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type BatchesResponse struct {
	Batches []BatchResponse `json:"batches"`
}

type BatchDetailResponse struct {
	BatchResponse
	Items []ItemResponse `json:"items"`
}

type ItemResponse struct {
	ID           string `json:"id"`
	BatchID      string `json:"batch_id"`
	Position     int    `json:"position"`
	SequenceName string `json:"sequence_name"`
	OutputPath   string `json:"output_path,omitempty"`
	PresetPath   string `json:"preset_path,omitempty"`
	Version      int    `json:"version"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	JobID        string `json:"job_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type LogResponse struct {
	Items []ItemResponse `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func BatchToResponse(b *exporter.Batch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		Mode:         b.Mode,
		Status:       b.Status,
		ItemCount:    b.ItemCount,
		SuccessCount: b.SuccessCount,
		ErrorCount:   b.ErrorCount,
		Error:        b.Error,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}

func ItemToResponse(i *exporter.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		BatchID:      i.BatchID,
		Position:     i.Position,
		SequenceName: i.SequenceName,
		OutputPath:   i.OutputPath,
		PresetPath:   i.PresetPath,
		Version:      i.Version,
		Status:       i.Status,
		Error:        i.Error,
		JobID:        i.JobID,
		CreatedAt:    i.CreatedAt.Format(time.RFC3339),
	}
}

func ResultToResponse(r *exporter.Result) ExportResponse {
	return ExportResponse{
		BatchID:      r.BatchID,
		Mode:         r.Mode,
		ItemCount:    r.ItemCount,
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
		StatusLine:   r.StatusLine(),
	}
}
