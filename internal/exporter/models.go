package exporter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ModeBatch  = "batch"
	ModeSingle = "single"
	ModeDirect = "direct"

	BatchStatusRunning   = "running"
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"

	ItemStatusQueued = "queued"
	ItemStatusFailed = "failed"
)

// Batch is one export action: a multi-item batch, a single-item fallback
// export, or a direct in-editor render. Rows are append-only history.
type Batch struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Status       string    `json:"status"`
	ItemCount    int       `json:"item_count"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item records one sequence's trip through the per-item pipeline, success or
// not. This is the durable debug log the panel reads back.
type Item struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batch_id"`
	Position     int       `json:"position"`
	SequenceName string    `json:"sequence_name"`
	CleanName    string    `json:"clean_name"`
	PresetPath   string    `json:"preset_path,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	Version      int       `json:"version"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	JobID        string    `json:"job_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Result is what an export action reports back to its caller.
type Result struct {
	BatchID      string `json:"batch_id"`
	Mode         string `json:"mode"`
	ItemCount    int    `json:"item_count"`
	SuccessCount int    `json:"success_count"`
	ErrorCount   int    `json:"error_count"`
}

// StatusLine renders the single user-facing status string.
func (r *Result) StatusLine() string {
	switch r.Mode {
	case ModeDirect:
		return "direct export started"
	case ModeSingle:
		if r.SuccessCount == 1 {
			return "export started"
		}
		return "export failed"
	default:
		return fmt.Sprintf("batch started: %d/%d", r.SuccessCount, r.ItemCount)
	}
}

func NewID() string {
	return uuid.NewString()
}
