// Package host talks to the video editor's scripting bridge: the panel-side
// endpoint that enumerates sequences, queues encode jobs on the shared render
// queue and starts the queue. Every call is a JSON request/response pair and
// every response carries a success flag; a missing or malformed response is a
// step failure, never a panic.
package host

import (
	"context"
	"errors"
	"fmt"
)

// Sequence identifies one timeline in the open project.
type Sequence struct {
	Name   string `json:"name"`
	NodeID string `json:"nodeId"`
}

// SystemInfo describes the host machine as the editor sees it.
type SystemInfo struct {
	IsWindows     bool   `json:"isWindows"`
	DownloadsPath string `json:"downloadsPath"`
}

// Bridge is the remote capability surface the exporter drives. The encode
// queue behind it is shared and ordered: QueueExport appends, StartBatch
// flushes everything appended since the last flush.
type Bridge interface {
	// SelectedSequences returns the sequences selected in the project panel.
	SelectedSequences(ctx context.Context) ([]Sequence, error)

	// HasVideoForSequence reports whether the named sequence has at least one
	// unmuted video track with clips.
	HasVideoForSequence(ctx context.Context, name string) (bool, error)

	// ActiveSequence returns the sequence currently open in the timeline.
	ActiveSequence(ctx context.Context) (Sequence, error)

	// ActiveHasVideoTracks is the active-sequence variant of the video check.
	ActiveHasVideoTracks(ctx context.Context) (bool, error)

	// SystemInfo returns platform facts resolved on the host side.
	SystemInfo(ctx context.Context) (SystemInfo, error)

	// ProjectExportsPath resolves the project-relative export folder,
	// climbing depth directories up from the project file first.
	ProjectExportsPath(ctx context.Context, folderName string, depth int) (string, error)

	// QueueExport appends one encode job to the shared render queue without
	// starting it. Returns the host-side job ID.
	QueueExport(ctx context.Context, sequenceName, outputPath, presetPath string) (string, error)

	// StartBatch flushes the shared render queue.
	StartBatch(ctx context.Context) error

	// ExportDirect renders in-process inside the editor, bypassing the
	// shared queue entirely.
	ExportDirect(ctx context.Context, outputPath, presetPath string, useInOut bool) error
}

// ErrNotConfigured is returned by the stub bridge for every operation.
var ErrNotConfigured = errors.New("host bridge not configured")

// CallError is a failed bridge call. StatusCode is zero when the failure
// happened before an HTTP status was received (transport error, bad JSON).
type CallError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bridge call %s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bridge call %s failed: %s", e.Op, e.Message)
}

// IsRetryable returns true for server errors and transport failures.
// A host that answered with success=false made a deliberate refusal.
func (e *CallError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}
