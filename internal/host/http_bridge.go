package host

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const maxResponseBytes = 64 * 1024

// HTTPBridge talks to the panel's local bridge endpoint over HTTP. Each
// operation is one POST to /rpc/<op> with a JSON argument object; every
// response embeds {"success": bool, "error": string}.
type HTTPBridge struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPBridge(baseURL, token string, logger *slog.Logger) *HTTPBridge {
	return &HTTPBridge{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			// Per-call deadlines come from the caller's context; this is the
			// hard ceiling for a bridge that stops responding entirely.
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (e *envelope) status() (bool, string) { return e.Success, e.Error }

type result interface {
	status() (ok bool, msg string)
}

func (b *HTTPBridge) call(ctx context.Context, op string, args any, out result) error {
	body, err := json.Marshal(args)
	if err != nil {
		return &CallError{Op: op, Message: fmt.Sprintf("marshal args: %v", err)}
	}

	url := fmt.Sprintf("%s/rpc/%s", b.baseURL, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &CallError{Op: op, Message: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Renderdeck-Request-Id", generateRequestID())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &CallError{Op: op, Message: fmt.Sprintf("http request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &CallError{Op: op, StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &CallError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}

	if ok, msg := out.status(); !ok {
		if msg == "" {
			msg = "host reported failure"
		}
		return &CallError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	return nil
}

func (b *HTTPBridge) SelectedSequences(ctx context.Context) ([]Sequence, error) {
	var resp struct {
		envelope
		Sequences []Sequence `json:"sequences"`
		Count     int        `json:"count"`
	}
	if err := b.call(ctx, "getSelectedSequences", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Sequences, nil
}

func (b *HTTPBridge) HasVideoForSequence(ctx context.Context, name string) (bool, error) {
	var resp struct {
		envelope
		HasVideo bool `json:"hasVideo"`
	}
	args := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := b.call(ctx, "hasVideoForSequence", args, &resp); err != nil {
		return false, err
	}
	return resp.HasVideo, nil
}

func (b *HTTPBridge) ActiveSequence(ctx context.Context) (Sequence, error) {
	var resp struct {
		envelope
		Name string `json:"name"`
	}
	if err := b.call(ctx, "getActiveSequence", struct{}{}, &resp); err != nil {
		return Sequence{}, err
	}
	return Sequence{Name: resp.Name}, nil
}

func (b *HTTPBridge) ActiveHasVideoTracks(ctx context.Context) (bool, error) {
	var resp struct {
		envelope
		HasVideo bool `json:"hasVideo"`
	}
	if err := b.call(ctx, "hasVideoTracks", struct{}{}, &resp); err != nil {
		return false, err
	}
	return resp.HasVideo, nil
}

func (b *HTTPBridge) SystemInfo(ctx context.Context) (SystemInfo, error) {
	var resp struct {
		envelope
		IsWindows     bool   `json:"isWindows"`
		DownloadsPath string `json:"downloadsPath"`
	}
	// getSystemInfo predates the envelope convention and omits the success
	// flag; a 200 with a parseable body counts as success.
	resp.Success = true
	if err := b.call(ctx, "getSystemInfo", struct{}{}, &resp); err != nil {
		return SystemInfo{}, err
	}
	return SystemInfo{IsWindows: resp.IsWindows, DownloadsPath: resp.DownloadsPath}, nil
}

func (b *HTTPBridge) ProjectExportsPath(ctx context.Context, folderName string, depth int) (string, error) {
	var resp struct {
		envelope
		Path string `json:"path"`
	}
	args := struct {
		FolderName string `json:"folderName"`
		Depth      int    `json:"depth"`
	}{FolderName: folderName, Depth: depth}
	if err := b.call(ctx, "getProjectExportsPathWithDepth", args, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

func (b *HTTPBridge) QueueExport(ctx context.Context, sequenceName, outputPath, presetPath string) (string, error) {
	var resp struct {
		envelope
		JobID string `json:"jobID"`
	}
	args := struct {
		Name       string `json:"name"`
		OutputPath string `json:"outputPath"`
		PresetPath string `json:"presetPath"`
	}{Name: sequenceName, OutputPath: outputPath, PresetPath: presetPath}
	if err := b.call(ctx, "exportSequenceByName", args, &resp); err != nil {
		return "", err
	}

	b.logger.Info("encode job queued",
		"sequence", sequenceName,
		"output", outputPath,
		"job_id", resp.JobID,
	)
	return resp.JobID, nil
}

func (b *HTTPBridge) StartBatch(ctx context.Context) error {
	var resp struct {
		envelope
	}
	if err := b.call(ctx, "startAMEBatch", struct{}{}, &resp); err != nil {
		return err
	}
	b.logger.Info("render queue started")
	return nil
}

func (b *HTTPBridge) ExportDirect(ctx context.Context, outputPath, presetPath string, useInOut bool) error {
	var resp struct {
		envelope
	}
	args := struct {
		OutputPath string `json:"outputPath"`
		PresetPath string `json:"presetPath"`
		UseInOut   bool   `json:"useInOut"`
	}{OutputPath: outputPath, PresetPath: presetPath, UseInOut: useInOut}
	if err := b.call(ctx, "exportDirectInPremiere", args, &resp); err != nil {
		return err
	}

	b.logger.Info("direct export started", "output", outputPath)
	return nil
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
