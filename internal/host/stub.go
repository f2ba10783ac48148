package host

import (
	"context"
	"log/slog"
)

// StubBridge stands in when no bridge URL is configured. Every operation
// logs and fails with ErrNotConfigured so export attempts surface a clear
// reason instead of hanging.
type StubBridge struct {
	logger *slog.Logger
}

func NewStubBridge(logger *slog.Logger) *StubBridge {
	return &StubBridge{logger: logger}
}

func (s *StubBridge) SelectedSequences(ctx context.Context) ([]Sequence, error) {
	s.logger.Info("bridge stub: selection query requested")
	return nil, ErrNotConfigured
}

func (s *StubBridge) HasVideoForSequence(ctx context.Context, name string) (bool, error) {
	s.logger.Info("bridge stub: video check requested", "sequence", name)
	return false, ErrNotConfigured
}

func (s *StubBridge) ActiveSequence(ctx context.Context) (Sequence, error) {
	s.logger.Info("bridge stub: active sequence requested")
	return Sequence{}, ErrNotConfigured
}

func (s *StubBridge) ActiveHasVideoTracks(ctx context.Context) (bool, error) {
	s.logger.Info("bridge stub: active video check requested")
	return false, ErrNotConfigured
}

func (s *StubBridge) SystemInfo(ctx context.Context) (SystemInfo, error) {
	s.logger.Info("bridge stub: system info requested")
	return SystemInfo{}, ErrNotConfigured
}

func (s *StubBridge) ProjectExportsPath(ctx context.Context, folderName string, depth int) (string, error) {
	s.logger.Info("bridge stub: exports path requested", "folder", folderName, "depth", depth)
	return "", ErrNotConfigured
}

func (s *StubBridge) QueueExport(ctx context.Context, sequenceName, outputPath, presetPath string) (string, error) {
	s.logger.Info("bridge stub: queue export requested", "sequence", sequenceName)
	return "", ErrNotConfigured
}

func (s *StubBridge) StartBatch(ctx context.Context) error {
	s.logger.Info("bridge stub: start batch requested")
	return ErrNotConfigured
}

func (s *StubBridge) ExportDirect(ctx context.Context, outputPath, presetPath string, useInOut bool) error {
	s.logger.Info("bridge stub: direct export requested", "output", outputPath)
	return ErrNotConfigured
}
