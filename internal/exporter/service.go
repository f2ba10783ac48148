// Package exporter drives export of timeline sequences through the host
// editor's shared render queue. A batch runs strictly one item at a time:
// the queue on the host side is ordered by submission and has no atomic
// multi-submit, so item N+1 is never touched before item N's pipeline has
// completed or failed. Submissions accumulate on the host and a single
// StartBatch call at the end flushes them all.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/renderdeck/renderdeck-agent/internal/host"
	"github.com/renderdeck/renderdeck-agent/internal/logging"
	"github.com/renderdeck/renderdeck-agent/internal/naming"
	"github.com/renderdeck/renderdeck-agent/internal/platform"
	"github.com/renderdeck/renderdeck-agent/internal/settings"
)

const (
	defaultCallTimeout      = 20 * time.Second
	defaultSelectionTimeout = 3 * time.Second
)

// ErrExportRunning is returned when an export action is triggered while a
// previous one is still in flight. The panel disables its button, but the
// API can be hit directly.
var ErrExportRunning = errors.New("an export is already running")

type Service struct {
	bridge   host.Bridge
	store    settings.Store
	repo     Repository
	fs       afero.Fs
	defaults platform.Defaults
	logger   *slog.Logger

	now              func() time.Time
	callTimeout      time.Duration
	selectionTimeout time.Duration

	running atomic.Bool
}

type ServiceConfig struct {
	Bridge   host.Bridge
	Settings settings.Store
	Repo     Repository
	Fs       afero.Fs
	Defaults platform.Defaults
	Logger   *slog.Logger

	Now              func() time.Time
	CallTimeout      time.Duration
	SelectionTimeout time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		bridge:           cfg.Bridge,
		store:            cfg.Settings,
		repo:             cfg.Repo,
		fs:               cfg.Fs,
		defaults:         cfg.Defaults,
		logger:           cfg.Logger,
		now:              cfg.Now,
		callTimeout:      cfg.CallTimeout,
		selectionTimeout: cfg.SelectionTimeout,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.defaults == nil {
		s.defaults = platform.NewDefaults()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.callTimeout <= 0 {
		s.callTimeout = defaultCallTimeout
	}
	if s.selectionTimeout <= 0 {
		s.selectionTimeout = defaultSelectionTimeout
	}
	return s
}

// IsRunning reports whether an export action is currently in flight.
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// Export runs one export action against the current settings snapshot.
// Direct mode always takes the single-item path. Otherwise the project
// panel selection decides: a usable multi-selection runs as a batch, and
// anything else (empty selection, bridge error, selection query timeout)
// falls back to exporting the active sequence.
func (s *Service) Export(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrExportRunning
	}
	defer s.running.Store(false)

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if snap.DirectExport {
		return s.exportActive(ctx, snap, true)
	}

	seqs := s.selectedSequences(ctx)
	if len(seqs) == 0 {
		return s.exportActive(ctx, snap, false)
	}
	return s.runBatch(ctx, snap, seqs)
}

// selectedSequences queries the project panel selection under its own short
// timeout. The call is known to hang indefinitely on some hosts, so any
// failure here silently selects the single-item fallback.
func (s *Service) selectedSequences(ctx context.Context) []host.Sequence {
	callCtx, cancel := context.WithTimeout(ctx, s.selectionTimeout)
	defer cancel()

	seqs, err := s.bridge.SelectedSequences(callCtx)
	if err != nil {
		s.logger.Warn("selection query failed, falling back to active sequence", "error", err)
		return nil
	}
	return seqs
}

func (s *Service) runBatch(ctx context.Context, snap settings.Snapshot, seqs []host.Sequence) (*Result, error) {
	now := s.now()
	batch := &Batch{
		ID:        NewID(),
		Mode:      ModeBatch,
		Status:    BatchStatusRunning,
		ItemCount: len(seqs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		s.logger.Warn("failed to record batch", "error", err)
	}

	log := logging.WithBatchID(s.logger, batch.ID)
	log.Info("batch export started", "items", len(seqs))

	successCount, errorCount := 0, 0
	for i, seq := range seqs {
		if ctx.Err() != nil {
			// Cancelled mid-batch: already-queued jobs stay on the host
			// queue unflushed, nothing starts rendering.
			log.Warn("batch cancelled", "position", i, "queued", successCount)
			s.finishBatch(batch.ID, BatchStatusFailed, successCount, errorCount, "cancelled")
			return nil, ctx.Err()
		}

		if err := s.queueItem(ctx, log, batch.ID, i, seq, snap); err != nil {
			// One item's failure never aborts the batch.
			errorCount++
			log.Warn("item failed, continuing batch",
				"sequence", seq.Name,
				"position", i,
				"error", err,
			)
			continue
		}
		successCount++
	}

	result := &Result{
		BatchID:      batch.ID,
		Mode:         ModeBatch,
		ItemCount:    len(seqs),
		SuccessCount: successCount,
		ErrorCount:   errorCount,
	}

	// Finalizing: one flush for everything queued above, issued only after
	// every item has been attempted. Submission order is render order.
	if successCount > 0 {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		err := s.bridge.StartBatch(callCtx)
		cancel()
		if err != nil {
			log.Error("failed to start render queue", "error", err)
			s.finishBatch(batch.ID, BatchStatusFailed, successCount, errorCount, fmt.Sprintf("start batch: %v", err))
			return result, fmt.Errorf("start batch: %w", err)
		}
	}

	s.finishBatch(batch.ID, BatchStatusCompleted, successCount, errorCount, "")
	log.Info("batch export finished", "queued", successCount, "failed", errorCount)
	return result, nil
}

// queueItem runs one sequence through the per-item pipeline and records the
// outcome, success or failure, as an append-only item row.
func (s *Service) queueItem(ctx context.Context, log *slog.Logger, batchID string, position int, seq host.Sequence, snap settings.Snapshot) error {
	item := &Item{
		ID:           NewID(),
		BatchID:      batchID,
		Position:     position,
		SequenceName: seq.Name,
		CleanName:    naming.CleanSequenceName(seq.Name),
		CreatedAt:    s.now(),
	}

	err := s.prepareAndQueue(ctx, item, snap)
	if err != nil {
		item.Status = ItemStatusFailed
		item.Error = err.Error()
	} else {
		item.Status = ItemStatusQueued
	}

	// Bookkeeping must survive a cancelled export context.
	if repoErr := s.repo.CreateItem(context.Background(), item); repoErr != nil {
		log.Warn("failed to record batch item", "sequence", seq.Name, "error", repoErr)
	}
	return err
}

// prepareAndQueue is the per-item pipeline: video check, preset selection,
// folder resolution, version resolution, pattern rendering, submission.
func (s *Service) prepareAndQueue(ctx context.Context, item *Item, snap settings.Snapshot) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	hasVideo, err := s.bridge.HasVideoForSequence(callCtx, item.SequenceName)
	cancel()
	if err != nil {
		return fmt.Errorf("video check: %w", err)
	}

	if err := s.resolveTarget(ctx, item, snap, hasVideo); err != nil {
		return err
	}

	callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	jobID, err := s.bridge.QueueExport(callCtx, item.SequenceName, item.OutputPath, item.PresetPath)
	if err != nil {
		return fmt.Errorf("queue export: %w", err)
	}
	item.JobID = jobID
	return nil
}

// resolveTarget fills in the item's preset, version and output path.
// A failed version scan falls back to version 1 instead of failing the
// item; colliding with an existing file is the host's overwrite prompt's
// problem, losing the export is ours.
func (s *Service) resolveTarget(ctx context.Context, item *Item, snap settings.Snapshot, hasVideo bool) error {
	item.PresetPath = s.presetFor(hasVideo, snap)

	folder, err := s.resolveFolder(ctx, snap)
	if err != nil {
		return fmt.Errorf("resolve folder: %w", err)
	}

	version, err := naming.ResolveNextVersion(s.fs, folder, item.CleanName)
	if err != nil {
		s.logger.Warn("version scan failed, falling back to version 1",
			"folder", logging.SanitizePath(folder),
			"error", err,
		)
		version = 1
	}
	item.Version = version

	ext := ExtensionForPreset(item.PresetPath, hasVideo)
	filename := naming.RenderPattern(snap.NamingPattern, version, item.CleanName, s.now()) + "." + ext
	item.OutputPath = filepath.Join(folder, filename)
	return nil
}

func (s *Service) presetFor(hasVideo bool, snap settings.Snapshot) string {
	if hasVideo {
		if snap.VideoPresetPath != "" {
			return snap.VideoPresetPath
		}
		return s.defaults.VideoPresetPath()
	}
	if snap.AudioPresetPath != "" {
		return snap.AudioPresetPath
	}
	return s.defaults.AudioPresetPath()
}

// resolveFolder picks the output folder: the fixed folder when download mode
// is on (Downloads when it's blank), otherwise the project-relative export
// folder resolved by the host.
func (s *Service) resolveFolder(ctx context.Context, snap settings.Snapshot) (string, error) {
	if snap.UseFixedFolder {
		if snap.FixedFolder != "" {
			return snap.FixedFolder, nil
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		info, err := s.bridge.SystemInfo(callCtx)
		cancel()
		if err == nil && info.DownloadsPath != "" {
			return info.DownloadsPath, nil
		}
		return s.defaults.DownloadsPath(), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.bridge.ProjectExportsPath(callCtx, snap.ExportFolderName, snap.ExportFolderDepth)
}

// exportActive is the single-item path: it operates on the host's notion of
// the active sequence, submits exactly one export and starts it right away.
// The deferred batch flush never applies here.
func (s *Service) exportActive(ctx context.Context, snap settings.Snapshot, direct bool) (*Result, error) {
	mode := ModeSingle
	if direct {
		mode = ModeDirect
	}

	now := s.now()
	batch := &Batch{
		ID:        NewID(),
		Mode:      mode,
		Status:    BatchStatusRunning,
		ItemCount: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		s.logger.Warn("failed to record export", "error", err)
	}

	log := logging.WithBatchID(s.logger, batch.ID)
	log.Info("single export started", "mode", mode)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	seq, err := s.bridge.ActiveSequence(callCtx)
	cancel()
	if err != nil {
		s.finishBatch(batch.ID, BatchStatusFailed, 0, 1, fmt.Sprintf("active sequence: %v", err))
		return nil, fmt.Errorf("active sequence: %w", err)
	}

	item := &Item{
		ID:           NewID(),
		BatchID:      batch.ID,
		Position:     0,
		SequenceName: seq.Name,
		CleanName:    naming.CleanSequenceName(seq.Name),
		CreatedAt:    s.now(),
	}

	err = s.exportActiveItem(ctx, item, snap, direct)
	if err != nil {
		item.Status = ItemStatusFailed
		item.Error = err.Error()
	} else {
		item.Status = ItemStatusQueued
	}
	if repoErr := s.repo.CreateItem(context.Background(), item); repoErr != nil {
		log.Warn("failed to record export item", "error", repoErr)
	}

	result := &Result{BatchID: batch.ID, Mode: mode, ItemCount: 1}
	if err != nil {
		result.ErrorCount = 1
		s.finishBatch(batch.ID, BatchStatusFailed, 0, 1, err.Error())
		return result, err
	}

	result.SuccessCount = 1
	s.finishBatch(batch.ID, BatchStatusCompleted, 1, 0, "")
	log.Info("single export finished", "sequence", seq.Name, "output", logging.SanitizePath(item.OutputPath))
	return result, nil
}

func (s *Service) exportActiveItem(ctx context.Context, item *Item, snap settings.Snapshot, direct bool) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	hasVideo, err := s.bridge.ActiveHasVideoTracks(callCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("video check: %w", err)
	}

	if err := s.resolveTarget(ctx, item, snap, hasVideo); err != nil {
		return err
	}

	if direct {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		if err := s.bridge.ExportDirect(callCtx, item.OutputPath, item.PresetPath, snap.ExportInOutOnly); err != nil {
			return fmt.Errorf("direct export: %w", err)
		}
		return nil
	}

	callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
	jobID, err := s.bridge.QueueExport(callCtx, item.SequenceName, item.OutputPath, item.PresetPath)
	cancel()
	if err != nil {
		return fmt.Errorf("queue export: %w", err)
	}
	item.JobID = jobID

	callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if err := s.bridge.StartBatch(callCtx); err != nil {
		return fmt.Errorf("start render: %w", err)
	}
	return nil
}

// finishBatch writes the terminal batch row under a fresh context so the
// history stays accurate even when the export context is gone.
func (s *Service) finishBatch(id, status string, successCount, errorCount int, errMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.FinishBatch(ctx, id, status, successCount, errorCount, errMsg); err != nil {
		s.logger.Warn("failed to finalize batch record", "batch_id", id, "error", err)
	}
}
