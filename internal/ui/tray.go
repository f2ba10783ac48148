package ui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/renderdeck/renderdeck-agent/internal/exporter"
)

// ExportRunner is the slice of the exporter the tray drives.
type ExportRunner interface {
	Export(ctx context.Context) (*exporter.Result, error)
	IsRunning() bool
}

type Tray struct {
	exporter ExportRunner
	logger   *slog.Logger

	statusItem *systray.MenuItem
	lastItem   *systray.MenuItem
	exportItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Exporter ExportRunner
	Logger   *slog.Logger
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		exporter: cfg.Exporter,
		logger:   cfg.Logger,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Renderdeck")
	systray.SetTooltip("Renderdeck Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.lastItem = systray.AddMenuItem("Last export: none", "Result of the last export")
	t.lastItem.Disable()

	systray.AddSeparator()

	t.exportItem = systray.AddMenuItem("Export Selected Sequences", "Queue the selected sequences for export")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Renderdeck Agent")

	go func() {
		for {
			select {
			case <-t.exportItem.ClickedCh:
				t.handleExport()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleExport() {
	if t.exporter == nil {
		return
	}
	if t.exporter.IsRunning() {
		t.logger.Info("export already running, ignoring tray click")
		return
	}

	t.UpdateStatus("Exporting...")
	go t.runExport()
}

func (t *Tray) runExport() {
	result, err := t.exporter.Export(context.Background())

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.logger.Error("tray export failed", "error", err)
		t.statusItem.SetTitle("Status: Error")
		t.lastItem.SetTitle("Last export: failed")
		return
	}

	t.statusItem.SetTitle("Status: Idle")
	t.lastItem.SetTitle("Last export: " + result.StatusLine())
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) Quit() {
	systray.Quit()
}
