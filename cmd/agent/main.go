package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/renderdeck/renderdeck-agent/internal/api"
	"github.com/renderdeck/renderdeck-agent/internal/config"
	"github.com/renderdeck/renderdeck-agent/internal/db"
	"github.com/renderdeck/renderdeck-agent/internal/exporter"
	"github.com/renderdeck/renderdeck-agent/internal/host"
	"github.com/renderdeck/renderdeck-agent/internal/logging"
	"github.com/renderdeck/renderdeck-agent/internal/settings"
	"github.com/renderdeck/renderdeck-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// A .env next to the binary is optional.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting renderdeck agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	store := settings.NewSQLiteStore(database.Conn())
	repo := exporter.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(store)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(store)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                 RENDERDECK AGENT v%-8s                ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var bridge host.Bridge
	if cfg.BridgeURL() != "" {
		bridge = host.NewHTTPBridge(cfg.BridgeURL(), cfg.BridgeToken(), logger)
		logger.Info("host bridge configured", "base_url", cfg.BridgeURL())
	} else {
		bridge = host.NewStubBridge(logger)
		logger.Warn("no host bridge configured, exports will fail until RENDERDECK_BRIDGE_URL is set")
	}

	probe := host.NewCachedProbe(bridge, logger)
	initCtx, initCancel := context.WithTimeout(context.Background(), cfg.BridgeCallTimeout())
	status := probe.Refresh(initCtx)
	initCancel()
	if status.Available {
		logger.Info("host bridge reachable", "is_windows", status.IsWindows)
	} else {
		logger.Warn("host bridge unreachable", "error", status.Error)
	}

	exportSvc := exporter.NewService(exporter.ServiceConfig{
		Bridge:           bridge,
		Settings:         store,
		Repo:             repo,
		Logger:           logger,
		CallTimeout:      cfg.BridgeCallTimeout(),
		SelectionTimeout: cfg.SelectionTimeout(),
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Exporter:  exportSvc,
		Settings:  store,
		Repo:      repo,
		Probe:     probe,
		Logger:    logger,
		StartTime: startTime,
		Version:   config.Version,
		DeviceID:  deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Exporter: exportSvc,
			Logger:   logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureDeviceID(store settings.Store) (string, error) {
	return ensureSecret(store, settings.KeyDeviceID, 16)
}

func ensureAuthToken(store settings.Store) (string, error) {
	return ensureSecret(store, settings.KeyAuthToken, 32)
}

func ensureSecret(store settings.Store, key string, size int) (string, error) {
	ctx := context.Background()

	existing, err := store.Get(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	value := hex.EncodeToString(raw)

	if err := store.Set(ctx, key, value); err != nil {
		return "", err
	}

	return value, nil
}
