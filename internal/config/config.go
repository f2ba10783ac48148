// Package config provides configuration management for the Renderdeck Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8878
	DefaultLogLevel = "info"
	DefaultDataDir  = ".renderdeck"

	// Environment variable names
	EnvPort     = "RENDERDECK_PORT"
	EnvLogLevel = "RENDERDECK_LOG_LEVEL"
	EnvDataDir  = "RENDERDECK_DATA_DIR"
	EnvHeadless = "RENDERDECK_HEADLESS"

	// Host bridge environment variable names
	EnvBridgeURL         = "RENDERDECK_BRIDGE_URL"
	EnvBridgeToken       = "RENDERDECK_BRIDGE_TOKEN"
	EnvBridgeCallTimeout = "RENDERDECK_BRIDGE_CALL_TIMEOUT"
	EnvSelectionTimeout  = "RENDERDECK_SELECTION_TIMEOUT"

	// Database filename
	DBFilename = "renderdeck.db"

	// Bridge call defaults, in seconds. The selection query is the only call
	// the host is known to hang on, so it gets a much tighter bound.
	DefaultBridgeCallTimeout = 20
	DefaultSelectionTimeout  = 3
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	Headless() bool
	BridgeURL() string
	BridgeToken() string
	BridgeCallTimeout() time.Duration
	SelectionTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	bridgeURL         string
	bridgeToken       string
	bridgeCallTimeout time.Duration
	selectionTimeout  time.Duration
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:              DefaultPort,
		logLevel:          DefaultLogLevel,
		dataDir:           defaultDataDir(),
		bridgeCallTimeout: DefaultBridgeCallTimeout * time.Second,
		selectionTimeout:  DefaultSelectionTimeout * time.Second,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		cfg.headless = h == "1" || h == "true"
	}

	cfg.bridgeURL = os.Getenv(EnvBridgeURL)
	cfg.bridgeToken = os.Getenv(EnvBridgeToken)

	if t := os.Getenv(EnvBridgeCallTimeout); t != "" {
		secs, err := strconv.Atoi(t)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive number of seconds", EnvBridgeCallTimeout)
		}
		cfg.bridgeCallTimeout = time.Duration(secs) * time.Second
	}

	if t := os.Getenv(EnvSelectionTimeout); t != "" {
		secs, err := strconv.Atoi(t)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive number of seconds", EnvSelectionTimeout)
		}
		cfg.selectionTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// Headless reports whether the agent should run without the system tray
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// BridgeURL returns the base URL of the host editor's scripting bridge.
// An empty URL means no bridge is configured and a stub is used instead.
func (c *EnvConfig) BridgeURL() string {
	return c.bridgeURL
}

// BridgeToken returns the bearer token for the host bridge, if any
func (c *EnvConfig) BridgeToken() string {
	return c.bridgeToken
}

// BridgeCallTimeout returns the timeout applied to every bridge call
func (c *EnvConfig) BridgeCallTimeout() time.Duration {
	return c.bridgeCallTimeout
}

// SelectionTimeout returns the timeout for the initial selection query
func (c *EnvConfig) SelectionTimeout() time.Duration {
	return c.selectionTimeout
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
