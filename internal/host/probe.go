package host

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultProbeTTL = 1 * time.Minute

// Status is the last observed state of the host bridge.
type Status struct {
	Available     bool      `json:"available"`
	IsWindows     bool      `json:"is_windows"`
	DownloadsPath string    `json:"downloads_path,omitempty"`
	Error         string    `json:"error,omitempty"`
	ProbedAt      time.Time `json:"probed_at"`
}

// CachedProbe checks bridge availability with a TTL cache so the status
// endpoint and the tray do not hammer the host with system-info calls.
type CachedProbe struct {
	bridge Bridge
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	cached *Status
}

// NewCachedProbe creates a caching availability probe around a bridge.
func NewCachedProbe(bridge Bridge, logger *slog.Logger) *CachedProbe {
	return &CachedProbe{
		bridge: bridge,
		ttl:    defaultProbeTTL,
		logger: logger,
	}
}

// Get returns the cached status if fresh, otherwise re-probes.
func (p *CachedProbe) Get(ctx context.Context) *Status {
	p.mu.RLock()
	if p.cached != nil && time.Since(p.cached.ProbedAt) < p.ttl {
		status := p.cached
		p.mu.RUnlock()
		return status
	}
	p.mu.RUnlock()

	return p.Refresh(ctx)
}

func (p *CachedProbe) Peek() *Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cached
}

// Refresh forces a new probe regardless of cache freshness. An unreachable
// bridge is a valid observation, not an error.
func (p *CachedProbe) Refresh(ctx context.Context) *Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := &Status{ProbedAt: time.Now()}
	info, err := p.bridge.SystemInfo(ctx)
	if err != nil {
		p.logger.Warn("bridge probe failed", "error", err)
		status.Error = err.Error()
	} else {
		status.Available = true
		status.IsWindows = info.IsWindows
		status.DownloadsPath = info.DownloadsPath
	}

	p.cached = status
	return status
}

// Invalidate clears the cached status.
func (p *CachedProbe) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
