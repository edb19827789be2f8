// CLAUDE:SUMMARY Chrome headless lifecycle for page capture: launch, connect, recycle on demand.
// Package capture drives a headless Chrome to load a target URL and produce
// the raw artifacts of a clone run: full-page screenshot, serialized DOM
// and page metadata.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// NavigateTimeout bounds navigation plus load wait. Default: 30s.
	NavigateTimeout time.Duration

	// SettleDelay is the pause after load before screenshotting, giving
	// late-rendering content a chance. Default: 2s.
	SettleDelay time.Duration

	// ViewportWidth/ViewportHeight set the emulated viewport.
	// Defaults: 1280x800.
	ViewportWidth  int
	ViewportHeight int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 800
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome process shared by concurrent captures. Each
// capture runs in its own tab; the manager serializes lifecycle only.
type Manager struct {
	cfg     Config
	mu      sync.RWMutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("capture: manager is closed")
	}
	b, err := m.launch()
	if err != nil {
		return err
	}
	m.browser = b
	return nil
}

// Browser returns the current Rod browser handle, launching lazily if Start
// was never called.
func (m *Manager) Browser() (*rod.Browser, error) {
	m.mu.RLock()
	b := m.browser
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("capture: manager is closed")
	}
	if b != nil {
		return b, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser != nil {
		return m.browser, nil
	}
	nb, err := m.launch()
	if err != nil {
		return nil, err
	}
	m.browser = nb
	return nb, nil
}

// Recycle kills Chrome and restarts it. Used after repeated tab failures.
func (m *Manager) Recycle() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("capture: manager is closed")
	}
	m.cleanup()
	b, err := m.launch()
	if err != nil {
		return fmt.Errorf("capture: relaunch: %w", err)
	}
	m.browser = b
	m.cfg.Logger.Info("capture: browser recycled")
	return nil
}

// Close shuts down Chrome.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cleanup()
	return nil
}

func (m *Manager) launch() (*rod.Browser, error) {
	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("capture: connecting to remote chrome", "url", wsURL)
	} else {
		l := launcher.New().Headless(true)
		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("capture: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("capture: launched local chrome")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("capture: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("capture: ignore cert errors failed", "error", err)
	}
	return b, nil
}

func (m *Manager) cleanup() {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
}
