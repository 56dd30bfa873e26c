// Package browser owns the Chrome instance used for a run and adapts go-rod pages to the small
// Page/Frame surface the portal session drives.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// Config holds browser configuration.
type Config struct {
	DebuggerURL         string   `json:"debugger_url"`
	Bin                 string   `json:"bin"`
	Launch              []string `json:"launch"` // extra Chrome flags, "--name=value" or "--name"
	Headless            bool     `json:"headless"`
	Stealth             bool     `json:"stealth"`
	ViewportWidth       int      `json:"viewport_width"`
	ViewportHeight      int      `json:"viewport_height"`
	NavigationTimeoutMs int      `json:"navigation_timeout_ms"`
}

// DefaultConfig returns sensible defaults for an unattended run.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		Stealth:             true,
		ViewportWidth:       1280,
		ViewportHeight:      800,
		NavigationTimeoutMs: 30000,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 800
	}
	return c.ViewportHeight
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// Manager owns one Chrome connection for the duration of a run.
type Manager struct {
	cfg        Config
	log        *zap.Logger
	mu         sync.Mutex
	browser    *rod.Browser
	launcher   *launcher.Launcher // nil when attached through DebuggerURL
	controlURL string
}

// NewManager creates a manager. Nothing is launched until Start.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cfg: cfg, log: log}
}

// Start connects to an existing Chrome or launches a new one.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.log.Warn("stale browser connection detected, reconnecting")
		_ = m.closeLocked()
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		l := m.newLauncher()
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		m.launcher = l
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if m.launcher != nil {
			m.launcher.Kill()
			m.launcher = nil
		}
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = b
	m.controlURL = controlURL
	m.log.Debug("browser connected", zap.Bool("headless", m.cfg.Headless), zap.Bool("attached", m.launcher == nil))
	return nil
}

func (m *Manager) newLauncher() *launcher.Launcher {
	l := launcher.New().Headless(m.cfg.Headless)
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}
	for _, rawFlag := range m.cfg.Launch {
		flagStr := strings.TrimLeft(rawFlag, "-")
		if flagStr == "" {
			continue
		}
		name, val, hasVal := strings.Cut(flagStr, "=")
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}

// ControlURL returns the WebSocket debugger URL.
func (m *Manager) ControlURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controlURL
}

// NewPage opens a page in a fresh incognito context with the configured viewport.
func (m *Manager) NewPage(ctx context.Context) (Page, error) {
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, errors.New("browser not connected")
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	var page *rod.Page
	if m.cfg.Stealth {
		page, err = stealth.Page(incognito)
	} else {
		page, err = incognito.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		m.log.Warn("failed to set viewport", zap.Error(err))
	}

	return &rodFrame{page: page, timeout: m.cfg.NavigationTimeout()}, nil
}

// Shutdown closes the browser. Safe to call more than once.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// closeLocked releases the browser and, when we launched it, the Chrome process. Caller holds mu.
func (m *Manager) closeLocked() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		if err != nil {
			m.launcher.Kill()
		}
		m.launcher.Cleanup()
		m.launcher = nil
	}
	m.controlURL = ""
	return err
}
