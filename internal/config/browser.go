package config

import (
	"time"

	"timesheetbot/internal/browser"
)

// BrowserConfig configures the Chrome instance.
type BrowserConfig struct {
	DebuggerURL       string   `yaml:"debugger_url"` // attach instead of launching
	Bin               string   `yaml:"bin"`
	Flags             []string `yaml:"flags"`
	Headless          bool     `yaml:"headless"`
	Stealth           bool     `yaml:"stealth"`
	ViewportWidth     int      `yaml:"viewport_width"`
	ViewportHeight    int      `yaml:"viewport_height"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
}

// DefaultBrowserConfig returns a headless 1280x800 setup.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          true,
		Stealth:           true,
		ViewportWidth:     1280,
		ViewportHeight:    800,
		NavigationTimeout: "30s",
	}
}

// GetNavigationTimeout returns the per-navigation timeout.
func (c BrowserConfig) GetNavigationTimeout() time.Duration {
	return parseDuration(c.NavigationTimeout, 30*time.Second)
}

// ManagerConfig converts to the browser package's configuration.
func (c BrowserConfig) ManagerConfig() browser.Config {
	return browser.Config{
		DebuggerURL:         c.DebuggerURL,
		Bin:                 c.Bin,
		Launch:              c.Flags,
		Headless:            c.Headless,
		Stealth:             c.Stealth,
		ViewportWidth:       c.ViewportWidth,
		ViewportHeight:      c.ViewportHeight,
		NavigationTimeoutMs: int(c.GetNavigationTimeout() / time.Millisecond),
	}
}
