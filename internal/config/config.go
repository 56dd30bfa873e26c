// Package config loads timesheetbot settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned by Validate when a required secret is unset.
var ErrMissingCredential = errors.New("missing credential")

// Environment variables read by applyEnvOverrides.
const (
	EnvPortalUser     = "MY_USER"
	EnvPortalPassword = "MY_PASSWORD"
	EnvLineToken      = "LINE_TOKEN"
	EnvLineUserID     = "LINE_USER_ID"
	EnvChromeBin      = "CHROME_BIN"
	EnvHeadless       = "TIMESHEETBOT_HEADLESS"
)

// Config holds all timesheetbot configuration.
type Config struct {
	Portal     PortalConfig     `yaml:"portal"`
	Browser    BrowserConfig    `yaml:"browser"`
	Notify     NotifyConfig     `yaml:"notify"`
	Report     ReportConfig     `yaml:"report"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Portal:     DefaultPortalConfig(),
		Browser:    DefaultBrowserConfig(),
		Notify:     DefaultNotifyConfig(),
		Report:     DefaultReportConfig(),
		Classifier: ClassifierConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
// Environment variables are applied on top in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvPortalUser); v != "" {
		c.Portal.Username = v
	}
	if v := os.Getenv(EnvPortalPassword); v != "" {
		c.Portal.Password = v
	}
	if v := os.Getenv(EnvLineToken); v != "" {
		c.Notify.Token = v
	}
	if v := os.Getenv(EnvLineUserID); v != "" {
		c.Notify.To = v
	}
	if v := os.Getenv(EnvChromeBin); v != "" {
		c.Browser.Bin = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
}

// Validate checks that a live run has everything it needs.
// Notification settings are only required when sending is enabled.
func (c *Config) Validate(requireNotify bool) error {
	if c.Portal.Username == "" {
		return fmt.Errorf("%w: portal username (set %s)", ErrMissingCredential, EnvPortalUser)
	}
	if c.Portal.Password == "" {
		return fmt.Errorf("%w: portal password (set %s)", ErrMissingCredential, EnvPortalPassword)
	}
	if requireNotify {
		if err := c.ValidateNotify(); err != nil {
			return err
		}
	}
	if c.Portal.TableClass == "" {
		return errors.New("portal.table_class must not be empty")
	}
	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("invalid report.timezone %q: %w", c.Report.Timezone, err)
	}
	return nil
}

// ValidateNotify checks the LINE settings alone.
func (c *Config) ValidateNotify() error {
	if c.Notify.Token == "" {
		return fmt.Errorf("%w: LINE channel token (set %s)", ErrMissingCredential, EnvLineToken)
	}
	if c.Notify.To == "" {
		return fmt.Errorf("%w: LINE recipient (set %s)", ErrMissingCredential, EnvLineUserID)
	}
	return nil
}

// parseDuration returns def when s is empty or malformed.
func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
