package config

import (
	"time"

	"timesheetbot/internal/notify"
)

// NotifyConfig configures the LINE push notification.
type NotifyConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Token     string `yaml:"token"`
	To        string `yaml:"to"`
	Timeout   string `yaml:"timeout"`
	OnFailure bool   `yaml:"on_failure"` // also push a message when a run fails
}

// DefaultNotifyConfig returns the LINE push endpoint with failure alerts off.
func DefaultNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Endpoint: notify.DefaultEndpoint,
		Timeout:  "20s",
	}
}

// GetTimeout returns the HTTP timeout for one push.
func (c NotifyConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 20*time.Second)
}

// ClientConfig converts to the notify package's configuration.
func (c NotifyConfig) ClientConfig() notify.ClientConfig {
	return notify.ClientConfig{
		Endpoint: c.Endpoint,
		Token:    c.Token,
		To:       c.To,
		Timeout:  c.GetTimeout(),
	}
}
