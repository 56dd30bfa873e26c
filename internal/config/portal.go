package config

import (
	"time"

	"timesheetbot/internal/portal"
)

// PortalConfig configures the HR portal session.
type PortalConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	SignOnURL        string `yaml:"sign_on_url"`
	ReportURL        string `yaml:"report_url"`
	RelyingPartyHost string `yaml:"relying_party_host"`
	UsernameSelector string `yaml:"username_selector"`
	PasswordSelector string `yaml:"password_selector"`
	SubmitSelector   string `yaml:"submit_selector"`
	TableClass       string `yaml:"table_class"`

	AuthTimeout   string `yaml:"auth_timeout"`   // wait for the IdP redirect
	ReportTimeout string `yaml:"report_timeout"` // wait for the summary table
	PollInterval  string `yaml:"poll_interval"`
}

// DefaultPortalConfig mirrors portal.DefaultConfig.
func DefaultPortalConfig() PortalConfig {
	d := portal.DefaultConfig()
	return PortalConfig{
		SignOnURL:        d.SignOnURL,
		ReportURL:        d.ReportURL,
		RelyingPartyHost: d.RelyingPartyHost,
		UsernameSelector: d.UsernameSelector,
		PasswordSelector: d.PasswordSelector,
		SubmitSelector:   d.SubmitSelector,
		TableClass:       d.TableClass,
		AuthTimeout:      d.AuthTimeout.String(),
		ReportTimeout:    d.ReportTimeout.String(),
		PollInterval:     d.PollInterval.String(),
	}
}

// GetAuthTimeout returns the sign-on redirect timeout.
func (c PortalConfig) GetAuthTimeout() time.Duration {
	return parseDuration(c.AuthTimeout, 30*time.Second)
}

// GetReportTimeout returns the summary table timeout.
func (c PortalConfig) GetReportTimeout() time.Duration {
	return parseDuration(c.ReportTimeout, 30*time.Second)
}

// GetPollInterval returns the interval between readiness checks.
func (c PortalConfig) GetPollInterval() time.Duration {
	return parseDuration(c.PollInterval, 500*time.Millisecond)
}

// Credentials returns the sign-on credentials.
func (c PortalConfig) Credentials() portal.Credentials {
	return portal.Credentials{Username: c.Username, Password: c.Password}
}

// SessionConfig converts to the portal package's configuration.
func (c PortalConfig) SessionConfig() portal.Config {
	return portal.Config{
		SignOnURL:        c.SignOnURL,
		ReportURL:        c.ReportURL,
		RelyingPartyHost: c.RelyingPartyHost,
		UsernameSelector: c.UsernameSelector,
		PasswordSelector: c.PasswordSelector,
		SubmitSelector:   c.SubmitSelector,
		TableClass:       c.TableClass,
		AuthTimeout:      c.GetAuthTimeout(),
		ReportTimeout:    c.GetReportTimeout(),
		PollInterval:     c.GetPollInterval(),
	}
}
