package config

import (
	"time"

	"timesheetbot/internal/attendance"
)

// ReportConfig configures report rendering and diagnostics.
type ReportConfig struct {
	Timezone       string `yaml:"timezone"` // IANA name used for the date stamp
	ScreenshotPath string `yaml:"screenshot_path"`
}

// DefaultReportConfig stamps reports in Bangkok time and writes diagnostics to not_found.png.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Timezone:       "Asia/Bangkok",
		ScreenshotPath: "not_found.png",
	}
}

// Location resolves Timezone. An empty value means the host's local zone.
func (c ReportConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ClassifierConfig overrides the row labels the classifier recognises.
type ClassifierConfig struct {
	Labels attendance.Labels `yaml:"labels"`
}
