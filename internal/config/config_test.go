package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvPortalUser, EnvPortalPassword, EnvLineToken, EnvLineUserID, EnvChromeBin, EnvHeadless} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 800, cfg.Browser.ViewportHeight)
	assert.Equal(t, "tbActualSummary", cfg.Portal.TableClass)
	assert.Equal(t, "siph.myhumatrix.com", cfg.Portal.RelyingPartyHost)
	assert.Equal(t, "not_found.png", cfg.Report.ScreenshotPath)
	assert.False(t, cfg.Notify.OnFailure)
	assert.Equal(t, "https://api.line.me/v2/bot/message/push", cfg.Notify.Endpoint)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "timesheetbot.yaml")
	body := "portal:\n  report_timeout: 45s\nnotify:\n  on_failure: true\nclassifier:\n  labels:\n    late: arrived late\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, loaded.Portal.GetReportTimeout())
	assert.True(t, loaded.Notify.OnFailure)
	assert.Equal(t, "arrived late", loaded.Classifier.Labels.Late)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser:\n  headless: false\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, DefaultPortalConfig(), cfg.Portal)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portal: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("credentials come from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvPortalUser, "alice")
		t.Setenv(EnvPortalPassword, "s3cret")
		t.Setenv(EnvLineToken, "line-token")
		t.Setenv(EnvLineUserID, "U0001")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "alice", cfg.Portal.Username)
		assert.Equal(t, "s3cret", cfg.Portal.Password)
		assert.Equal(t, "line-token", cfg.Notify.Token)
		assert.Equal(t, "U0001", cfg.Notify.To)
	})

	t.Run("empty variables do not clobber file values", func(t *testing.T) {
		clearEnv(t)
		cfg := DefaultConfig()
		cfg.Portal.Username = "from-file"
		cfg.applyEnvOverrides()
		assert.Equal(t, "from-file", cfg.Portal.Username)
	})

	t.Run("headless toggle", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvHeadless, "false")
		t.Setenv(EnvChromeBin, "/usr/bin/chromium")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.False(t, cfg.Browser.Headless)
		assert.Equal(t, "/usr/bin/chromium", cfg.Browser.Bin)
	})

	t.Run("unparseable headless value is ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvHeadless, "sometimes")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Browser.Headless)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Portal.Username = "alice"
		cfg.Portal.Password = "pw"
		cfg.Notify.Token = "tok"
		cfg.Notify.To = "U1"
		return cfg
	}

	require.NoError(t, valid().Validate(true))

	cfg := valid()
	cfg.Portal.Password = ""
	assert.ErrorIs(t, cfg.Validate(false), ErrMissingCredential)

	cfg = valid()
	cfg.Notify.Token = ""
	assert.ErrorIs(t, cfg.Validate(true), ErrMissingCredential)
	assert.NoError(t, cfg.Validate(false), "dry runs do not need LINE settings")

	cfg = valid()
	cfg.Report.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, cfg.Validate(true))

	cfg = valid()
	cfg.Portal.TableClass = ""
	assert.Error(t, cfg.Validate(true))
}

func TestDurationFallbacks(t *testing.T) {
	p := PortalConfig{AuthTimeout: "soon", ReportTimeout: "-5s"}
	assert.Equal(t, 30*time.Second, p.GetAuthTimeout())
	assert.Equal(t, 30*time.Second, p.GetReportTimeout())
	assert.Equal(t, 500*time.Millisecond, p.GetPollInterval())

	b := BrowserConfig{NavigationTimeout: "1m"}
	assert.Equal(t, 60000, b.ManagerConfig().NavigationTimeoutMs)
}

func TestSessionConfigConversion(t *testing.T) {
	sc := DefaultPortalConfig().SessionConfig()
	assert.Equal(t, "table.tbActualSummary", sc.TableSelector())
	assert.Equal(t, 30*time.Second, sc.AuthTimeout)
	assert.Equal(t, 500*time.Millisecond, sc.PollInterval)
}

func TestConfig_ValidateNotify(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.ValidateNotify(), ErrMissingCredential)
	cfg.Notify.Token = "tok"
	assert.ErrorIs(t, cfg.ValidateNotify(), ErrMissingCredential)
	cfg.Notify.To = "U1"
	assert.NoError(t, cfg.ValidateNotify())
}
