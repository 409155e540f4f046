package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 60, cfg.API.TimeoutSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Dashboard.TopN)
	assert.Equal(t, "Exclusive IT Solutions for Your Business", cfg.Campaign.Subject)
	assert.Equal(t, 5, cfg.Campaign.SentWindowSecs)
	assert.InDelta(t, 0.6, cfg.Campaign.MinSelectScore, 0.001)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.CRM.Enabled)
	assert.Equal(t, "https://login.salesforce.com", cfg.CRM.LoginURL)
	assert.InDelta(t, 5, cfg.CRM.RateLimitRPS, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
api:
  base_url: https://scoring.internal:9000
server:
  port: 9090
log:
  level: debug
  format: console
campaign:
  subject: Custom Outreach
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://scoring.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "Custom Outreach", cfg.Campaign.Subject)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Dashboard.TopN)
	assert.Equal(t, 5, cfg.Campaign.SentWindowSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SALESDASH_LOG_LEVEL", "warn")
	t.Setenv("SALESDASH_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.Server.Port = 8080
	cfg.Dashboard.TopN = 10
	cfg.Campaign.SentWindowSecs = 5
	cfg.Campaign.MinSelectScore = 0.6
	return cfg
}

func TestValidateServe_Valid(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_MissingBaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.API.BaseURL = ""

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url is required")
}

func TestValidateCampaign_Bounds(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("campaign"))

	cfg.Campaign.MinSelectScore = 1.5
	err := cfg.Validate("campaign")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_select_score")

	cfg.Campaign.MinSelectScore = 0.6
	cfg.Campaign.SentWindowSecs = 0
	err = cfg.Validate("campaign")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sent_window_secs")
}

func TestValidateCRM_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("crm")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "crm.client_id is required")
	assert.Contains(t, err.Error(), "crm.username is required")
	assert.Contains(t, err.Error(), "crm.key_path is required")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
