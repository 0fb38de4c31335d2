package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
storage:
  type: minio
jwt:
  secret: short
`)
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 8, cfg.Readiness.TimezoneOffsetHours)
	assert.True(t, cfg.Readiness.CountWeekends)
	assert.True(t, cfg.Readiness.AllowResubmission)
	assert.Equal(t, 90, cfg.Readiness.StreakWindowDays)
	assert.Equal(t, "granular", cfg.Readiness.ConsecutiveFormula)
	assert.Equal(t, 10*time.Minute, cfg.Readiness.KPICacheTTL())
}

func TestLoadConfigReadinessOverrides(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
readiness:
  timezone_offset_hours: 10
  count_weekends: false
  allow_resubmission: false
  consecutive_formula: legacy
`)
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Readiness.TimezoneOffsetHours)
	assert.False(t, cfg.Readiness.CountWeekends)
	assert.False(t, cfg.Readiness.AllowResubmission)
	assert.Equal(t, "legacy", cfg.Readiness.ConsecutiveFormula)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"short secret in release", func(c *Config) { c.Server.Mode = "release"; c.JWT.Secret = "abc" }, true},
		{"timezone out of range", func(c *Config) { c.Readiness.TimezoneOffsetHours = 20 }, true},
		{"unknown formula", func(c *Config) { c.Readiness.ConsecutiveFormula = "v3" }, true},
		{"empty streak window", func(c *Config) { c.Readiness.StreakWindowDays = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Readiness: ReadinessConfig{
				TimezoneOffsetHours: 8,
				ConsecutiveFormula:  "granular",
				StreakWindowDays:    90,
			}}
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
