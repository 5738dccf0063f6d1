package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.PresetsFile)
	assert.True(t, cfg.LowLight)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 200*time.Millisecond, cfg.ScrollSpeed)
	assert.InDelta(t, 5, cfg.MutationRateLimit, 0)
	assert.Equal(t, 10, cfg.MutationRateBurst)
	assert.Equal(t, uint(5), cfg.DisplayBreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.DisplayBreakerDelay)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PRESETS_FILE", "/etc/xmas-hat/images.txt")
	t.Setenv("LOW_LIGHT", "false")
	t.Setenv("TICK_INTERVAL", "500ms")
	t.Setenv("SCROLL_SPEED", "100ms")
	t.Setenv("MUTATION_RATE_LIMIT", "0.5")
	t.Setenv("MUTATION_RATE_BURST", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://hat.local http://192.168.1.20:8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/etc/xmas-hat/images.txt", cfg.PresetsFile)
	assert.False(t, cfg.LowLight)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.ScrollSpeed)
	assert.InDelta(t, 0.5, cfg.MutationRateLimit, 0)
	assert.Equal(t, 2, cfg.MutationRateBurst)
	assert.Equal(t, []string{"https://hat.local", "http://192.168.1.20:8080"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad log format", "LOG_FORMAT", "xml", `LOG_FORMAT must be text or json, got "xml"`},
		{"zero tick interval", "TICK_INTERVAL", "0s", "TICK_INTERVAL must be positive, got 0s"},
		{"negative scroll speed", "SCROLL_SPEED", "-1s", "SCROLL_SPEED must be positive, got -1s"},
		{"zero breaker threshold", "DISPLAY_BREAKER_THRESHOLD", "0", "DISPLAY_BREAKER_THRESHOLD must be at least 1"},
		{"negative breaker delay", "DISPLAY_BREAKER_DELAY", "-5s", "DISPLAY_BREAKER_DELAY must be positive, got -5s"},
		{"zero rate", "MUTATION_RATE_LIMIT", "0", "MUTATION_RATE_LIMIT must be positive, got 0"},
		{"zero burst", "MUTATION_RATE_BURST", "0", "MUTATION_RATE_BURST must be at least 1, got 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_MalformedDuration(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load environment variables")
}
