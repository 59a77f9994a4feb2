package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("CHARKEEPER_DATA_DIR", "/tmp/chars")
	t.Setenv("CHARKEEPER_LOG_FORMAT", "zap")
	t.Setenv("CHARKEEPER_SHUTDOWN_TIMEOUT", "2s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "/tmp/chars", cfg.DataDir)
	assert.Equal(t, "zap", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "charkeeper-", cfg.NamespacePrefix, "unset variables keep defaults")
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("CHARKEEPER_SHUTDOWN_TIMEOUT", "soon")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}
