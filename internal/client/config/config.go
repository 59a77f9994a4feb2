package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/common"
)

// Config holds runtime settings for the charkeeper CLI.
//
// Fields:
//   - DataDir: directory holding one SQLite file per collection namespace.
//   - NamespacePrefix: prefix that marks charkeeper namespaces in DataDir.
//   - Locale: BCP 47 tag used for locale-aware sorting ("und" for root order).
//   - LogLevel / LogFormat: see logging.New.
//   - S3*: optional S3-compatible bucket used for archive backups.
//   - TelemetryEndpoint: optional OTLP/HTTP endpoint for error telemetry.
//   - ShutdownTimeout: how long to wait for telemetry to flush on exit.
type Config struct {
	DataDir           string        `env:"DATA_DIR"`
	NamespacePrefix   string        `env:"NAMESPACE_PREFIX"`
	Locale            string        `env:"LOCALE"`
	LogLevel          string        `env:"LOG_LEVEL"`
	LogFormat         string        `env:"LOG_FORMAT"`
	S3Bucket          string        `env:"S3_BUCKET"`
	S3Region          string        `env:"S3_REGION"`
	S3BaseEndpoint    string        `env:"S3_ENDPOINT"`
	S3AccessKey       string        `env:"S3_ACCESS_KEY"`
	S3SecretKey       string        `env:"S3_SECRET_KEY"`
	TelemetryEndpoint string        `env:"TELEMETRY_ENDPOINT"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "collections"
	c.NamespacePrefix = common.DefaultNamespacePrefix
	c.Locale = "und"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.ShutdownTimeout = 5 * time.Second
}

// BackupEnabled reports whether an S3 bucket has been configured.
func (c *Config) BackupEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg)
	parseFlags(cfg, os.Args[1:])
	return cfg
}
