package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/flagx"
)

// configFlags lists the flags owned by the config loader. Anything else on
// the command line belongs to the cobra command tree.
var configFlags = []string{"-d", "-p", "-l", "-v", "-f", "-b", "-g", "-e", "-u", "-s", "-t", "-w"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory
//	-p string   namespace prefix
//	-l string   locale for sorting (BCP 47)
//	-v string   log level
//	-f string   log format (text, json, zap)
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string   S3 access key
//	-s string   S3 secret key
//	-t string   OTLP/HTTP telemetry endpoint
//	-w int      shutdown timeout (in seconds)
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, configFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.NamespacePrefix, "p", cfg.NamespacePrefix, "namespace prefix")
	fs.StringVar(&cfg.Locale, "l", cfg.Locale, "locale used for sorting")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for backups")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "s", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.TelemetryEndpoint, "t", cfg.TelemetryEndpoint, "telemetry endpoint")
	shutdownTimeout := fs.Int("w", int(cfg.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
