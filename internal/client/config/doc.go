// Package config loads runtime configuration for the charkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. CHARKEEPER_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "data_dir": "/home/me/.charkeeper",
//	  "namespace_prefix": "charkeeper-",
//	  "locale": "ko",
//	  "log_level": "info",
//	  "log_format": "zap",
//	  "s3_bucket": "collections",
//	  "s3_endpoint": "http://127.0.0.1:9000/",
//	  "telemetry_endpoint": "http://127.0.0.1:4318",
//	  "shutdown_timeout": "5s"
//	}
//
// The namespace prefix is read once at startup and threaded through the
// store constructors; nothing changes it at runtime.
package config
