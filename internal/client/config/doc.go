// Package config loads runtime configuration for the citizen portal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed PORTAL_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   database DSN (SQLite file path)
//	-l string   log level: debug, info, warn, error
//	-delay int  simulated service delay (seconds)
//
// # JSON schema
//
// Durations may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "database_dsn": "citizenportal.db",
//	  "storage_secret": "change-me",
//	  "otp_ttl": "5m",
//	  "otp_delay": "1s",
//	  "feature_delay": "2s",
//	  "demo_otp": true,
//	  "download_dir": "downloads",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
