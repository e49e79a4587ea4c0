// Package config loads runtime configuration for the Threadly CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-t int      request timeout (seconds)
//	-r int      retry attempt budget
//	-s string   path to the session state file
//
// # JSON schema
//
// The JSON loader uses timex.Duration for durations, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:3000/api",
//	  "request_timeout": "10s",
//	  "retry_attempts": 3,
//	  "retry_base_delay": "1s",
//	  "state_db_path": "threadly.db"
//	}
//
// Primary API
//
//   - type Config                     — holds the transport, retry and state settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
