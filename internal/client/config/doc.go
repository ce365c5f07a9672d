// Package config loads runtime configuration for the SECRIMPO client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the sync server
//	-i int      online status check interval (seconds)
//	-t int      sync request timeout (seconds)
//	-d string   path of the local SQLite database
//	-l string   path of the client log file
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds. Missing keys keep their default:
//
//	{
//	  "server_url": "http://127.0.0.1:8001",
//	  "online_check_interval": "30s",
//	  "probe_timeout": "5s",
//	  "sync_timeout": "60s",
//	  "database_path": "secrimpo.db",
//	  "log_file": "secrimpo-client.log",
//	  "history_limit": 10
//	}
package config
