// Package config loads runtime configuration for the Melitton CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the persistence service API
//	-i int      reconciliation interval (minutes)
//	-o int      online status check interval (seconds)
//	-t int      per-request timeout (seconds)
//	-l string   path of the local SQLite store
//	-s string   bearer token secret shared with the server
//	-v string   log level (debug, info, warn, error)
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket for backups
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:3001/api",
//	  "reconcile_interval": "5m",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "local_db_path": "melitton.db",
//	  "s3_bucket": "melitton-backups"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
