package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the Melitton CLI.
type Config struct {
	ServerBaseURL       string
	ReconcileInterval   time.Duration
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LocalDBPath         string
	SecretKey           string
	LogLevel            string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:3001/api"
	c.ReconcileInterval = 5 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LocalDBPath = "melitton.db"
	c.SecretKey = ""
	c.LogLevel = "warn"

	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = "melitton-backups"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// S3Enabled reports whether backups can go to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3RootUser != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
