package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/melitton/internal/flagx"
	"github.com/dmitrijs2005/melitton/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Intervals use
// timex.Duration, so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	MaxBodyBytes     int64          `json:"max_body_bytes"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Keys absent from the file keep their current values. Without a file
// nothing changes. Unreadable or invalid files panic: the server must not
// start on a half-read configuration.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		DatabaseDSN:      config.DatabaseDSN,
		SecretKey:        config.SecretKey,
		MaxBodyBytes:     config.MaxBodyBytes,
		ShutdownTimeout:  timex.Duration{Duration: config.ShutdownTimeout},
		LogLevel:         config.LogLevel,
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.MaxBodyBytes = c.MaxBodyBytes
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
	config.LogLevel = c.LogLevel
}
