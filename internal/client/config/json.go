package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/melitton/internal/flagx"
	"github.com/dmitrijs2005/melitton/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	ReconcileInterval   timex.Duration `json:"reconcile_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LocalDBPath         string         `json:"local_db_path"`
	SecretKey           string         `json:"secret_key"`
	LogLevel            string         `json:"log_level"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Keys absent from the file keep their current values.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{
		ServerBaseURL:       config.ServerBaseURL,
		ReconcileInterval:   timex.Duration{Duration: config.ReconcileInterval},
		OnlineCheckInterval: timex.Duration{Duration: config.OnlineCheckInterval},
		RequestTimeout:      timex.Duration{Duration: config.RequestTimeout},
		LocalDBPath:         config.LocalDBPath,
		SecretKey:           config.SecretKey,
		LogLevel:            config.LogLevel,
		S3RootUser:          config.S3RootUser,
		S3RootPassword:      config.S3RootPassword,
		S3Bucket:            config.S3Bucket,
		S3Region:            config.S3Region,
		S3BaseEndpoint:      config.S3BaseEndpoint,
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerBaseURL = c.ServerBaseURL
	config.ReconcileInterval = c.ReconcileInterval.Duration
	config.OnlineCheckInterval = c.OnlineCheckInterval.Duration
	config.RequestTimeout = c.RequestTimeout.Duration
	config.LocalDBPath = c.LocalDBPath
	config.SecretKey = c.SecretKey
	config.LogLevel = c.LogLevel
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
