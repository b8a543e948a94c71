package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/melitton/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. See the
// package doc for the flag list. Parse errors panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-o", "-t", "-l", "-s", "-v", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerBaseURL, "a", config.ServerBaseURL, "persistence service base URL")
	flagx.DurationVar(fs, &config.ReconcileInterval, "i", time.Minute, "reconcile interval (in minutes)")
	flagx.DurationVar(fs, &config.OnlineCheckInterval, "o", time.Second, "online check interval (in seconds)")
	flagx.DurationVar(fs, &config.RequestTimeout, "t", time.Second, "request timeout (in seconds)")
	fs.StringVar(&config.LocalDBPath, "l", config.LocalDBPath, "local database path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
