package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/melitton/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3001")
//	-d string   PostgreSQL DSN
//	-s string   bearer token secret; empty disables auth
//	-m int      max request body, MiB
//	-w int      shutdown grace period, seconds
//	-v string   log level
//
// args are filtered through flagx.FilterArgs first, so the -c/-config flag
// read by parseJson does not trip this flag set.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-m", "-w", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	maxBodyMiB := fs.Int64("m", config.MaxBodyBytes/mib, "max request body (in MiB)")
	flagx.DurationVar(fs, &config.ShutdownTimeout, "w", time.Second, "shutdown timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.MaxBodyBytes = *maxBodyMiB * mib
}
