// Package flagx holds the small flag helpers shared by the server and CLI
// configuration loaders.
package flagx

import (
	"flag"
	"strconv"
	"strings"
	"time"
)

// FilterArgs returns the subset of args that belongs to allowedFlags,
// keeping each flag's value when it is passed separately.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      -config=conf.json
//
// A value is only consumed when the next token does not start with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFile extracts the JSON config path given via -c or -config.
// Other arguments are ignored, so this can run before the component parses
// its own flags. The last occurrence wins; empty means no file.
func ConfigFile(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}

// unitDuration is a flag.Value that reads a plain integer and scales it by unit,
// so "-i 5" can mean five minutes.
type unitDuration struct {
	p    *time.Duration
	unit time.Duration
}

func (d unitDuration) String() string {
	if d.p == nil {
		return "0"
	}
	return strconv.FormatInt(int64(*d.p/d.unit), 10)
}

func (d unitDuration) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*d.p = time.Duration(n) * d.unit
	return nil
}

// DurationVar defines an integer flag on fs whose value is multiplied by unit
// and stored in p. The current value of p is the default.
func DurationVar(fs *flag.FlagSet, p *time.Duration, name string, unit time.Duration, usage string) {
	fs.Var(unitDuration{p: p, unit: unit}, name, usage)
}
