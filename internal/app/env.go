// ABOUTME: Environment configuration for the command line tools
// ABOUTME: Loads an optional .env file and applies variables to unset flags
package app

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvFlags maps environment variables to the flags they default
var EnvFlags = map[string]string{
	"DAC_SOURCE":     "source",
	"DAC_LOOP":       "loop",
	"DAC_RATE":       "rate",
	"DAC_TABLE_RATE": "table-rate",
	"DAC_CPU_HZ":     "cpu-hz",
	"DAC_OUTPUT":     "output",
	"DAC_CAPACITY":   "capacity",
	"DAC_MAX_CHUNK":  "max-chunk",
	"DAC_EDGE_IRQ":   "edge-irq",
}

// ApplyEnv loads envFile if it exists, then sets every flag in fs that was
// not given on the command line from its environment variable. Command
// line flags win over the environment, which wins over the file.
func ApplyEnv(fs *flag.FlagSet, envFile string, mapping map[string]string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	for env, name := range mapping {
		if set[name] || fs.Lookup(name) == nil {
			continue
		}
		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", env, value, err)
		}
	}
	return nil
}
