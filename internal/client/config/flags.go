package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/citizenportal/internal/flagx"
)

// parseFlags overlays cfg with -d, -l and -delay. Other arguments are
// filtered out first so unrelated flags do not fail the parse.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-l", "-delay"})

	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	delay := fs.Int("delay", int(cfg.FeatureDelay.Seconds()), "simulated service delay (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "delay" {
			cfg.FeatureDelay = time.Duration(*delay) * time.Second
		}
	})
	return nil
}
