package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

var globalCfg *Cfg

// Load parses flags and environment into the global configuration. It
// returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	var cfg Cfg

	if _, err := flags.NewParser(&cfg, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.Version = GetVersion()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
		} else {
			time.Local = loc
		}
	}

	globalCfg = &cfg

	return globalCfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func (c *Cfg) validate() error {
	switch {
	case c.WorkerCount < 1:
		return fmt.Errorf("worker count must be at least 1, got %d", c.WorkerCount)
	case c.SchedulerInterval < 1:
		return fmt.Errorf("scheduler interval must be at least 1 second, got %d", c.SchedulerInterval)
	case strings.TrimSpace(c.Keyword) == "":
		return fmt.Errorf("keyword must not be empty")
	}
	return nil
}
