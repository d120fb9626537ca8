package module

import (
	"time"

	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
)

// Options holds configuration settings for the events module
type Options struct {
	Zone *time.Location
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_")
	name := ef.MayString("TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Named("events").Warn().
			Str("timezone", name).
			Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}
	return Options{Zone: loc}
}
