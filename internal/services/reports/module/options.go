package module

import (
	"time"

	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
)

// Options holds configuration settings for the reports module
type Options struct {
	Zone   *time.Location
	Author string
	OutDir string

	SummaryURL     string
	SummaryModel   string
	SummaryTimeout time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	name := cfg.Prefix("CORE_").MayString("TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Named("reports").Warn().
			Str("timezone", name).
			Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}

	rf := cfg.Prefix("CORE_REPORT_")
	sf := cfg.Prefix("CORE_SUMMARY_")
	return Options{
		Zone:   loc,
		Author: rf.MustString("AUTHOR"),
		OutDir: rf.MayString("OUT_DIR", "reports"),

		SummaryURL:     sf.MustString("URL"),
		SummaryModel:   sf.MayString("MODEL", "llama3.1:8b"),
		SummaryTimeout: sf.MayDuration("TIMEOUT", 120*time.Second),
	}
}
