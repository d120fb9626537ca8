package module

import (
	"time"

	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
	"devecho/internal/services/scheduler/service"
)

// Options holds configuration settings for the scheduler module
type Options struct {
	Zone      *time.Location
	SyncAt    service.Clock
	DailyAt   service.Clock
	WeeklyAt  service.Clock
	WeeklyDay time.Weekday
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	log := logger.Named("scheduler")

	name := cfg.Prefix("CORE_").MayString("TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Str("timezone", name).Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}

	sf := cfg.Prefix("CORE_SCHEDULE_")
	clock := func(key, def string) service.Clock {
		raw := sf.MayString(key, def)
		c, err := service.ParseClock(raw)
		if err != nil {
			log.Warn().Str("key", key).Str("value", raw).Msg("bad clock, using default")
			c, _ = service.ParseClock(def)
		}
		return c
	}

	return Options{
		Zone:      loc,
		SyncAt:    clock("SYNC_AT", "17:50"),
		DailyAt:   clock("DAILY_AT", "18:00"),
		WeeklyAt:  clock("WEEKLY_AT", "17:00"),
		WeeklyDay: time.Weekday(sf.MayInt("WEEKLY_DAY", int(time.Friday))),
	}
}
