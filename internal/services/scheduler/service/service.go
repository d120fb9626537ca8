// Package service implements the wall clock report scheduler
package service

import (
	"context"
	"time"

	perr "devecho/internal/platform/errors"
	"devecho/internal/platform/logger"
	repdomain "devecho/internal/services/reports/domain"
	syncdomain "devecho/internal/services/syncer/domain"
)

// Clock is a wall clock time of day in the scheduler's zone
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM"
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "bad clock %q", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Config for the scheduler. Zero values fall back to the stock
// cadences: sync 17:50, daily report 18:00, weekly report Friday 17:00
type Config struct {
	Zone *time.Location

	SyncAt    Clock
	DailyAt   Clock
	WeeklyAt  Clock
	WeeklyDay time.Weekday
}

// Service drives the three cadences with plain timer arithmetic. One
// logical worker per cadence; overlap protection is the store's
// uniqueness constraints, not the scheduler
type Service struct {
	sync    syncdomain.SyncPort
	reports repdomain.RunnerPort

	cfg Config
	log logger.Logger
	now func() time.Time
}

// New constructs the scheduler
func New(sync syncdomain.SyncPort, reports repdomain.RunnerPort, cfg Config) *Service {
	if sync == nil || reports == nil {
		panic("scheduler.Service requires sync and reports ports")
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	if cfg.SyncAt == (Clock{}) {
		cfg.SyncAt = Clock{Hour: 17, Minute: 50}
	}
	if cfg.DailyAt == (Clock{}) {
		cfg.DailyAt = Clock{Hour: 18}
	}
	if cfg.WeeklyAt == (Clock{}) {
		cfg.WeeklyAt = Clock{Hour: 17}
		cfg.WeeklyDay = time.Friday
	}
	return &Service{
		sync:    sync,
		reports: reports,
		cfg:     cfg,
		log:     *logger.Named("scheduler"),
		now:     time.Now,
	}
}

// NextDaily returns the next instant a daily cadence fires at the given
// clock, strictly after now
func NextDaily(now time.Time, at Clock, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), at.Hour, at.Minute, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly returns the next instant a weekly cadence fires on the
// given weekday, strictly after now
func NextWeekly(now time.Time, at Clock, day time.Weekday, loc *time.Location) time.Time {
	next := NextDaily(now, at, loc)
	for next.Weekday() != day {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

type task struct {
	name string
	at   time.Time
	run  func(context.Context)
}

// Run blocks until ctx is done, firing each cadence at its wall clock
// time. Task failures are logged and the loop keeps going
func (s *Service) Run(ctx context.Context) error {
	s.log.Info().
		Str("zone", s.cfg.Zone.String()).
		Msg("scheduler starting")

	for {
		now := s.now()
		next := s.nextTask(now)

		timer := time.NewTimer(next.at.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.log.Info().Str("task", next.name).Msg("cadence firing")
		next.run(ctx)
	}
}

// nextTask picks whichever cadence fires soonest after now
func (s *Service) nextTask(now time.Time) task {
	tasks := []task{
		{
			name: "sync",
			at:   NextDaily(now, s.cfg.SyncAt, s.cfg.Zone),
			run: func(ctx context.Context) {
				sum := s.sync.SyncToday(ctx)
				s.log.Info().
					Str("run_id", sum.RunID).
					Int("inserted", sum.GitHub.Inserted+sum.GitLab.Inserted).
					Int("failed", sum.GitHub.Failed+sum.GitLab.Failed).
					Msg("scheduled sync finished")
			},
		},
		{
			name: "daily_report",
			at:   NextDaily(now, s.cfg.DailyAt, s.cfg.Zone),
			run: func(ctx context.Context) {
				out, err := s.reports.RunDaily(ctx)
				s.logOutcome(out, err)
			},
		},
		{
			name: "weekly_report",
			at:   NextWeekly(now, s.cfg.WeeklyAt, s.cfg.WeeklyDay, s.cfg.Zone),
			run: func(ctx context.Context) {
				out, err := s.reports.RunWeekly(ctx)
				s.logOutcome(out, err)
			},
		},
	}

	best := tasks[0]
	for _, t := range tasks[1:] {
		if t.at.Before(best.at) {
			best = t
		}
	}
	return best
}

func (s *Service) logOutcome(out repdomain.Outcome, err error) {
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Str("scope", string(out.Scope)).
		Str("status", string(out.Status)).
		Str("day_key", out.DayKey).
		Str("file", out.File).
		Msg("scheduled report finished")
}
