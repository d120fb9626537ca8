// Package service implements the report pipeline orchestrator
package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"devecho/internal/core/condense"
	"devecho/internal/core/prompt"
	"devecho/internal/core/timeband"
	"devecho/internal/modkit/repokit"
	"devecho/internal/platform/logger"
	evdomain "devecho/internal/services/events/domain"
	"devecho/internal/services/reports/domain"
	"devecho/internal/services/reports/repo"
	syncdomain "devecho/internal/services/syncer/domain"
)

// Summarizer turns a prompt into report markdown
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Config for the report pipeline
type Config struct {
	Zone   *time.Location
	Author string

	// OutDir receives markdown artifacts next to the DB rows; a file
	// write failure is logged but never rolls the report back
	OutDir string
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]

	events evdomain.QueryPort
	sync   syncdomain.SyncPort
	sum    Summarizer

	cfg Config
	log logger.Logger
	now func() time.Time
}

// New constructs the report pipeline
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Storage],
	events evdomain.QueryPort,
	sync syncdomain.SyncPort,
	sum Summarizer,
	cfg Config,
) *Service {
	if db == nil {
		panic("reports.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("reports.Service requires a non nil Repo binder")
	}
	if events == nil || sync == nil || sum == nil {
		panic("reports.Service requires events, sync, and summarizer ports")
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	if cfg.Author == "" {
		panic("reports.Service requires a configured author")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "reports"
	}
	return &Service{
		DB:     db,
		Binder: binder,
		events: events,
		sync:   sync,
		sum:    sum,
		cfg:    cfg,
		log:    *logger.Named("reports"),
		now:    time.Now,
	}
}

// RunDaily syncs today's activity, condenses it, and writes one daily
// report. An empty day short-circuits before the summarizer is called
func (s *Service) RunDaily(ctx context.Context) (domain.Outcome, error) {
	dayKey := timeband.DayKey(s.now(), s.cfg.Zone)
	out := domain.Outcome{Scope: domain.ScopeDaily, DayKey: dayKey, Author: s.cfg.Author}

	sum := s.sync.SyncToday(ctx)
	s.log.Info().
		Str("run_id", sum.RunID).
		Int("inserted", sum.GitHub.Inserted+sum.GitLab.Inserted).
		Msg("pre-report sync finished")

	events, err := s.events.ListDay(ctx, s.cfg.Author, dayKey)
	if err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}
	out.Events = len(events)
	if len(events) == 0 {
		s.log.Info().Str("day_key", dayKey).Msg("no activity, skipping daily report")
		out.Status = domain.StatusEmpty
		return out, nil
	}

	groups := condense.ByTitle(events)
	p, err := prompt.RenderDaily(prompt.Daily{
		Actor:     s.cfg.Author,
		DayKey:    dayKey,
		Important: s.promptLines(groups.Important),
		Minor:     s.promptLines(groups.Minor),
	})
	if err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}

	md, err := s.sum.Summarize(ctx, p)
	if err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}

	if err := s.persist(ctx, domain.Report{
		DayKey:   dayKey,
		Scope:    domain.ScopeDaily,
		Author:   s.cfg.Author,
		Markdown: md,
	}); err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}

	out.File = s.writeArtifact(dayKey, domain.ScopeDaily, md)
	out.Status = domain.StatusWritten
	return out, nil
}

// RunWeekly stitches the last five business days' daily reports into
// one weekly rollup keyed by the window's last day
func (s *Service) RunWeekly(ctx context.Context) (domain.Outcome, error) {
	days := timeband.LastBusinessDays(5, s.now(), s.cfg.Zone)
	lastDay := days[len(days)-1]
	out := domain.Outcome{Scope: domain.ScopeWeekly, DayKey: lastDay, Author: s.cfg.Author}

	dailies, err := s.Binder.Bind(s.DB).ListDailies(ctx, s.cfg.Author, days)
	if err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}
	if len(dailies) == 0 {
		s.log.Info().Strs("days", days).Msg("no daily reports in window, skipping weekly report")
		out.Status = domain.StatusEmpty
		return out, nil
	}

	sections := make([]string, 0, len(dailies))
	for _, d := range dailies {
		sections = append(sections, d.Markdown)
	}
	md, err := prompt.RenderWeekly(prompt.Weekly{
		Actor:    s.cfg.Author,
		StartDay: days[0],
		EndDay:   lastDay,
		Sections: sections,
	})
	if err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}

	if err := s.persist(ctx, domain.Report{
		DayKey:   lastDay,
		Scope:    domain.ScopeWeekly,
		Author:   s.cfg.Author,
		Markdown: md,
	}); err != nil {
		out.Status = domain.StatusFailed
		return out, err
	}

	out.Events = len(dailies)
	out.File = s.writeArtifact(lastDay, domain.ScopeWeekly, md)
	out.Status = domain.StatusWritten
	return out, nil
}

func (s *Service) persist(ctx context.Context, r domain.Report) error {
	inserted, err := s.Binder.Bind(s.DB).InsertIfAbsent(ctx, r)
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Warn().
			Str("day_key", r.DayKey).
			Str("scope", string(r.Scope)).
			Msg("report already exists, keeping the earlier run")
	}
	return nil
}

// writeArtifact writes <outdir>/<dayKey>-<author>-<scope>.md and returns
// the path, or "" when the write failed. File failures never fail the run
func (s *Service) writeArtifact(dayKey string, scope domain.Scope, md string) string {
	if err := os.MkdirAll(s.cfg.OutDir, 0o755); err != nil {
		s.log.Error().Err(err).Str("dir", s.cfg.OutDir).Msg("report dir create failed")
		return ""
	}
	path := filepath.Join(s.cfg.OutDir, dayKey+"-"+s.cfg.Author+"-"+string(scope)+".md")
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("report file write failed")
		return ""
	}
	return path
}

func (s *Service) promptLines(events []evdomain.Event) []prompt.Line {
	out := make([]prompt.Line, 0, len(events))
	for _, e := range events {
		out = append(out, prompt.Line{
			TS:    e.TS.In(s.cfg.Zone),
			Kind:  string(e.Kind),
			Repo:  e.Repo,
			Title: e.Title,
			Links: e.Links,
		})
	}
	return out
}

var _ domain.RunnerPort = (*Service)(nil)
