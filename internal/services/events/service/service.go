// Package service implements the ingestion/dedup gateway
package service

import (
	"context"
	"time"

	"devecho/internal/core/cleantext"
	"devecho/internal/core/links"
	"devecho/internal/core/timeband"
	"devecho/internal/modkit/repokit"
	perr "devecho/internal/platform/errors"
	"devecho/internal/platform/logger"
	"devecho/internal/services/events/domain"
	"devecho/internal/services/events/repo"
)

// Config for the events gateway
type Config struct {
	// Zone is the configured reporting timezone; day keys are computed
	// here exactly once per event
	Zone *time.Location
}

// Service implements domain.WriterPort and domain.QueryPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config

	log logger.Logger
}

// New constructs the events gateway
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("events.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("events.Service requires a non nil Repo binder")
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	return &Service{
		DB:     db,
		Binder: binder,
		Cfg:    cfg,
		log:    *logger.Named("events"),
	}
}

// Ingest computes derived fields for one incoming event and hands it to
// storage. The uniqueness constraint on dedup_key is authoritative:
// re-delivery returns Inserted=false with no error
func (s *Service) Ingest(ctx context.Context, in domain.Incoming) (domain.IngestResult, error) {
	e := s.derive(in)
	inserted, err := s.Binder.Bind(s.DB).InsertIfAbsent(ctx, e)
	if err != nil {
		// a concurrent path may have won the insert between our statement
		// and its conflict target resolution; duplicate key is still a no-op
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			return domain.IngestResult{Inserted: false, DedupKey: e.DedupKey}, nil
		}
		return domain.IngestResult{DedupKey: e.DedupKey}, err
	}
	return domain.IngestResult{Inserted: inserted, DedupKey: e.DedupKey}, nil
}

// IngestBatch feeds each event through Ingest. A per-event persistence
// failure is logged and counted; sibling events continue
func (s *Service) IngestBatch(ctx context.Context, ins []domain.Incoming) domain.BatchResult {
	var res domain.BatchResult
	for _, in := range ins {
		res.Seen++
		out, err := s.Ingest(ctx, in)
		if err != nil {
			res.Failed++
			s.log.Error().Err(err).
				Str("repo", in.Repo).
				Str("kind", string(in.Kind)).
				Msg("event ingest failed")
			continue
		}
		if out.Inserted {
			res.Inserted++
		}
	}
	return res
}

// ListDay implements domain.QueryPort
func (s *Service) ListDay(ctx context.Context, actor, dayKey string) ([]domain.Event, error) {
	return s.Binder.Bind(s.DB).ListDay(ctx, actor, dayKey)
}

// ListDays implements domain.QueryPort
func (s *Service) ListDays(ctx context.Context, actor string, dayKeys []string) ([]domain.Event, error) {
	return s.Binder.Bind(s.DB).ListDays(ctx, actor, dayKeys)
}

// derive fills dayKey, links, dedupKey, and sentinel fields
func (s *Service) derive(in domain.Incoming) domain.Event {
	actor := in.Actor
	if actor == "" {
		actor = domain.UnknownField
	}
	repoName := in.Repo
	if repoName == "" {
		repoName = domain.UnknownField
	}
	title := cleantext.Title(in.Title)
	body := cleantext.Body(in.Body)

	return domain.Event{
		TS:       in.TS,
		DayKey:   timeband.DayKey(in.TS, s.Cfg.Zone),
		Actor:    actor,
		Repo:     repoName,
		Kind:     in.Kind,
		Title:    title,
		Body:     body,
		Links:    links.Extract(title + "\n" + body),
		Meta:     in.Meta,
		DedupKey: domain.DedupKey(repoName, in.Kind, in.ResolveNaturalKey()),
		Source:   in.Source,
		Channel:  in.Channel,
	}
}

var (
	_ domain.WriterPort = (*Service)(nil)
	_ domain.QueryPort  = (*Service)(nil)
)
