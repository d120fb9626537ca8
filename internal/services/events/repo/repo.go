// Package repo provides the Postgres events repository
package repo

import (
	"context"

	"devecho/internal/modkit/repokit"
	perr "devecho/internal/platform/errors"
	"devecho/internal/services/events/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the events repository. InsertIfAbsent relies on the
// dedup_key uniqueness constraint, never a separate existence check, so
// concurrent ingestion paths cannot race into two rows
type Storage interface {
	InsertIfAbsent(ctx context.Context, e domain.Event) (inserted bool, err error)
	ListDay(ctx context.Context, actor, dayKey string) ([]domain.Event, error)
	ListDays(ctx context.Context, actor string, dayKeys []string) ([]domain.Event, error)
}

// InsertIfAbsent implements Storage
func (s *pg) InsertIfAbsent(ctx context.Context, e domain.Event) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO events
			(ts, day_key, actor, repo, kind, title, body, links, source_meta, dedup_key, source, channel)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (dedup_key) DO NOTHING`,
		e.TS, e.DayKey, e.Actor, e.Repo, string(e.Kind), e.Title, e.Body,
		e.Links, e.Meta, e.DedupKey, string(e.Source), string(e.Channel),
	)
	if err != nil {
		return false, perr.FromPostgres(err, "insert event")
	}
	return tag.RowsAffected() == 1, nil
}

const selectCols = `
	id, ts, day_key, actor, repo, kind, title, body, links, source_meta, dedup_key, source, channel`

// ListDay implements Storage
func (s *pg) ListDay(ctx context.Context, actor, dayKey string) ([]domain.Event, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+selectCols+`
		FROM events
		WHERE actor = $1 AND day_key = $2
		ORDER BY ts ASC, id ASC`,
		actor, dayKey,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "list events by day")
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListDays implements Storage
func (s *pg) ListDays(ctx context.Context, actor string, dayKeys []string) ([]domain.Event, error) {
	if len(dayKeys) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+selectCols+`
		FROM events
		WHERE actor = $1 AND day_key = ANY($2)
		ORDER BY ts ASC, id ASC`,
		actor, dayKeys,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "list events by days")
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows repokit.Rows) ([]domain.Event, error) {
	var out []domain.Event
	for rows.Next() {
		var (
			e    domain.Event
			kind string
			src  string
			ch   string
		)
		if err := rows.Scan(
			&e.ID, &e.TS, &e.DayKey, &e.Actor, &e.Repo, &kind,
			&e.Title, &e.Body, &e.Links, &e.Meta, &e.DedupKey, &src, &ch,
		); err != nil {
			return nil, err
		}
		e.Kind = domain.Kind(kind)
		e.Source = domain.Source(src)
		e.Channel = domain.Channel(ch)
		out = append(out, e)
	}
	return out, rows.Err()
}
