// Package repo provides the Postgres reports repository
package repo

import (
	"context"

	"devecho/internal/modkit/repokit"
	perr "devecho/internal/platform/errors"
	"devecho/internal/services/reports/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the reports repository. The (author, scope, day_key)
// uniqueness constraint makes report runs idempotent
type Storage interface {
	InsertIfAbsent(ctx context.Context, r domain.Report) (inserted bool, err error)
	ListDailies(ctx context.Context, author string, dayKeys []string) ([]domain.Report, error)
	Get(ctx context.Context, author string, scope domain.Scope, dayKey string) (domain.Report, error)
}

// InsertIfAbsent implements Storage
func (s *pg) InsertIfAbsent(ctx context.Context, r domain.Report) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO reports (day_key, scope, author, markdown)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (author, scope, day_key) DO NOTHING`,
		r.DayKey, string(r.Scope), r.Author, r.Markdown,
	)
	if err != nil {
		return false, perr.FromPostgres(err, "insert report")
	}
	return tag.RowsAffected() == 1, nil
}

// ListDailies implements Storage; rows come back oldest first
func (s *pg) ListDailies(ctx context.Context, author string, dayKeys []string) ([]domain.Report, error) {
	if len(dayKeys) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT id, day_key, scope, author, markdown, created_at
		FROM reports
		WHERE author = $1 AND scope = 'daily' AND day_key = ANY($2)
		ORDER BY day_key ASC`,
		author, dayKeys,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "list daily reports")
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var (
			r     domain.Report
			scope string
		)
		if err := rows.Scan(&r.ID, &r.DayKey, &scope, &r.Author, &r.Markdown, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Scope = domain.Scope(scope)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, author string, scope domain.Scope, dayKey string) (domain.Report, error) {
	var (
		r  domain.Report
		sc string
	)
	err := s.q.QueryRow(ctx, `
		SELECT id, day_key, scope, author, markdown, created_at
		FROM reports
		WHERE author = $1 AND scope = $2 AND day_key = $3`,
		author, string(scope), dayKey,
	).Scan(&r.ID, &r.DayKey, &sc, &r.Author, &r.Markdown, &r.CreatedAt)
	if err != nil {
		return domain.Report{}, perr.FromPostgres(err, "get report")
	}
	r.Scope = domain.Scope(sc)
	return r, nil
}
