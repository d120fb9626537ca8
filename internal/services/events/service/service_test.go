package service

import (
	"context"
	"testing"
	"time"

	"devecho/internal/modkit/repokit"
	perr "devecho/internal/platform/errors"
	"devecho/internal/services/events/domain"
	"devecho/internal/services/events/repo"
)

// nopTx satisfies repokit.TxRunner; the fake storage ignores it
type nopTx struct{}

func (nopTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (nopTx) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (nopTx) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (nopTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error   { return fn(nopTx{}) }

// memStore is a dedup-key-unique in-memory Storage
type memStore struct {
	rows    map[string]domain.Event
	failKey string // InsertIfAbsent fails when this dedup key arrives
}

func newMemStore() *memStore { return &memStore{rows: map[string]domain.Event{}} }

func (m *memStore) InsertIfAbsent(_ context.Context, e domain.Event) (bool, error) {
	if m.failKey != "" && e.DedupKey == m.failKey {
		return false, perr.DBf("boom")
	}
	if _, ok := m.rows[e.DedupKey]; ok {
		return false, nil
	}
	m.rows[e.DedupKey] = e
	return true, nil
}

func (m *memStore) ListDay(_ context.Context, actor, dayKey string) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range m.rows {
		if e.Actor == actor && e.DayKey == dayKey {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) ListDays(_ context.Context, actor string, dayKeys []string) ([]domain.Event, error) {
	var out []domain.Event
	for _, key := range dayKeys {
		part, _ := m.ListDay(context.Background(), actor, key)
		out = append(out, part...)
	}
	return out, nil
}

func newService(t *testing.T, store repo.Storage) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	binder := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return store })
	return New(nopTx{}, binder, Config{Zone: loc})
}

func commitIncoming(sha string) domain.Incoming {
	return domain.Incoming{
		TS:         time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC),
		Actor:      "jihyun",
		Repo:       "team/svc",
		Kind:       domain.KindCommit,
		Title:      "feat: wire sync",
		Body:       "feat: wire sync\n\nsee https://x.test/doc",
		NaturalKey: sha,
		Source:     domain.SourceGitHub,
		Channel:    domain.ChannelWebhook,
	}
}

func TestIngest_IdempotentOnRedelivery(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)

	first, err := svc.Ingest(context.Background(), commitIncoming("abc123"))
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if !first.Inserted {
		t.Fatalf("first ingest should insert")
	}

	second, err := svc.Ingest(context.Background(), commitIncoming("abc123"))
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if second.Inserted {
		t.Fatalf("re-delivery must be a no-op, not a second row")
	}
	if len(store.rows) != 1 {
		t.Fatalf("stored %d rows, want 1", len(store.rows))
	}
	if first.DedupKey != second.DedupKey {
		t.Fatalf("dedup keys diverge")
	}
}

func TestIngest_DuplicateKeyErrorIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)

	in := commitIncoming("abc123")
	key := domain.DedupKey(in.Repo, in.Kind, in.NaturalKey)
	store.failKey = key
	// simulate a constraint violation surfacing instead of rows-affected 0
	store.rows[key] = domain.Event{DedupKey: key}
	store.failKey = ""
	res, err := svc.Ingest(context.Background(), in)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Inserted {
		t.Fatalf("expected no-op on existing key")
	}
}

func TestIngest_DerivedFields(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)

	in := commitIncoming("abc123")
	res, err := svc.Ingest(context.Background(), in)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	e := store.rows[res.DedupKey]

	// 10:00 UTC on 03-11 is 19:00 in Seoul, same calendar day
	if e.DayKey != "2025-03-11" {
		t.Fatalf("day key = %q", e.DayKey)
	}
	if len(e.Links) != 1 || e.Links[0] != "https://x.test/doc" {
		t.Fatalf("links = %v", e.Links)
	}
}

func TestIngest_UnknownSentinels(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)

	in := commitIncoming("abc123")
	in.Actor = ""
	in.Repo = ""
	res, err := svc.Ingest(context.Background(), in)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	e := store.rows[res.DedupKey]
	if e.Actor != domain.UnknownField || e.Repo != domain.UnknownField {
		t.Fatalf("sentinels not applied: %+v", e)
	}
}

func TestIngestBatch_ContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)

	bad := commitIncoming("bad")
	store.failKey = domain.DedupKey(bad.Repo, bad.Kind, "bad")

	res := svc.IngestBatch(context.Background(), []domain.Incoming{
		commitIncoming("one"),
		bad,
		commitIncoming("two"),
	})
	if res.Seen != 3 || res.Inserted != 2 || res.Failed != 1 {
		t.Fatalf("batch result = %+v", res)
	}
	if len(store.rows) != 2 {
		t.Fatalf("stored %d rows, want 2", len(store.rows))
	}
}
