package domain

import "context"

// IngestResult reports what the gateway did with one incoming event
type IngestResult struct {
	Inserted bool
	DedupKey string
}

// BatchResult aggregates per-event outcomes of an ingest batch
type BatchResult struct {
	Seen     int
	Inserted int
	Failed   int
}

// WriterPort is the ingestion/dedup gateway. Re-delivery of an already
// stored event returns Inserted=false and no error
type WriterPort interface {
	Ingest(ctx context.Context, in Incoming) (IngestResult, error)

	// IngestBatch feeds each event through Ingest; a per-event failure is
	// counted and logged, never aborts the remainder
	IngestBatch(ctx context.Context, ins []Incoming) BatchResult
}

// QueryPort reads persisted events for report windows
type QueryPort interface {
	// ListDay returns an actor's events for one day key, ascending by ts
	ListDay(ctx context.Context, actor, dayKey string) ([]Event, error)

	// ListDays returns an actor's events across the given day keys,
	// ascending by ts
	ListDays(ctx context.Context, actor string, dayKeys []string) ([]Event, error)
}
