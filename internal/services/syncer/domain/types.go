// Package domain holds syncer types and ports
package domain

import (
	"context"
	"time"
)

// SourceStats counts one source's sync outcome
type SourceStats struct {
	Skipped  bool `json:"skipped"`
	Repos    int  `json:"repos"`
	Seen     int  `json:"seen"`
	Inserted int  `json:"inserted"`
	Failed   int  `json:"failed"`
}

// Summary is the outcome of one sync run
type Summary struct {
	RunID  string      `json:"run_id"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	GitHub SourceStats `json:"github"`
	GitLab SourceStats `json:"gitlab"`
}

// SyncPort triggers a poll of all configured sources for today's
// activity. It never fails the run as a whole; per source and per
// repository failures are counted in the Summary
type SyncPort interface {
	SyncToday(ctx context.Context) Summary
}
