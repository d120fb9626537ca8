// Package domain holds report types and ports
package domain

import (
	"context"
	"time"
)

// Scope distinguishes daily summaries from weekly rollups
type Scope string

// Report scopes
const (
	ScopeDaily  Scope = "daily"
	ScopeWeekly Scope = "weekly"
)

// Status classifies one report run's outcome
type Status string

// Run outcomes. Empty means the window held no activity and no report
// row was written; that is a normal result, not a failure
const (
	StatusWritten Status = "written"
	StatusEmpty   Status = "empty"
	StatusFailed  Status = "failed"
)

// Report is one persisted report row
type Report struct {
	ID        int64     `json:"id"`
	DayKey    string    `json:"day_key"`
	Scope     Scope     `json:"scope"`
	Author    string    `json:"author"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"created_at"`
}

// Outcome is what one report run produced
type Outcome struct {
	Status Status `json:"status"`
	Scope  Scope  `json:"scope"`
	DayKey string `json:"day_key"`
	Author string `json:"author"`

	// Events is how many activity rows fed the run (daily only)
	Events int `json:"events,omitempty"`

	// File is the markdown artifact path, empty when none was written
	File string `json:"file,omitempty"`
}

// RunnerPort produces reports. A returned error always accompanies a
// failed outcome; Empty outcomes carry no error
type RunnerPort interface {
	RunDaily(ctx context.Context) (Outcome, error)
	RunWeekly(ctx context.Context) (Outcome, error)
}
