// Package domain defines the canonical activity event model
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Kind tags what a canonical event records
type Kind string

// Canonical event kinds
const (
	KindCommit       Kind = "commit"
	KindIssue        Kind = "issue"
	KindPullRequest  Kind = "pull_request"
	KindMergeRequest Kind = "merge_request"
	KindNote         Kind = "note"
	KindGeneric      Kind = "generic_event"
)

// Source tags which provider produced an event
type Source string

// Known sources
const (
	SourceGitHub Source = "github"
	SourceGitLab Source = "gitlab"
)

// Channel tags how an event arrived
type Channel string

// Known channels
const (
	ChannelWebhook Channel = "webhook"
	ChannelPoll    Channel = "poll"
)

// UnknownField is substituted for actor/repo fields a payload failed to
// carry; a malformed item never aborts its siblings
const UnknownField = "unknown"

// Incoming is a normalized event as produced by a source adapter, before
// the gateway computes derived fields. Meta holds only the kind-specific
// auxiliary fields needed for dedup and reporting, never the raw payload
type Incoming struct {
	TS         time.Time
	Actor      string
	Repo       string
	Kind       Kind
	Title      string
	Body       string
	NaturalKey string // commit SHA, issue/PR/MR number, note id; empty falls back to a content hash
	Meta       map[string]any
	Source     Source
	Channel    Channel
}

// Event is the persisted canonical record. After persistence it is a
// read-only input to the reporting pipeline
type Event struct {
	ID       int64
	TS       time.Time
	DayKey   string
	Actor    string
	Repo     string
	Kind     Kind
	Title    string
	Body     string
	Links    []string
	Meta     map[string]any
	DedupKey string
	Source   Source
	Channel  Channel
}

// EventTitle implements condense.Entry
func (e Event) EventTitle() string { return e.Title }

// EventKind implements condense.Entry
func (e Event) EventKind() string { return string(e.Kind) }

// dedupSep keeps key parts from colliding across field boundaries
const dedupSep = "\x1f"

// DedupKey derives the at-most-once storage key for an event. Two events
// describing the same real-world activity must collapse to the same key
// no matter which channel delivered them, so only repo, kind, and the
// kind-specific natural key participate
func DedupKey(repo string, kind Kind, natural string) string {
	return repo + dedupSep + string(kind) + dedupSep + natural
}

// ResolveNaturalKey returns the natural key for in, hashing timestamp and
// title when the source carries no stable identifier (generic feed items)
func (in Incoming) ResolveNaturalKey() string {
	if in.NaturalKey != "" {
		return in.NaturalKey
	}
	sum := sha256.Sum256([]byte(in.TS.UTC().Format(time.RFC3339Nano) + dedupSep + in.Title))
	return hex.EncodeToString(sum[:])
}
