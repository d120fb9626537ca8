// Package condense partitions event sets into important and minor groups
// for report emphasis. Classification is a heuristic: a wrong bucket is a
// cosmetic problem, never an error
package condense

import "strings"

// Entry is the minimal view condense needs of an event
type Entry interface {
	EventTitle() string
	EventKind() string
}

// Groups is the result of a partition. Within each group input order is
// preserved; callers sort by timestamp before condensing
type Groups[E Entry] struct {
	Important []E
	Minor     []E
}

// minorPrefixes mark housekeeping commits and edits
var minorPrefixes = []string{"chore", "docs", "style", "typo"}

// ByTitle partitions by title prefix: titles starting with
// chore|docs|style|typo (case-insensitive) are minor, the rest important
func ByTitle[E Entry](xs []E) Groups[E] {
	var g Groups[E]
	for _, e := range xs {
		if titleIsMinor(e.EventTitle()) {
			g.Minor = append(g.Minor, e)
		} else {
			g.Important = append(g.Important, e)
		}
	}
	return g
}

// ByKind is the coarser partition used by the polling pipeline:
// commits and issues are important, everything else minor.
// ByTitle and ByKind are not interchangeable; callers pick one explicitly
func ByKind[E Entry](xs []E) Groups[E] {
	var g Groups[E]
	for _, e := range xs {
		switch e.EventKind() {
		case "commit", "issue":
			g.Important = append(g.Important, e)
		default:
			g.Minor = append(g.Minor, e)
		}
	}
	return g
}

func titleIsMinor(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, p := range minorPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}
