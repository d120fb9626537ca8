// Package cleantext provides a deterministic cleanup pass for titles and
// note bodies arriving from provider payloads.
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFC normalization
// 3 Remove format chars ZWJ ZWNJ FEFF etc
// 4 Collapse whitespace runs to single spaces and trim (titles only)
package cleantext

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

// Title cleans a single-line title: normalize, strip format chars,
// collapse internal whitespace, trim
func Title(s string) string {
	s = apply(s)
	return strings.Join(strings.Fields(s), " ")
}

// Body cleans multi-line body text without touching line structure
func Body(s string) string {
	return strings.TrimRight(apply(s), " \t")
}

func apply(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return ns
}

// FirstLine returns the first line of a commit-style message
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
