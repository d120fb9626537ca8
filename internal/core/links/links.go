// Package links extracts http(s) URLs from free-form activity text
package links

import "strings"

// Extract scans text for http:// and https:// tokens. A URL runs until
// the next whitespace or closing parenthesis. Duplicates are dropped and
// first-appearance order is kept
func Extract(text string) []string {
	var out []string
	seen := map[string]bool{}

	for i := 0; i < len(text); {
		j := nextScheme(text, i)
		if j < 0 {
			break
		}
		end := j
		for end < len(text) && !isStop(text[end]) {
			end++
		}
		u := text[j:end]
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
		i = end
	}
	return out
}

func nextScheme(s string, from int) int {
	h := strings.Index(s[from:], "http://")
	hs := strings.Index(s[from:], "https://")
	switch {
	case h < 0 && hs < 0:
		return -1
	case h < 0:
		return from + hs
	case hs < 0:
		return from + h
	case h < hs:
		return from + h
	default:
		return from + hs
	}
}

func isStop(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ')':
		return true
	}
	return false
}
