package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Text lowercases, collapses internal whitespace, and trims the input.
func Text(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return multiSpace.ReplaceAllString(s, " ")
}

// Category maps a free-text clinical category onto its canonical form.
// Synonym keys are matched as substrings of the normalized input; the first
// match in deterministic order (longest key first, then lexicographic) wins.
// Every catalog set lookup must go through this before comparison.
func Category(raw string, synonyms map[string]string) string {
	t := Text(raw)
	if t == "" {
		return ""
	}
	for _, k := range SynonymKeys(synonyms) {
		if strings.Contains(t, k) {
			return synonyms[k]
		}
	}
	return t
}

// SynonymKeys returns synonym keys longest-first, ties broken lexicographically,
// so substring matching is stable across runs.
func SynonymKeys(synonyms map[string]string) []string {
	keys := make([]string, 0, len(synonyms))
	for k := range synonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// ContainsAny reports whether s contains any of the given substrings.
func ContainsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
