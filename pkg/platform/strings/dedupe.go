// Package strings holds the set helpers used for scope and audience lists.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element, drops blanks and duplicates, and keeps
// first-seen order. A nil or empty input is returned as is.
//
//	DedupeAndTrim([]string{"  openid ", "email", "openid", "", "  "})
//	// []string{"openid", "email"}
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is DedupeAndTrim with case folding.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

// Intersect returns the elements of ordered that also appear in allowed, in
// the order of ordered, trimmed and without duplicates. The result is never nil.
func Intersect(ordered, allowed []string) []string {
	keep := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		keep[strings.TrimSpace(a)] = struct{}{}
	}
	out := make([]string, 0, len(ordered))
	for _, v := range DedupeAndTrim(ordered) {
		if _, ok := keep[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ContainsAll reports whether every non-blank element of want is in have.
func ContainsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.TrimSpace(h)] = struct{}{}
	}
	for _, w := range DedupeAndTrim(want) {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
