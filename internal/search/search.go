// Package search normalises Vietnamese text for accent-insensitive lookups
// and suggests close matches when a query finds nothing.
package search

import (
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
)

// Normalize strips accents, lower-cases and collapses whitespace,
// so "Phở Bò" and "pho bo" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	return strings.Join(strings.Fields(s), " ")
}

// Text joins the normalised parts into one searchable string.
func Text(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// Suggest returns up to n candidates closest to query. Candidates are
// compared in normalised form but returned as given.
func Suggest(query string, candidates []string, n int) []string {
	q := Normalize(query)
	if q == "" || len(candidates) == 0 || n <= 0 {
		return []string{}
	}
	byKey := make(map[string]string, len(candidates))
	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		k := Normalize(c)
		if _, dup := byKey[k]; dup || k == "" {
			continue
		}
		byKey[k] = c
		keys = append(keys, k)
	}
	cm := closestmatch.New(keys, []int{2, 3})
	out := []string{}
	for _, k := range cm.ClosestN(q, n) {
		if orig, ok := byKey[k]; ok {
			out = append(out, orig)
		}
	}
	return out
}
