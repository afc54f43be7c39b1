// Package normalize provides utilities for normalizing and sanitizing catalog text.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// listSeparator separates values inside multi-valued catalog columns
// ("Action, Adventure, Comedy").
const listSeparator = ", "

// Title converts a title or alias into its lookup key: null bytes removed,
// surrounding whitespace trimmed, Unicode case folded.
//
// "  Shingeki no Kyojin " -> "shingeki no kyojin"
// "STRASSE"               -> "strasse"
//
// No other rewriting is applied; matching on the result is exact.
func Title(raw string) string {
	s := strings.TrimSpace(sanitizeString(raw))
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// List splits a multi-valued column into trimmed, non-empty values, preserving order.
//
// "Action, Adventure, " -> ["Action", "Adventure"]
func List(raw string) []string {
	raw = sanitizeString(raw)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Text trims a single-valued column and strips null bytes.
func Text(raw string) string {
	return strings.TrimSpace(sanitizeString(raw))
}

// sanitizeString removes null bytes, which some exports leave behind as
// terminators and which break lookups silently.
func sanitizeString(s string) string {
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
