// Package id generates and checks prefixed NanoID identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixSession = "sess"
	PrefixRequest = "req"
)

const (
	nanoidLength   = 21
	nanoidAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generate creates a prefixed unique ID: prefix-nanoid
// (e.g. "sess-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s looks like an ID produced by Generate(prefix).
// It is used to reject garbage path parameters before touching storage.
func Valid(prefix, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok || len(rest) != nanoidLength {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if strings.IndexByte(nanoidAlphabet, rest[i]) < 0 {
			return false
		}
	}
	return true
}
