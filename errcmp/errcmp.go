// errcmp compares errors by message for tests.
// An empty expectation means "no error".
package errcmp

import (
	"strings"
	"testing"
)

// Matches reports whether err satisfies the expected message.
// Empty expected only matches a nil error, otherwise err must contain expected.
func Matches(err error, expected string) bool {
	if expected == "" {
		return err == nil
	}
	return err != nil && strings.Contains(err.Error(), expected)
}

// MustMatch fails the test immediately if err does not match expected.
func MustMatch(t testing.TB, err error, expected string) {
	t.Helper()
	if Matches(err, expected) {
		return
	}
	if expected == "" {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Fatalf("expected error containing %q, got %v", expected, err)
}

// ShouldMatch is like MustMatch, but lets the test continue.
func ShouldMatch(t testing.TB, err error, expected string) bool {
	t.Helper()
	if Matches(err, expected) {
		return true
	}
	if expected == "" {
		t.Errorf("expected no error, got %v", err)
	} else {
		t.Errorf("expected error containing %q, got %v", expected, err)
	}
	return false
}
