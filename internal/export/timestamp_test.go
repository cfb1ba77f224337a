package export

import (
	"testing"
	"time"
)

func TestMatchTimestamp(t *testing.T) {
	cases := map[string]bool{
		"Jan 15, 2025  2:30:15 PM":                true,
		"Dec 1, 2024 11:05:09 AM":                 true,
		"1/15/25 2:30:15 PM":                      true,
		"12/31/2024 11:59:59 PM":                  true,
		"2025-01-15 14:30:15":                     true,
		"Jan 15, 2025  2:30:15 PM (Read by them)": true,
		"":                    false,
		"hey are we still on": false,
		"Jan 15, 2025":        false,
		"2:30:15 PM":          false,
		"555-1234":            false,
		"2025-01-15":          false,
	}
	for line, want := range cases {
		if _, ok := MatchTimestamp(line); ok != want {
			t.Fatalf("MatchTimestamp(%q)=%v want %v", line, ok, want)
		}
	}
}

func TestMatchTimestampReturnsMatchOnly(t *testing.T) {
	got, ok := MatchTimestamp("Jan 15, 2025  2:30:15 PM (Read by them)")
	if !ok || got != "Jan 15, 2025  2:30:15 PM" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]string{
		"Jan 15, 2025  2:30:15 PM": "2025-01-15T14:30:15Z",
		"1/15/25 2:30:15 PM":       "2025-01-15T14:30:15Z",
		"12/31/2024 11:59:59 PM":   "2024-12-31T23:59:59Z",
		"2025-01-15 14:30:15":      "2025-01-15T14:30:15Z",
	}
	for raw, want := range cases {
		got, ok := ParseTimestamp(raw)
		if !ok {
			t.Fatalf("ParseTimestamp(%q) failed", raw)
		}
		if got.Format(time.RFC3339) != want {
			t.Fatalf("ParseTimestamp(%q)=%s want %s", raw, got.Format(time.RFC3339), want)
		}
	}

	if _, ok := ParseTimestamp("not a timestamp"); ok {
		t.Fatal("expected parse failure")
	}
}
