package dates

import (
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, time.August, 15, 10, 30, 0, 0, time.UTC)
}

func TestNormalizeKnownLayouts(t *testing.T) {
	t.Parallel()

	norm := NewWithClock(fixedClock)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"canonical passthrough", "30/07/2025", "30/07/2025"},
		{"dashed day first", "30-07-2025", "30/07/2025"},
		{"iso date", "2025-07-30", "30/07/2025"},
		{"spanish long form", "30 de julio de 2025", "30/07/2025"},
		{"spanish uppercase month", "30 de Julio de 2025", "30/07/2025"},
		{"spanish short form", "5 enero 2024", "05/01/2024"},
		{"iso datetime", "2025-07-30T14:22:01Z", "30/07/2025"},
		{"rfc3339 with offset", "2025-07-30T14:22:01-04:00", "30/07/2025"},
		{"surrounding whitespace", "  30/07/2025  ", "30/07/2025"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := norm.Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	norm := NewWithClock(fixedClock)

	once := norm.Normalize("2 de febrero de 2025")
	twice := norm.Normalize(once)
	if once != twice {
		t.Fatalf("normalization not idempotent: %q then %q", once, twice)
	}
}

func TestNormalizeFallsBackToClock(t *testing.T) {
	t.Parallel()

	norm := NewWithClock(fixedClock)
	want := "15/08/2025"

	for _, in := range []string{"", "   ", "hace 3 días", "no date here"} {
		if got := norm.Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want clock date %q", in, got, want)
		}
	}
}
