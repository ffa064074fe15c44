package dates

import (
	"strings"
	"time"
)

// Canonical is the output layout for all normalized dates.
const Canonical = "02/01/2006"

// spanishMonths maps lowercase Spanish month names to the English tokens
// understood by time.Parse.
var spanishMonths = map[string]string{
	"enero":      "January",
	"febrero":    "February",
	"marzo":      "March",
	"abril":      "April",
	"mayo":       "May",
	"junio":      "June",
	"julio":      "July",
	"agosto":     "August",
	"septiembre": "September",
	"octubre":    "October",
	"noviembre":  "November",
	"diciembre":  "December",
}

// layouts are tried in order against the month-translated input.
var layouts = []string{
	Canonical,
	"02-01-2006",
	"2006-01-02",
	"2 de January de 2006",
	"2 January 2006",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
}

// Normalizer converts locale-specific date text to DD/MM/YYYY strings.
// The zero value is not usable; construct with New or NewWithClock.
type Normalizer struct {
	now func() time.Time
}

// New returns a Normalizer that falls back to the current date.
func New() *Normalizer {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Normalizer with an injectable clock for tests.
func NewWithClock(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize converts raw date text to DD/MM/YYYY. Parse failure is not an
// error: the current date is returned, which is acceptable for a display
// field. Already-canonical input passes through unchanged.
func (n *Normalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return n.now().Format(Canonical)
	}

	// Try the input as-is first so case-sensitive layouts (RFC3339) survive,
	// then retry with Spanish month names translated.
	for _, input := range []string{trimmed, translateMonths(trimmed)} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, input); err == nil {
				return t.Format(Canonical)
			}
		}
	}
	return n.now().Format(Canonical)
}

// translateMonths lowercases the input and replaces Spanish month names with
// their English equivalents so the fixed layouts can parse them.
func translateMonths(raw string) string {
	cleaned := strings.ToLower(raw)
	for es, en := range spanishMonths {
		cleaned = strings.ReplaceAll(cleaned, es, en)
	}
	return cleaned
}
