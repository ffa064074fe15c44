package sources

import (
	"context"
	"testing"

	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
)

func TestSeedCollect(t *testing.T) {
	t.Parallel()

	seeds := []domain.Candidate{
		{Title: "Seed canónica", URL: "https://www.inn.cl/a", Date: "30/07/2025", Source: "INN"},
		{Title: "Seed sin normalizar", URL: "https://www.inn.cl/b", Date: "2025-07-25", Source: "INN"},
	}

	agg := NewSeedAggregator(seeds, testNormalizer())

	got, err := agg.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Date != "30/07/2025" || got[1].Date != "25/07/2025" {
		t.Fatalf("dates not normalized: %q %q", got[0].Date, got[1].Date)
	}

	// Collect hands out a copy; callers mutating it must not corrupt the seeds.
	got[0].Title = "mutated"
	again, _ := agg.Collect(context.Background())
	if again[0].Title != "Seed canónica" {
		t.Fatalf("seed list mutated through Collect result")
	}
}
