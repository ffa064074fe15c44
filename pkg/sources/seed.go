package sources

import (
	"context"

	"github.com/isowatch-cl/iso-news-harvester/internal/dates"
	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
)

const seedAggregatorID = "seed"

// seedAggregator yields a fixed, injected candidate list with no network
// access. It guarantees baseline coverage when live sources are unreachable
// or thin; merged last, live sources always win on overlapping URLs.
type seedAggregator struct {
	candidates []domain.Candidate
	norm       *dates.Normalizer
}

// NewSeedAggregator builds an aggregator over the given static candidates.
// Dates are normalized on collection so configured seeds may carry any
// supported date form.
func NewSeedAggregator(candidates []domain.Candidate, norm *dates.Normalizer) Aggregator {
	if norm == nil {
		norm = dates.New()
	}
	return &seedAggregator{candidates: candidates, norm: norm}
}

func (a *seedAggregator) ID() string { return seedAggregatorID }

func (a *seedAggregator) Collect(context.Context) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, len(a.candidates))
	copy(out, a.candidates)
	for i := range out {
		out[i].Date = a.norm.Normalize(out[i].Date)
	}
	return out, nil
}
