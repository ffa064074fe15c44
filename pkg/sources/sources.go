package sources

import (
	"context"

	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
)

// Aggregator is a source-specific producer of article candidates. Aggregators
// are independent of each other; the pipeline runs them in priority order and
// merges their output downstream.
type Aggregator interface {
	// ID identifies the aggregator in logs and metadata.
	ID() string

	// Collect produces this run's candidates. Aggregators that scrape live
	// pages return an empty slice, not an error, when the source is
	// unreachable; callers must tolerate zero candidates.
	Collect(ctx context.Context) ([]domain.Candidate, error)
}

// DefaultHeaders returns the browser-identifying header set sent with every
// page fetch. Several institutional sites serve different (or no) markup to
// clients without these.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "es-CL,es;q=0.8,en;q=0.5",
		"Connection":      "keep-alive",
	}
}
