package snapshot

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/isowatch-cl/iso-news-harvester/internal/dates"
	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
)

// Options configure snapshot assembly.
type Options struct {
	// DataSource labels the run in metadata, e.g. the harvester name. When
	// FallbackData is set, a marker is appended so placeholder data is never
	// mistaken for live results.
	DataSource   string
	FallbackData bool

	// SearchTerms are echoed into metadata for traceability.
	SearchTerms []string

	// ChileanDomains classify records for the per-origin counts.
	ChileanDomains []string

	// SortRegionalFirst orders articles Chilean-sources-first, then by date
	// descending. Ordering is a serializer concern; the merge engine output
	// stays insertion-ordered.
	SortRegionalFirst bool

	Clock func() time.Time
}

// FallbackMarker is appended to data_source when the run served placeholder
// candidates instead of live API data.
const FallbackMarker = " (fallback data)"

// Build wraps the article records with run metadata into the canonical
// snapshot document.
func Build(records []domain.ArticleRecord, opts Options) domain.Snapshot {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	var succeeded, chilean int
	for _, rec := range records {
		if rec.ScrapingSuccess {
			succeeded++
		}
		if isChilean(rec.URL, opts.ChileanDomains) {
			chilean++
		}
	}

	dataSource := opts.DataSource
	if opts.FallbackData {
		dataSource += FallbackMarker
	}

	articles := make([]domain.ArticleRecord, len(records))
	copy(articles, records)
	if opts.SortRegionalFirst {
		sortRegionalFirst(articles, opts.ChileanDomains)
	}

	return domain.Snapshot{
		Metadata: domain.Metadata{
			GeneratedAt:           now().Format(time.RFC3339),
			DataSource:            dataSource,
			TotalArticles:         len(records),
			SuccessfulScrapes:     succeeded,
			FailedScrapes:         len(records) - succeeded,
			ChileanArticles:       chilean,
			InternationalArticles: len(records) - chilean,
			SearchTerms:           opts.SearchTerms,
		},
		Articles: articles,
	}
}

// Write persists the snapshot as indented JSON at path, creating parent
// directories and replacing any previous snapshot atomically. A failure here
// means the run produced no usable artifact, so callers treat it as fatal.
func Write(path string, snap domain.Snapshot) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("snapshot path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// sortRegionalFirst orders Chilean-domain records before the rest, newest
// first within each group. The sort is stable so equal records keep their
// merge order.
func sortRegionalFirst(records []domain.ArticleRecord, chileanDomains []string) {
	sort.SliceStable(records, func(i, j int) bool {
		ci, cj := isChilean(records[i].URL, chileanDomains), isChilean(records[j].URL, chileanDomains)
		if ci != cj {
			return ci
		}
		return recordTime(records[i]).After(recordTime(records[j]))
	})
}

func recordTime(rec domain.ArticleRecord) time.Time {
	t, err := time.Parse(dates.Canonical, rec.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isChilean(rawURL string, domains []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Host)
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
