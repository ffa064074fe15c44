package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/isowatch-cl/iso-news-harvester/internal/dates"
	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
	"github.com/isowatch-cl/iso-news-harvester/internal/logger"
	"github.com/isowatch-cl/iso-news-harvester/pkg/httpclient"
)

const sitemapAggregatorID = "sitemap"

// SitemapConfig describes one Google-News-style sitemap source. Sites that
// publish a news sitemap expose cleaner candidates than their listing pages.
type SitemapConfig struct {
	URL        string `mapstructure:"url" yaml:"url"`
	SourceName string `mapstructure:"source_name" yaml:"source_name"`

	// Keywords, when set, restrict entries to titles matching at least one.
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`

	// MaxItems caps candidates from this sitemap. Zero means unbounded.
	MaxItems int `mapstructure:"max_items" yaml:"max_items"`
}

// sitemapAggregator turns news sitemap entries into candidates, following
// sitemap indexes into their nested sitemaps.
type sitemapAggregator struct {
	client httpclient.Client
	cfg    SitemapConfig
	norm   *dates.Normalizer
	log    logger.Logger
}

// NewSitemapAggregator builds an aggregator over the configured news sitemap.
func NewSitemapAggregator(client httpclient.Client, cfg SitemapConfig, norm *dates.Normalizer, log logger.Logger) Aggregator {
	if norm == nil {
		norm = dates.New()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &sitemapAggregator{client: client, cfg: cfg, norm: norm, log: log}
}

func (a *sitemapAggregator) ID() string { return sitemapAggregatorID }

// Collect resolves the sitemap into candidates. Like the listing aggregator,
// an unreachable sitemap yields zero candidates rather than failing the run.
func (a *sitemapAggregator) Collect(ctx context.Context) ([]domain.Candidate, error) {
	entries, err := a.fetchEntries(ctx, a.cfg.URL, nil)
	if err != nil {
		a.log.WarnObj("sitemap unreachable", "sitemap_fetch_error", map[string]any{
			"url":   a.cfg.URL,
			"error": err.Error(),
		})
		return nil, nil
	}

	candidates := make([]domain.Candidate, 0, len(entries))
	for _, entry := range entries {
		if a.cfg.MaxItems > 0 && len(candidates) >= a.cfg.MaxItems {
			break
		}

		loc := strings.TrimSpace(entry.Loc)
		title := strings.TrimSpace(entry.News.Title)
		if loc == "" || title == "" {
			continue
		}
		if len(a.cfg.Keywords) > 0 && !containsAnyFold(title, a.cfg.Keywords) {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Title:  title,
			URL:    loc,
			Date:   a.norm.Normalize(entry.News.PublicationDate),
			Source: a.cfg.SourceName,
		})
	}

	a.log.InfoObj("sitemap scanned", "sitemap_collected", map[string]any{
		"url":        a.cfg.URL,
		"entries":    len(entries),
		"candidates": len(candidates),
	})
	return candidates, nil
}

// fetchEntries downloads one sitemap URL and returns its article entries,
// recursing into sitemap indexes. visited guards against reference cycles.
func (a *sitemapAggregator) fetchEntries(ctx context.Context, sitemapURL string, visited map[string]struct{}) ([]newsSitemapEntry, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[sitemapURL]; seen {
		return nil, nil
	}
	visited[sitemapURL] = struct{}{}

	raw, err := fetchPage(ctx, a.client, sitemapURL, sitemapAggregatorID, DefaultHeaders())
	if err != nil {
		return nil, err
	}

	entries, err := parseNewsSitemap(raw)
	if err != nil {
		return nil, fmt.Errorf("decode news sitemap: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	nested, err := parseSitemapIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("decode sitemap index: %w", err)
	}

	var all []newsSitemapEntry
	for _, nestedURL := range nested {
		children, err := a.fetchEntries(ctx, nestedURL, visited)
		if err != nil {
			return nil, err
		}
		all = append(all, children...)
	}
	return all, nil
}

type newsSitemap struct {
	Entries []newsSitemapEntry `xml:"url"`
}

type newsSitemapEntry struct {
	Loc  string `xml:"loc"`
	News struct {
		PublicationDate string `xml:"publication_date"`
		Title           string `xml:"title"`
	} `xml:"news"`
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

func parseNewsSitemap(data []byte) ([]newsSitemapEntry, error) {
	var sm newsSitemap
	if err := xml.Unmarshal(data, &sm); err != nil {
		return nil, err
	}
	return sm.Entries, nil
}

func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}
