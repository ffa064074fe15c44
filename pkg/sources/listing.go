package sources

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/isowatch-cl/iso-news-harvester/internal/dates"
	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
	"github.com/isowatch-cl/iso-news-harvester/internal/extract"
	"github.com/isowatch-cl/iso-news-harvester/internal/logger"
	"github.com/isowatch-cl/iso-news-harvester/pkg/httpclient"
)

const (
	listingAggregatorID = "listing"

	minLinkTextLen  = 20
	maxLinkFallback = 10
)

// ListingConfig describes one institutional listing page to scrape.
type ListingConfig struct {
	// URL is the listing page itself; BaseURL resolves relative article links.
	URL     string `mapstructure:"url" yaml:"url"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// SourceName is stamped on every candidate from this listing.
	SourceName string `mapstructure:"source_name" yaml:"source_name"`

	// ItemSelectors locate article nodes, tried in order. DateSelectors and
	// TitleSelectors are tried in order within each node.
	ItemSelectors  []string `mapstructure:"item_selectors" yaml:"item_selectors"`
	TitleSelectors []string `mapstructure:"title_selectors" yaml:"title_selectors"`
	DateSelectors  []string `mapstructure:"date_selectors" yaml:"date_selectors"`

	// LinkKeywords drive the anchor-heuristic fallback when no structural
	// node matches.
	LinkKeywords []string `mapstructure:"link_keywords" yaml:"link_keywords"`

	// MaxItems caps candidates from this listing. Zero means the default.
	MaxItems int `mapstructure:"max_items" yaml:"max_items"`
}

func (c ListingConfig) itemSelectors() []string {
	if len(c.ItemSelectors) > 0 {
		return c.ItemSelectors
	}
	return []string{
		"article", ".noticia", ".news-item", ".entry", ".post",
		`div[class*="news"]`, `div[class*="noticia"]`,
	}
}

func (c ListingConfig) titleSelectors() []string {
	if len(c.TitleSelectors) > 0 {
		return c.TitleSelectors
	}
	return []string{"h1", "h2", "h3", "h4", ".title", `[class*="title"]`, "a"}
}

func (c ListingConfig) dateSelectors() []string {
	if len(c.DateSelectors) > 0 {
		return c.DateSelectors
	}
	return []string{".date", ".fecha", `[class*="date"]`, `[class*="fecha"]`, "time"}
}

func (c ListingConfig) maxItems() int {
	if c.MaxItems > 0 {
		return c.MaxItems
	}
	return 15
}

// listingAggregator scrapes one known listing page into candidates.
type listingAggregator struct {
	client httpclient.Client
	cfg    ListingConfig
	norm   *dates.Normalizer
	log    logger.Logger
}

// NewListingAggregator builds an aggregator for the configured listing page.
func NewListingAggregator(client httpclient.Client, cfg ListingConfig, norm *dates.Normalizer, log logger.Logger) Aggregator {
	if norm == nil {
		norm = dates.New()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &listingAggregator{client: client, cfg: cfg, norm: norm, log: log}
}

func (a *listingAggregator) ID() string { return listingAggregatorID }

// Collect fetches and parses the listing page. An unreachable or unparseable
// page yields zero candidates, never an error: the listing is one input among
// several and its absence must not fail the run.
func (a *listingAggregator) Collect(ctx context.Context) ([]domain.Candidate, error) {
	body, err := fetchPage(ctx, a.client, a.cfg.URL, listingAggregatorID, DefaultHeaders())
	if err != nil {
		a.log.WarnObj("listing page unreachable", "listing_fetch_error", map[string]any{
			"url":   a.cfg.URL,
			"error": err.Error(),
		})
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		a.log.WarnObj("listing page unparseable", "listing_parse_error", map[string]any{
			"url":   a.cfg.URL,
			"error": err.Error(),
		})
		return nil, nil
	}

	items := a.findItems(doc)
	if len(items) == 0 {
		items = a.linkFallback(doc)
	}

	candidates := make([]domain.Candidate, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if len(candidates) >= a.cfg.maxItems() {
			break
		}

		cand, ok := a.parseItem(item)
		if !ok {
			continue
		}
		if _, dup := seen[cand.URL]; dup {
			continue
		}
		seen[cand.URL] = struct{}{}
		candidates = append(candidates, cand)
	}

	a.log.InfoObj("listing page scraped", "listing_collected", map[string]any{
		"url":        a.cfg.URL,
		"candidates": len(candidates),
	})
	return candidates, nil
}

// findItems walks the item selector chain and accumulates matching nodes.
func (a *listingAggregator) findItems(doc *goquery.Document) []*goquery.Selection {
	var items []*goquery.Selection
	for _, sel := range a.cfg.itemSelectors() {
		doc.Find(sel).Each(func(_ int, node *goquery.Selection) {
			items = append(items, node)
		})
		if len(items) > 0 {
			break
		}
	}
	return items
}

// linkFallback scans anchors whose text looks like a headline when no
// structural selector matched, mirroring listings that are plain link lists.
func (a *listingAggregator) linkFallback(doc *goquery.Document) []*goquery.Selection {
	var items []*goquery.Selection
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		text := strings.TrimSpace(link.Text())
		if len(text) <= minLinkTextLen {
			return true
		}
		if len(a.cfg.LinkKeywords) > 0 && !containsAnyFold(text, a.cfg.LinkKeywords) {
			return true
		}
		items = append(items, link)
		return len(items) < maxLinkFallback
	})

	if len(items) > 0 {
		a.log.InfoObj("listing fell back to anchor scan", "listing_link_fallback", map[string]any{
			"url":   a.cfg.URL,
			"links": len(items),
		})
	}
	return items
}

// parseItem extracts {title, link, date} from one listing node.
func (a *listingAggregator) parseItem(item *goquery.Selection) (domain.Candidate, bool) {
	title := a.itemTitle(item)
	if len(title) < 10 {
		return domain.Candidate{}, false
	}

	href := a.itemLink(item)
	if href == "" {
		return domain.Candidate{}, false
	}

	return domain.Candidate{
		Title:  title,
		URL:    extract.ResolveURL(href, a.cfg.BaseURL),
		Date:   a.itemDate(item),
		Source: a.cfg.SourceName,
	}, true
}

func (a *listingAggregator) itemTitle(item *goquery.Selection) string {
	for _, sel := range a.cfg.titleSelectors() {
		if text := strings.TrimSpace(item.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	// The node itself may be the anchor (link fallback path).
	return strings.TrimSpace(item.Text())
}

func (a *listingAggregator) itemLink(item *goquery.Selection) string {
	if href, ok := item.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := item.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

func (a *listingAggregator) itemDate(item *goquery.Selection) string {
	for _, sel := range a.cfg.dateSelectors() {
		if text := strings.TrimSpace(item.Find(sel).First().Text()); text != "" {
			return a.norm.Normalize(text)
		}
	}
	return a.norm.Normalize("")
}
