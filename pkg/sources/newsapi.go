package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/isowatch-cl/iso-news-harvester/internal/dates"
	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
	"github.com/isowatch-cl/iso-news-harvester/internal/logger"
	"github.com/isowatch-cl/iso-news-harvester/pkg/httpclient"
)

const (
	newsAPIAggregatorID = "newsapi"

	defaultNewsAPIBaseURL = "https://newsapi.org/v2"
	defaultNewsAPIWindow  = 30 // days back
	defaultNewsAPIPage    = 20
	defaultNewsAPICap     = 100
)

// NewsAPIConfig configures the external search API aggregator. All lists are
// injected; the aggregator treats them as opaque inputs.
type NewsAPIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`

	// SearchTerms produce one query each; RegionQualifier, when set, adds a
	// second qualified query per term (e.g. "ISO 9001 Chile").
	SearchTerms     []string `mapstructure:"search_terms" yaml:"search_terms"`
	RegionQualifier string   `mapstructure:"region_qualifier" yaml:"region_qualifier"`

	// A hit is kept only if its URL matches RegionalDomains or its title or
	// description contains one of RegionalKeywords.
	RegionalDomains  []string `mapstructure:"regional_domains" yaml:"regional_domains"`
	RegionalKeywords []string `mapstructure:"regional_keywords" yaml:"regional_keywords"`

	Language   string        `mapstructure:"language" yaml:"language"`
	DaysBack   int           `mapstructure:"days_back" yaml:"days_back"`
	PageSize   int           `mapstructure:"page_size" yaml:"page_size"`
	MaxHits    int           `mapstructure:"max_hits" yaml:"max_hits"`
	QueryDelay time.Duration `mapstructure:"query_delay" yaml:"query_delay"`

	// Fallback candidates keep the pipeline fed when every query fails on
	// quota or authentication.
	Fallback []domain.Candidate `mapstructure:"fallback" yaml:"fallback"`
}

func (c NewsAPIConfig) baseURL() string {
	if strings.TrimSpace(c.BaseURL) != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return defaultNewsAPIBaseURL
}

func (c NewsAPIConfig) daysBack() int {
	if c.DaysBack > 0 {
		return c.DaysBack
	}
	return defaultNewsAPIWindow
}

func (c NewsAPIConfig) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return defaultNewsAPIPage
}

func (c NewsAPIConfig) maxHits() int {
	if c.MaxHits > 0 {
		return c.MaxHits
	}
	return defaultNewsAPICap
}

// NewsAPIAggregator queries the external search API once per configured term
// and classifies hits for regional relevance before they become candidates.
type NewsAPIAggregator struct {
	client httpclient.Client
	cfg    NewsAPIConfig
	norm   *dates.Normalizer
	log    logger.Logger
	now    func() time.Time

	usedFallback bool
}

// NewNewsAPIAggregator builds the search API aggregator. The concrete type is
// returned so callers can inspect UsedFallback after a run.
func NewNewsAPIAggregator(client httpclient.Client, cfg NewsAPIConfig, norm *dates.Normalizer, log logger.Logger) *NewsAPIAggregator {
	if norm == nil {
		norm = dates.New()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &NewsAPIAggregator{
		client: client,
		cfg:    cfg,
		norm:   norm,
		log:    log,
		now:    time.Now,
	}
}

func (a *NewsAPIAggregator) ID() string { return newsAPIAggregatorID }

// UsedFallback reports whether the last Collect served built-in placeholder
// candidates instead of live API data. Callers must surface this in run
// metadata so fallback data is never mistaken for live results.
func (a *NewsAPIAggregator) UsedFallback() bool { return a.usedFallback }

// Collect runs every configured query, discards regionally irrelevant hits
// and dedupes the remainder by URL. When no query succeeds (quota exhausted,
// bad credentials, network down) the configured fallback candidates are
// returned and the fallback flag is set.
func (a *NewsAPIAggregator) Collect(ctx context.Context) ([]domain.Candidate, error) {
	a.usedFallback = false

	var (
		candidates []domain.Candidate
		seen       = make(map[string]struct{})
		apiWorked  bool
	)

	for _, term := range a.cfg.SearchTerms {
		for _, query := range a.queriesFor(term) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			hits, err := a.search(ctx, query)
			if err != nil {
				a.log.WarnObj("search query failed", "newsapi_query_error", map[string]any{
					"query": query,
					"error": err.Error(),
				})
			} else {
				apiWorked = true
				for _, hit := range hits {
					cand, ok := a.classify(hit)
					if !ok {
						continue
					}
					if _, dup := seen[cand.URL]; dup {
						continue
					}
					seen[cand.URL] = struct{}{}
					candidates = append(candidates, cand)
				}
			}

			if len(candidates) >= a.cfg.maxHits() {
				return candidates[:a.cfg.maxHits()], nil
			}
			if err := a.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	if !apiWorked || len(candidates) == 0 {
		a.usedFallback = true
		a.log.WarnObj("search api unavailable, serving fallback candidates", "newsapi_fallback", map[string]any{
			"fallback_count": len(a.cfg.Fallback),
		})
		out := make([]domain.Candidate, len(a.cfg.Fallback))
		copy(out, a.cfg.Fallback)
		for i := range out {
			out[i].Date = a.norm.Normalize(out[i].Date)
		}
		return out, nil
	}

	return candidates, nil
}

func (a *NewsAPIAggregator) queriesFor(term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	queries := []string{term}
	if q := strings.TrimSpace(a.cfg.RegionQualifier); q != "" && !containsAnyFold(term, []string{q}) {
		queries = append(queries, term+" "+q)
	}
	return queries
}

// newsAPIResponse mirrors the /v2/everything payload.
type newsAPIResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []newsAPIHit `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type newsAPIHit struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
}

// search issues a single everything-endpoint query.
func (a *NewsAPIAggregator) search(ctx context.Context, query string) ([]newsAPIHit, error) {
	from := a.now().AddDate(0, 0, -a.cfg.daysBack()).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(a.cfg.pageSize()))
	params.Set("apiKey", a.cfg.APIKey)
	if lang := strings.TrimSpace(a.cfg.Language); lang != "" {
		params.Set("language", lang)
	}

	endpoint := a.cfg.baseURL() + "/everything?" + params.Encode()

	resp, err := a.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("query %q: request quota exhausted", query)
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("query %q: invalid or missing api key", query)
	default:
		return nil, fmt.Errorf("query %q: status %d body: %s", query, resp.StatusCode(), responseSnippet(resp.Body()))
	}

	var decoded newsAPIResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decode response for %q: %w", query, err)
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("query %q: api status %q (%s)", query, decoded.Status, decoded.Message)
	}
	return decoded.Articles, nil
}

// classify keeps a hit only when it is regionally relevant, then shapes it
// into a candidate with a normalized date.
func (a *NewsAPIAggregator) classify(hit newsAPIHit) (domain.Candidate, bool) {
	hitURL := strings.TrimSpace(hit.URL)
	title := strings.TrimSpace(hit.Title)
	if hitURL == "" || title == "" {
		return domain.Candidate{}, false
	}

	relevant := matchesDomain(hitURL, a.cfg.RegionalDomains) ||
		containsAnyFold(title+" "+hit.Description, a.cfg.RegionalKeywords)
	if !relevant {
		return domain.Candidate{}, false
	}

	source := strings.TrimSpace(hit.Source.Name)
	if source == "" {
		source = "NewsAPI"
	}

	return domain.Candidate{
		Title:  title,
		URL:    hitURL,
		Date:   a.norm.Normalize(hit.PublishedAt),
		Source: source,
	}, true
}

func (a *NewsAPIAggregator) pause(ctx context.Context) error {
	if a.cfg.QueryDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.cfg.QueryDelay):
		return nil
	}
}
