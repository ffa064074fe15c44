package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
	"github.com/isowatch-cl/iso-news-harvester/internal/extract"
	"github.com/isowatch-cl/iso-news-harvester/internal/logger"
	"github.com/isowatch-cl/iso-news-harvester/pkg/httpclient"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	defaultMaxWorkers = 4
)

// Driver fetches each deduplicated candidate's page and builds the enriched
// article records. One record comes out per candidate in input order; a failed
// fetch produces a failure stub and never aborts the batch.
type Driver struct {
	client    httpclient.Client
	extractor *extract.Extractor
	log       logger.Logger
	headers   map[string]string
	delay     time.Duration
	workers   int
	now       func() time.Time
}

// Options configure the driver. The delay is a constant politeness pause
// shared by all workers, not a backoff policy.
type Options struct {
	Headers map[string]string
	Delay   time.Duration
	Workers int
	Clock   func() time.Time
}

// NewDriver creates a Driver with the given HTTP client and extractor.
func NewDriver(client httpclient.Client, extractor *extract.Extractor, log logger.Logger, opts Options) *Driver {
	if extractor == nil {
		extractor = extract.New(extract.Options{})
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Driver{
		client:    client,
		extractor: extractor,
		log:       log,
		headers:   opts.Headers,
		delay:     opts.Delay,
		workers:   workers,
		now:       now,
	}
}

// Run enriches every candidate. The result always has the same cardinality as
// the input and out[i] corresponds to candidates[i], independent of worker
// scheduling. A shared ticker paces all requests so the total request rate
// stays constant regardless of worker count.
func (d *Driver) Run(ctx context.Context, candidates []domain.Candidate) []domain.ArticleRecord {
	out := make([]domain.ArticleRecord, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	workerCount := min(len(candidates), d.workers)

	var limiter <-chan time.Time
	if d.delay > 0 {
		ticker := time.NewTicker(d.delay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := 0; workerID < workerCount; workerID++ {
		wg.Add(1)
		go d.worker(ctx, candidates, limiter, jobCh, out, &wg, workerID)
	}

	for idx := range candidates {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	// Items never dispatched (cancellation) still get a stub so cardinality
	// and the success/failure invariants hold for every record.
	for idx := range out {
		if out[idx].ScrapedAt.IsZero() {
			out[idx] = d.failureStub(candidates[idx], "run cancelled before fetch")
		}
	}
	return out
}

func (d *Driver) worker(
	ctx context.Context,
	candidates []domain.Candidate,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.ArticleRecord,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		out[idx] = d.enrich(ctx, candidates[idx], workerID)
	}
}

// enrich fetches one candidate page and builds its record. Fetch errors are
// absorbed into a failure stub; extraction itself cannot fail, only degrade.
func (d *Driver) enrich(ctx context.Context, cand domain.Candidate, workerID int) domain.ArticleRecord {
	d.log.DebugObj("scraping article content", "scrape_start", map[string]any{
		"worker_id": workerID,
		"source":    cand.Source,
		"url":       cand.URL,
	})

	resp, err := d.client.Get(ctx, cand.URL, d.headers)
	if err != nil {
		d.logFailure(cand, workerID, err.Error())
		return d.failureStub(cand, fmt.Sprintf("http fetch: %v", err))
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		diag := fmt.Sprintf("status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
		d.logFailure(cand, workerID, diag)
		return d.failureStub(cand, diag)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		d.log.InfoObj("html body truncated", "truncation", map[string]any{
			"worker_id": workerID,
			"url":       cand.URL,
			"original":  len(body),
			"kept":      maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	fields := d.extractor.Extract(body, cand.URL)

	rec := d.baseRecord(cand)
	rec.FullContent = fields.Content
	rec.ContentLength = utf8.RuneCountInString(fields.Content)
	rec.Summary = extract.Summarize(fields.Content)
	rec.ImageURL = fields.ImageURL
	rec.ScrapingSuccess = true

	// The candidate's title won deduplication and is kept; the extracted
	// title only fills a gap.
	if rec.Title == "" {
		rec.Title = fields.Title
	}

	return rec
}

// baseRecord carries the candidate identity fields over unchanged.
func (d *Driver) baseRecord(cand domain.Candidate) domain.ArticleRecord {
	return domain.ArticleRecord{
		Title:     cand.Title,
		URL:       cand.URL,
		Date:      cand.Date,
		Source:    cand.Source,
		ScrapedAt: d.now(),
	}
}

func (d *Driver) failureStub(cand domain.Candidate, diag string) domain.ArticleRecord {
	rec := d.baseRecord(cand)
	rec.ScrapingSuccess = false
	rec.Error = diag
	return rec
}

func (d *Driver) logFailure(cand domain.Candidate, workerID int, diag string) {
	d.log.WarnObj("article scrape failed", "scrape_error", map[string]any{
		"worker_id": workerID,
		"source":    cand.Source,
		"url":       cand.URL,
		"error":     diag,
	})
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
