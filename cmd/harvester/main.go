package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/isowatch-cl/iso-news-harvester/internal/config"
	"github.com/isowatch-cl/iso-news-harvester/internal/crawler"
	"github.com/isowatch-cl/iso-news-harvester/internal/dates"
	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
	"github.com/isowatch-cl/iso-news-harvester/internal/extract"
	"github.com/isowatch-cl/iso-news-harvester/internal/history"
	"github.com/isowatch-cl/iso-news-harvester/internal/logger"
	"github.com/isowatch-cl/iso-news-harvester/internal/merge"
	"github.com/isowatch-cl/iso-news-harvester/internal/snapshot"
	"github.com/isowatch-cl/iso-news-harvester/pkg/httpclient"
	"github.com/isowatch-cl/iso-news-harvester/pkg/publishers"
	"github.com/isowatch-cl/iso-news-harvester/pkg/sources"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: ./harvester.yaml if present)")
	outputPath := flag.String("output", "", "snapshot output path (overrides config)")
	flag.Parse()

	// .env is a local convenience; its absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *outputPath != "" {
		cfg.Output.SnapshotPath = *outputPath
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorObj("harvest run failed", "run_failed", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

// run executes one harvest: collect candidates from every source, merge,
// enrich, serialize and fan out the completion event. Only a snapshot write
// failure is fatal; everything else degrades.
func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	client := httpclient.NewRestyClient(cfg.HTTP.Timeout, cfg.HTTP.InsecureTLS)
	norm := dates.New()

	newsAPI := sources.NewNewsAPIAggregator(client, cfg.NewsAPI, norm, log)
	aggregators := buildAggregators(client, cfg, norm, newsAPI, log)

	lists := make([][]domain.Candidate, 0, len(aggregators))
	for _, agg := range aggregators {
		candidates, err := agg.Collect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WarnObj("candidate collection failed", "collect_error", map[string]any{
				"aggregator": agg.ID(),
				"error":      err.Error(),
			})
			continue
		}
		log.InfoObj("candidates collected", "collect_done", map[string]any{
			"aggregator": agg.ID(),
			"count":      len(candidates),
		})
		lists = append(lists, candidates)
	}

	merged := merge.Merge(lists...)
	if cfg.Relevance.Enabled && len(cfg.Relevance.Keywords) > 0 {
		before := len(merged)
		merged = merge.Filter(merged, relevancePredicate(cfg.Relevance.Keywords))
		log.InfoObj("relevance filter applied", "relevance_filter", map[string]any{
			"before": before,
			"after":  len(merged),
		})
	}
	log.InfoObj("candidate set merged", "merge_done", map[string]any{
		"sources": len(lists),
		"unique":  len(merged),
	})

	driver := crawler.NewDriver(client, extract.New(extract.Options{}), log, crawler.Options{
		Headers: sources.DefaultHeaders(),
		Delay:   cfg.Harvest.RequestDelay,
		Workers: cfg.Harvest.Workers,
	})
	records := driver.Run(ctx, merged)

	snap := snapshot.Build(records, snapshot.Options{
		DataSource:        cfg.Output.DataSource,
		FallbackData:      newsAPI.UsedFallback(),
		SearchTerms:       cfg.NewsAPI.SearchTerms,
		ChileanDomains:    cfg.ChileanDomains(),
		SortRegionalFirst: true,
	})

	if err := snapshot.Write(cfg.Output.SnapshotPath, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.InfoObj("snapshot written", "snapshot_written", map[string]any{
		"path":               cfg.Output.SnapshotPath,
		"total_articles":     snap.Metadata.TotalArticles,
		"successful_scrapes": snap.Metadata.SuccessfulScrapes,
		"failed_scrapes":     snap.Metadata.FailedScrapes,
		"chilean_articles":   snap.Metadata.ChileanArticles,
	})

	recordHistory(cfg, snap, log)
	publishEvent(ctx, cfg, snap, log)
	return nil
}

// buildAggregators assembles the source list in priority order; earlier
// aggregators win URL collisions during merge, and seeds go last.
func buildAggregators(
	client httpclient.Client,
	cfg config.Config,
	norm *dates.Normalizer,
	newsAPI sources.Aggregator,
	log logger.Logger,
) []sources.Aggregator {
	var aggs []sources.Aggregator

	if strings.TrimSpace(cfg.Listing.URL) != "" {
		aggs = append(aggs, sources.NewListingAggregator(client, cfg.Listing, norm, log))
	}
	for _, sm := range cfg.Sitemaps {
		aggs = append(aggs, sources.NewSitemapAggregator(client, sm, norm, log))
	}
	aggs = append(aggs, newsAPI)
	if len(cfg.Seeds) > 0 {
		aggs = append(aggs, sources.NewSeedAggregator(cfg.Seeds, norm))
	}
	return aggs
}

func relevancePredicate(keywords []string) func(domain.Candidate) bool {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return func(cand domain.Candidate) bool {
		title := strings.ToLower(cand.Title)
		for _, kw := range lowered {
			if strings.Contains(title, kw) {
				return true
			}
		}
		return false
	}
}

// recordHistory appends the run to the local ledger. Ledger trouble never
// fails the run.
func recordHistory(cfg config.Config, snap domain.Snapshot, log logger.Logger) {
	if strings.TrimSpace(cfg.History.LedgerPath) == "" {
		return
	}

	ledger, err := history.Open(cfg.History.LedgerPath)
	if err != nil {
		log.WarnObj("run ledger unavailable", "ledger_error", map[string]any{
			"path":  cfg.History.LedgerPath,
			"error": err.Error(),
		})
		return
	}
	defer ledger.Close()

	entry := history.RunEntry{
		GeneratedAt:       snap.Metadata.GeneratedAt,
		DataSource:        snap.Metadata.DataSource,
		SnapshotPath:      cfg.Output.SnapshotPath,
		TotalArticles:     snap.Metadata.TotalArticles,
		SuccessfulScrapes: snap.Metadata.SuccessfulScrapes,
		FailedScrapes:     snap.Metadata.FailedScrapes,
	}
	if err := ledger.Append(entry); err != nil {
		log.WarnObj("run ledger append failed", "ledger_error", map[string]any{
			"path":  cfg.History.LedgerPath,
			"error": err.Error(),
		})
	}
}

// publishEvent fans the run summary out to the configured publishers.
// Publishing is best effort; failures are logged per publisher.
func publishEvent(ctx context.Context, cfg config.Config, snap domain.Snapshot, log logger.Logger) {
	if strings.TrimSpace(cfg.Publishers.File) == "" {
		return
	}

	registry, err := publishers.LoadRegistry(cfg.Publishers.File)
	if err != nil {
		log.WarnObj("publisher registry unavailable", "publisher_config_error", map[string]any{
			"file":  cfg.Publishers.File,
			"error": err.Error(),
		})
		return
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), registry.Enabled(), log)
	if err != nil {
		log.WarnObj("publisher construction failed", "publisher_build_error", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if len(pubs) == 0 {
		return
	}

	evt := publishers.Event{
		GeneratedAt:       snap.Metadata.GeneratedAt,
		DataSource:        snap.Metadata.DataSource,
		SnapshotPath:      cfg.Output.SnapshotPath,
		TotalArticles:     snap.Metadata.TotalArticles,
		SuccessfulScrapes: snap.Metadata.SuccessfulScrapes,
		FailedScrapes:     snap.Metadata.FailedScrapes,
	}
	errs := publishers.PublishAll(ctx, pubs, evt, log)
	log.InfoObj("run event published", "publish_done", map[string]any{
		"publishers": len(pubs),
		"failures":   len(errs),
	})
}
