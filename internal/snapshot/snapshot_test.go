package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
}

func sampleRecords() []domain.ArticleRecord {
	return []domain.ArticleRecord{
		{
			Title:           "Internacional",
			URL:             "https://www.iso.org/news/a.html",
			Date:            "28/07/2025",
			Source:          "ISO",
			ScrapingSuccess: true,
		},
		{
			Title:           "Chilena fallida",
			URL:             "https://www.emol.com/b",
			Date:            "29/07/2025",
			Source:          "Emol",
			ScrapingSuccess: false,
			Error:           "status 404",
		},
		{
			Title:           "Chilena reciente",
			URL:             "https://www.inn.cl/c",
			Date:            "30/07/2025",
			Source:          "INN",
			ScrapingSuccess: true,
		},
	}
}

func TestBuildMetadataCounts(t *testing.T) {
	t.Parallel()

	snap := Build(sampleRecords(), Options{
		DataSource:     "Harvester",
		SearchTerms:    []string{"ISO 9001"},
		ChileanDomains: []string{"emol.com", "inn.cl"},
		Clock:          fixedClock,
	})

	md := snap.Metadata
	if md.GeneratedAt != "2025-08-15T12:00:00Z" {
		t.Fatalf("unexpected generated_at: %q", md.GeneratedAt)
	}
	if md.DataSource != "Harvester" {
		t.Fatalf("unexpected data_source: %q", md.DataSource)
	}
	if md.TotalArticles != 3 || md.SuccessfulScrapes != 2 || md.FailedScrapes != 1 {
		t.Fatalf("unexpected scrape counts: %+v", md)
	}
	if md.ChileanArticles != 2 || md.InternationalArticles != 1 {
		t.Fatalf("unexpected origin counts: %+v", md)
	}
	if len(snap.Articles) != 3 {
		t.Fatalf("articles not carried: %d", len(snap.Articles))
	}
}

func TestBuildFallbackMarker(t *testing.T) {
	t.Parallel()

	snap := Build(nil, Options{
		DataSource:   "Harvester",
		FallbackData: true,
		Clock:        fixedClock,
	})
	if snap.Metadata.DataSource != "Harvester"+FallbackMarker {
		t.Fatalf("fallback marker missing: %q", snap.Metadata.DataSource)
	}

	live := Build(nil, Options{DataSource: "Harvester", Clock: fixedClock})
	if live.Metadata.DataSource != "Harvester" {
		t.Fatalf("marker must only appear on fallback runs: %q", live.Metadata.DataSource)
	}
}

func TestBuildSortRegionalFirst(t *testing.T) {
	t.Parallel()

	snap := Build(sampleRecords(), Options{
		ChileanDomains:    []string{"emol.com", "inn.cl"},
		SortRegionalFirst: true,
		Clock:             fixedClock,
	})

	wantOrder := []string{
		"https://www.inn.cl/c",            // chilean, 30/07
		"https://www.emol.com/b",          // chilean, 29/07
		"https://www.iso.org/news/a.html", // international
	}
	for i, want := range wantOrder {
		if snap.Articles[i].URL != want {
			t.Fatalf("position %d: got %q, want %q", i, snap.Articles[i].URL, want)
		}
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	Build(records, Options{
		ChileanDomains:    []string{"emol.com", "inn.cl"},
		SortRegionalFirst: true,
		Clock:             fixedClock,
	})

	if records[0].URL != "https://www.iso.org/news/a.html" {
		t.Fatalf("input slice reordered: %+v", records[0])
	}
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "iso_news.json")
	snap := Build(sampleRecords(), Options{DataSource: "Harvester", Clock: fixedClock})

	if err := Write(path, snap); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	var loaded domain.Snapshot
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if loaded.Metadata.TotalArticles != 3 || len(loaded.Articles) != 3 {
		t.Fatalf("round trip lost data: %+v", loaded.Metadata)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestWriteReplacesPrevious(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "iso_news.json")

	first := Build(sampleRecords(), Options{DataSource: "first", Clock: fixedClock})
	if err := Write(path, first); err != nil {
		t.Fatalf("first write: %v", err)
	}

	second := Build(nil, Options{DataSource: "second", Clock: fixedClock})
	if err := Write(path, second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var loaded domain.Snapshot
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.Metadata.DataSource != "second" || loaded.Metadata.TotalArticles != 0 {
		t.Fatalf("previous snapshot not replaced: %+v", loaded.Metadata)
	}
}

func TestWriteEmptyPath(t *testing.T) {
	t.Parallel()

	if err := Write("", domain.Snapshot{}); err == nil {
		t.Fatalf("empty path must error")
	}
}
