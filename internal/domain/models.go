package domain

import "time"

// Domain contains core models shared across the harvest pipeline.

// Candidate is a minimal article stub produced by a source aggregator before
// content enrichment. URL is the sole identity key used for deduplication.
type Candidate struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Date   string `json:"date"`
	Source string `json:"source"`
}

// ArticleRecord is a fully enriched article entry as persisted in a snapshot.
// The candidate fields (title, url, date, source) are carried over unchanged
// from the candidate that won deduplication.
type ArticleRecord struct {
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Date            string    `json:"date"`
	Source          string    `json:"source"`
	Summary         string    `json:"summary"`
	FullContent     string    `json:"full_content"`
	ContentLength   int       `json:"content_length"`
	ImageURL        string    `json:"image_url,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
	ScrapingSuccess bool      `json:"scraping_success"`
	Error           string    `json:"error,omitempty"`
}

// Metadata describes a single harvest run.
type Metadata struct {
	GeneratedAt           string   `json:"generated_at"`
	DataSource            string   `json:"data_source"`
	TotalArticles         int      `json:"total_articles"`
	SuccessfulScrapes     int      `json:"successful_scrapes"`
	FailedScrapes         int      `json:"failed_scrapes"`
	ChileanArticles       int      `json:"chilean_articles"`
	InternationalArticles int      `json:"international_articles"`
	SearchTerms           []string `json:"search_terms,omitempty"`
}

// Snapshot is the canonical persisted document for one harvest run.
type Snapshot struct {
	Metadata Metadata        `json:"metadata"`
	Articles []ArticleRecord `json:"articles"`
}
