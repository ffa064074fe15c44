package history

import (
	"encoding/json"
	"fmt"
	"strings"

	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// RunEntry is the per-run metadata kept in the ledger. Candidates and
// articles themselves are never persisted here; each run's snapshot remains
// the only article store.
type RunEntry struct {
	GeneratedAt       string `json:"generated_at"`
	DataSource        string `json:"data_source"`
	SnapshotPath      string `json:"snapshot_path"`
	TotalArticles     int    `json:"total_articles"`
	SuccessfulScrapes int    `json:"successful_scrapes"`
	FailedScrapes     int    `json:"failed_scrapes"`
}

// Ledger records harvest run metadata in a local bolt database so operators
// can inspect recent runs without trawling logs.
type Ledger struct {
	db *bolt.DB
}

// Open opens (or creates) the ledger database at path.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is empty")
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close releases the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Append records one run. Keys are the run's generated_at timestamp, which is
// RFC3339 and therefore sorts chronologically under bolt's byte ordering.
func (l *Ledger) Append(entry RunEntry) error {
	if strings.TrimSpace(entry.GeneratedAt) == "" {
		return fmt.Errorf("run entry has no generated_at")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode run entry: %w", err)
	}

	err = l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put([]byte(entry.GeneratedAt), payload)
	})
	if err != nil {
		return fmt.Errorf("store run entry: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (l *Ledger) Recent(n int) ([]RunEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	var entries []RunEntry
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < n; k, v = c.Prev() {
			var entry RunEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode run entry %s: %w", k, err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
