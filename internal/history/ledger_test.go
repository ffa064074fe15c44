package history

import (
	"path/filepath"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := Open(filepath.Join(t.TempDir(), "harvester.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestLedgerAppendAndRecent(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)

	runs := []RunEntry{
		{GeneratedAt: "2025-08-13T10:00:00Z", DataSource: "h", TotalArticles: 5, SuccessfulScrapes: 4, FailedScrapes: 1},
		{GeneratedAt: "2025-08-14T10:00:00Z", DataSource: "h", TotalArticles: 7, SuccessfulScrapes: 7},
		{GeneratedAt: "2025-08-15T10:00:00Z", DataSource: "h", TotalArticles: 6, SuccessfulScrapes: 5, FailedScrapes: 1},
	}
	for _, run := range runs {
		if err := ledger.Append(run); err != nil {
			t.Fatalf("append %s: %v", run.GeneratedAt, err)
		}
	}

	recent, err := ledger.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].GeneratedAt != "2025-08-15T10:00:00Z" || recent[1].GeneratedAt != "2025-08-14T10:00:00Z" {
		t.Fatalf("entries not newest-first: %+v", recent)
	}
	if recent[0].TotalArticles != 6 {
		t.Fatalf("entry payload lost: %+v", recent[0])
	}
}

func TestLedgerRecentMoreThanStored(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	if err := ledger.Append(RunEntry{GeneratedAt: "2025-08-15T10:00:00Z"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	recent, err := ledger.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(recent))
	}
}

func TestLedgerAppendRequiresTimestamp(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	if err := ledger.Append(RunEntry{DataSource: "h"}); err == nil {
		t.Fatalf("expected error for entry without generated_at")
	}
}

func TestLedgerOpenEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLedgerReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "harvester.db")

	ledger, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := ledger.Append(RunEntry{GeneratedAt: "2025-08-15T10:00:00Z", TotalArticles: 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ledger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(1)
	if err != nil {
		t.Fatalf("recent after reopen: %v", err)
	}
	if len(recent) != 1 || recent[0].TotalArticles != 3 {
		t.Fatalf("entries lost across reopen: %+v", recent)
	}
}
