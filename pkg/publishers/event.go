package publishers

import "context"

// Event describes one completed harvest run as delivered to downstream sinks.
// The snapshot itself stays on disk; consumers pull it from SnapshotPath.
type Event struct {
	GeneratedAt       string `json:"generated_at"`
	DataSource        string `json:"data_source"`
	SnapshotPath      string `json:"snapshot_path"`
	TotalArticles     int    `json:"total_articles"`
	SuccessfulScrapes int    `json:"successful_scrapes"`
	FailedScrapes     int    `json:"failed_scrapes"`
}

// Publisher delivers run events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the minimal logging surface publishers need. The harvester's
// structured logger satisfies it.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
