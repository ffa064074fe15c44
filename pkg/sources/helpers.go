package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/isowatch-cl/iso-news-harvester/pkg/httpclient"
)

// fetchPage retrieves one URL and returns its body, treating any non-2xx
// status as an error with a truncated body snippet for diagnostics.
func fetchPage(ctx context.Context, client httpclient.Client, pageURL, sourceID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, pageURL, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", sourceID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", sourceID, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}

// responseSnippet returns a truncated snippet of the response body for error
// messages and logs.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// containsAnyFold reports whether text contains at least one of the terms,
// case-insensitively. Empty terms are ignored.
func containsAnyFold(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// matchesDomain reports whether rawURL's host belongs to one of the domains
// (exact host or subdomain).
func matchesDomain(rawURL string, domains []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Host)
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
