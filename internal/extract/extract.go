package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// SummaryLimit is the maximum summary length in characters before the
	// ellipsis marker is appended.
	SummaryLimit = 200

	// DefaultMaxContentChars caps extracted body text.
	DefaultMaxContentChars = 10000

	ellipsis = "..."
)

// Fields holds the normalized values extracted from one article page.
type Fields struct {
	Title    string
	Content  string
	ImageURL string
}

// defaultContentSelectors mirror the markup patterns seen across Chilean news
// and institutional sites, most specific first.
var defaultContentSelectors = []string{
	".content",
	".article-content",
	".entry-content",
	".post-content",
	".main-content",
	"article",
	".article-body",
	".story-body",
	".text-content",
}

var defaultTitleSelectors = []string{
	"h1",
	".title",
	".headline",
	".entry-title",
	".article-title",
	".post-title",
}

// Extractor pulls normalized fields out of raw article HTML using ordered
// fallback selector chains. Real-world pages vary widely in markup; a single
// fixed selector would silently produce empty content on many sources, so the
// chain is tried in order and the first non-empty match wins.
type Extractor struct {
	contentSelectors []string
	titleSelectors   []string
	maxContentChars  int
}

// Options override the built-in selector chains and limits. Zero values keep
// the defaults.
type Options struct {
	ContentSelectors []string
	TitleSelectors   []string
	MaxContentChars  int
}

// New builds an Extractor with the given options.
func New(opts Options) *Extractor {
	e := &Extractor{
		contentSelectors: defaultContentSelectors,
		titleSelectors:   defaultTitleSelectors,
		maxContentChars:  DefaultMaxContentChars,
	}
	if len(opts.ContentSelectors) > 0 {
		e.contentSelectors = opts.ContentSelectors
	}
	if len(opts.TitleSelectors) > 0 {
		e.titleSelectors = opts.TitleSelectors
	}
	if opts.MaxContentChars > 0 {
		e.maxContentChars = opts.MaxContentChars
	}
	return e
}

// Extract pulls title, content and image URL from the page. Malformed markup
// never fails the call: the selector chain degrades to whole-page text, and a
// page with no visible text simply yields empty content.
func (e *Extractor) Extract(body []byte, pageURL string) Fields {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Fields{}
	}

	content, container := e.extractContent(doc)

	return Fields{
		Title:    e.extractTitle(doc),
		Content:  TruncateChars(content, e.maxContentChars),
		ImageURL: extractImage(doc, container, pageURL),
	}
}

// extractContent walks the selector chain and returns the first non-empty
// text plus its container node, falling back to the whole page.
func (e *Extractor) extractContent(doc *goquery.Document) (string, *goquery.Selection) {
	for _, sel := range e.contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := visibleText(node); text != "" {
			return text, node
		}
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", nil
	}
	return visibleText(body), nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	if og := metaContent(doc, `meta[property="og:title"]`); og != "" {
		return og
	}
	for _, sel := range e.titleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractImage resolves the representative image by strict priority:
// Open-Graph tag, Twitter card, first <img> inside the content container.
func extractImage(doc *goquery.Document, container *goquery.Selection, pageURL string) string {
	candidates := []string{
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
		metaContent(doc, `meta[property="twitter:image"]`),
	}
	for _, c := range candidates {
		if c != "" {
			return ResolveURL(c, pageURL)
		}
	}

	if container != nil {
		if src, ok := container.Find("img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
			return ResolveURL(strings.TrimSpace(src), pageURL)
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, sel string) string {
	if node := doc.Find(sel).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// visibleText returns the node's text with script/style content stripped and
// whitespace collapsed to single spaces.
func visibleText(node *goquery.Selection) string {
	cloned := node.Clone()
	cloned.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(cloned.Text()), " ")
}

// Summarize derives the bounded summary: content verbatim when short enough,
// otherwise the first SummaryLimit characters plus an ellipsis marker. This is
// a pure function of content length, not a semantic summarizer.
func Summarize(content string) string {
	runes := []rune(content)
	if len(runes) <= SummaryLimit {
		return content
	}
	return string(runes[:SummaryLimit]) + ellipsis
}

// TruncateChars cuts s to at most n characters (runes, so multibyte Spanish
// text is never split mid-character).
func TruncateChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ResolveURL resolves a possibly relative URL against a base URL.
func ResolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
