package extract

import (
	"strings"
	"testing"
)

func TestExtractSelectorChainOrder(t *testing.T) {
	t.Parallel()

	// Both .article-content and article are present; the chain must pick the
	// earlier selector even though article appears first in the document.
	html := `<html><body>
		<article>Generic article wrapper text</article>
		<div class="article-content">Preferred container text</div>
	</body></html>`

	fields := New(Options{}).Extract([]byte(html), "https://example.cl/nota")
	if fields.Content != "Preferred container text" {
		t.Fatalf("unexpected content: %q", fields.Content)
	}
}

func TestExtractPrefersEarlierSelector(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div class="content">Winner text here</div>
		<div class="article-content">Loser text</div>
	</body></html>`

	fields := New(Options{}).Extract([]byte(html), "")
	if fields.Content != "Winner text here" {
		t.Fatalf("expected .content to win, got %q", fields.Content)
	}
}

func TestExtractSkipsEmptyMatches(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div class="content"><script>var x = 1;</script></div>
		<article>Real body text</article>
	</body></html>`

	fields := New(Options{}).Extract([]byte(html), "")
	if fields.Content != "Real body text" {
		t.Fatalf("expected fallthrough past empty match, got %q", fields.Content)
	}
}

func TestExtractWholePageFallback(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<p>Loose paragraph one.</p>
		<script>console.log("never visible")</script>
		<p>Loose paragraph two.</p>
	</body></html>`

	fields := New(Options{}).Extract([]byte(html), "")
	if fields.Content != "Loose paragraph one. Loose paragraph two." {
		t.Fatalf("unexpected whole-page text: %q", fields.Content)
	}
	if strings.Contains(fields.Content, "console.log") {
		t.Fatalf("script text leaked into content: %q", fields.Content)
	}
}

func TestExtractNoVisibleText(t *testing.T) {
	t.Parallel()

	html := `<html><body><script>only scripts</script></body></html>`

	fields := New(Options{}).Extract([]byte(html), "")
	if fields.Content != "" {
		t.Fatalf("expected empty content, got %q", fields.Content)
	}
}

func TestExtractTitlePriority(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta property="og:title" content="OG wins">
		<title>Document title</title>
	</head><body><h1>Heading title</h1></body></html>`

	fields := New(Options{}).Extract([]byte(html), "")
	if fields.Title != "OG wins" {
		t.Fatalf("expected og:title to win, got %q", fields.Title)
	}

	noOG := `<html><head><title>Document title</title></head>
		<body><h1>Heading title</h1></body></html>`
	fields = New(Options{}).Extract([]byte(noOG), "")
	if fields.Title != "Heading title" {
		t.Fatalf("expected h1 over <title>, got %q", fields.Title)
	}
}

func TestExtractImagePriority(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta property="og:image" content="/img/og.jpg">
		<meta name="twitter:image" content="/img/tw.jpg">
	</head><body>
		<div class="content">Text <img src="/img/inline.jpg"></div>
	</body></html>`

	fields := New(Options{}).Extract([]byte(html), "https://example.cl/nota")
	if fields.ImageURL != "https://example.cl/img/og.jpg" {
		t.Fatalf("expected resolved og:image, got %q", fields.ImageURL)
	}

	inlineOnly := `<html><body>
		<div class="content">Text <img src="/img/inline.jpg"></div>
	</body></html>`
	fields = New(Options{}).Extract([]byte(inlineOnly), "https://example.cl/nota")
	if fields.ImageURL != "https://example.cl/img/inline.jpg" {
		t.Fatalf("expected inline img fallback, got %q", fields.ImageURL)
	}
}

func TestExtractContentCap(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("palabra ", 50) // well over the 100-char cap below
	html := `<html><body><div class="content">` + body + `</div></body></html>`

	fields := New(Options{MaxContentChars: 100}).Extract([]byte(html), "")
	if got := len([]rune(fields.Content)); got != 100 {
		t.Fatalf("expected content capped at 100 chars, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	short := "breve"
	if got := Summarize(short); got != short {
		t.Fatalf("short content must pass through, got %q", got)
	}

	long := strings.Repeat("á", SummaryLimit+50)
	got := Summarize(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long summary missing ellipsis: %q", got[len(got)-10:])
	}
	if n := len([]rune(got)); n != SummaryLimit+3 {
		t.Fatalf("summary length = %d runes, want %d", n, SummaryLimit+3)
	}

	exact := strings.Repeat("x", SummaryLimit)
	if got := Summarize(exact); got != exact {
		t.Fatalf("exact-limit content must pass through unmodified")
	}
}

func TestTruncateChars(t *testing.T) {
	t.Parallel()

	s := "ñandú corre rápido"
	if got := TruncateChars(s, 5); got != "ñandú" {
		t.Fatalf("TruncateChars split multibyte text: %q", got)
	}
	if got := TruncateChars(s, 100); got != s {
		t.Fatalf("short input must pass through, got %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw, base, want string
	}{
		{"https://other.cl/x", "https://example.cl", "https://other.cl/x"},
		{"/noticias/iso", "https://example.cl", "https://example.cl/noticias/iso"},
		{"nota.html", "https://example.cl/seccion/", "https://example.cl/seccion/nota.html"},
		{"", "https://example.cl", ""},
	}
	for _, tc := range cases {
		if got := ResolveURL(tc.raw, tc.base); got != tc.want {
			t.Fatalf("ResolveURL(%q, %q) = %q, want %q", tc.raw, tc.base, got, tc.want)
		}
	}
}
