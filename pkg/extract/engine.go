package extract

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/fetch"
)

const (
	// DefaultMaxLength bounds extracted text when callers pass no limit.
	DefaultMaxLength = 15000

	// TruncationMarker is appended whenever extracted text is clipped.
	TruncationMarker = "...[truncated]"

	// minContentLength is the acceptance floor for a strategy result.
	minContentLength = 100

	// minBlockLength filters out small blocks in the largest-block scan.
	minBlockLength = 200

	// minTextRatio is the visible-text to markup ratio a candidate must beat.
	minTextRatio = 0.3
)

// unwantedTags are removed outright before any strategy runs.
var unwantedTags = []string{
	"script", "style", "noscript", "iframe", "embed", "object",
	"nav", "header", "footer", "aside",
}

// unwantedClassKeywords flag chrome and boilerplate containers by class name.
// Matching is case-insensitive substring.
var unwantedClassKeywords = []string{
	"ad", "advertisement", "ads", "sidebar", "menu", "navigation",
	"footer", "header", "social", "share", "comments", "popup",
}

// contentSelectors are probed in order by the common-selector strategy.
var contentSelectors = []string{
	"article", "main", `[role="main"]`, ".content", ".post-content",
	".entry-content", ".article-content", ".story-body", ".post-body",
}

// strategy produces candidate text from a stripped document, or "" when it
// finds nothing. Strategies are pure over the document and share one
// acceptance threshold applied by the engine.
type strategy func(doc *goquery.Document) string

// Engine isolates the main content of an HTML page.
type Engine struct {
	fetcher    *fetch.Fetcher
	log        logger.Logger
	strategies []strategy
}

// NewEngine builds an extraction engine. The fetcher is only needed for
// ExtractFromURL; pass nil when extracting from raw HTML exclusively.
func NewEngine(fetcher *fetch.Fetcher, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{
		fetcher: fetcher,
		log:     log,
		strategies: []strategy{
			byCommonSelectors,
			byLargestTextBlock,
			byArticleTag,
			byTextRatio,
		},
	}
}

// Extract isolates the main content of the given HTML and returns it cleaned
// and length-bounded. The second return value is false when the page yields
// no content at all; an unparseable document is treated the same way, never
// surfaced as an error.
func (e *Engine) Extract(htmlBody []byte, maxLength int) (string, bool) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		e.log.DebugObj("html parse failed", "extract_parse_error", map[string]any{
			"error": err.Error(),
		})
		return "", false
	}

	stripNoise(doc)

	var raw string
	for _, strat := range e.strategies {
		if text := strat(doc); len(strings.TrimSpace(text)) > minContentLength {
			raw = text
			break
		}
	}
	if raw == "" {
		// Every strategy came up short; fall back to the whole page.
		raw = doc.Text()
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", false
	}

	if len(cleaned) > maxLength {
		cleaned = clipRunes(cleaned, maxLength) + TruncationMarker
	}
	return cleaned, true
}

// clipRunes clips s to at most max bytes without splitting a multi-byte
// rune: the cut backs up to the nearest rune boundary. Much of the text
// flowing through here is Bengali, where a byte-index slice would emit
// invalid UTF-8.
func clipRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ExtractFromURL fetches the URL and extracts its main content. This is the
// single entry point for callers that need analyzable article body text.
// Non-HTML responses are returned as clipped raw text; any fetch or parse
// failure yields ("", false) after a log line.
func (e *Engine) ExtractFromURL(ctx context.Context, url string, maxLength int) (string, bool) {
	if e.fetcher == nil {
		e.log.WarnObj("extraction requested without a fetcher", "extract_no_fetcher", map[string]any{
			"url": url,
		})
		return "", false
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.log.WarnObj("article fetch failed", "extract_fetch_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return "", false
	}

	if !page.IsHTML() {
		e.log.WarnObj("non-html content type", "extract_content_type", map[string]any{
			"url":          url,
			"content_type": page.ContentType,
		})
		text := strings.TrimSpace(string(page.Body))
		if text == "" {
			return "", false
		}
		if len(text) > maxLength {
			text = clipRunes(text, maxLength)
		}
		return text, true
	}

	content, ok := e.Extract(page.Body, maxLength)
	if !ok {
		e.log.WarnObj("no content extracted from page", "extract_empty", map[string]any{
			"url": url,
		})
		return "", false
	}

	e.log.InfoObj("article content extracted", "extract_done", map[string]any{
		"url":   url,
		"chars": len(content),
	})
	return content, true
}

// stripNoise removes elements that never contain article content: script and
// layout tags, HTML comments, and containers whose class matches a known
// ad/nav/social keyword.
func stripNoise(doc *goquery.Document) {
	doc.Find(strings.Join(unwantedTags, ", ")).Remove()

	for _, node := range doc.Nodes {
		removeComments(node)
	}

	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		class = strings.ToLower(class)
		for _, kw := range unwantedClassKeywords {
			if strings.Contains(class, kw) {
				sel.Remove()
				return
			}
		}
	})
}

// removeComments strips comment nodes from the subtree rooted at n.
func removeComments(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			n.RemoveChild(child)
		} else {
			removeComments(child)
		}
		child = next
	}
}

// byCommonSelectors probes semantic content containers in a fixed order and
// returns the first match's text.
func byCommonSelectors(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel.Text()
		}
	}
	return ""
}

// byLargestTextBlock returns the single largest substantial text block.
func byLargestTextBlock(doc *goquery.Document) string {
	var best string
	doc.Find("p, div, section").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > minBlockLength && len(text) > len(best) {
			best = text
		}
	})
	return best
}

// byArticleTag returns the text of the first article element, if any.
func byArticleTag(doc *goquery.Document) string {
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel.Text()
	}
	return ""
}

// byTextRatio picks the block with the highest visible-text to serialized-
// markup ratio. A node dominated by text rather than markup is more likely
// real content than chrome.
func byTextRatio(doc *goquery.Document) string {
	var (
		best      string
		bestRatio float64
	)

	doc.Find("div, section, p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) <= minContentLength {
			return
		}
		markup, err := goquery.OuterHtml(sel)
		if err != nil || len(markup) == 0 {
			return
		}
		if ratio := float64(len(text)) / float64(len(markup)); ratio > bestRatio {
			bestRatio = ratio
			best = text
		}
	})

	if bestRatio > minTextRatio {
		return best
	}
	return ""
}
