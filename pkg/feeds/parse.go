package feeds

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/pkg/fetch"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

const (
	// feedFetchTimeout bounds one feed endpoint fetch.
	feedFetchTimeout = 15 * time.Second

	// maxSummaryLength caps an article summary before the ellipsis.
	maxSummaryLength = 300
)

// FeedFetcher resolves a feed URL into a parsed feed.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, url string) (*gofeed.Feed, error)
}

// httpFeedFetcher fetches feed XML over HTTP and parses it with gofeed.
type httpFeedFetcher struct {
	client httpclient.Client
	parser *gofeed.Parser
}

// NewFeedFetcher builds the default HTTP-backed FeedFetcher.
func NewFeedFetcher(client httpclient.Client) FeedFetcher {
	if client == nil {
		client = httpclient.NewRestyClient(feedFetchTimeout)
	}
	return &httpFeedFetcher{
		client: client,
		parser: gofeed.NewParser(),
	}
}

// FetchFeed retrieves and parses the feed at url.
func (f *httpFeedFetcher) FetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	resp, err := f.client.Get(ctx, url, fetch.BrowserHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}

	feed, err := f.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// responseSnippet returns a truncated snippet of the response body for logging.
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

// htmlTag matches markup left inside feed titles and summaries.
var htmlTag = regexp.MustCompile(`<[^>]+>`)

// cleanFeedText strips markup and collapses whitespace in a feed field.
func cleanFeedText(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// truncateSummary clips s at the last word boundary before the limit and
// appends an ellipsis. The initial cut backs up to a rune boundary so
// summaries in non-ASCII scripts never end in a torn character.
func truncateSummary(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	clipped := s[:cut]
	if idx := strings.LastIndex(clipped, " "); idx > 0 {
		clipped = clipped[:idx]
	}
	return clipped + "..."
}

// buildArticle converts a feed item into a domain.Article. Entries without
// both a title and a link are rejected.
func buildArticle(item *gofeed.Item, src domain.FeedSource) (domain.Article, bool) {
	title := cleanFeedText(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}
	summary = truncateSummary(cleanFeedText(summary), maxSummaryLength)

	published := strings.TrimSpace(item.Published)
	if published == "" {
		published = strings.TrimSpace(item.Updated)
	}

	return domain.Article{
		Title:     title,
		Link:      link,
		Summary:   summary,
		Source:    src.Name,
		Category:  src.Category,
		Published: published,
	}, true
}
