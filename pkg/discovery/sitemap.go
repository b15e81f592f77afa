package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

const sitemapRequestTimeout = 15 * time.Second

type newsSitemap struct {
	URLs []newsSitemapURL `xml:"url"`
}

type newsSitemapURL struct {
	Loc  string            `xml:"loc"`
	News newsSitemapDetail `xml:"news"`
}

type newsSitemapDetail struct {
	PublicationDate string `xml:"publication_date"`
	Title           string `xml:"title"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

// SitemapSource discovers articles from a Google News sitemap, following
// nested sitemap indexes when the endpoint is an index file.
type SitemapSource struct {
	client   httpclient.Client
	log      logger.Logger
	name     string
	url      string
	category string
}

// NewSitemapSource builds a discovery source for one sitemap endpoint.
func NewSitemapSource(client httpclient.Client, log logger.Logger, cfg SitemapConfig) *SitemapSource {
	if client == nil {
		client = httpclient.NewRestyClient(sitemapRequestTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = cfg.URL
	}
	category := strings.TrimSpace(cfg.Category)
	if category == "" {
		category = "general"
	}

	return &SitemapSource{
		client:   client,
		log:      log,
		name:     name,
		url:      strings.TrimSpace(cfg.URL),
		category: category,
	}
}

func (s *SitemapSource) ID() string { return s.name }

// Discover resolves the sitemap into candidate articles. Entries without a
// title and location are dropped; the publication date keeps its raw form
// for the freshness classifier.
func (s *SitemapSource) Discover(ctx context.Context) ([]domain.Article, error) {
	urls, err := s.resolve(ctx, s.url, nil)
	if err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, len(urls))
	for _, entry := range urls {
		title := strings.TrimSpace(entry.News.Title)
		loc := strings.TrimSpace(entry.Loc)
		if title == "" || loc == "" {
			continue
		}
		articles = append(articles, domain.Article{
			Title:     title,
			Link:      loc,
			Source:    s.name,
			Category:  s.category,
			Published: strings.TrimSpace(entry.News.PublicationDate),
		})
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("%s sitemap returned no usable records", s.name)
	}
	return articles, nil
}

// resolve fetches a sitemap URL, recursing through index files. The visited
// set guards against index cycles.
func (s *SitemapSource) resolve(ctx context.Context, url string, visited map[string]struct{}) ([]newsSitemapURL, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[url]; seen {
		return nil, nil
	}
	visited[url] = struct{}{}

	raw, err := fetchBody(ctx, s.client, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s sitemap: %w", s.name, err)
	}

	var sitemap newsSitemap
	if err := xml.Unmarshal(raw, &sitemap); err != nil {
		return nil, fmt.Errorf("decode %s sitemap: %w", s.name, err)
	}
	if len(sitemap.URLs) > 0 {
		return sitemap.URLs, nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("decode %s sitemap index: %w", s.name, err)
	}

	var all []newsSitemapURL
	for _, entry := range index.Sitemaps {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		nested, err := s.resolve(ctx, loc, visited)
		if err != nil {
			return nil, err
		}
		all = append(all, nested...)
	}
	return all, nil
}
