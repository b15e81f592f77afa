package feeds

import (
	"context"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/khobor-digest/internal/cache"
	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// DefaultMaxPerFeed caps per-source contributions in bulk mode.
const DefaultMaxPerFeed = 5

// Aggregator walks the configured feed sources in order, filters entries for
// freshness and novelty, and merges the survivors. One pass owns the dedup
// store exclusively: state is loaded before the first source and saved after
// the last one.
type Aggregator struct {
	sources []domain.FeedSource
	fetcher FeedFetcher
	store   cache.Store
	log     logger.Logger

	// MaxPerFeed bounds per-source contributions in FetchAll. Round-robin
	// mode always takes at most one.
	MaxPerFeed int

	now func() time.Time
}

// NewAggregator builds an aggregator over the given sources.
func NewAggregator(sources []domain.FeedSource, fetcher FeedFetcher, store cache.Store, log logger.Logger) *Aggregator {
	if fetcher == nil {
		fetcher = NewFeedFetcher(nil)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Aggregator{
		sources:    sources,
		fetcher:    fetcher,
		store:      store,
		log:        log,
		MaxPerFeed: DefaultMaxPerFeed,
		now:        time.Now,
	}
}

// AggregateRoundRobin returns at most one fresh, unseen article per source,
// merged and sorted newest first. A failing source contributes nothing and
// never aborts the pass. Selected entries are marked seen immediately so a
// source revisited within the same pass cannot re-select them.
func (a *Aggregator) AggregateRoundRobin(ctx context.Context) []domain.Article {
	if len(a.sources) == 0 {
		a.log.ErrorObj("aggregation requested with no feed sources", "aggregate_no_sources", nil)
		return nil
	}

	a.loadStore()

	var winners []domain.Article
	for _, src := range a.sources {
		items, ok := a.fetchSorted(ctx, src)
		if !ok {
			continue
		}

		for _, item := range items {
			article, ok := buildArticle(item, src)
			if !ok {
				continue
			}
			if !isTodayAt(article.Published, a.now()) {
				continue
			}
			fp := cache.Fingerprint(article.Title, article.Link)
			if a.store.IsSeen(fp) {
				continue
			}

			a.markSeen(fp, article)
			winners = append(winners, article)
			a.log.DebugObj("feed contributed article", "aggregate_pick", map[string]any{
				"source": src.Name,
				"title":  article.Title,
			})
			break
		}
	}

	sortByPublishedDesc(winners)
	a.saveStore()

	a.log.InfoObj("round-robin pass complete", "aggregate_done", map[string]any{
		"sources":  len(a.sources),
		"articles": len(winners),
	})
	return winners
}

// FetchAll is the bulk catch-up mode: up to MaxPerFeed unseen entries per
// source with no freshness requirement, globally sorted newest first.
func (a *Aggregator) FetchAll(ctx context.Context) []domain.Article {
	if len(a.sources) == 0 {
		a.log.ErrorObj("aggregation requested with no feed sources", "aggregate_no_sources", nil)
		return nil
	}

	a.loadStore()

	var all []domain.Article
	for _, src := range a.sources {
		items, ok := a.fetchSorted(ctx, src)
		if !ok {
			continue
		}

		taken := 0
		for _, item := range items {
			if taken >= a.MaxPerFeed {
				break
			}
			article, ok := buildArticle(item, src)
			if !ok {
				continue
			}
			fp := cache.Fingerprint(article.Title, article.Link)
			if a.store.IsSeen(fp) {
				continue
			}

			a.markSeen(fp, article)
			all = append(all, article)
			taken++
		}

		a.log.InfoObj("feed fetched", "aggregate_feed_done", map[string]any{
			"source":   src.Name,
			"articles": taken,
		})
	}

	sortByPublishedDesc(all)
	a.saveStore()
	return all
}

// GetLatestNews runs a round-robin pass and bounds the merged result. This
// is the sole aggregation boundary for downstream consumers; it never errors
// and returns nil when nothing new qualifies.
func (a *Aggregator) GetLatestNews(ctx context.Context, maxTotal int) []domain.Article {
	articles := a.AggregateRoundRobin(ctx)
	if maxTotal > 0 && len(articles) > maxTotal {
		articles = articles[:maxTotal]
	}
	return articles
}

// fetchSorted fetches one source and returns its entries sorted by published
// string descending. The string sort is only a pre-filter; the freshness
// classifier remains the source of truth for "today".
func (a *Aggregator) fetchSorted(ctx context.Context, src domain.FeedSource) ([]*gofeed.Item, bool) {
	feed, err := a.fetcher.FetchFeed(ctx, src.URL)
	if err != nil {
		a.log.WarnObj("feed fetch failed, skipping source", "aggregate_feed_error", map[string]any{
			"source": src.Name,
			"url":    src.URL,
			"error":  err.Error(),
		})
		return nil, false
	}
	if len(feed.Items) == 0 {
		a.log.WarnObj("feed has no entries", "aggregate_feed_empty", map[string]any{
			"source": src.Name,
			"url":    src.URL,
		})
		return nil, false
	}

	items := make([]*gofeed.Item, len(feed.Items))
	copy(items, feed.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published > items[j].Published
	})
	return items, true
}

// markSeen records the article in the dedup store.
func (a *Aggregator) markSeen(fp string, article domain.Article) {
	a.store.MarkSeen(fp, cache.Entry{
		Title:       article.Title,
		Link:        article.Link,
		SourceName:  article.Source,
		FetchedAt:   a.now(),
		PublishedAt: article.Published,
	})
}

// loadStore loads persisted dedup state; failures degrade to an empty set.
func (a *Aggregator) loadStore() {
	if err := a.store.Load(); err != nil {
		a.log.WarnObj("dedup cache load failed", "aggregate_cache_load_error", map[string]any{
			"error": err.Error(),
		})
	}
}

// saveStore flushes the accumulated marks once per pass.
func (a *Aggregator) saveStore() {
	if err := a.store.Save(); err != nil {
		a.log.WarnObj("dedup cache save failed", "aggregate_cache_save_error", map[string]any{
			"error": err.Error(),
		})
	}
}

// sortByPublishedDesc orders merged articles by their raw published string,
// newest first for the common ISO and RFC-822 shapes.
func sortByPublishedDesc(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published > articles[j].Published
	})
}
