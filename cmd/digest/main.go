package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Adda-Baaj/khobor-digest/internal/cache"
	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/crawler"
	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/discovery"
	"github.com/Adda-Baaj/khobor-digest/pkg/extract"
	"github.com/Adda-Baaj/khobor-digest/pkg/feeds"
	"github.com/Adda-Baaj/khobor-digest/pkg/fetch"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-digest/pkg/publishers"
)

func main() {
	configPath := flag.String("config", "", "optional settings file (YAML)")
	flag.Parse()

	// Missing .env is fine; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, log); err != nil {
		log.ErrorObj("digest pass failed", "main_error", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

// run executes one aggregation pass end to end.
func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	sources, err := feeds.LoadSources(cfg.FeedsFile, log)
	if err != nil {
		return fmt.Errorf("load feed sources: %w", err)
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open dedup cache: %w", err)
	}
	defer store.Close()

	var clientOpts []httpclient.Option
	if cfg.InsecureFeeds {
		clientOpts = append(clientOpts, httpclient.WithInsecureTLS())
	}
	client := httpclient.NewRestyClient(cfg.FetchTimeout, clientOpts...)

	agg := feeds.NewAggregator(sources, feeds.NewFeedFetcher(client), store, log)
	agg.MaxPerFeed = cfg.MaxPerFeed

	var articles []domain.Article
	if cfg.RoundRobin {
		articles = agg.GetLatestNews(ctx, cfg.MaxTotal)
	} else {
		articles = agg.FetchAll(ctx)
		if cfg.MaxTotal > 0 && len(articles) > cfg.MaxTotal {
			articles = articles[:cfg.MaxTotal]
		}
	}

	articles = append(articles, discoverExtras(ctx, cfg, client, store, log)...)

	if cfg.EnrichContent && len(articles) > 0 {
		engine := extract.NewEngine(fetch.New(client, log), log)
		articles = crawler.NewEnricher(engine, log).Enrich(ctx, articles)
	}

	if err := deliver(ctx, cfg, articles, log); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, article := range articles {
		if err := enc.Encode(article); err != nil {
			return fmt.Errorf("encode article: %w", err)
		}
	}
	return nil
}

// discoverExtras runs the optional non-feed discovery sources declared in
// the feeds file, holding them to the same freshness and dedup filters and
// the same one-per-source fairness as feed entries.
func discoverExtras(ctx context.Context, cfg config.Config, client httpclient.Client, store cache.Store, log logger.Logger) []domain.Article {
	dcfg, err := discovery.LoadConfig(cfg.FeedsFile)
	if err != nil {
		log.WarnObj("discovery config unreadable, skipping", "main_discovery_config_error", map[string]any{
			"error": err.Error(),
		})
		return nil
	}

	sources := discovery.BuildSources(dcfg, client, log)
	if len(sources) == 0 {
		return nil
	}

	var picked []domain.Article
	for _, src := range sources {
		articles, err := src.Discover(ctx)
		if err != nil {
			log.WarnObj("discovery source failed, skipping", "main_discovery_error", map[string]any{
				"source": src.ID(),
				"error":  err.Error(),
			})
			continue
		}

		for _, article := range articles {
			if !feeds.IsToday(article.Published) {
				continue
			}
			fp := cache.Fingerprint(article.Title, article.Link)
			if store.IsSeen(fp) {
				continue
			}
			store.MarkSeen(fp, cache.Entry{
				Title:       article.Title,
				Link:        article.Link,
				SourceName:  article.Source,
				FetchedAt:   time.Now(),
				PublishedAt: article.Published,
			})
			picked = append(picked, article)
			break
		}
	}

	if len(picked) > 0 {
		if err := store.Save(); err != nil {
			log.WarnObj("dedup cache save failed", "main_cache_save_error", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return picked
}

// openStore builds the configured dedup cache backend.
func openStore(cfg config.Config, log logger.Logger) (cache.Store, error) {
	if cfg.CacheBackend == config.CacheBackendBolt {
		return cache.NewBoltStore(cfg.CachePath, cfg.Retention(), log)
	}
	return cache.NewFileStore(cfg.CachePath, cfg.Retention(), log), nil
}

// deliver publishes the pass results to configured sinks, if any.
func deliver(ctx context.Context, cfg config.Config, articles []domain.Article, log logger.Logger) error {
	if cfg.PublishersFile == "" || len(articles) == 0 {
		return nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return fmt.Errorf("load publishers: %w", err)
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return fmt.Errorf("build publishers: %w", err)
	}

	now := time.Now()
	for _, article := range articles {
		publishers.PublishAll(ctx, pubs, publishers.NewEvent(article, now), log)
	}
	return nil
}
