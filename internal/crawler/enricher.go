package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/extract"
)

const maxArticleWorkers = 10

// Enricher fills Article.Content by fetching each article page and running
// the content extraction engine over it.
type Enricher struct {
	engine *extract.Engine
	log    logger.Logger

	// RequestDelay spaces page fetches across all workers. Zero disables
	// rate limiting.
	RequestDelay time.Duration

	// MaxContentLength bounds extracted body text per article.
	MaxContentLength int
}

// NewEnricher creates an Enricher around the given extraction engine.
func NewEnricher(engine *extract.Engine, log logger.Logger) *Enricher {
	if engine == nil {
		engine = extract.NewEngine(nil, log)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{
		engine:           engine,
		log:              log,
		MaxContentLength: extract.DefaultMaxLength,
	}
}

// Enrich extracts body text for the given articles with a bounded worker
// pool. Articles whose pages cannot be fetched or yield no content are
// returned unchanged, so partial results survive failures and cancellation.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	if len(articles) == 0 {
		return out
	}

	workerCount := min(len(articles), maxArticleWorkers)

	var limiter <-chan time.Time
	if e.RequestDelay > 0 {
		ticker := time.NewTicker(e.RequestDelay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go e.worker(ctx, limiter, jobCh, out, &wg, workerID)
	}

	for idx := range articles {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out
}

// worker extracts content for queued articles, respecting the rate limiter.
func (e *Enricher) worker(
	ctx context.Context,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		art := out[idx]
		content, ok := e.engine.ExtractFromURL(ctx, art.Link, e.MaxContentLength)
		if !ok {
			e.log.WarnObj("article body extraction failed", "enrich_error", map[string]any{
				"worker_id": workerID,
				"source":    art.Source,
				"url":       art.Link,
			})
			continue
		}

		art.Content = content
		out[idx] = art

		e.log.DebugObj("article body extracted", "enrich_done", map[string]any{
			"worker_id": workerID,
			"source":    art.Source,
			"url":       art.Link,
			"chars":     len(content),
		})
	}
}
