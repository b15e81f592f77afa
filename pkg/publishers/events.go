package publishers

import (
	"context"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/cache"
	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// Event is one aggregated article handed to delivery sinks.
type Event struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary,omitempty"`
	Content   string    `json:"content,omitempty"`
	Published string    `json:"published,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewEvent wraps an article for delivery. The event id reuses the article's
// dedup fingerprint so consumers can correlate deliveries across sinks.
func NewEvent(article domain.Article, fetchedAt time.Time) Event {
	return Event{
		ID:        cache.Fingerprint(article.Title, article.Link),
		Source:    article.Source,
		Category:  article.Category,
		Title:     article.Title,
		Link:      article.Link,
		Summary:   article.Summary,
		Content:   article.Content,
		Published: article.Published,
		FetchedAt: fetchedAt,
	}
}

// Publisher delivers digest events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging contract for publishers.
type Logger = logger.Logger

// ensureLogger guards against nil loggers in builders.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
