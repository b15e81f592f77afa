package domain

// Domain contains core models shared across the ingestion pipeline.

// FeedSource is one configured feed endpoint. Identity is the URL.
type FeedSource struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
}

// Article is a feed entry that passed freshness and dedup filtering.
// Title and Link are always non-empty. Published keeps the feed's
// original, unnormalized date string.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Category  string `json:"category"`
	Published string `json:"published"`
	Content   string `json:"content,omitempty"`
}
