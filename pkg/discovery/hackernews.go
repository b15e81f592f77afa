package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

const (
	hackerNewsSourceID  = "hackernews"
	defaultHNBaseURL    = "https://hacker-news.firebaseio.com/v0"
	defaultHNStoryLimit = 200
	hnRequestTimeout    = 10 * time.Second
)

// defaultHNKeywords select AI-adjacent stories when the config names none.
var defaultHNKeywords = []string{
	"AI", "artificial intelligence", "machine learning", "deep learning",
	"neural network", "GPT", "LLM", "large language model",
	"transformer", "robotics", "computer vision", "NLP",
}

// hnStory is the item payload of the Hacker News API.
type hnStory struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	Time  int64  `json:"time"`
	Score int    `json:"score"`
}

// HackerNewsSource discovers same-day stories matching a keyword list.
type HackerNewsSource struct {
	client     httpclient.Client
	log        logger.Logger
	baseURL    string
	keywords   []string
	storyLimit int
	now        func() time.Time
}

// NewHackerNewsSource builds the Hacker News discovery source.
func NewHackerNewsSource(client httpclient.Client, log logger.Logger, cfg HackerNewsConfig) *HackerNewsSource {
	if client == nil {
		client = httpclient.NewRestyClient(hnRequestTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = defaultHNKeywords
	}
	limit := cfg.StoryLimit
	if limit <= 0 {
		limit = defaultHNStoryLimit
	}

	return &HackerNewsSource{
		client:     client,
		log:        log,
		baseURL:    defaultHNBaseURL,
		keywords:   keywords,
		storyLimit: limit,
		now:        time.Now,
	}
}

func (s *HackerNewsSource) ID() string { return hackerNewsSourceID }

// Discover walks the newest stories and returns today's keyword matches in
// API order, newest first. Individual story failures are skipped.
func (s *HackerNewsSource) Discover(ctx context.Context) ([]domain.Article, error) {
	raw, err := fetchBody(ctx, s.client, s.baseURL+"/newstories.json")
	if err != nil {
		return nil, fmt.Errorf("fetch new stories: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode story ids: %w", err)
	}
	if len(ids) > s.storyLimit {
		ids = ids[:s.storyLimit]
	}

	var articles []domain.Article
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		story, err := s.fetchStory(ctx, id)
		if err != nil {
			s.log.DebugObj("story fetch failed", "discovery_hn_story_error", map[string]any{
				"story_id": id,
				"error":    err.Error(),
			})
			continue
		}
		if story == nil || story.Type != "story" {
			continue
		}
		if !s.isToday(story.Time) {
			continue
		}
		if !s.matchesKeywords(story.Title) && !s.matchesKeywords(story.Text) {
			continue
		}

		title := strings.TrimSpace(story.Title)
		link := strings.TrimSpace(story.URL)
		if title == "" || link == "" {
			continue
		}

		articles = append(articles, domain.Article{
			Title:     title,
			Link:      link,
			Source:    hackerNewsSourceID,
			Category:  "tech",
			Published: time.Unix(story.Time, 0).Format(time.RFC3339),
		})
	}

	s.log.InfoObj("hacker news discovery complete", "discovery_hn_done", map[string]any{
		"checked": len(ids),
		"matched": len(articles),
	})
	return articles, nil
}

// fetchStory retrieves one story item; a "null" payload yields nil.
func (s *HackerNewsSource) fetchStory(ctx context.Context, id int) (*hnStory, error) {
	raw, err := fetchBody(ctx, s.client, fmt.Sprintf("%s/item/%d.json", s.baseURL, id))
	if err != nil {
		return nil, err
	}

	var story *hnStory
	if err := json.Unmarshal(raw, &story); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	return story, nil
}

// isToday checks the story timestamp against the local calendar day.
func (s *HackerNewsSource) isToday(unix int64) bool {
	story := time.Unix(unix, 0)
	now := s.now()
	sy, sm, sd := story.Date()
	ny, nm, nd := now.Date()
	return sy == ny && sm == nm && sd == nd
}

// matchesKeywords reports whether text mentions any configured keyword.
func (s *HackerNewsSource) matchesKeywords(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range s.keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
