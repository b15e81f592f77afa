package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

// Source discovers candidate articles outside the RSS pipeline. Discovered
// articles feed the same freshness/dedup filters and the extraction engine
// as feed entries do.
type Source interface {
	ID() string
	Discover(ctx context.Context) ([]domain.Article, error)
}

// Config declares the optional discovery sources of a deployment.
type Config struct {
	HackerNews *HackerNewsConfig `json:"hackernews" yaml:"hackernews"`
	Sitemaps   []SitemapConfig   `json:"sitemaps" yaml:"sitemaps"`
}

// HackerNewsConfig tunes the Hacker News discovery source.
type HackerNewsConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Keywords   []string `json:"keywords" yaml:"keywords"`
	StoryLimit int      `json:"story_limit" yaml:"story_limit"`
}

// SitemapConfig declares one Google News sitemap endpoint.
type SitemapConfig struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
}

// configWrapper reads the discovery section of the shared config file.
type configWrapper struct {
	Discovery Config `json:"discovery" yaml:"discovery"`
}

// LoadConfig reads the discovery section from a YAML/JSON file. A file
// without a discovery section yields a zero Config, which builds no sources.
func LoadConfig(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, errors.New("discovery config path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open discovery config: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read discovery config: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	ext := strings.ToLower(filepath.Ext(path))
	var wrapper configWrapper
	switch ext {
	case ".json":
		err = json.Unmarshal(expanded, &wrapper)
	default:
		err = yaml.Unmarshal(expanded, &wrapper)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode discovery config: %w", err)
	}

	return wrapper.Discovery, nil
}

// BuildSources materializes the configured discovery sources.
func BuildSources(cfg Config, client httpclient.Client, log logger.Logger) []Source {
	if log == nil {
		log = logger.NopLogger{}
	}

	var sources []Source
	if cfg.HackerNews != nil && cfg.HackerNews.Enabled {
		sources = append(sources, NewHackerNewsSource(client, log, *cfg.HackerNews))
	}
	for _, sm := range cfg.Sitemaps {
		if strings.TrimSpace(sm.URL) == "" {
			log.WarnObj("sitemap source missing url, skipping", "discovery_config_skip", map[string]any{
				"name": sm.Name,
			})
			continue
		}
		sources = append(sources, NewSitemapSource(client, log, sm))
	}
	return sources
}

// fetchBody retrieves a discovery endpoint and requires a 200 response.
func fetchBody(ctx context.Context, client httpclient.Client, url string) ([]byte, error) {
	resp, err := client.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", url, resp.StatusCode(), bodySnippet(body))
	}
	return body, nil
}

// bodySnippet returns a truncated snippet of a response body for error text.
func bodySnippet(body []byte) string {
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
