package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfigFile(t, "feeds.yaml", `
feeds:
  - name: ignored-here
    url: https://example.com/rss
discovery:
  hackernews:
    enabled: true
    keywords: [rust, zig]
    story_limit: 50
  sitemaps:
    - name: Example News
      url: https://example.com/news-sitemap.xml
      category: world
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.HackerNews)
	assert.True(t, cfg.HackerNews.Enabled)
	assert.Equal(t, []string{"rust", "zig"}, cfg.HackerNews.Keywords)
	assert.Equal(t, 50, cfg.HackerNews.StoryLimit)
	require.Len(t, cfg.Sitemaps, 1)
	assert.Equal(t, "Example News", cfg.Sitemaps[0].Name)
}

func TestLoadConfigWithoutDiscoverySection(t *testing.T) {
	path := writeConfigFile(t, "feeds.yaml", `
feeds:
  - url: https://example.com/rss
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.HackerNews)
	assert.Empty(t, cfg.Sitemaps)
	assert.Empty(t, BuildSources(cfg, nil, logger.NopLogger{}))
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("DISCOVERY_TEST_HOST", "env.example.com")
	path := writeConfigFile(t, "feeds.yaml", `
discovery:
  sitemaps:
    - url: https://${DISCOVERY_TEST_HOST}/sitemap.xml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sitemaps, 1)
	assert.Equal(t, "https://env.example.com/sitemap.xml", cfg.Sitemaps[0].URL)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("  ")
	assert.Error(t, err)
}

func TestBuildSources(t *testing.T) {
	cfg := Config{
		HackerNews: &HackerNewsConfig{Enabled: true},
		Sitemaps: []SitemapConfig{
			{Name: "Good", URL: "https://example.com/sitemap.xml"},
			{Name: "NoURL"},
		},
	}

	sources := BuildSources(cfg, nil, logger.NopLogger{})
	require.Len(t, sources, 2)
	assert.Equal(t, "hackernews", sources[0].ID())
	assert.Equal(t, "Good", sources[1].ID())
}

func TestBuildSourcesDisabledHackerNews(t *testing.T) {
	cfg := Config{HackerNews: &HackerNewsConfig{Enabled: false}}
	assert.Empty(t, BuildSources(cfg, nil, logger.NopLogger{}))
}
