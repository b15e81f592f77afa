package feeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

func writeFeedsFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSourcesYAML(t *testing.T) {
	path := writeFeedsFile(t, "feeds.yaml", `
feeds:
  - name: Example
    url: https://example.com/rss
    category: world
  - name: Tech Daily
    url: https://tech.example.com/feed
`)

	sources, err := LoadSources(path, logger.NopLogger{})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "Example", sources[0].Name)
	assert.Equal(t, "world", sources[0].Category)
	assert.Equal(t, "general", sources[1].Category)
}

func TestLoadSourcesJSON(t *testing.T) {
	path := writeFeedsFile(t, "feeds.json", `{"feeds":[{"name":"N","url":"https://n.example.com/rss"}]}`)

	sources, err := LoadSources(path, logger.NopLogger{})
	require.NoError(t, err)
	require.Len(t, sources, 1)
}

func TestLoadSourcesSkipsMissingURL(t *testing.T) {
	path := writeFeedsFile(t, "feeds.yaml", `
feeds:
  - name: Broken
  - name: Fine
    url: https://fine.example.com/rss
`)

	sources, err := LoadSources(path, logger.NopLogger{})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Fine", sources[0].Name)
}

func TestLoadSourcesEmptyListIsError(t *testing.T) {
	path := writeFeedsFile(t, "feeds.yaml", `
feeds:
  - name: NoURL
`)

	_, err := LoadSources(path, logger.NopLogger{})
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestLoadSourcesInvalidYAMLKeepsCause(t *testing.T) {
	path := writeFeedsFile(t, "feeds.yaml", "feeds: [unclosed")

	_, err := LoadSources(path, logger.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode yaml feeds file")
	assert.NotContains(t, err.Error(), "not recognized")
}

func TestLoadSourcesMissingFileIsError(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"), logger.NopLogger{})
	assert.Error(t, err)
}

func TestLoadSourcesExpandsEnv(t *testing.T) {
	t.Setenv("FEEDS_TEST_HOST", "env.example.com")
	path := writeFeedsFile(t, "feeds.yaml", `
feeds:
  - name: FromEnv
    url: https://${FEEDS_TEST_HOST}/rss
`)

	sources, err := LoadSources(path, logger.NopLogger{})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "https://env.example.com/rss", sources[0].URL)
}

func TestLoadSourcesDefaultsNameToURL(t *testing.T) {
	path := writeFeedsFile(t, "feeds.yaml", `
feeds:
  - url: https://anon.example.com/rss
`)

	sources, err := LoadSources(path, logger.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "https://anon.example.com/rss", sources[0].Name)
}
