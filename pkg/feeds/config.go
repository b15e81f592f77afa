package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// ErrNoSources means the registry resolved to zero usable feed sources.
// This is the one configuration problem that must surface loudly; everything
// else inside a pass degrades to a log line.
var ErrNoSources = errors.New("no feed sources configured")

// registryFile represents the structure of the feeds configuration file.
type registryFile struct {
	Feeds []domain.FeedSource `json:"feeds" yaml:"feeds"`
}

// LoadSources loads the ordered feed source list from a YAML/JSON file.
// Entries without a URL are skipped with a warning; an empty result is an
// error. Environment references in the file are expanded before decoding.
func LoadSources(path string, log logger.Logger) ([]domain.FeedSource, error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("feeds file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	reg, err := parseRegistry(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	sources := make([]domain.FeedSource, 0, len(reg.Feeds))
	for i, src := range reg.Feeds {
		src = sanitizeSource(src)
		if src.URL == "" {
			log.WarnObj("feed source missing url, skipping", "feeds_config_skip", map[string]any{
				"index": i,
				"name":  src.Name,
			})
			continue
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return sources, nil
}

// parseRegistry attempts to decode the feeds file content.
func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		err := d.fn(data, &reg)
		if err == nil {
			return reg, nil
		}
		if ext == d.ext {
			// The extension names the format; keep the decoder's cause.
			return registryFile{}, fmt.Errorf("decode %s feeds file: %w", d.name, err)
		}
	}

	return registryFile{}, errors.New("feeds file format not recognized (expected YAML or JSON)")
}

// yamlUnmarshal adapts yaml.Unmarshal to the decoder signature.
func yamlUnmarshal(data []byte, out any) error {
	return yaml.Unmarshal(data, out)
}

// sanitizeSource trims the source fields and defaults the category.
func sanitizeSource(src domain.FeedSource) domain.FeedSource {
	src.Name = strings.TrimSpace(src.Name)
	src.URL = strings.TrimSpace(src.URL)
	src.Category = strings.TrimSpace(src.Category)
	if src.Name == "" {
		src.Name = src.URL
	}
	if src.Category == "" {
		src.Category = "general"
	}
	return src
}
