package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for one digest pass. Values come from an
// optional config file overlaid by KHOBOR_-prefixed environment variables.
type Config struct {
	FeedsFile      string        `mapstructure:"feeds_file"`
	PublishersFile string        `mapstructure:"publishers_file"`
	CachePath      string        `mapstructure:"cache_path"`
	CacheBackend   string        `mapstructure:"cache_backend"`
	RetentionDays  int           `mapstructure:"retention_days"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	MaxPerFeed     int           `mapstructure:"max_per_feed"`
	MaxTotal       int           `mapstructure:"max_total"`
	RoundRobin     bool          `mapstructure:"round_robin"`
	EnrichContent  bool          `mapstructure:"enrich_content"`
	InsecureFeeds  bool          `mapstructure:"insecure_feeds"`
	Debug          bool          `mapstructure:"debug"`
}

// Cache backends.
const (
	CacheBackendFile = "file"
	CacheBackendBolt = "bolt"
)

// Retention returns the configured eviction window.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Load reads settings from the given file (optional) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("feeds_file", "feeds.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("cache_path", "seen_articles.json")
	v.SetDefault("cache_backend", CacheBackendFile)
	v.SetDefault("retention_days", 7)
	v.SetDefault("fetch_timeout", 20*time.Second)
	v.SetDefault("max_per_feed", 5)
	v.SetDefault("max_total", 10)
	v.SetDefault("round_robin", true)
	v.SetDefault("enrich_content", false)
	v.SetDefault("insecure_feeds", false)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("KHOBOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	switch cfg.CacheBackend {
	case CacheBackendFile, CacheBackendBolt:
	default:
		return Config{}, fmt.Errorf("cache backend %q not supported", cfg.CacheBackend)
	}

	return cfg, nil
}
