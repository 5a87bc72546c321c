// Package config loads bookvec settings from defaults, an optional YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/bookvec/ai"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/ingestion"
	"github.com/poiesic/bookvec/sources"
	"github.com/poiesic/bookvec/sources/googlebooks"
	"github.com/poiesic/bookvec/sources/nyt"
	"github.com/poiesic/bookvec/sources/openlibrary"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BOOKVEC"

// Supported store backends.
const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

// Config is the complete runtime configuration.
type Config struct {
	Facets    []core.Facet    `mapstructure:"facets"`
	BatchSize int             `mapstructure:"batch_size"`
	PoolSize  int             `mapstructure:"pool_size"`
	Store     StoreConfig     `mapstructure:"store"`
	Index     IndexConfig     `mapstructure:"index"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Sources   SourcesConfig   `mapstructure:"sources"`
}

// StoreConfig selects and locates the vector store.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"` // Directory for badger, file for sqlite
}

// IndexConfig describes the index points are written into.
type IndexConfig struct {
	Name      string `mapstructure:"name"`
	Dimension int    `mapstructure:"dimension"`
	Metric    string `mapstructure:"metric"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Host      string `mapstructure:"host"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	Normalize bool   `mapstructure:"normalize"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	GoogleBooks SourceConfig `mapstructure:"googlebooks"`
	OpenLibrary SourceConfig `mapstructure:"openlibrary"`
	NYT         SourceConfig `mapstructure:"nyt"`
}

// SourceConfig configures one source client.
type SourceConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	PageSize          int           `mapstructure:"page_size"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
	List              string        `mapstructure:"list"` // Bestseller list name, nyt only
}

// Client converts the settings into a sources.Config.
func (c SourceConfig) Client() sources.Config {
	return sources.Config{
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		PageSize:          c.PageSize,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           c.Timeout,
	}
}

func setDefaults(v *viper.Viper) {
	facets := make([]map[string]string, 0, 3)
	for _, f := range core.DefaultFacets() {
		facets = append(facets, map[string]string{"type": f.Type, "value": f.Value})
	}
	v.SetDefault("facets", facets)
	v.SetDefault("batch_size", ingestion.DefaultBatchSize)
	v.SetDefault("pool_size", 3)

	v.SetDefault("store.backend", StoreBadger)
	v.SetDefault("store.path", "")

	v.SetDefault("index.name", "books")
	v.SetDefault("index.dimension", 768)
	v.SetDefault("index.metric", core.MetricCosine)

	defaults := ai.DefaultConfig()
	v.SetDefault("embedding.provider", defaults.Provider)
	v.SetDefault("embedding.host", defaults.EmbeddingHost)
	v.SetDefault("embedding.model", defaults.EmbeddingModel)
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.normalize", false)

	setSourceDefaults(v, googlebooks.Name, googlebooks.DefaultBaseURL, googlebooks.DefaultPageSize, 1)
	setSourceDefaults(v, openlibrary.Name, openlibrary.DefaultBaseURL, openlibrary.DefaultPageSize, 1)
	// The Books API allows five requests per minute
	setSourceDefaults(v, nyt.Name, nyt.DefaultBaseURL, 0, 5.0/60)
	v.SetDefault("sources.nyt.list", nyt.DefaultList)
}

func setSourceDefaults(v *viper.Viper, name, baseURL string, pageSize int, rps float64) {
	prefix := "sources." + name + "."
	v.SetDefault(prefix+"enabled", true)
	v.SetDefault(prefix+"base_url", baseURL)
	v.SetDefault(prefix+"api_key", "")
	v.SetDefault(prefix+"page_size", pageSize)
	v.SetDefault(prefix+"requests_per_second", rps)
	v.SetDefault(prefix+"timeout", sources.DefaultTimeout)
	v.SetDefault(prefix+"list", "")
}

// Load reads configuration. An empty path looks for bookvec.yaml in the
// working directory and tolerates its absence; an explicit path must exist.
// Environment variables named BOOKVEC_<KEY> (dots become underscores)
// override file values. GOOGLE_BOOKS_API_KEY and NYT_API_KEY are also read.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("sources.googlebooks.api_key", "BOOKVEC_SOURCES_GOOGLEBOOKS_API_KEY", "GOOGLE_BOOKS_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("sources.nyt.api_key", "BOOKVEC_SOURCES_NYT_API_KEY", "NYT_API_KEY"); err != nil {
		return nil, err
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("bookvec")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// StorePath returns the configured store path, or the backend's default.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == StoreSQLite {
		return "./bookvec.db"
	}
	return "./bookvec-data"
}

// IndexSpec returns the index described by the configuration.
func (c *Config) IndexSpec() *core.IndexSpec {
	return &core.IndexSpec{
		Name:      c.Index.Name,
		Dimension: c.Index.Dimension,
		Metric:    c.Index.Metric,
	}
}

// AIConfig returns the embedding configuration in the form ai providers take.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.Embedding.Provider),
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIKey(c.Embedding.APIKey),
		ai.WithNormalize(c.Embedding.Normalize),
	)
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if len(c.Facets) == 0 {
		return errors.New("config: at least one facet is required")
	}
	for _, f := range c.Facets {
		if err := core.ValidateFacet(f); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.BatchSize < 1 {
		return errors.New("config: batch_size must be at least 1")
	}
	switch c.Store.Backend {
	case StoreBadger, StoreSQLite:
	default:
		return fmt.Errorf("config: store.backend must be %s or %s, got %q", StoreBadger, StoreSQLite, c.Store.Backend)
	}
	if err := core.ValidateIndexSpec(c.IndexSpec()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.AIConfig().Validate(); err != nil {
		return err
	}
	if !c.Sources.GoogleBooks.Enabled && !c.Sources.OpenLibrary.Enabled && !c.Sources.NYT.Enabled {
		return errors.New("config: at least one source must be enabled")
	}
	if c.Sources.NYT.Enabled && c.Sources.NYT.APIKey == "" {
		return errors.New("config: sources.nyt.api_key is required when the nyt source is enabled")
	}
	return nil
}
