package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	SPARQL    SPARQLConfig    `yaml:"sparql"`
	Cache     CacheConfig     `yaml:"cache"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Datasets  DatasetsConfig  `yaml:"datasets"`
	Wikipedia WikipediaConfig `yaml:"wikipedia"`
	Map       MapConfig       `yaml:"map"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address" env:"WIKISCOPE_ADDR"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level" env:"WIKISCOPE_LOG_LEVEL"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path" env:"WIKISCOPE_DB_PATH"`
	// FetchLogRetention bounds the refresh audit log; older rows are
	// pruned at startup maintenance.
	FetchLogRetention Duration `yaml:"fetch_log_retention"`
}

// SPARQLConfig holds settings for the Wikidata SPARQL endpoint.
type SPARQLConfig struct {
	Endpoint string `yaml:"endpoint" env:"WIKISCOPE_SPARQL_ENDPOINT"`
	// ProxyPrefix, when set, routes queries through a CORS-style proxy:
	// <prefix><url-encoded endpoint>?query=...&format=json
	ProxyPrefix string   `yaml:"proxy_prefix" env:"WIKISCOPE_PROXY_PREFIX"`
	Timeout     Duration `yaml:"timeout"`
	MaxRetries  int      `yaml:"max_retries"`
	BaseDelay   Duration `yaml:"base_delay"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	TTL Duration `yaml:"ttl" env:"WIKISCOPE_CACHE_TTL"`
}

// RefreshConfig holds background refresh settings.
type RefreshConfig struct {
	Interval Duration `yaml:"interval"`
	OnStart  bool     `yaml:"on_start"`
}

// DatasetsConfig holds settings for the dataset queries.
type DatasetsConfig struct {
	Limit    int    `yaml:"limit"`
	Language string `yaml:"language"`
}

// WikipediaConfig holds Wikipedia API settings.
type WikipediaConfig struct {
	Language string `yaml:"language"`
}

// MapConfig holds map view settings.
type MapConfig struct {
	ClusterResolution int `yaml:"cluster_resolution"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1846",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:              "./data/wikiscope.db",
			FetchLogRetention: Duration(30 * Day),
		},
		SPARQL: SPARQLConfig{
			Endpoint:    "https://query.wikidata.org/sparql",
			ProxyPrefix: "",
			Timeout:     0, // 0 leaves the HTTP client without a timeout
			MaxRetries:  3,
			BaseDelay:   Duration(1 * time.Second),
		},
		Cache: CacheConfig{
			TTL: Duration(60 * time.Minute),
		},
		Refresh: RefreshConfig{
			Interval: Duration(60 * time.Minute),
			OnStart:  true,
		},
		Datasets: DatasetsConfig{
			Limit:    500,
			Language: "en",
		},
		Wikipedia: WikipediaConfig{
			Language: "en",
		},
		Map: MapConfig{
			ClusterResolution: 3,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
// Environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SPARQL.Endpoint == "" {
		return fmt.Errorf("sparql.endpoint must not be empty")
	}
	if c.SPARQL.MaxRetries < 0 {
		return fmt.Errorf("sparql.max_retries must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.DB.FetchLogRetention < 0 {
		return fmt.Errorf("db.fetch_log_retention must not be negative")
	}
	if c.Datasets.Limit <= 0 {
		return fmt.Errorf("datasets.limit must be positive")
	}
	if !isValidLanguage(c.Datasets.Language) {
		return fmt.Errorf("invalid datasets.language %q: must be a lowercase code like 'en'", c.Datasets.Language)
	}
	if !isValidLanguage(c.Wikipedia.Language) {
		return fmt.Errorf("invalid wikipedia.language %q: must be a lowercase code like 'en'", c.Wikipedia.Language)
	}
	if c.Map.ClusterResolution < 0 || c.Map.ClusterResolution > 15 {
		return fmt.Errorf("map.cluster_resolution must be between 0 and 15")
	}
	return nil
}

func isValidLanguage(s string) bool {
	matched, _ := regexp.MatchString(`^[a-z]{2,3}$`, s)
	return matched
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Wikiscope Configuration
# ----------------------
# Durations accept: ns, us, ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for fields whose values are not self-explanatory.
	reRes := regexp.MustCompile(`(?m)^(\s+)cluster_resolution:`)
	data = reRes.ReplaceAll(data, []byte("${1}# H3 resolution (0 coarsest, 15 finest)\n${1}cluster_resolution:"))

	reTimeout := regexp.MustCompile(`(?m)^(\s+)timeout:`)
	data = reTimeout.ReplaceAll(data, []byte("${1}# 0s disables the HTTP client timeout\n${1}timeout:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
