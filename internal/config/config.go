package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is shared by the server and the CLI. Every key can be overridden
// with BOOKEXPLORER_<SECTION>_<KEY>, e.g. BOOKEXPLORER_SERVER_PORT.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Search  SearchConfig  `mapstructure:"search"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Retry          int           `mapstructure:"retry"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	// RateLimit is requests per second; 0 disables client-side throttling.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	// SessionID scopes the search snapshot in redis. Empty means a fresh id per process.
	SessionID  string        `mapstructure:"session_id"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type StorageConfig struct {
	Backend       string      `mapstructure:"backend"`
	FavoritesPath string      `mapstructure:"favorites_path"`
	Redis         RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("catalog.base_url", "https://www.googleapis.com/books/v1/volumes")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.retry", 1)
	v.SetDefault("catalog.initial_backoff", 2*time.Second)
	v.SetDefault("catalog.cache_ttl", 5*time.Minute)
	v.SetDefault("catalog.rate_limit", 0.0)
	v.SetDefault("catalog.rate_burst", 1)

	v.SetDefault("search.debounce", 500*time.Millisecond)
	v.SetDefault("search.session_id", "")
	v.SetDefault("search.session_ttl", 24*time.Hour)

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.favorites_path", "./data/favorites.json")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.dial_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads defaults, then the YAML file, then the environment. With an
// empty path an optional ./bookexplorer.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOOKEXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the key name the browser build used
	if err := v.BindEnv("catalog.api_key", "BOOKEXPLORER_CATALOG_API_KEY", "GOOGLE_BOOKS_API_KEY"); err != nil {
		return nil, fmt.Errorf("config: bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("bookexplorer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog base_url is required")
	}
	if c.Catalog.Retry < 0 {
		return fmt.Errorf("catalog retry must be >= 0, got %d", c.Catalog.Retry)
	}
	if c.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("catalog cache_ttl must be positive, got %s", c.Catalog.CacheTTL)
	}
	if c.Catalog.RateLimit < 0 {
		return fmt.Errorf("catalog rate_limit must be >= 0, got %g", c.Catalog.RateLimit)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search debounce must be >= 0, got %s", c.Search.Debounce)
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.FavoritesPath == "" {
			return errors.New("storage favorites_path is required for the file backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage redis addr is required for the redis backend")
		}
		if c.Search.SessionTTL <= 0 {
			return fmt.Errorf("search session_ttl must be positive for the redis backend, got %s", c.Search.SessionTTL)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
