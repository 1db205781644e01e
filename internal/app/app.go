// Package app wires configuration into the adapters and the core service.
// Both binaries build their dependencies through New.
package app

import (
	"book-explorer/internal/adapter"
	"book-explorer/internal/config"
	"book-explorer/internal/core"
	"book-explorer/pkg/http_client"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Registry *prometheus.Registry

	Catalog   *adapter.GoogleBooksClient
	Search    *core.SearchOrchestrator
	Favorites *core.FavoritesStore
	Service   *core.Service

	redis *redis.Client
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []adapter.CatalogOption{
		adapter.WithAPIKey(cfg.Catalog.APIKey),
		adapter.WithInitialBackoff(cfg.Catalog.InitialBackoff),
		adapter.WithCacheTTL(cfg.Catalog.CacheTTL),
		adapter.WithMetrics(adapter.NewCatalogMetrics(a.Registry)),
		adapter.WithLogger(logger.With("component", "catalog")),
	}
	if cfg.Catalog.RateLimit > 0 {
		opts = append(opts, adapter.WithRateLimit(cfg.Catalog.RateLimit, cfg.Catalog.RateBurst))
	}
	a.Catalog = adapter.NewGoogleBooksClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.Retry,
		http_client.CreateHTTPClient(cfg.Catalog.Timeout),
		opts...,
	)

	durable, session, err := a.slots(ctx)
	if err != nil {
		return nil, err
	}

	a.Favorites = core.NewFavoritesStore(ctx, durable, logger.With("component", "favorites"))
	a.Search = core.NewSearchOrchestrator(a.Catalog, session, logger.With("component", "search"),
		core.WithDebounce(cfg.Search.Debounce))
	a.Service = core.NewService(a.Catalog, a.Search, a.Favorites)
	return a, nil
}

// slots picks the durable favorites slot and the session-scoped search slot
// for the configured backend.
func (a *App) slots(ctx context.Context) (durable, session core.Slot, err error) {
	st := a.Config.Storage
	switch st.Backend {
	case config.BackendRedis:
		a.redis, err = adapter.NewRedisClient(ctx, adapter.RedisOptions{
			Addr:        st.Redis.Addr,
			Password:    st.Redis.Password,
			DB:          st.Redis.DB,
			DialTimeout: st.Redis.DialTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		sessionID := a.Config.Search.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		a.Log.Info("using redis storage", "addr", st.Redis.Addr, "session", sessionID)
		durable = adapter.NewRedisSlot(a.redis, adapter.FavoritesKey, 0)
		session = adapter.NewRedisSlot(a.redis, adapter.SessionKey(sessionID, adapter.SearchStateKey), a.Config.Search.SessionTTL)
		return durable, session, nil
	case config.BackendFile:
		a.Log.Info("using file storage", "path", st.FavoritesPath)
		return adapter.NewFileSlot(st.FavoritesPath), adapter.NewMemorySlot(), nil
	case config.BackendMemory:
		return adapter.NewMemorySlot(), adapter.NewMemorySlot(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", st.Backend)
	}
}

// Close stops pending searches and releases the redis connection.
func (a *App) Close() error {
	if a.Search != nil {
		a.Search.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
