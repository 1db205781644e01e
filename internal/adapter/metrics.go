package adapter

import (
	"errors"
	"time"

	"book-explorer/internal/core/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CatalogMetrics counts what the catalog client does. A nil *CatalogMetrics
// records nothing, so the client works without a registry.
type CatalogMetrics struct {
	requests     *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	retries      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	f := promauto.With(reg)
	return &CatalogMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookexplorer",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog calls that reached the network, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookexplorer",
			Subsystem: "catalog",
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups, by cache and result.",
		}, []string{"cache", "result"}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookexplorer",
			Subsystem: "catalog",
			Name:      "retries_total",
			Help:      "Catalog attempts made after the first one.",
		}, []string{"operation"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookexplorer",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Wall time of catalog calls including retries and backoff.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
}

func (m *CatalogMetrics) observeCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *CatalogMetrics) observeRetry(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

func (m *CatalogMetrics) observeRequest(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcomeLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, model.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, model.ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}
