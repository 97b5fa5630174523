package ogimet

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/observability"
)

// Source is anything that can produce a bulletin for a window.
type Source interface {
	FetchBulletin(ctx context.Context, w domain.Window) (domain.Bulletin, error)
}

// CachedSource wraps a Source with an in-memory cache keyed by window.
// Entries expire after ttl so stations that report late into an open
// window are picked up on a later fetch.
type CachedSource struct {
	inner   Source
	cache   *expirable.LRU[string, domain.Bulletin]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a bulletin source holding
// at most maxEntries bulletins, each for at most ttl.
func NewCachedSource(inner Source, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   expirable.NewLRU[string, domain.Bulletin](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchBulletin(ctx context.Context, w domain.Window) (domain.Bulletin, error) {
	key := w.String()
	if b, ok := c.cache.Get(key); ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return b, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	b, err := c.inner.FetchBulletin(ctx, w)
	if err != nil {
		return b, err
	}
	// A window the server has not filled yet is fetched again.
	if b.Text != "" {
		c.cache.Add(key, b)
	}
	return b, nil
}
