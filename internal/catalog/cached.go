package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/cache"
	"github.com/filmvault/filmvault/internal/domain"
)

// CachedClient wraps a Client with a read-through cache. Cache
// failures degrade to upstream calls; they are never surfaced.
type CachedClient struct {
	inner  Client
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Client = (*CachedClient)(nil)

// NewCachedClient wraps inner with a cache. A ttl of zero caches
// without expiry.
func NewCachedClient(inner Client, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *CachedClient {
	return &CachedClient{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: logger.With().Str("component", "catalog_cache").Logger(),
	}
}

func (c *CachedClient) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	key := "search:" + input.Query + ":" + input.Year + ":" + input.Type

	if data, err := c.cache.Get(ctx, key); err == nil {
		var result SearchResult
		if err := json.Unmarshal(data, &result); err == nil {
			return &result, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Msg("cache read failed")
	}

	result, err := c.inner.Search(ctx, input)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return result, nil
}

func (c *CachedClient) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	key := "movie:" + id

	if data, err := c.cache.Get(ctx, key); err == nil {
		var movie domain.Movie
		if err := json.Unmarshal(data, &movie); err == nil {
			return &movie, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Msg("cache read failed")
	}

	movie, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(movie); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return movie, nil
}
