// Package cache backs the shortcode render cache with go-repository-cache.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
)

// ErrBackendRequired is returned when no cache service is supplied.
var ErrBackendRequired = errors.New("render cache: cache service is required")

// Service stores rendered markup in a repocache.CacheService. Entries expire
// after the service TTL.
type Service struct {
	backend repocache.CacheService
}

var _ interfaces.CacheProvider = (*Service)(nil)

// New wraps an existing cache service, usually the one shared with the
// repositories.
func New(backend repocache.CacheService) (*Service, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &Service{backend: backend}, nil
}

// NewWithTTL builds a dedicated cache service. Early refresh is disabled:
// render closures capture request state and must not run in the background.
func NewWithTTL(ttl time.Duration) (*Service, error) {
	cfg := repocache.DefaultConfig()
	if ttl > 0 {
		cfg.TTL = ttl
	}
	cfg.EarlyRefresh = nil
	cfg.MissingRecordStorage = false
	backend, err := repocache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}
	return New(backend)
}

func (s *Service) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (string, error)) (string, error) {
	return repocache.GetOrFetch(ctx, s.backend, key, repocache.FetchFn[string](fetch))
}

func (s *Service) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) error {
	return s.backend.DeleteByPrefix(ctx, prefix)
}
