package cache

import (
	"fmt"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CensusCacheFactory creates census caches based on configuration
type CensusCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CensusCacheFactoryOption is a functional option for configuring the factory
type CensusCacheFactoryOption func(*CensusCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CensusCacheFactoryOption {
	return func(f *CensusCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) CensusCacheFactoryOption {
	return func(f *CensusCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCensusCacheFactory creates a new factory
func NewCensusCacheFactory(cfg config.RedisConfig, opts ...CensusCacheFactoryOption) *CensusCacheFactory {
	f := &CensusCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed census cache
func (f *CensusCacheFactory) CreateRedisCache() (appbilling.CensusCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisCensusCache(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis census cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory census cache
// In-memory caches do not share state across process instances, so
// counts may briefly diverge between nodes in distributed deployments
func (f *CensusCacheFactory) CreateInMemoryCache() appbilling.CensusCache {
	return NewInMemoryCensusCache()
}

// CreateCache creates a census cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory when allowed. Census
// caching is display-only, so a stale or empty cache never affects
// generated amounts.
func (f *CensusCacheFactory) CreateCache() (appbilling.CensusCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis census cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for census cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory census cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
