package billing

import (
	"context"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CensusCache caches census results per (tier, parent, month) key with a
// short TTL. Caching sits outside the correctness-critical path: the
// generation run always counts fresh, only display reads go through here.
type CensusCache interface {
	Get(ctx context.Context, key string) (directory.CensusResult, bool, error)
	Set(ctx context.Context, key string, result directory.CensusResult, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// CensusService exposes census lookups for the read path, optionally
// backed by a cache.
type CensusService struct {
	census   *billing.CensusCounter
	cache    CensusCache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewCensusService creates a CensusService. A nil cache disables caching.
func NewCensusService(census *billing.CensusCounter, cache CensusCache, cacheTTL time.Duration, log *zap.Logger) *CensusService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &CensusService{census: census, cache: cache, cacheTTL: cacheTTL, log: log}
}

// CacheKey builds the cache key for a census lookup
func CacheKey(tier billing.Tier, parentID uuid.UUID, month billing.BillingMonth) string {
	return "census:" + tier.String() + ":" + parentID.String() + ":" + month.String()
}

// Count returns the census for (tier, parent, month), consulting the cache
// first. Cache failures fall through to a fresh count.
func (s *CensusService) Count(ctx context.Context, tier billing.Tier, parentID uuid.UUID, month billing.BillingMonth) (directory.CensusResult, error) {
	key := CacheKey(tier, parentID, month)

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn("Census cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	result, err := s.census.Count(ctx, tier, parentID, month)
	if err != nil {
		return directory.CensusResult{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.log.Warn("Census cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return result, nil
}

// InvalidateParent drops the cached census for a parent and month after an
// account create/delete event touches that parent's subtree.
func (s *CensusService) InvalidateParent(ctx context.Context, tier billing.Tier, parentID uuid.UUID, month billing.BillingMonth) {
	if s.cache == nil {
		return
	}
	key := CacheKey(tier, parentID, month)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("Census cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
