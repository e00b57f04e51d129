package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/models"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// IsExpired checks if the cache entry has expired
func (ce *CacheEntry) IsExpired() bool {
	return time.Now().After(ce.ExpiresAt)
}

// RecommendationCache is an in-memory TTL cache for computed recommendation
// sets. Matching re-scores every stored deal, so hot user ids would otherwise
// hammer the store.
type RecommendationCache struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	defaultTTL time.Duration
	maxSize    int
}

// NewRecommendationCache creates a cache with the given configuration
func NewRecommendationCache(cacheCfg *config.CacheConfig) *RecommendationCache {
	return &RecommendationCache{
		cache:      make(map[string]*CacheEntry),
		defaultTTL: cacheCfg.DefaultTTL,
		maxSize:    cacheCfg.MaxSize,
	}
}

// Get retrieves a value from cache
func (rc *RecommendationCache) Get(key string) (interface{}, bool) {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()

	entry, exists := rc.cache[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value in cache with the default TTL
func (rc *RecommendationCache) Set(key string, value interface{}) {
	rc.SetWithTTL(key, value, rc.defaultTTL)
}

// SetWithTTL stores a value in cache with a custom TTL
func (rc *RecommendationCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if len(rc.cache) >= rc.maxSize {
		rc.evictOldest()
	}

	rc.cache[key] = &CacheEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// evictOldest removes the entry closest to expiry (simple FIFO eviction)
func (rc *RecommendationCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range rc.cache {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}
	if oldestKey != "" {
		delete(rc.cache, oldestKey)
	}
}

// Delete removes a value from cache
func (rc *RecommendationCache) Delete(key string) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	delete(rc.cache, key)
}

// Clear removes all values from cache
func (rc *RecommendationCache) Clear() {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	rc.cache = make(map[string]*CacheEntry)
}

// Size returns the number of items in cache
func (rc *RecommendationCache) Size() int {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()
	return len(rc.cache)
}

// CleanupExpired removes expired entries and returns how many were dropped
func (rc *RecommendationCache) CleanupExpired() int {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	removed := 0
	for key, entry := range rc.cache {
		if entry.IsExpired() {
			delete(rc.cache, key)
			removed++
		}
	}
	return removed
}

// CachedMatcherService wraps MatcherService with recommendation caching
type CachedMatcherService struct {
	matcher *MatcherService
	cache   *RecommendationCache
}

// NewCachedMatcherService creates a new cached matcher service
func NewCachedMatcherService(matcher *MatcherService, cache *RecommendationCache) *CachedMatcherService {
	return &CachedMatcherService{
		matcher: matcher,
		cache:   cache,
	}
}

// MatchDealsForUser returns the user's matches, serving repeat requests from
// cache. Errors are never cached.
func (cms *CachedMatcherService) MatchDealsForUser(ctx context.Context, userID string) ([]models.MatchResult, error) {
	cacheKey := fmt.Sprintf("recommendations:%s", userID)

	if cached, found := cms.cache.Get(cacheKey); found {
		if matches, ok := cached.([]models.MatchResult); ok {
			logrus.WithFields(logrus.Fields{
				"component": "CachedMatcherService",
				"user_id":   userID,
			}).Debug("Served recommendations from cache")
			return matches, nil
		}
	}

	matches, err := cms.matcher.MatchDealsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cms.cache.Set(cacheKey, matches)
	return matches, nil
}

// InvalidateUser drops the cached recommendations for one user, used after
// a profile update
func (cms *CachedMatcherService) InvalidateUser(userID string) {
	cms.cache.Delete(fmt.Sprintf("recommendations:%s", userID))
}

// InvalidateAll drops every cached recommendation set, used after a
// discovery run lands new deals
func (cms *CachedMatcherService) InvalidateAll() {
	cms.cache.Clear()
}
