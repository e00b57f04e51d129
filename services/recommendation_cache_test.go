package services

import (
	"context"
	"testing"
	"time"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/models"
)

func newTestCache(maxSize int) *RecommendationCache {
	return NewRecommendationCache(&config.CacheConfig{
		DefaultTTL: 5 * time.Minute,
		MaxSize:    maxSize,
	})
}

func TestCacheSetAndGet(t *testing.T) {
	cache := newTestCache(10)

	cache.Set("key", []string{"value"})
	got, found := cache.Get("key")
	if !found {
		t.Fatal("expected cache hit")
	}
	if values, ok := got.([]string); !ok || len(values) != 1 || values[0] != "value" {
		t.Errorf("unexpected cached value: %v", got)
	}
}

func TestCacheExpiredEntryIsMiss(t *testing.T) {
	cache := newTestCache(10)

	cache.SetWithTTL("key", "value", -time.Second)
	if _, found := cache.Get("key"); found {
		t.Error("expired entry must not be served")
	}
}

func TestCacheCleanupExpired(t *testing.T) {
	cache := newTestCache(10)

	cache.SetWithTTL("stale", "value", -time.Second)
	cache.Set("fresh", "value")

	removed := cache.CleanupExpired()
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if cache.Size() != 1 {
		t.Errorf("size = %d, want 1", cache.Size())
	}
}

func TestCacheEvictsAtMaxSize(t *testing.T) {
	cache := newTestCache(2)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	if cache.Size() > 2 {
		t.Errorf("size = %d, want at most 2", cache.Size())
	}
}

func TestCachedMatcherServesFromCacheAndInvalidates(t *testing.T) {
	profileStore := NewInMemoryProfileStore()
	offerStore := NewInMemoryOfferStore()
	matcher := NewMatcherService(profileStore, offerStore, config.DefaultMatcherWeights())
	cached := NewCachedMatcherService(matcher, newTestCache(10))

	ctx := context.Background()
	profile := models.UserProfile{UserID: "user-1", PreferredProviders: []string{"AWS"}}
	if err := profileStore.Put(ctx, profile); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := offerStore.Put(ctx, models.Deal{OfferID: "offer-1", Provider: models.ProviderAWS, CertificationName: "AWS Certification"}); err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	first, err := cached.MatchDealsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 match, got %d", len(first))
	}

	// A new deal lands, but the cached set is served until invalidation
	if err := offerStore.Put(ctx, models.Deal{OfferID: "offer-2", Provider: models.ProviderAWS, CertificationName: "AWS Certification"}); err != nil {
		t.Fatalf("seed second deal: %v", err)
	}

	second, err := cached.MatchDealsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(second) != 1 {
		t.Errorf("expected cached result with 1 match, got %d", len(second))
	}

	cached.InvalidateUser("user-1")
	third, err := cached.MatchDealsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if len(third) != 2 {
		t.Errorf("expected fresh result with 2 matches after invalidation, got %d", len(third))
	}
}
