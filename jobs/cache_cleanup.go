package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/services"
)

type CacheCleanupJob struct {
	Cache *services.RecommendationCache
}

func NewCacheCleanupJob(cache *services.RecommendationCache) *CacheCleanupJob {
	return &CacheCleanupJob{Cache: cache}
}

func (j *CacheCleanupJob) Run() {
	removed := j.Cache.CleanupExpired()
	logrus.WithFields(logrus.Fields{
		"entries_removed": removed,
		"entries_left":    j.Cache.Size(),
	}).Info("Cache Cleanup Job completed")
}

// Schedule runs the cleanup on the given interval until the context is
// cancelled
func (j *CacheCleanupJob) Schedule(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Cache Cleanup Job scheduler stopped")
				return
			case <-ticker.C:
				j.Run()
			}
		}
	}()
}
