package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/services"
)

// DailyDiscoveryJob runs a full discovery sweep across all providers once a
// day and invalidates cached recommendations when new deals land
type DailyDiscoveryJob struct {
	DiscoveryService *services.DiscoveryService
	CachedMatcher    *services.CachedMatcherService
}

func NewDailyDiscoveryJob(discoveryService *services.DiscoveryService, cachedMatcher *services.CachedMatcherService) *DailyDiscoveryJob {
	return &DailyDiscoveryJob{
		DiscoveryService: discoveryService,
		CachedMatcher:    cachedMatcher,
	}
}

func (j *DailyDiscoveryJob) Run() {
	logrus.Info("Starting Daily Deal Discovery Job")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	summary, err := j.DiscoveryService.RunDiscovery(ctx, nil, "")
	if err != nil {
		logrus.Errorf("Failed to run Daily Deal Discovery Job: %v", err)
		return
	}

	if summary.DealsStored > 0 && j.CachedMatcher != nil {
		j.CachedMatcher.InvalidateAll()
	}

	logrus.WithFields(logrus.Fields{
		"run_id":           summary.RunID,
		"queries_executed": summary.QueriesExecuted,
		"queries_failed":   summary.QueriesFailed,
		"candidates_found": summary.CandidatesFound,
		"deals_stored":     summary.DealsStored,
		"duration":         summary.Duration,
	}).Info("Daily Deal Discovery Job completed")
}

// Schedule runs the job immediately and then on the given interval until the
// context is cancelled
func (j *DailyDiscoveryJob) Schedule(ctx context.Context, interval time.Duration) {
	go func() {
		j.Run()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Daily Deal Discovery Job scheduler stopped")
				return
			case <-ticker.C:
				j.Run()
			}
		}
	}()
}
