package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

// DiscoveryRunSummary reports what one discovery run did
type DiscoveryRunSummary struct {
	RunID             string                  `json:"run_id"`
	Providers         []models.Provider       `json:"providers"`
	QueriesExecuted   int                     `json:"queries_executed"`
	QueriesFailed     int                     `json:"queries_failed"`
	RawItemsCollected int                     `json:"raw_items_collected"`
	CandidatesFound   int                     `json:"candidates_found"`
	DealsStored       int                     `json:"deals_stored"`
	DealsByProvider   map[models.Provider]int `json:"deals_by_provider"`
	StartedAt         time.Time               `json:"started_at"`
	Duration          time.Duration           `json:"duration"`
}

// DiscoveryService orchestrates the full pipeline: query generation, search
// and page scraping, classification, field extraction, optional enrichment,
// confidence scoring, merging and persistence.
//
// Runs are resilient by design: a failed query or provider is logged and
// skipped, never fatal. Partial results are better than none.
type DiscoveryService struct {
	queryGenerator *QueryGenerator
	searchBackend  SearchBackend
	pageScraper    *ProviderPageScraper
	classifier     *DealClassifier
	extractor      *DealFieldExtractor
	enricher       DealEnricher
	scorer         *ConfidenceScorer
	merger         *DealMerger
	offerStore     OfferStore
	metrics        *shared.ServiceMetrics
	discoveryCfg   *config.DiscoveryConfig
}

// NewDiscoveryService wires the pipeline together. Pass a nil pageScraper to
// run search-only discovery.
func NewDiscoveryService(
	queryGenerator *QueryGenerator,
	searchBackend SearchBackend,
	pageScraper *ProviderPageScraper,
	enricher DealEnricher,
	scorer *ConfidenceScorer,
	offerStore OfferStore,
	discoveryCfg *config.DiscoveryConfig,
) *DiscoveryService {
	return &DiscoveryService{
		queryGenerator: queryGenerator,
		searchBackend:  searchBackend,
		pageScraper:    pageScraper,
		classifier:     NewDealClassifier(),
		extractor:      NewDealFieldExtractor(),
		enricher:       enricher,
		scorer:         scorer,
		merger:         NewDealMerger(),
		offerStore:     offerStore,
		metrics:        shared.NewServiceMetrics("DiscoveryService"),
		discoveryCfg:   discoveryCfg,
	}
}

// RunDiscovery executes one discovery run across the given providers. An
// empty provider list means all known providers. Providers run concurrently;
// each provider's queries run sequentially behind the backend's rate limiter.
func (s *DiscoveryService) RunDiscovery(ctx context.Context, providers []models.Provider, certificationName string) (*DiscoveryRunSummary, error) {
	if len(providers) == 0 {
		providers = models.KnownProviders()
	}

	runID := uuid.New().String()
	startedAt := time.Now()

	logger := logrus.WithFields(logrus.Fields{
		"component": "DiscoveryService",
		"run_id":    runID,
		"providers": providers,
	})
	logger.Info("Starting deal discovery run")

	summary := &DiscoveryRunSummary{
		RunID:           runID,
		Providers:       providers,
		DealsByProvider: make(map[models.Provider]int),
		StartedAt:       startedAt,
	}

	var mutex sync.Mutex
	var waitGroup sync.WaitGroup

	for _, provider := range providers {
		waitGroup.Add(1)
		go func(provider models.Provider) {
			defer waitGroup.Done()

			providerResult := s.discoverForProvider(ctx, provider, certificationName)

			mutex.Lock()
			defer mutex.Unlock()
			summary.QueriesExecuted += providerResult.queriesExecuted
			summary.QueriesFailed += providerResult.queriesFailed
			summary.RawItemsCollected += providerResult.rawItems
			summary.CandidatesFound += providerResult.candidates
			summary.DealsStored += providerResult.dealsStored
			summary.DealsByProvider[provider] = providerResult.dealsStored
		}(provider)
	}

	waitGroup.Wait()
	summary.Duration = time.Since(startedAt)

	s.metrics.RecordRequest(summary.QueriesFailed < summary.QueriesExecuted || summary.QueriesExecuted == 0, summary.Duration)
	s.metrics.AddToCustomCounter("deals_stored", int64(summary.DealsStored))
	s.metrics.AddToCustomCounter("queries_failed", int64(summary.QueriesFailed))

	logger.WithFields(logrus.Fields{
		"queries_executed":    summary.QueriesExecuted,
		"queries_failed":      summary.QueriesFailed,
		"raw_items_collected": summary.RawItemsCollected,
		"candidates_found":    summary.CandidatesFound,
		"deals_stored":        summary.DealsStored,
		"duration":            summary.Duration,
	}).Info("Deal discovery run completed")

	return summary, nil
}

type providerDiscoveryResult struct {
	queriesExecuted int
	queriesFailed   int
	rawItems        int
	candidates      int
	dealsStored     int
}

// discoverForProvider runs the pipeline for one provider. Failed queries are
// counted and skipped so the rest of the run proceeds.
func (s *DiscoveryService) discoverForProvider(ctx context.Context, provider models.Provider, certificationName string) providerDiscoveryResult {
	logger := logrus.WithFields(logrus.Fields{
		"component": "DiscoveryService",
		"provider":  provider,
	})

	var result providerDiscoveryResult
	var rawItems []models.RawItem

	for _, query := range s.queryGenerator.GenerateQueries(provider, certificationName) {
		result.queriesExecuted++

		fetchCtx, cancel := context.WithTimeout(ctx, s.discoveryCfg.FetchTimeout)
		searchResults, err := s.searchBackend.Search(fetchCtx, query)
		cancel()

		if err != nil {
			result.queriesFailed++
			shared.WrapError(err, shared.ErrorCategoryTransport, "DISCOVERY_QUERY_FAILED",
				"DiscoveryService", "discoverForProvider", true).
				WithDetails(map[string]interface{}{"provider": provider, "query": query}).
				LogError()
			continue
		}

		discoveredAt := time.Now().UTC()
		for _, searchResult := range searchResults {
			rawItems = append(rawItems, models.RawItem{
				Provider:     provider,
				Title:        searchResult.Title,
				Snippet:      searchResult.Snippet,
				SourceURL:    searchResult.Link,
				Query:        query,
				DiscoveredAt: discoveredAt,
			})
		}
	}

	if s.pageScraper != nil {
		rawItems = append(rawItems, s.pageScraper.ScrapeProviderPages(ctx, provider)...)
	}
	result.rawItems = len(rawItems)

	deals := s.processRawItems(ctx, rawItems, &result)
	merged := s.merger.MergeDeals(deals)

	for _, deal := range merged {
		if err := s.offerStore.Put(ctx, deal); err != nil {
			shared.WrapError(err, shared.ErrorCategoryDatabase, "DISCOVERY_STORE_FAILED",
				"DiscoveryService", "discoverForProvider", true).LogError()
			continue
		}
		result.dealsStored++
	}

	logger.WithFields(logrus.Fields{
		"queries_executed": result.queriesExecuted,
		"queries_failed":   result.queriesFailed,
		"raw_items":        result.rawItems,
		"candidates":       result.candidates,
		"deals_stored":     result.dealsStored,
	}).Info("Provider discovery completed")

	return result
}

// processRawItems classifies, extracts, enriches and scores every raw item.
// Enrichment failures degrade to the heuristic extraction and never drop the
// deal.
func (s *DiscoveryService) processRawItems(ctx context.Context, rawItems []models.RawItem, result *providerDiscoveryResult) []models.Deal {
	var deals []models.Deal

	for _, item := range rawItems {
		if !s.classifier.IsCandidate(item.CombinedText()) {
			continue
		}
		result.candidates++

		deal := s.extractor.ExtractDeal(item)

		enriched, err := s.enricher.EnrichDeal(ctx, deal)
		if err != nil {
			shared.WrapError(err, shared.ErrorCategoryEnrichment, "DISCOVERY_ENRICHMENT_FAILED",
				"DiscoveryService", "processRawItems", false).LogError()
			enriched = deal
		}

		enriched.ConfidenceScore = s.scorer.ScoreDeal(item)
		deals = append(deals, enriched)
	}

	return deals
}

// GetMetricsSnapshot exposes the service metrics for the health endpoint
func (s *DiscoveryService) GetMetricsSnapshot() shared.ServiceMetricsSnapshot {
	return s.metrics.GetSnapshot()
}
