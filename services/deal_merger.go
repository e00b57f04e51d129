package services

import (
	"sort"

	"github.com/certhunt/deals-backend/models"
	"github.com/sirupsen/logrus"
)

// DealMerger collapses duplicate deals and orders the surviving set for
// presentation
type DealMerger struct{}

// NewDealMerger creates a new deal merger
func NewDealMerger() *DealMerger {
	return &DealMerger{}
}

// MergeDeals deduplicates by offer id, keeping the last occurrence of each
// id, then sorts by confidence score descending. Equal scores keep the order
// in which their ids were first seen.
func (m *DealMerger) MergeDeals(deals []models.Deal) []models.Deal {
	byOfferID := make(map[string]models.Deal, len(deals))
	firstSeenOrder := make(map[string]int, len(deals))

	for _, deal := range deals {
		if _, seen := byOfferID[deal.OfferID]; !seen {
			firstSeenOrder[deal.OfferID] = len(firstSeenOrder)
		}
		byOfferID[deal.OfferID] = deal
	}

	merged := make([]models.Deal, 0, len(byOfferID))
	for _, deal := range byOfferID {
		merged = append(merged, deal)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].ConfidenceScore != merged[j].ConfidenceScore {
			return merged[i].ConfidenceScore > merged[j].ConfidenceScore
		}
		return firstSeenOrder[merged[i].OfferID] < firstSeenOrder[merged[j].OfferID]
	})

	if len(deals) != len(merged) {
		logrus.WithFields(logrus.Fields{
			"component":         "DealMerger",
			"input_deals":       len(deals),
			"merged_deals":      len(merged),
			"duplicates_folded": len(deals) - len(merged),
		}).Info("Merged duplicate deals")
	}

	return merged
}
