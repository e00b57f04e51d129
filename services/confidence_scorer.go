package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/models"
	"github.com/sirupsen/logrus"
)

// ConfidenceScorer assigns each extracted deal a score in [0, 1] estimating
// how likely the item is a genuine, current certification deal
type ConfidenceScorer struct {
	weights    config.ScoringWeights
	classifier *DealClassifier
	now        func() time.Time
}

// NewConfidenceScorer creates a scorer with the given weights
func NewConfidenceScorer(weights config.ScoringWeights) *ConfidenceScorer {
	return NewConfidenceScorerWithClock(weights, time.Now)
}

// NewConfidenceScorerWithClock allows injecting the clock used for the
// current-year bonus, which keeps scoring deterministic in tests
func NewConfidenceScorerWithClock(weights config.ScoringWeights, now func() time.Time) *ConfidenceScorer {
	return &ConfidenceScorer{
		weights:    weights,
		classifier: NewDealClassifier(),
		now:        now,
	}
}

// ScoreDeal computes the additive confidence score for a deal built from the
// given raw item. Signals:
//   - both title and snippet are present
//   - source URL on the provider's official domain
//   - per distinct deal keyword in the combined text
//   - current year mentioned in the text
//
// The sum is clamped to [0, 1].
func (s *ConfidenceScorer) ScoreDeal(item models.RawItem) float64 {
	score := 0.0

	if strings.TrimSpace(item.Title) != "" && strings.TrimSpace(item.Snippet) != "" {
		score += s.weights.TitleAndSnippet
	}

	if IsOfficialDomain(item.Provider, item.SourceURL) {
		score += s.weights.OfficialDomain
	}

	combinedText := item.CombinedText()
	distinctKeywords := s.classifier.CountDistinctKeywords(combinedText)
	score += float64(distinctKeywords) * s.weights.PerKeyword

	currentYear := s.now().Year()
	if strings.Contains(combinedText, strconv.Itoa(currentYear)) {
		score += s.weights.CurrentYear
	}

	clamped := clampScore(score)

	logrus.WithFields(logrus.Fields{
		"component":         "ConfidenceScorer",
		"provider":          item.Provider,
		"distinct_keywords": distinctKeywords,
		"score":             clamped,
	}).Debug("Scored deal candidate")

	return clamped
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
