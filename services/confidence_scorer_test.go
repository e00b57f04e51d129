package services

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/models"
)

func TestScoreDealAllSignalsClampToOne(t *testing.T) {
	scorer := NewConfidenceScorerWithClock(config.DefaultScoringWeights(), fixedClock(2026))

	item := models.RawItem{
		Provider:  models.ProviderAWS,
		Title:     "AWS certification exam discount 2026",
		Snippet:   "Save 30% with this exam voucher offer",
		SourceURL: "https://aws.amazon.com/training/offers/",
	}

	// title+snippet 0.3, official domain 0.3, five distinct keywords 0.5,
	// current year 0.2 adds up past the ceiling
	if got := scorer.ScoreDeal(item); got != 1.0 {
		t.Errorf("score = %v, want clamped 1.0", got)
	}
}

func TestScoreDealSingleKeywordOnly(t *testing.T) {
	scorer := NewConfidenceScorerWithClock(config.DefaultScoringWeights(), fixedClock(2026))

	item := models.RawItem{
		Provider:  models.ProviderAWS,
		Title:     "AWS voucher roundup",
		Snippet:   "",
		SourceURL: "https://example.com/news",
	}

	got := scorer.ScoreDeal(item)
	if math.Abs(got-0.1) > 1e-9 {
		t.Errorf("score = %v, want 0.1 (one distinct keyword, no other signals)", got)
	}
}

func TestScoreDealCurrentYearBonus(t *testing.T) {
	weights := config.DefaultScoringWeights()
	withYear := models.RawItem{
		Provider:  models.ProviderGCP,
		Title:     "Google Cloud voucher 2026",
		Snippet:   "",
		SourceURL: "https://example.com",
	}
	withoutYear := withYear
	withoutYear.Title = "Google Cloud voucher"

	scorer := NewConfidenceScorerWithClock(weights, fixedClock(2026))

	diff := scorer.ScoreDeal(withYear) - scorer.ScoreDeal(withoutYear)
	if math.Abs(diff-weights.CurrentYear) > 1e-9 {
		t.Errorf("year bonus = %v, want %v", diff, weights.CurrentYear)
	}
}

func TestScoreDealAlwaysWithinBounds(t *testing.T) {
	scorer := NewConfidenceScorerWithClock(config.DefaultScoringWeights(), fixedClock(2026))

	properties := gopter.NewProperties(nil)

	properties.Property("score stays within [0, 1] for any input text", prop.ForAll(
		func(title, snippet, url string) bool {
			score := scorer.ScoreDeal(models.RawItem{
				Provider:  models.ProviderAWS,
				Title:     title,
				Snippet:   snippet,
				SourceURL: url,
			})
			return score >= 0.0 && score <= 1.0
		},
		gen.OneConstOf(
			"free voucher discount challenge promo deal 2026",
			"AWS certification exam discount",
			"",
			"save save save coupon special limited time offer",
			"nothing relevant",
		),
		gen.AnyString(),
		gen.OneConstOf("https://aws.amazon.com/x", "https://example.com", "", "::bad::"),
	))

	properties.TestingRun(t)
}
