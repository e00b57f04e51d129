package services

import (
	"strings"
)

// DealClassifier decides whether a raw fragment plausibly describes a deal.
// It is a recall-raising gate: false positives are expected and get sorted
// out by the confidence scorer downstream, so the keyword set errs broad.
type DealClassifier struct {
	keywords []string
}

// dealKeywords is the fixed keyword set shared by the classifier and the
// confidence scorer's per-keyword bonus. Multi-word phrases are listed after
// their component words so counting distinct hits stays simple.
var dealKeywords = []string{
	"challenge",
	"discount",
	"voucher",
	"free",
	"promotion",
	"offer",
	"deal",
	"coupon",
	"save",
	"promo",
	"special",
	"limited time",
	"certification challenge",
	"exam voucher",
	"free exam",
}

// NewDealClassifier creates a classifier with the default keyword set
func NewDealClassifier() *DealClassifier {
	return &DealClassifier{keywords: dealKeywords}
}

// IsCandidate reports whether the combined title+snippet text contains any
// deal keyword. Matching is case-insensitive substring search.
func (c *DealClassifier) IsCandidate(combinedText string) bool {
	lowered := strings.ToLower(combinedText)
	for _, keyword := range c.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// CountDistinctKeywords returns how many distinct deal keywords appear in the
// text. Used by the confidence scorer's additive keyword bonus.
func (c *DealClassifier) CountDistinctKeywords(combinedText string) int {
	lowered := strings.ToLower(combinedText)
	count := 0
	for _, keyword := range c.keywords {
		if strings.Contains(lowered, keyword) {
			count++
		}
	}
	return count
}
