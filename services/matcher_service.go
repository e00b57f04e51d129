package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

// MatcherService scores stored deals against a user's profile and returns
// the ones that clear the match threshold
type MatcherService struct {
	profileStore ProfileStore
	offerStore   OfferStore
	weights      config.MatcherWeights
	metrics      *shared.ServiceMetrics
}

// NewMatcherService creates a matcher over the given stores
func NewMatcherService(profileStore ProfileStore, offerStore OfferStore, weights config.MatcherWeights) *MatcherService {
	return &MatcherService{
		profileStore: profileStore,
		offerStore:   offerStore,
		weights:      weights,
		metrics:      shared.NewServiceMetrics("MatcherService"),
	}
}

// MatchDealsForUser loads the user's profile, scores every stored deal
// against it and returns matches ordered by match score descending. A missing
// profile is a not_found error; an empty deal set yields an empty result.
func (m *MatcherService) MatchDealsForUser(ctx context.Context, userID string) ([]models.MatchResult, error) {
	profile, err := m.profileStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	deals, err := m.offerStore.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	var matches []models.MatchResult
	for _, deal := range deals {
		result := m.ScoreDealForProfile(deal, *profile)
		if result.MatchScore > m.weights.MatchThreshold {
			matches = append(matches, result)
		}
	}

	sortMatchesByScore(matches)

	logrus.WithFields(logrus.Fields{
		"component":      "MatcherService",
		"user_id":        userID,
		"deals_examined": len(deals),
		"matches":        len(matches),
	}).Info("Matched deals for user")

	return matches, nil
}

// ScoreDealForProfile computes the additive match score and its reasons:
// every deal starts at the base score, the provider bonus applies when the
// deal's provider is among the profile's preferred providers, and the
// certification bonus applies when a target certification and the deal's
// certification name contain each other. The sum is clamped to [0, 1].
func (m *MatcherService) ScoreDealForProfile(deal models.Deal, profile models.UserProfile) models.MatchResult {
	score := m.weights.BaseScore
	reasons := []string{"Relevant certification deal"}

	if providerPreferred(deal.Provider, profile.PreferredProviders) {
		score += m.weights.ProviderBonus
		reasons = append(reasons, fmt.Sprintf("Matches preferred provider %s", deal.Provider.DisplayName()))
	}

	if target, ok := matchingTargetCertification(deal.CertificationName, profile.TargetCertifications); ok {
		score += m.weights.CertificationBonus
		reasons = append(reasons, fmt.Sprintf("Targets your certification goal %q", target))
	}

	if profile.StudentStatus && deal.Eligibility == models.EligibilityStudents {
		reasons = append(reasons, "Student-eligible offer")
	}

	return models.MatchResult{
		OfferID:      deal.OfferID,
		MatchScore:   clampScore(score),
		MatchReasons: reasons,
		Deal:         deal,
	}
}

func providerPreferred(provider models.Provider, preferredProviders []string) bool {
	for _, preferred := range preferredProviders {
		if parsed, ok := models.ParseProvider(preferred); ok && parsed == provider {
			return true
		}
	}
	return false
}

// matchingTargetCertification reports the first target certification that is
// a case-insensitive substring of the deal's certification name, or that
// contains it
func matchingTargetCertification(certificationName string, targets []string) (string, bool) {
	loweredName := strings.ToLower(certificationName)
	for _, target := range targets {
		loweredTarget := strings.ToLower(strings.TrimSpace(target))
		if loweredTarget == "" {
			continue
		}
		if strings.Contains(loweredName, loweredTarget) || strings.Contains(loweredTarget, loweredName) {
			return target, true
		}
	}
	return "", false
}

func sortMatchesByScore(matches []models.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
}
