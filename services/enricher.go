package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

// DealEnricher refines the heuristically extracted fields of a deal. An
// enricher may fail; callers must treat the heuristic extraction as the
// authoritative fallback.
type DealEnricher interface {
	EnrichDeal(ctx context.Context, deal models.Deal) (models.Deal, error)
	EnricherName() string
}

// HeuristicEnricher is the default no-op enricher: the pattern-extracted
// fields pass through unchanged
type HeuristicEnricher struct{}

// NewHeuristicEnricher creates the pass-through enricher
func NewHeuristicEnricher() *HeuristicEnricher {
	return &HeuristicEnricher{}
}

// EnricherName returns the enricher identifier used in logs
func (e *HeuristicEnricher) EnricherName() string {
	return "heuristic"
}

// EnrichDeal returns the deal unchanged
func (e *HeuristicEnricher) EnrichDeal(_ context.Context, deal models.Deal) (models.Deal, error) {
	return deal, nil
}

// GeminiEnricher asks the Gemini API to refine the certification name,
// eligibility and expiry hints from the raw text. Identity fields and the
// confidence score are never overwritten by the model.
type GeminiEnricher struct {
	apiKey    string
	modelName string
}

// geminiDealFields is the JSON shape the model is constrained to return
type geminiDealFields struct {
	CertificationName string `json:"certification_name"`
	Eligibility       string `json:"eligibility"`
	DealType          string `json:"deal_type"`
}

const enricherSystemInstruction = `You are a data normalization assistant for cloud certification deals.
Given the raw text of a deal announcement and its heuristically extracted fields, return corrected values.
Rules:
- certification_name: the full official certification name if the text names one, otherwise keep the provided value.
- eligibility: one of "Students", "Employees", "Partners", "Challenge Participants", "General Public".
- deal_type: one of "CertificationChallenge", "ExamVoucher", "FreeOffer", "DiscountDeal", "PromotionalOffer", "GeneralDeal".
Never invent details absent from the text. When unsure, return the provided value unchanged.`

// NewGeminiEnricher creates a Gemini-backed enricher
func NewGeminiEnricher(apiKey, modelName string) *GeminiEnricher {
	return &GeminiEnricher{
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// EnricherName returns the enricher identifier used in logs
func (e *GeminiEnricher) EnricherName() string {
	return "gemini"
}

// EnrichDeal sends the raw text and extracted fields to the model and merges
// the constrained JSON response back into the deal
func (e *GeminiEnricher) EnrichDeal(ctx context.Context, deal models.Deal) (models.Deal, error) {
	if e.apiKey == "" {
		return deal, shared.NewServiceError(shared.ErrorCategoryEnrichment, "ENRICHER_NOT_CONFIGURED",
			"gemini API key is not configured", "GeminiEnricher", "EnrichDeal", false, nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return deal, shared.NewServiceError(shared.ErrorCategoryEnrichment, "ENRICHER_CLIENT_FAILED",
			"failed to create gemini client", "GeminiEnricher", "EnrichDeal", true, err)
	}

	prompt := fmt.Sprintf(
		"Raw deal text:\n%s\n\nProvider: %s\nExtracted certification_name: %s\nExtracted eligibility: %s\nExtracted deal_type: %s",
		deal.RawText, deal.Provider, deal.CertificationName, deal.Eligibility, deal.DealType,
	)

	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: enricherSystemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := client.Models.GenerateContent(ctx, e.modelName, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   enricherResponseSchema(),
	})
	if err != nil {
		return deal, shared.NewServiceError(shared.ErrorCategoryEnrichment, "ENRICHER_CALL_FAILED",
			"gemini API call failed", "GeminiEnricher", "EnrichDeal", true, err)
	}

	var fields geminiDealFields
	if err := json.Unmarshal([]byte(resp.Text()), &fields); err != nil {
		return deal, shared.NewServiceError(shared.ErrorCategoryEnrichment, "ENRICHER_RESPONSE_INVALID",
			"gemini response was not valid JSON", "GeminiEnricher", "EnrichDeal", false, err)
	}

	enriched := deal
	if fields.CertificationName != "" {
		enriched.CertificationName = fields.CertificationName
	}
	if isKnownEligibility(fields.Eligibility) {
		enriched.Eligibility = fields.Eligibility
	}
	if isKnownDealType(fields.DealType) {
		enriched.DealType = fields.DealType
	}

	logrus.WithFields(logrus.Fields{
		"component": "GeminiEnricher",
		"offer_id":  deal.OfferID,
		"model":     e.modelName,
	}).Debug("Enriched deal fields")

	return enriched, nil
}

func enricherResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"certification_name": {Type: genai.TypeString, Description: "Full official certification name."},
			"eligibility":        {Type: genai.TypeString, Description: "Who qualifies for the deal."},
			"deal_type":          {Type: genai.TypeString, Description: "Deal type classification."},
		},
		Required: []string{"certification_name", "eligibility", "deal_type"},
	}
}

func isKnownEligibility(value string) bool {
	switch value {
	case models.EligibilityStudents, models.EligibilityEmployees, models.EligibilityPartners,
		models.EligibilityChallengeParticipants, models.EligibilityGeneralPublic:
		return true
	}
	return false
}

func isKnownDealType(value string) bool {
	switch value {
	case models.DealTypeCertificationChallenge, models.DealTypeExamVoucher, models.DealTypeFreeOffer,
		models.DealTypeDiscountDeal, models.DealTypePromotionalOffer, models.DealTypeGeneralDeal:
		return true
	}
	return false
}
