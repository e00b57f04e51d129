package models

import (
	"strings"
	"time"
)

// Provider identifies a certification vendor tracked by the discovery pipeline
type Provider string

const (
	ProviderAWS        Provider = "AWS"
	ProviderAzure      Provider = "AZURE"
	ProviderGCP        Provider = "GCP"
	ProviderSalesforce Provider = "SALESFORCE"
	ProviderDatabricks Provider = "DATABRICKS"
)

// KnownProviders returns every provider the pipeline can discover deals for,
// in a fixed order so full discovery runs are reproducible
func KnownProviders() []Provider {
	return []Provider{ProviderAWS, ProviderAzure, ProviderGCP, ProviderSalesforce, ProviderDatabricks}
}

// ParseProvider resolves user-supplied provider names (including common
// aliases like "Google Cloud") to the canonical enum value
func ParseProvider(name string) (Provider, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "AWS", "AMAZON", "AMAZON WEB SERVICES":
		return ProviderAWS, true
	case "AZURE", "MICROSOFT", "MICROSOFT AZURE":
		return ProviderAzure, true
	case "GCP", "GOOGLE", "GOOGLE CLOUD":
		return ProviderGCP, true
	case "SALESFORCE":
		return ProviderSalesforce, true
	case "DATABRICKS":
		return ProviderDatabricks, true
	}
	return "", false
}

// DisplayName returns the human-readable provider name used in extracted fields
func (p Provider) DisplayName() string {
	switch p {
	case ProviderAWS:
		return "AWS"
	case ProviderAzure:
		return "Microsoft Azure"
	case ProviderGCP:
		return "Google Cloud"
	case ProviderSalesforce:
		return "Salesforce"
	case ProviderDatabricks:
		return "Databricks"
	}
	return string(p)
}

// Discount type labels produced by the field extractor. Percentage discounts
// are rendered as "<N>% Off" rather than a fixed label.
const (
	DiscountFree            = "Free"
	DiscountVoucher         = "Voucher"
	DiscountGeneric         = "Discount"
	DiscountChallengeReward = "Challenge Reward"
	DiscountSpecialOffer    = "Special Offer"
)

// Eligibility labels produced by the field extractor
const (
	EligibilityStudents              = "Students"
	EligibilityEmployees             = "Employees"
	EligibilityPartners              = "Partners"
	EligibilityChallengeParticipants = "Challenge Participants"
	EligibilityGeneralPublic         = "General Public"
)

// Deal type classifications produced by the field extractor
const (
	DealTypeCertificationChallenge = "CertificationChallenge"
	DealTypeExamVoucher            = "ExamVoucher"
	DealTypeFreeOffer              = "FreeOffer"
	DealTypeDiscountDeal           = "DiscountDeal"
	DealTypePromotionalOffer       = "PromotionalOffer"
	DealTypeGeneralDeal            = "GeneralDeal"
)

// RawItem is a single unprocessed fragment returned by a search backend or
// page scraper. It is consumed exactly once by the classifier and extractor.
type RawItem struct {
	Provider     Provider  `json:"provider"`
	Title        string    `json:"title"`
	Snippet      string    `json:"snippet"`
	SourceURL    string    `json:"source_url"`
	Query        string    `json:"query"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// CombinedText returns the text the classifier and extractor operate on
func (r RawItem) CombinedText() string {
	if r.Title == "" {
		return r.Snippet
	}
	if r.Snippet == "" {
		return r.Title
	}
	return r.Title + " " + r.Snippet
}

// Deal is the canonical persisted certification deal record
type Deal struct {
	OfferID           string     `json:"offer_id"`
	Provider          Provider   `json:"provider"`
	CertificationName string     `json:"certification_name"`
	DiscountType      string     `json:"discount_type"`
	Eligibility       string     `json:"eligibility"`
	DealType          string     `json:"deal_type"`
	ConfidenceScore   float64    `json:"confidence_score"`
	SourceURL         string     `json:"source_url"`
	SourceName        string     `json:"source_name"`
	RawText           string     `json:"raw_text"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"` // Advisory only, never triggers deletion
	DiscoveredAt      time.Time  `json:"discovered_at"`
}
