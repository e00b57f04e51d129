package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/certhunt/deals-backend/models"
	"github.com/sirupsen/logrus"
)

// DealFieldExtractor derives structured deal fields from a classified raw
// item. Extraction is pure and total: every field always gets a value,
// malformed input simply fails every pattern and falls through to defaults.
type DealFieldExtractor struct {
	utility *TextUtilityService
}

// NewDealFieldExtractor creates a new field extraction service
func NewDealFieldExtractor() *DealFieldExtractor {
	return &DealFieldExtractor{
		utility: NewTextUtilityService(),
	}
}

// certificationPatterns maps each provider to its ordered certification name
// patterns. Patterns are tried in sequence and the first match wins; each
// captures the certification sub-phrase in group 1.
var certificationPatterns = map[models.Provider][]*regexp.Regexp{
	models.ProviderAWS: {
		regexp.MustCompile(`(?i)\b(AI Practitioner)\b`),
		regexp.MustCompile(`(?i)\b(Cloud Practitioner)\b`),
		regexp.MustCompile(`(?i)\b(Solutions Architect(?:\s+(?:Associate|Professional))?)\b`),
		regexp.MustCompile(`(?i)\b(Developer Associate)\b`),
		regexp.MustCompile(`(?i)\b(SysOps Administrator)\b`),
		regexp.MustCompile(`(?i)\b(DevOps Engineer(?:\s+Professional)?)\b`),
		regexp.MustCompile(`(?i)\b(Machine Learning(?:\s+(?:Specialty|Engineer))?)\b`),
		regexp.MustCompile(`(?i)\b(Data Engineer(?:\s+Associate)?)\b`),
		regexp.MustCompile(`(?i)\b(Security Specialty)\b`),
	},
	models.ProviderAzure: {
		regexp.MustCompile(`(?i)\b(Azure Fundamentals)\b`),
		regexp.MustCompile(`(?i)\b(Azure Administrator)\b`),
		regexp.MustCompile(`(?i)\b(Azure Solutions Architect)\b`),
		regexp.MustCompile(`(?i)\b(Azure Developer)\b`),
		regexp.MustCompile(`(?i)\b(Azure AI Engineer)\b`),
		regexp.MustCompile(`(?i)\b(Azure Data Scientist)\b`),
		regexp.MustCompile(`(?i)\b(AZ-\d{3})\b`),
		regexp.MustCompile(`(?i)\b(AI-\d{3})\b`),
		regexp.MustCompile(`(?i)\b(DP-\d{3})\b`),
	},
	models.ProviderGCP: {
		regexp.MustCompile(`(?i)\b(Cloud Digital Leader)\b`),
		regexp.MustCompile(`(?i)\b(Associate Cloud Engineer)\b`),
		regexp.MustCompile(`(?i)\b(Professional Cloud Architect)\b`),
		regexp.MustCompile(`(?i)\b(Professional Data Engineer)\b`),
		regexp.MustCompile(`(?i)\b(Professional Machine Learning Engineer)\b`),
		regexp.MustCompile(`(?i)\b(Professional Cloud Developer)\b`),
	},
	models.ProviderSalesforce: {
		regexp.MustCompile(`(?i)\b(Administrator)\b`),
		regexp.MustCompile(`(?i)\b(Platform Developer(?:\s+I{1,2})?)\b`),
		regexp.MustCompile(`(?i)\b(Platform App Builder)\b`),
		regexp.MustCompile(`(?i)\b(Sales Cloud Consultant)\b`),
		regexp.MustCompile(`(?i)\b(Service Cloud Consultant)\b`),
		regexp.MustCompile(`(?i)\b(Marketing Cloud)\b`),
	},
	models.ProviderDatabricks: {
		regexp.MustCompile(`(?i)\b(Data Engineer(?:\s+(?:Associate|Professional))?)\b`),
		regexp.MustCompile(`(?i)\b(Data Analyst(?:\s+Associate)?)\b`),
		regexp.MustCompile(`(?i)\b(Machine Learning(?:\s+(?:Associate|Professional))?)\b`),
		regexp.MustCompile(`(?i)\b(Generative AI Engineer)\b`),
		regexp.MustCompile(`(?i)\b(Lakehouse Fundamentals)\b`),
	},
}

// percentagePattern matches discounts like "30%" or "30 %"
var percentagePattern = regexp.MustCompile(`(\d+)\s*%`)

// sourceLabelEntry maps a domain substring to a friendly source label
type sourceLabelEntry struct {
	domainSubstring string
	label           string
}

// sourceLabels is ordered: more specific domains come before their parents
// (trailhead.salesforce.com before salesforce.com).
var sourceLabels = []sourceLabelEntry{
	{"aws.amazon.com", "AWS Official"},
	{"awscloud.com", "AWS Official"},
	{"learn.microsoft.com", "Microsoft Learn Official"},
	{"docs.microsoft.com", "Microsoft Learn Official"},
	{"azure.microsoft.com", "Microsoft Azure Official"},
	{"microsoft.com", "Microsoft Official"},
	{"cloud.google.com", "Google Cloud Official"},
	{"cloudskillsboost.google", "Google Cloud Skills Boost Official"},
	{"trailhead.salesforce.com", "Trailhead Official"},
	{"salesforce.com", "Salesforce Official"},
	{"databricks.com", "Databricks Official"},
}

// officialDomains lists the domains the confidence scorer treats as the
// provider's own. A URL on one of these earns the official-domain bonus.
var officialDomains = map[models.Provider][]string{
	models.ProviderAWS:        {"aws.amazon.com", "awscloud.com", "amazon.com"},
	models.ProviderAzure:      {"microsoft.com", "azure.com"},
	models.ProviderGCP:        {"cloud.google.com", "cloudskillsboost.google", "google.com"},
	models.ProviderSalesforce: {"salesforce.com", "trailhead.com"},
	models.ProviderDatabricks: {"databricks.com"},
}

// ExtractDeal produces a complete Deal from a raw item. Confidence scoring
// happens separately; the returned deal carries a zero score.
func (e *DealFieldExtractor) ExtractDeal(item models.RawItem) models.Deal {
	combinedText := e.utility.NormalizeTextContent(item.CombinedText())

	deal := models.Deal{
		OfferID:           ComputeOfferID(item.Provider, combinedText, item.SourceURL),
		Provider:          item.Provider,
		CertificationName: e.ExtractCertificationName(item.Provider, combinedText),
		DiscountType:      e.ExtractDiscountType(combinedText),
		Eligibility:       e.ExtractEligibility(combinedText),
		DealType:          e.ExtractDealType(combinedText),
		SourceURL:         item.SourceURL,
		SourceName:        e.DeriveSourceName(item.SourceURL),
		RawText:           combinedText,
		ExpiryDate:        e.utility.ParseExpiryDate(combinedText),
		DiscoveredAt:      item.DiscoveredAt,
	}

	logrus.WithFields(logrus.Fields{
		"component":          "DealFieldExtractor",
		"provider":           item.Provider,
		"offer_id":           deal.OfferID,
		"certification_name": deal.CertificationName,
		"discount_type":      deal.DiscountType,
		"deal_type":          deal.DealType,
	}).Debug("Extracted structured deal fields")

	return deal
}

// ExtractCertificationName tries the provider's patterns in order and
// returns "<Provider> <match>" for the first hit, or the provider default
// when nothing matches.
func (e *DealFieldExtractor) ExtractCertificationName(provider models.Provider, text string) string {
	displayName := provider.DisplayName()
	nameTokens := strings.Fields(strings.ToLower(displayName))
	brandToken := nameTokens[len(nameTokens)-1]

	for _, pattern := range certificationPatterns[provider] {
		if matches := pattern.FindStringSubmatch(text); len(matches) > 1 {
			captured := strings.TrimSpace(matches[1])
			// Captures like "Azure Fundamentals" already carry the brand
			if strings.Contains(strings.ToLower(captured), brandToken) {
				return captured
			}
			return displayName + " " + captured
		}
	}
	return displayName + " Certification"
}

// ExtractDiscountType evaluates the discount rules top to bottom, first rule wins
func (e *DealFieldExtractor) ExtractDiscountType(text string) string {
	lowered := strings.ToLower(text)

	switch {
	case strings.Contains(lowered, "free") || strings.Contains(lowered, "complimentary"):
		return models.DiscountFree
	case strings.Contains(lowered, "voucher"):
		return models.DiscountVoucher
	}

	if matches := percentagePattern.FindStringSubmatch(text); len(matches) > 1 {
		return fmt.Sprintf("%s%% Off", matches[1])
	}

	switch {
	case strings.Contains(lowered, "discount"):
		return models.DiscountGeneric
	case strings.Contains(lowered, "challenge"):
		return models.DiscountChallengeReward
	}

	return models.DiscountSpecialOffer
}

// ExtractEligibility evaluates the eligibility rules top to bottom
func (e *DealFieldExtractor) ExtractEligibility(text string) string {
	lowered := strings.ToLower(text)

	switch {
	case strings.Contains(lowered, "student"):
		return models.EligibilityStudents
	case strings.Contains(lowered, "employee"):
		return models.EligibilityEmployees
	case strings.Contains(lowered, "partner"):
		return models.EligibilityPartners
	case strings.Contains(lowered, "challenge"):
		return models.EligibilityChallengeParticipants
	}

	return models.EligibilityGeneralPublic
}

// ExtractDealType classifies the deal. A bare percentage discount counts as
// a discount deal even when the word "discount" is absent ("30% off").
func (e *DealFieldExtractor) ExtractDealType(text string) string {
	lowered := strings.ToLower(text)

	switch {
	case strings.Contains(lowered, "challenge"):
		return models.DealTypeCertificationChallenge
	case strings.Contains(lowered, "voucher"):
		return models.DealTypeExamVoucher
	case strings.Contains(lowered, "free"):
		return models.DealTypeFreeOffer
	case strings.Contains(lowered, "discount") || percentagePattern.MatchString(text):
		return models.DealTypeDiscountDeal
	case strings.Contains(lowered, "promotion") || strings.Contains(lowered, "promo"):
		return models.DealTypePromotionalOffer
	}

	return models.DealTypeGeneralDeal
}

// DeriveSourceName maps the URL's domain to a friendly official-source label,
// falling back to a title-cased domain with "www." stripped.
func (e *DealFieldExtractor) DeriveSourceName(rawURL string) string {
	domain := extractDomain(rawURL)
	if domain == "" {
		return "Unknown Source"
	}

	for _, entry := range sourceLabels {
		if strings.Contains(domain, entry.domainSubstring) {
			return entry.label
		}
	}

	return e.utility.TitleCaseDomain(domain)
}

// IsOfficialDomain reports whether the URL belongs to one of the provider's
// known official domains
func IsOfficialDomain(provider models.Provider, rawURL string) bool {
	domain := extractDomain(rawURL)
	if domain == "" {
		return false
	}

	for _, official := range officialDomains[provider] {
		if domain == official || strings.HasSuffix(domain, "."+official) {
			return true
		}
	}
	return false
}

// ComputeOfferID returns the deterministic deal identity: the same provider,
// normalized text and source URL always hash to the same id, which is what
// makes dedup-on-write work.
func ComputeOfferID(provider models.Provider, normalizedText, sourceURL string) string {
	hash := sha256.Sum256([]byte(string(provider) + "|" + strings.ToLower(normalizedText) + "|" + sourceURL))
	return hex.EncodeToString(hash[:])[:32]
}

// extractDomain returns the lower-cased host of a URL without the port,
// or "" when the URL does not parse
func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
