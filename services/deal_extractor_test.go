package services

import (
	"strings"
	"testing"
	"time"

	"github.com/certhunt/deals-backend/models"
)

func TestExtractDealStudentDiscountAnnouncement(t *testing.T) {
	extractor := NewDealFieldExtractor()

	item := models.RawItem{
		Provider:     models.ProviderAWS,
		Title:        "AWS certification exam discount",
		Snippet:      "Get 30% off your AWS Solutions Architect exam, valid for students",
		SourceURL:    "https://aws.amazon.com/training/offers/",
		Query:        "AWS certification exam discount 2026",
		DiscoveredAt: time.Now().UTC(),
	}

	deal := extractor.ExtractDeal(item)

	if !strings.Contains(deal.CertificationName, "Solutions Architect") {
		t.Errorf("certification name = %q, want it to contain 'Solutions Architect'", deal.CertificationName)
	}
	if deal.DiscountType != "30% Off" {
		t.Errorf("discount type = %q, want %q", deal.DiscountType, "30% Off")
	}
	if deal.Eligibility != models.EligibilityStudents {
		t.Errorf("eligibility = %q, want %q", deal.Eligibility, models.EligibilityStudents)
	}
	if deal.DealType != models.DealTypeDiscountDeal {
		t.Errorf("deal type = %q, want %q", deal.DealType, models.DealTypeDiscountDeal)
	}
	if deal.SourceName != "AWS Official" {
		t.Errorf("source name = %q, want %q", deal.SourceName, "AWS Official")
	}
	if deal.OfferID == "" {
		t.Error("offer id must not be empty")
	}
}

func TestExtractDealDefaultsWhenNothingMatches(t *testing.T) {
	extractor := NewDealFieldExtractor()

	item := models.RawItem{
		Provider:  models.ProviderAzure,
		Title:     "Something entirely unrelated",
		Snippet:   "",
		SourceURL: "https://www.some-blog.example/post",
	}

	deal := extractor.ExtractDeal(item)

	if deal.CertificationName != "Microsoft Azure Certification" {
		t.Errorf("certification name = %q, want default", deal.CertificationName)
	}
	if deal.DiscountType != models.DiscountSpecialOffer {
		t.Errorf("discount type = %q, want default %q", deal.DiscountType, models.DiscountSpecialOffer)
	}
	if deal.Eligibility != models.EligibilityGeneralPublic {
		t.Errorf("eligibility = %q, want default %q", deal.Eligibility, models.EligibilityGeneralPublic)
	}
	if deal.DealType != models.DealTypeGeneralDeal {
		t.Errorf("deal type = %q, want default %q", deal.DealType, models.DealTypeGeneralDeal)
	}
}

func TestExtractDiscountTypeRuleOrder(t *testing.T) {
	extractor := NewDealFieldExtractor()

	cases := []struct {
		text     string
		expected string
	}{
		{"completely free exam attempt", models.DiscountFree},
		// free outranks voucher when both appear
		{"free voucher for everyone", models.DiscountFree},
		{"redeem your exam voucher", models.DiscountVoucher},
		{"take 25% off today", "25% Off"},
		{"big discount on certifications", models.DiscountGeneric},
		{"complete the challenge to win", models.DiscountChallengeReward},
		{"something else entirely", models.DiscountSpecialOffer},
	}

	for _, tc := range cases {
		if got := extractor.ExtractDiscountType(tc.text); got != tc.expected {
			t.Errorf("ExtractDiscountType(%q) = %q, want %q", tc.text, got, tc.expected)
		}
	}
}

func TestExtractEligibilityRuleOrder(t *testing.T) {
	extractor := NewDealFieldExtractor()

	cases := []struct {
		text     string
		expected string
	}{
		{"available to students only", models.EligibilityStudents},
		{"for employees of partner firms", models.EligibilityEmployees},
		{"partner exclusive pricing", models.EligibilityPartners},
		{"all challenge finishers qualify", models.EligibilityChallengeParticipants},
		{"open enrollment", models.EligibilityGeneralPublic},
	}

	for _, tc := range cases {
		if got := extractor.ExtractEligibility(tc.text); got != tc.expected {
			t.Errorf("ExtractEligibility(%q) = %q, want %q", tc.text, got, tc.expected)
		}
	}
}

func TestDeriveSourceNameFallback(t *testing.T) {
	extractor := NewDealFieldExtractor()

	cases := []struct {
		url      string
		expected string
	}{
		{"https://aws.amazon.com/training/", "AWS Official"},
		{"https://trailhead.salesforce.com/promo", "Trailhead Official"},
		{"https://www.techblog.io/deals", "Techblog.io"},
		{"not a url at all ::", "Unknown Source"},
	}

	for _, tc := range cases {
		if got := extractor.DeriveSourceName(tc.url); got != tc.expected {
			t.Errorf("DeriveSourceName(%q) = %q, want %q", tc.url, got, tc.expected)
		}
	}
}

func TestComputeOfferIDDeterminism(t *testing.T) {
	first := ComputeOfferID(models.ProviderAWS, "30% off solutions architect", "https://aws.amazon.com/x")
	second := ComputeOfferID(models.ProviderAWS, "30% off solutions architect", "https://aws.amazon.com/x")
	if first != second {
		t.Errorf("identical inputs produced different ids: %q vs %q", first, second)
	}

	otherProvider := ComputeOfferID(models.ProviderGCP, "30% off solutions architect", "https://aws.amazon.com/x")
	if first == otherProvider {
		t.Error("different providers must not share an offer id")
	}

	otherURL := ComputeOfferID(models.ProviderAWS, "30% off solutions architect", "https://aws.amazon.com/y")
	if first == otherURL {
		t.Error("different source URLs must not share an offer id")
	}
}

func TestIsOfficialDomain(t *testing.T) {
	cases := []struct {
		provider models.Provider
		url      string
		expected bool
	}{
		{models.ProviderAWS, "https://aws.amazon.com/certification/", true},
		{models.ProviderAWS, "https://pages.awscloud.com/promo", true},
		{models.ProviderAWS, "https://aws-deals.example.com/", false},
		{models.ProviderDatabricks, "https://www.databricks.com/learn", true},
		{models.ProviderGCP, "https://cloud.google.com/learn", true},
		{models.ProviderGCP, "https://notgoogle.evil/learn", false},
	}

	for _, tc := range cases {
		if got := IsOfficialDomain(tc.provider, tc.url); got != tc.expected {
			t.Errorf("IsOfficialDomain(%s, %q) = %v, want %v", tc.provider, tc.url, got, tc.expected)
		}
	}
}
