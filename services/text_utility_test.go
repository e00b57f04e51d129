package services

import (
	"testing"
	"time"
)

func TestNormalizeTextContent(t *testing.T) {
	utility := NewTextUtilityService()

	cases := []struct {
		input    string
		expected string
	}{
		{"  plain   text  ", "plain text"},
		{"<b>bold</b> claim", "bold claim"},
		{"line\none\n\nline two", "line one line two"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := utility.NormalizeTextContent(tc.input); got != tc.expected {
			t.Errorf("NormalizeTextContent(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestParseExpiryDate(t *testing.T) {
	utility := NewTextUtilityService()

	parsed := utility.ParseExpiryDate("Hurry, offer valid until March 31, 2026 only")
	if parsed == nil {
		t.Fatal("expected a parsed expiry date")
	}
	expected := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("parsed = %v, want %v", parsed, expected)
	}

	if got := utility.ParseExpiryDate("no dates in here"); got != nil {
		t.Errorf("expected nil for text without expiry, got %v", got)
	}

	if got := utility.ParseExpiryDate("expires 2026-06-30"); got == nil {
		t.Error("expected ISO date form to parse")
	}
}

func TestTitleCaseDomain(t *testing.T) {
	utility := NewTextUtilityService()

	cases := []struct {
		input    string
		expected string
	}{
		{"www.example.com", "Example.com"},
		{"Example.ORG", "Example.org"},
		{"", "Unknown Source"},
	}

	for _, tc := range cases {
		if got := utility.TitleCaseDomain(tc.input); got != tc.expected {
			t.Errorf("TitleCaseDomain(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
