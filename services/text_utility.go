package services

import (
	"regexp"
	"strings"
	"time"
)

// TextUtilityService provides text normalization and date parsing helpers
// shared by the extraction pipeline
type TextUtilityService struct {
	whitespacePattern *regexp.Regexp
	htmlTagPattern    *regexp.Regexp
	expiryPatterns    []*regexp.Regexp
	dateLayouts       []string
}

// NewTextUtilityService creates a new text utility service
func NewTextUtilityService() *TextUtilityService {
	return &TextUtilityService{
		whitespacePattern: regexp.MustCompile(`\s+`),
		htmlTagPattern:    regexp.MustCompile(`<[^>]*>`),
		expiryPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:expires?|valid (?:until|through)|ends?|offer ends?)\s*:?\s*([A-Za-z]+ \d{1,2},? \d{4})`),
			regexp.MustCompile(`(?i)(?:expires?|valid (?:until|through)|ends?|offer ends?)\s*:?\s*(\d{1,2}/\d{1,2}/\d{4})`),
			regexp.MustCompile(`(?i)(?:expires?|valid (?:until|through)|ends?|offer ends?)\s*:?\s*(\d{4}-\d{2}-\d{2})`),
		},
		dateLayouts: []string{
			"January 2, 2006",
			"January 2 2006",
			"Jan 2, 2006",
			"Jan 2 2006",
			"1/2/2006",
			"01/02/2006",
			"2006-01-02",
		},
	}
}

// NormalizeTextContent strips HTML tags, collapses runs of whitespace and
// trims the result. Normalization must stay stable because the offer id is
// hashed from its output.
func (u *TextUtilityService) NormalizeTextContent(text string) string {
	cleaned := u.htmlTagPattern.ReplaceAllString(text, " ")
	cleaned = u.whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// ParseExpiryDate scans text for expiry phrases like "valid until March 31,
// 2026" and returns the parsed date, or nil when none is found
func (u *TextUtilityService) ParseExpiryDate(text string) *time.Time {
	for _, pattern := range u.expiryPatterns {
		matches := pattern.FindStringSubmatch(text)
		if len(matches) < 2 {
			continue
		}
		candidate := strings.TrimSpace(matches[1])
		for _, layout := range u.dateLayouts {
			if parsed, err := time.Parse(layout, candidate); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

// TitleCaseDomain turns "www.example-site.com" into "Example-site.com"
func (u *TextUtilityService) TitleCaseDomain(domain string) string {
	trimmed := strings.TrimPrefix(strings.ToLower(domain), "www.")
	if trimmed == "" {
		return "Unknown Source"
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}
