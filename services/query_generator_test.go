package services

import (
	"strings"
	"testing"
	"time"

	"github.com/certhunt/deals-backend/models"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestGenerateQueriesIsDeterministic(t *testing.T) {
	generator := NewQueryGeneratorWithClock(10, fixedClock(2026))

	first := generator.GenerateQueries(models.ProviderAWS, "")
	second := generator.GenerateQueries(models.ProviderAWS, "")

	if len(first) != len(second) {
		t.Fatalf("expected identical query counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("query %d differs between runs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestGenerateQueriesRespectsCap(t *testing.T) {
	generator := NewQueryGeneratorWithClock(3, fixedClock(2026))

	for _, provider := range models.KnownProviders() {
		queries := generator.GenerateQueries(provider, "")
		if len(queries) > 3 {
			t.Errorf("provider %s: expected at most 3 queries, got %d", provider, len(queries))
		}
	}
}

func TestGenerateQueriesIncludesCurrentYear(t *testing.T) {
	generator := NewQueryGeneratorWithClock(10, fixedClock(2026))

	queries := generator.GenerateQueries(models.ProviderGCP, "")
	if len(queries) == 0 {
		t.Fatal("expected at least one query")
	}

	for _, query := range queries {
		if !strings.Contains(query, "2026") {
			t.Errorf("query %q does not mention the current year", query)
		}
	}
}

func TestGenerateQueriesTargetedCertificationFirst(t *testing.T) {
	generator := NewQueryGeneratorWithClock(10, fixedClock(2026))

	queries := generator.GenerateQueries(models.ProviderAWS, "Solutions Architect")
	if len(queries) < 2 {
		t.Fatalf("expected targeted queries, got %d queries", len(queries))
	}

	for i := 0; i < 2; i++ {
		if !strings.Contains(queries[i], "Solutions Architect") {
			t.Errorf("query %d should target the certification, got %q", i, queries[i])
		}
	}
}

func TestGenerateQueriesCoversYearBoundary(t *testing.T) {
	generator := NewQueryGeneratorWithClock(20, fixedClock(2026))

	queries := generator.GenerateQueries(models.ProviderDatabricks, "")
	found := false
	for _, query := range queries {
		if strings.Contains(query, "2026") && strings.Contains(query, "2027") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected a query spanning the current and next year")
	}
}
