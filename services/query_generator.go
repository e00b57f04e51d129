package services

import (
	"fmt"
	"time"

	"github.com/certhunt/deals-backend/models"
)

// QueryGenerator produces the bounded list of search queries issued for a
// provider during a discovery run. Output is deterministic for a fixed
// provider and year so runs are reproducible.
type QueryGenerator struct {
	maxQueriesPerProvider int
	now                   func() time.Time
}

// NewQueryGenerator creates a generator with the given per-provider query cap
func NewQueryGenerator(maxQueriesPerProvider int) *QueryGenerator {
	return &QueryGenerator{
		maxQueriesPerProvider: maxQueriesPerProvider,
		now:                   time.Now,
	}
}

// NewQueryGeneratorWithClock creates a generator with an injected clock for tests
func NewQueryGeneratorWithClock(maxQueriesPerProvider int, now func() time.Time) *QueryGenerator {
	return &QueryGenerator{
		maxQueriesPerProvider: maxQueriesPerProvider,
		now:                   now,
	}
}

// queryTemplates maps each provider to its ordered search query templates.
// Templates ending in a single %d take the current year; the spanning
// template takes current and next year since promotions often straddle the
// calendar boundary.
var queryTemplates = map[models.Provider][]string{
	models.ProviderAWS: {
		"AWS certification exam voucher discount %d",
		"AWS certification challenge %d",
		"free AWS certification exam %d",
		"AWS training and certification promotion %d",
		"AWS certification exam discount code %d",
	},
	models.ProviderAzure: {
		"Microsoft Azure certification exam discount %d",
		"free Microsoft certification voucher %d",
		"Microsoft Learn cloud skills challenge %d",
		"Azure certification exam promotion %d",
		"Microsoft certification student discount %d",
	},
	models.ProviderGCP: {
		"Google Cloud certification voucher %d",
		"Google Cloud certification discount %d",
		"free Google Cloud certification exam %d",
		"Google Cloud skills boost promotion %d",
	},
	models.ProviderSalesforce: {
		"Salesforce certification voucher %d",
		"Trailhead certification discount %d",
		"free Salesforce certification exam %d",
		"Salesforce certification promotion %d",
	},
	models.ProviderDatabricks: {
		"Databricks certification voucher %d",
		"Databricks certification discount %d",
		"free Databricks certification exam %d",
		"Databricks learning festival %d",
	},
}

// yearSpanTemplate covers promotions that straddle a year boundary
const yearSpanTemplate = "%s certification deals %d %d"

// GenerateQueries returns the ordered query list for a provider. When a
// specific certification is already known, targeted queries for it are
// emitted first. The result is capped at maxQueriesPerProvider.
func (g *QueryGenerator) GenerateQueries(provider models.Provider, certificationName string) []string {
	currentYear := g.now().Year()
	nextYear := currentYear + 1

	var queries []string

	if certificationName != "" {
		queries = append(queries,
			fmt.Sprintf("%s %s exam voucher %d", provider.DisplayName(), certificationName, currentYear),
			fmt.Sprintf("%s %s certification discount %d", provider.DisplayName(), certificationName, currentYear),
		)
	}

	for _, template := range queryTemplates[provider] {
		queries = append(queries, fmt.Sprintf(template, currentYear))
	}

	queries = append(queries, fmt.Sprintf(yearSpanTemplate, provider.DisplayName(), currentYear, nextYear))

	if g.maxQueriesPerProvider > 0 && len(queries) > g.maxQueriesPerProvider {
		queries = queries[:g.maxQueriesPerProvider]
	}

	return queries
}
