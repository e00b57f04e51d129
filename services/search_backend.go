package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/shared"
)

// SearchResult is one organic result returned by a search backend
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SearchBackend executes one search query and returns its organic results.
// Implementations own their rate limiting so the orchestrator can fan out
// queries without tracking backend etiquette.
type SearchBackend interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	BackendName() string
}

// DuckDuckGoSearchBackend scrapes the DuckDuckGo HTML endpoint, which serves
// results without JavaScript and tolerates polite automated use
type DuckDuckGoSearchBackend struct {
	clientFactory    *shared.HTTPClientFactory
	rateLimiter      *shared.SearchRequestRateLimiter
	fetchTimeout     time.Duration
	maxResults       int
	maxRetryAttempts int
	endpointURL      string
}

// NewDuckDuckGoSearchBackend creates a search backend with the given fetch
// timeout, per-query result cap and retry limit
func NewDuckDuckGoSearchBackend(clientFactory *shared.HTTPClientFactory, rateLimiter *shared.SearchRequestRateLimiter, fetchTimeout time.Duration, maxResults, maxRetryAttempts int) *DuckDuckGoSearchBackend {
	return &DuckDuckGoSearchBackend{
		clientFactory:    clientFactory,
		rateLimiter:      rateLimiter,
		fetchTimeout:     fetchTimeout,
		maxResults:       maxResults,
		maxRetryAttempts: maxRetryAttempts,
		endpointURL:      "https://html.duckduckgo.com/html/",
	}
}

// BackendName returns the backend identifier used in logs and run summaries
func (b *DuckDuckGoSearchBackend) BackendName() string {
	return "duckduckgo_html"
}

// Search executes one query against the HTML endpoint and parses the organic
// results. The rate limiter runs before every request, including retries
// handled upstream.
func (b *DuckDuckGoSearchBackend) Search(ctx context.Context, query string) ([]SearchResult, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "DuckDuckGoSearchBackend",
		"method":    "Search",
		"query":     query,
	})

	b.rateLimiter.EnforceRateLimit()

	requestURL := fmt.Sprintf("%s?q=%s", b.endpointURL, url.QueryEscape(query))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryTransport, "SEARCH_REQUEST_BUILD_FAILED",
			"failed to build search request", "DuckDuckGoSearchBackend", "Search", false, err)
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml")

	client := b.clientFactory.CreateOptimizedHTTPClient(b.fetchTimeout)
	response, err := shared.ExecuteHTTPRequestWithRetry(client, request, b.maxRetryAttempts)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryTransport, "SEARCH_FETCH_FAILED",
			fmt.Sprintf("search request failed for query %q", query), "DuckDuckGoSearchBackend", "Search", true, err)
	}
	defer response.Body.Close()

	document, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryParse, "SEARCH_PARSE_FAILED",
			"failed to parse search result HTML", "DuckDuckGoSearchBackend", "Search", false, err)
	}

	results := b.parseOrganicResults(document)

	logger.WithField("result_count", len(results)).Debug("Search query completed")
	return results, nil
}

// parseOrganicResults extracts title, snippet and destination link from each
// result block, skipping entries without a usable link
func (b *DuckDuckGoSearchBackend) parseOrganicResults(document *goquery.Document) []SearchResult {
	results := make([]SearchResult, 0, b.maxResults)

	document.Find("div.result").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		if len(results) >= b.maxResults {
			return false
		}

		titleAnchor := selection.Find("a.result__a").First()
		title := strings.TrimSpace(titleAnchor.Text())
		snippet := strings.TrimSpace(selection.Find(".result__snippet").First().Text())

		href, exists := titleAnchor.Attr("href")
		if !exists || title == "" {
			return true
		}

		link := resolveRedirectLink(href)
		if link == "" {
			return true
		}

		results = append(results, SearchResult{
			Title:   title,
			Snippet: snippet,
			Link:    link,
		})
		return true
	})

	return results
}

// resolveRedirectLink unwraps the uddg redirect parameter the HTML endpoint
// wraps destination URLs in, returning the href unchanged when it is direct
func resolveRedirectLink(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if target := parsed.Query().Get("uddg"); target != "" {
		if unescaped, err := url.QueryUnescape(target); err == nil {
			return unescaped
		}
		return target
	}

	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
