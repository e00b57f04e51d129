package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

// providerPromotionPages lists the official training/promotion pages scraped
// directly, in addition to web search. These pages announce challenges and
// voucher programs before they show up in search indexes.
var providerPromotionPages = map[models.Provider][]string{
	models.ProviderAWS: {
		"https://aws.amazon.com/training/events/",
		"https://aws.amazon.com/certification/",
	},
	models.ProviderAzure: {
		"https://learn.microsoft.com/en-us/credentials/",
		"https://azure.microsoft.com/en-us/resources/training-and-certifications/",
	},
	models.ProviderGCP: {
		"https://cloud.google.com/learn/certification",
	},
	models.ProviderSalesforce: {
		"https://trailhead.salesforce.com/credentials/administratoroverview",
	},
	models.ProviderDatabricks: {
		"https://www.databricks.com/learn/certification",
	},
}

// ProviderPageScraper scrapes official provider pages for deal announcements.
// It is a second raw-item source feeding the same classify/extract pipeline
// as web search results.
type ProviderPageScraper struct {
	classifier      *DealClassifier
	utility         *TextUtilityService
	fetchTimeout    time.Duration
	maxItemsPerPage int
}

// NewProviderPageScraper creates a scraper with the given per-page timeout
func NewProviderPageScraper(fetchTimeout time.Duration) *ProviderPageScraper {
	return &ProviderPageScraper{
		classifier:      NewDealClassifier(),
		utility:         NewTextUtilityService(),
		fetchTimeout:    fetchTimeout,
		maxItemsPerPage: 20,
	}
}

// ScrapeProviderPages visits each of the provider's known promotion pages and
// returns raw items for every block of page text that looks like a deal
// announcement. A page that fails to load is logged and skipped.
func (s *ProviderPageScraper) ScrapeProviderPages(ctx context.Context, provider models.Provider) []models.RawItem {
	logger := logrus.WithFields(logrus.Fields{
		"component": "ProviderPageScraper",
		"provider":  provider,
	})

	var items []models.RawItem
	for _, pageURL := range providerPromotionPages[provider] {
		pageItems, err := s.scrapePage(ctx, provider, pageURL)
		if err != nil {
			shared.WrapError(err, shared.ErrorCategoryTransport, "PROVIDER_PAGE_SCRAPE_FAILED",
				"ProviderPageScraper", "ScrapeProviderPages", true).LogError()
			continue
		}
		items = append(items, pageItems...)
	}

	logger.WithField("item_count", len(items)).Info("Provider page scrape completed")
	return items
}

// scrapePage fetches one page with colly and collects candidate text blocks.
// Pages that render their content with JavaScript come back with no
// candidates, so those fall through to the headless browser.
func (s *ProviderPageScraper) scrapePage(ctx context.Context, provider models.Provider, pageURL string) ([]models.RawItem, error) {
	var items []models.RawItem
	var scrapeErr error

	c := colly.NewCollector()
	c.SetRequestTimeout(s.fetchTimeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		e.DOM.Find("h1, h2, h3, .card, article, section").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
			if len(items) >= s.maxItemsPerPage {
				return false
			}

			blockText := s.utility.NormalizeTextContent(selection.Text())
			if len(blockText) < 20 || len(blockText) > 600 {
				return true
			}
			if !s.classifier.IsCandidate(blockText) {
				return true
			}

			items = append(items, models.RawItem{
				Provider:     provider,
				Title:        truncateText(blockText, 120),
				Snippet:      blockText,
				SourceURL:    pageURL,
				Query:        "provider_page:" + pageURL,
				DiscoveredAt: time.Now().UTC(),
			})
			return true
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("page fetch failed with status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		scrapeErr = err
	}
	c.Wait()

	if scrapeErr != nil {
		return nil, scrapeErr
	}

	if len(items) == 0 {
		return s.scrapeDynamicPage(ctx, provider, pageURL)
	}
	return items, nil
}

// scrapeDynamicPage renders the page in headless Chrome and re-runs candidate
// extraction on the rendered HTML
func (s *ProviderPageScraper) scrapeDynamicPage(ctx context.Context, provider models.Provider, pageURL string) ([]models.RawItem, error) {
	logrus.WithFields(logrus.Fields{
		"component": "ProviderPageScraper",
		"provider":  provider,
		"url":       pageURL,
	}).Debug("Falling back to headless browser for dynamic page")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, s.fetchTimeout)
	defer cancelTimeout()

	var renderedHTML string
	err := chromedp.Run(timeoutCtx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &renderedHTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("headless browser render failed: %w", err)
	}

	document, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}

	var items []models.RawItem
	document.Find("h1, h2, h3, .card, article, section").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		if len(items) >= s.maxItemsPerPage {
			return false
		}

		blockText := s.utility.NormalizeTextContent(selection.Text())
		if len(blockText) < 20 || len(blockText) > 600 {
			return true
		}
		if !s.classifier.IsCandidate(blockText) {
			return true
		}

		items = append(items, models.RawItem{
			Provider:     provider,
			Title:        truncateText(blockText, 120),
			Snippet:      blockText,
			SourceURL:    pageURL,
			Query:        "provider_page:" + pageURL,
			DiscoveredAt: time.Now().UTC(),
		})
		return true
	})

	return items, nil
}

// truncateText trims text to at most maxLength runes without splitting words
// mid-rune
func truncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return strings.TrimSpace(string(runes[:maxLength]))
}
