package images

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"ticket-marketplace/internal/logger"
)

const (
	// scrapeConcurrency is the fixed fan-out width for batch scrapes.
	scrapeConcurrency = 8
	// fetchTimeout bounds a single page fetch. A unit that runs past it is
	// counted failed and never retried.
	fetchTimeout = 8 * time.Second
	// maxBodyBytes caps how much of a product page is read when hunting
	// for an image tag.
	maxBodyBytes = 512 * 1024
)

var (
	ogImagePattern      = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']`)
	ogImageRevPattern   = regexp.MustCompile(`(?i)<meta[^>]+content=["']([^"']+)["'][^>]+property=["']og:image["']`)
	twitterImagePattern = regexp.MustCompile(`(?i)<meta[^>]+name=["']twitter:image["'][^>]+content=["']([^"']+)["']`)
	firstImgPattern     = regexp.MustCompile(`(?i)<img[^>]+src=["'](https?://[^"']+\.(?:jpe?g|png|webp)[^"']*)["']`)
)

// ScrapeResult is the outcome for one URL in a batch.
type ScrapeResult struct {
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
	Status   string `json:"status"` // "ok", "failed" or "cached"
}

type BatchSummary struct {
	Results []ScrapeResult `json:"results"`
	OK      int            `json:"ok"`
	Failed  int            `json:"failed"`
}

// Scraper pulls a representative product image out of a page's HTML. It
// keeps its own fetch client so the 8-second scrape budget is independent
// of the gateway's general outbound timeout.
type Scraper struct {
	client      *http.Client
	logger      *logger.Logger
	scrapeCache *ttlCache // per-URL results, 2 hour TTL
	lookupCache *ttlCache // single-lookup results, 1 hour TTL
}

func NewScraper(log *logger.Logger) *Scraper {
	return &Scraper{
		client:      &http.Client{Timeout: fetchTimeout},
		logger:      log,
		scrapeCache: newTTLCache(2 * time.Hour),
		lookupCache: newTTLCache(1 * time.Hour),
	}
}

// extractImage hunts through page HTML for an og:image, a twitter:image,
// or failing both the first absolute content image.
func extractImage(html string) string {
	if m := ogImagePattern.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	if m := ogImageRevPattern.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	if m := twitterImagePattern.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	if m := firstImgPattern.FindStringSubmatch(html); len(m) > 1 {
		return m[1]
	}
	return ""
}

func (s *Scraper) fetchOne(pageURL string) (string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create scrape request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; storefront-gateway/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape target returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read scrape body: %w", err)
	}

	imageURL := extractImage(string(body))
	if imageURL == "" {
		return "", fmt.Errorf("no image tag found")
	}
	return imageURL, nil
}

// Lookup scrapes one page, serving from the one-hour cache when warm.
func (s *Scraper) Lookup(pageURL string) (string, error) {
	pageURL = normalizeURL(pageURL)
	if cached, ok := s.lookupCache.get(pageURL); ok {
		return cached, nil
	}

	imageURL, err := s.fetchOne(pageURL)
	if err != nil {
		return "", err
	}

	s.lookupCache.set(pageURL, imageURL)
	return imageURL, nil
}

// ScrapeBatch scrapes many product pages with a fixed fan-out of eight.
// Each chunk runs to completion before the next starts; a failed unit is
// counted and skipped, never retried, and never blocks its siblings.
func (s *Scraper) ScrapeBatch(urls []string) BatchSummary {
	results := make([]ScrapeResult, len(urls))

	for start := 0; start < len(urls); start += scrapeConcurrency {
		end := start + scrapeConcurrency
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				pageURL := normalizeURL(urls[idx])

				if cached, ok := s.scrapeCache.get(pageURL); ok {
					results[idx] = ScrapeResult{URL: pageURL, ImageURL: cached, Status: "cached"}
					return
				}

				imageURL, err := s.fetchOne(pageURL)
				if err != nil {
					s.logger.Warn("IMAGES", fmt.Sprintf("Scrape failed for %s: %v", pageURL, err))
					results[idx] = ScrapeResult{URL: pageURL, Status: "failed"}
					return
				}

				s.scrapeCache.set(pageURL, imageURL)
				results[idx] = ScrapeResult{URL: pageURL, ImageURL: imageURL, Status: "ok"}
			}(i)
		}
		wg.Wait()
	}

	summary := BatchSummary{Results: results}
	for _, r := range results {
		if r.Status == "failed" {
			summary.Failed++
		} else {
			summary.OK++
		}
	}

	if summary.Failed > 0 {
		s.logger.Warn("IMAGES", fmt.Sprintf("Batch scrape finished: %d ok, %d failed", summary.OK, summary.Failed))
	}
	return summary
}

// normalizeURL is a light guard against cache-splitting duplicates.
func normalizeURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}
