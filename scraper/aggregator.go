package scraper

import (
	"fmt"
	"log"

	"pricehawk/config"
	"pricehawk/models"
)

// PageScraper is what the aggregator needs from a browser session.
type PageScraper interface {
	ScrapePage(url string) models.PageResult
	Close()
}

// SessionFactory opens a fresh browser session for one batch.
type SessionFactory func() (PageScraper, error)

// Aggregator scrapes every URL of a product in one browser session and
// reduces the results to the single best offer.
type Aggregator struct {
	newSession SessionFactory
}

// NewAggregator wires the aggregator to real browser sessions.
func NewAggregator(cfg config.ScraperConfig) *Aggregator {
	registry := NewRegistry()
	diag := NewDiagnosticCapture(cfg.DebugDir)
	return &Aggregator{
		newSession: func() (PageScraper, error) {
			return NewSession(cfg, registry, diag)
		},
	}
}

// NewAggregatorWithFactory wires the aggregator to a custom session factory.
func NewAggregatorWithFactory(factory SessionFactory) *Aggregator {
	return &Aggregator{newSession: factory}
}

// ScrapeProduct scrapes all URLs of one product sequentially in a single
// session. Per-URL failures degrade to null results; only a failed browser
// launch (or an empty URL list) fails the batch.
func (a *Aggregator) ScrapeProduct(urls []string) (*models.AggregateResult, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs to scrape")
	}

	session, err := a.newSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start scrape session: %v", err)
	}
	defer session.Close()

	results := make([]models.PageResult, 0, len(urls))
	for _, url := range urls {
		log.Printf("🔗 Scraping %s", url)
		results = append(results, session.ScrapePage(url))
	}

	return Reduce(results), nil
}

// Reduce folds per-URL results into the aggregate: the lowest found price
// wins, ties go to the earlier URL, and image and best URL are taken from the
// winning result. With no prices at all the aggregate fields stay null.
func Reduce(results []models.PageResult) *models.AggregateResult {
	aggregate := &models.AggregateResult{PerURLResults: results}

	var best *models.PageResult
	for i := range results {
		r := &results[i]
		if r.Price == nil {
			continue
		}
		if best == nil || *r.Price < *best.Price {
			best = r
		}
	}

	if best != nil {
		price := *best.Price
		url := best.URL
		aggregate.Price = &price
		aggregate.BestURL = &url
		if best.ImageURL != nil {
			image := *best.ImageURL
			aggregate.ImageURL = &image
		}
	}

	return aggregate
}
