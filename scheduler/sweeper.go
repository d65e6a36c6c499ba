package scheduler

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"pricehawk/models"

	"github.com/robfig/cron/v3"
)

// ProductSource lists the products a sweep should refresh.
type ProductSource interface {
	GetProductsForSweep() ([]models.Product, error)
	UpdateScrapeResult(id int, result *models.AggregateResult) error
}

// ProductScraper scrapes all URLs of one product.
type ProductScraper interface {
	ScrapeProduct(urls []string) (*models.AggregateResult, error)
}

// AlertService runs the notification decision for one freshly scraped product.
type AlertService interface {
	MaybeNotifyDrop(p *models.Product) (bool, error)
}

// Sweeper re-scrapes every tracked product on a fixed schedule and hands the
// results to the alert service. Products are swept sequentially; one failing
// product never stops the sweep.
type Sweeper struct {
	cron     *cron.Cron
	products ProductSource
	scraper  ProductScraper
	alerts   AlertService
	sweepMu  sync.Mutex
}

func NewSweeper(products ProductSource, scraper ProductScraper, alerts AlertService) *Sweeper {
	return &Sweeper{
		cron:     cron.New(cron.WithSeconds()),
		products: products,
		scraper:  scraper,
		alerts:   alerts,
	}
}

// Start schedules the periodic sweep (every 12 hours) and kicks off an
// immediate sweep in the background.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc("0 0 */12 * * *", s.RunSweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("⏰ Sweep scheduled every 12 hours")

	go s.RunSweep()

	return nil
}

// Stop halts the schedule. A sweep already in flight finishes on its own.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Printf("⏰ Sweep schedule stopped")
}

// RunSweep refreshes every active product once. At most one sweep runs at a
// time: a manual trigger racing the cron run is a no-op.
func (s *Sweeper) RunSweep() {
	if !s.sweepMu.TryLock() {
		log.Printf("🔄 Sweep already in flight, skipping")
		return
	}
	defer s.sweepMu.Unlock()

	started := time.Now()
	log.Printf("🔄 Starting product sweep...")

	products, err := s.products.GetProductsForSweep()
	if err != nil {
		log.Printf("❌ Failed to load products for sweep: %v", err)
		return
	}

	if len(products) == 0 {
		log.Printf("🔄 No products to sweep")
		return
	}

	swept := 0
	for i := range products {
		if s.sweepProduct(&products[i]) {
			swept++
		}
	}

	log.Printf("🔄 Sweep finished: %d/%d products refreshed in %v", swept, len(products), time.Since(started).Round(time.Second))
}

// sweepProduct scrapes one product and runs the alert decision. All errors
// are logged and contained here so the sweep loop keeps going.
func (s *Sweeper) sweepProduct(p *models.Product) bool {
	if len(p.URLs) == 0 {
		log.Printf("⚠️ Product %d (%s) has no URLs, skipping", p.ID, p.Name)
		return false
	}

	result, err := s.scraper.ScrapeProduct(p.URLs)
	if err != nil {
		log.Printf("❌ Failed to scrape product %d (%s): %v", p.ID, p.Name, err)
		return false
	}

	if err := s.products.UpdateScrapeResult(p.ID, result); err != nil {
		log.Printf("❌ Failed to store scrape result for product %d: %v", p.ID, err)
		return false
	}

	// A total miss keeps the last known price and skips the alert decision:
	// there is no fresh price to alert on.
	if result.Price == nil {
		log.Printf("🔍 No price found for product %d (%s), keeping last known price", p.ID, p.Name)
		return true
	}

	// Patch the in-memory product so the alert decision sees the fresh scrape
	// without another DB read.
	p.ScrapedPrice = sql.NullFloat64{Float64: *result.Price, Valid: true}
	p.BestURL.Valid = result.BestURL != nil
	if result.BestURL != nil {
		p.BestURL.String = *result.BestURL
	}
	p.ImageURL.Valid = result.ImageURL != nil
	if result.ImageURL != nil {
		p.ImageURL.String = *result.ImageURL
	}

	if _, err := s.alerts.MaybeNotifyDrop(p); err != nil {
		log.Printf("❌ Alert failed for product %d (%s): %v", p.ID, p.Name, err)
	}

	return true
}
