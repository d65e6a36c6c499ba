package scheduler

import (
	"database/sql"
	"fmt"
	"testing"

	"pricehawk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products []models.Product
	stored   map[int]*models.AggregateResult
	storeErr error
}

func (f *fakeSource) GetProductsForSweep() ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeSource) UpdateScrapeResult(id int, result *models.AggregateResult) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	if f.stored == nil {
		f.stored = map[int]*models.AggregateResult{}
	}
	f.stored[id] = result
	return nil
}

type fakeAggregator struct {
	results map[string]*models.AggregateResult
	errs    map[string]error
}

func (f *fakeAggregator) ScrapeProduct(urls []string) (*models.AggregateResult, error) {
	key := urls[0]
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

type fakeAlerts struct {
	seen []int
	err  error
}

func (f *fakeAlerts) MaybeNotifyDrop(p *models.Product) (bool, error) {
	f.seen = append(f.seen, p.ID)
	return false, f.err
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func TestRunSweepIsolatesFailingProducts(t *testing.T) {
	source := &fakeSource{
		products: []models.Product{
			{ID: 1, Name: "Broken", URLs: []string{"https://broken.example.com"}},
			{ID: 2, Name: "NoURLs", URLs: nil},
			{ID: 3, Name: "Fine", URLs: []string{"https://fine.example.com"}},
		},
	}
	aggregator := &fakeAggregator{
		results: map[string]*models.AggregateResult{
			"https://fine.example.com": {Price: floatPtr(12.5), BestURL: strPtr("https://fine.example.com")},
		},
		errs: map[string]error{
			"https://broken.example.com": fmt.Errorf("browser crashed"),
		},
	}
	alerts := &fakeAlerts{}

	NewSweeper(source, aggregator, alerts).RunSweep()

	require.Len(t, source.stored, 1)
	assert.Equal(t, 12.5, *source.stored[3].Price)
	assert.Equal(t, []int{3}, alerts.seen, "only successfully scraped products reach the alert service")
}

func TestSweepProductPatchesProductBeforeAlert(t *testing.T) {
	source := &fakeSource{}
	aggregator := &fakeAggregator{
		results: map[string]*models.AggregateResult{
			"https://a.example.com": {
				Price:    floatPtr(9.99),
				BestURL:  strPtr("https://a.example.com"),
				ImageURL: strPtr("https://a.example.com/img.jpg"),
			},
		},
	}

	var alerted *models.Product
	alerts := &captureAlerts{capture: func(p *models.Product) { alerted = p }}

	p := models.Product{
		ID:           5,
		Name:         "Mouse",
		URLs:         []string{"https://a.example.com"},
		ScrapedPrice: sql.NullFloat64{Float64: 20, Valid: true},
	}
	ok := NewSweeper(source, aggregator, alerts).sweepProduct(&p)

	assert.True(t, ok)
	require.NotNil(t, alerted)
	assert.Equal(t, 9.99, alerted.ScrapedPrice.Float64)
	assert.True(t, alerted.ScrapedPrice.Valid)
	assert.Equal(t, "https://a.example.com", alerted.BestURL.String)
	assert.Equal(t, "https://a.example.com/img.jpg", alerted.ImageURL.String)
}

func TestSweepProductKeepsLastKnownPriceOnMiss(t *testing.T) {
	source := &fakeSource{}
	aggregator := &fakeAggregator{
		results: map[string]*models.AggregateResult{
			"https://a.example.com": {},
		},
	}
	alerts := &fakeAlerts{}

	p := models.Product{
		ID:           6,
		Name:         "Keyboard",
		URLs:         []string{"https://a.example.com"},
		ScrapedPrice: sql.NullFloat64{Float64: 20, Valid: true},
		BestURL:      sql.NullString{String: "https://old.example.com", Valid: true},
	}
	ok := NewSweeper(source, aggregator, alerts).sweepProduct(&p)

	assert.True(t, ok)
	assert.True(t, p.ScrapedPrice.Valid, "a total miss keeps the last known price")
	assert.Equal(t, 20.0, p.ScrapedPrice.Float64)
	assert.Equal(t, "https://old.example.com", p.BestURL.String)
	assert.Empty(t, alerts.seen, "no fresh price, no alert decision")
	require.Len(t, source.stored, 1, "updated_at still advances on a miss")
}

type blockingAggregator struct {
	started chan struct{}
	release chan struct{}
	calls   int
}

func (b *blockingAggregator) ScrapeProduct(urls []string) (*models.AggregateResult, error) {
	b.calls++
	b.started <- struct{}{}
	<-b.release
	return &models.AggregateResult{}, nil
}

func TestRunSweepSkipsWhenAlreadyRunning(t *testing.T) {
	source := &fakeSource{
		products: []models.Product{
			{ID: 1, Name: "Mouse", URLs: []string{"https://a.example.com"}},
		},
	}
	aggregator := &blockingAggregator{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sweeper := NewSweeper(source, aggregator, &fakeAlerts{})

	done := make(chan struct{})
	go func() {
		sweeper.RunSweep()
		close(done)
	}()
	<-aggregator.started

	// The manual trigger racing the in-flight sweep must be a no-op.
	sweeper.RunSweep()

	close(aggregator.release)
	<-done

	assert.Equal(t, 1, aggregator.calls)
}

type captureAlerts struct {
	capture func(p *models.Product)
}

func (c *captureAlerts) MaybeNotifyDrop(p *models.Product) (bool, error) {
	c.capture(p)
	return false, nil
}
