package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Product represents one tracked product: its source URLs, the user's target
// price and the state of the last scrape and the last sent notification.
type Product struct {
	ID                int             `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	UserEmail         string          `json:"user_email" db:"user_email"`
	URLs              []string        `json:"urls" db:"urls"`
	TargetPrice       sql.NullFloat64 `json:"target_price" db:"target_price"`
	ScrapedPrice      sql.NullFloat64 `json:"scraped_price" db:"scraped_price"`
	BestURL           sql.NullString  `json:"best_url" db:"best_url"`
	ImageURL          sql.NullString  `json:"image_url" db:"image_url"`
	LastNotifiedAt    *time.Time      `json:"last_notified_at" db:"last_notified_at"`
	LastNotifiedPrice sql.NullFloat64 `json:"last_notified_price" db:"last_notified_price"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
	IsActive          bool            `json:"is_active" db:"is_active"`
}

// HasTargetPrice returns true if the user set a target price
func (p *Product) HasTargetPrice() bool {
	return p.TargetPrice.Valid
}

// HasScrapedPrice returns true if the last sweep found a price
func (p *Product) HasScrapedPrice() bool {
	return p.ScrapedPrice.Valid
}

// GetTargetPrice returns the target price as float64, or 0 if NULL
func (p *Product) GetTargetPrice() float64 {
	if p.TargetPrice.Valid {
		return p.TargetPrice.Float64
	}
	return 0.0
}

// GetScrapedPrice returns the scraped price as float64, or 0 if NULL
func (p *Product) GetScrapedPrice() float64 {
	if p.ScrapedPrice.Valid {
		return p.ScrapedPrice.Float64
	}
	return 0.0
}

// MarshalJSON implements custom JSON marshaling so NULL prices serialize as null
func (p *Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		*Alias
		TargetPrice       *float64 `json:"target_price"`
		ScrapedPrice      *float64 `json:"scraped_price"`
		BestURL           *string  `json:"best_url"`
		ImageURL          *string  `json:"image_url"`
		LastNotifiedPrice *float64 `json:"last_notified_price"`
	}{
		Alias:             (*Alias)(p),
		TargetPrice:       nullFloatPtr(p.TargetPrice),
		ScrapedPrice:      nullFloatPtr(p.ScrapedPrice),
		BestURL:           nullStringPtr(p.BestURL),
		ImageURL:          nullStringPtr(p.ImageURL),
		LastNotifiedPrice: nullFloatPtr(p.LastNotifiedPrice),
	})
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if v.Valid {
		f := v.Float64
		return &f
	}
	return nil
}

func nullStringPtr(v sql.NullString) *string {
	if v.Valid {
		s := v.String
		return &s
	}
	return nil
}

// PageResult is the outcome of extracting one URL. Nil fields mean the
// extraction missed; a miss for one URL never fails the batch.
type PageResult struct {
	URL      string   `json:"url"`
	Price    *float64 `json:"price"`
	ImageURL *string  `json:"imageUrl"`
}

// AggregateResult reduces the per-URL results of one product to the single
// best (lowest) price. BestURL points at the first PageResult achieving the
// minimum, in input order.
type AggregateResult struct {
	Price         *float64     `json:"price"`
	ImageURL      *string      `json:"imageUrl"`
	BestURL       *string      `json:"bestUrl"`
	PerURLResults []PageResult `json:"perUrlResults"`
}

// ScrapeRequest is the raw-scrape API request body
type ScrapeRequest struct {
	URLs []string `json:"urls"`
}

// AddProductRequest is the request to start tracking a product
type AddProductRequest struct {
	Name        string   `json:"name"`
	UserEmail   string   `json:"user_email"`
	URLs        []string `json:"urls"`
	TargetPrice *float64 `json:"target_price"`
}

// SetTargetRequest updates the target price of a tracked product
type SetTargetRequest struct {
	TargetPrice float64 `json:"target_price"`
}
