package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricehawk/database"
	"pricehawk/models"

	"github.com/lib/pq"
)

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

const productColumns = `id, name, user_email, urls, target_price, scraped_price, best_url, image_url, last_notified_at, last_notified_price, created_at, updated_at, is_active`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.UserEmail, pq.Array(&p.URLs),
		&p.TargetPrice, &p.ScrapedPrice, &p.BestURL, &p.ImageURL,
		&p.LastNotifiedAt, &p.LastNotifiedPrice,
		&p.CreatedAt, &p.UpdatedAt, &p.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddProduct starts tracking a new product
func (r *ProductRepository) AddProduct(name, userEmail string, urls []string, targetPrice *float64) (*models.Product, error) {
	query := `
		INSERT INTO products (name, user_email, urls, target_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + productColumns

	now := time.Now()
	product, err := scanProduct(database.DB.QueryRow(query, name, userEmail, pq.Array(urls), targetPrice, now))
	if err != nil {
		return nil, fmt.Errorf("failed to add product: %v", err)
	}

	return product, nil
}

// GetProducts returns all active products
func (r *ProductRepository) GetProducts() ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %v", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, *p)
	}

	return products, nil
}

// GetProductByID returns an active product by ID
func (r *ProductRepository) GetProductByID(id int) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND is_active = true
	`

	product, err := scanProduct(database.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %v", err)
	}

	return product, nil
}

// GetProductsForSweep returns all products the periodic sweep should scrape
func (r *ProductRepository) GetProductsForSweep() ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true
		ORDER BY updated_at ASC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get products for sweep: %v", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, *p)
	}

	return products, nil
}

// UpdateScrapeResult writes the outcome of one aggregate scrape back to the
// product. A total miss (no price on any URL) keeps the last known price,
// image and store; only updated_at advances so the sweep cadence stays
// visible.
func (r *ProductRepository) UpdateScrapeResult(id int, result *models.AggregateResult) error {
	if result.Price == nil {
		query := `UPDATE products SET updated_at = $2 WHERE id = $1`
		_, err := database.DB.Exec(query, id, time.Now())
		if err != nil {
			return fmt.Errorf("failed to update scrape result: %v", err)
		}
		return nil
	}

	query := `
		UPDATE products
		SET scraped_price = $2, image_url = $3, best_url = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := database.DB.Exec(query, id, result.Price, result.ImageURL, result.BestURL, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update scrape result: %v", err)
	}

	return nil
}

// UpdateNotificationState records a successfully sent notification. Called
// strictly after the mail transport confirmed the send.
func (r *ProductRepository) UpdateNotificationState(id int, notifiedAt time.Time, price float64) error {
	query := `
		UPDATE products
		SET last_notified_at = $2, last_notified_price = $3, updated_at = $2
		WHERE id = $1
	`

	_, err := database.DB.Exec(query, id, notifiedAt, price)
	if err != nil {
		return fmt.Errorf("failed to update notification state: %v", err)
	}

	return nil
}

// UpdateTargetPrice changes the user's target price for a product
func (r *ProductRepository) UpdateTargetPrice(id int, target float64) error {
	query := `UPDATE products SET target_price = $2, updated_at = $3 WHERE id = $1`
	_, err := database.DB.Exec(query, id, target, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update target price: %v", err)
	}
	return nil
}

// DeleteProduct stops tracking a product
func (r *ProductRepository) DeleteProduct(id int) error {
	query := `UPDATE products SET is_active = false WHERE id = $1`
	_, err := database.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %v", err)
	}
	return nil
}
