package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"pricehawk/models"
	"pricehawk/repository"

	"github.com/gorilla/mux"
)

// ProductScraper scrapes all URLs of one product and aggregates the result.
type ProductScraper interface {
	ScrapeProduct(urls []string) (*models.AggregateResult, error)
}

// SweepRunner runs one full sweep over every tracked product.
type SweepRunner interface {
	RunSweep()
}

type Handlers struct {
	products *repository.ProductRepository
	scraper  ProductScraper
	sweeper  SweepRunner
}

func NewHandlers(products *repository.ProductRepository, scraper ProductScraper, sweeper SweepRunner) *Handlers {
	return &Handlers{
		products: products,
		scraper:  scraper,
		sweeper:  sweeper,
	}
}

// ScrapeProduct runs an ad-hoc scrape of a set of URLs without tracking them.
// POST /api/v1/scrape {"urls": [...]}
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls must be a non-empty array")
		return
	}

	result, err := h.scraper.ScrapeProduct(req.URLs)
	if err != nil {
		log.Printf("❌ Scrape request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to scrape product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"price":      result.Price,
		"imageUrl":   result.ImageURL,
		"bestUrl":    result.BestURL,
		"allResults": result.PerURLResults,
	})
}

// AddProduct starts tracking a new product
// POST /api/v1/products
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls must be a non-empty array")
		return
	}

	product, err := h.products.AddProduct(req.Name, req.UserEmail, req.URLs, req.TargetPrice)
	if err != nil {
		log.Printf("❌ Failed to add product: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to add product")
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// GetProducts returns all tracked products
// GET /api/v1/products
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetProducts()
	if err != nil {
		log.Printf("❌ Failed to get products: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct returns a single tracked product
// GET /api/v1/products/{id}
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.products.GetProductByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// SetTargetPrice updates the target price of a tracked product
// PUT /api/v1/products/{id}/target
func (h *Handlers) SetTargetPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req models.SetTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetPrice <= 0 {
		writeError(w, http.StatusBadRequest, "target_price must be positive")
		return
	}

	if _, err := h.products.GetProductByID(id); err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.products.UpdateTargetPrice(id, req.TargetPrice); err != nil {
		log.Printf("❌ Failed to update target price for product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update target price")
		return
	}

	product, err := h.products.GetProductByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load updated product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct stops tracking a product
// DELETE /api/v1/products/{id}
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if _, err := h.products.GetProductByID(id); err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.products.DeleteProduct(id); err != nil {
		log.Printf("❌ Failed to delete product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// TriggerSweep kicks off a sweep in the background
// POST /api/v1/sweep
func (h *Handlers) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	go h.sweeper.RunSweep()
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "sweep started"})
}

// HealthCheck reports service liveness
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
