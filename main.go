package main

import (
	"log"
	"net/http"
	"strings"

	"pricehawk/config"
	"pricehawk/database"
	"pricehawk/handlers"
	"pricehawk/middleware"
	"pricehawk/repository"
	"pricehawk/scheduler"
	"pricehawk/scraper"
	"pricehawk/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	serverCfg := config.LoadServerConfig()
	scraperCfg := config.LoadScraperConfig()
	mailCfg := config.LoadMailConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	products := repository.NewProductRepository()
	aggregator := scraper.NewAggregator(scraperCfg)
	mailer := services.NewSMTPMailer(mailCfg)
	alerts := services.NewPriceAlertService(products, mailer)

	// Start the periodic sweep (plus one immediate run)
	sweeper := scheduler.NewSweeper(products, aggregator, alerts)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	h := handlers.NewHandlers(products, aggregator, sweeper)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(serverCfg.RateLimit))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/scrape", h.ScrapeProduct).Methods("POST")
	apiV1.HandleFunc("/products", h.AddProduct).Methods("POST")
	apiV1.HandleFunc("/products", h.GetProducts).Methods("GET")
	apiV1.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	apiV1.HandleFunc("/products/{id}/target", h.SetTargetPrice).Methods("PUT")
	apiV1.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")
	apiV1.HandleFunc("/sweep", h.TriggerSweep).Methods("POST")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(serverCfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on port %s", serverCfg.Port)
	log.Printf("📋 API:")
	log.Printf("   GET    /health - Health check")
	log.Printf("   POST   /api/v1/scrape - Ad-hoc multi-URL scrape")
	log.Printf("   POST   /api/v1/products - Track a product")
	log.Printf("   GET    /api/v1/products - List tracked products")
	log.Printf("   GET    /api/v1/products/{id} - Product details")
	log.Printf("   PUT    /api/v1/products/{id}/target - Set target price")
	log.Printf("   DELETE /api/v1/products/{id} - Stop tracking")
	log.Printf("   POST   /api/v1/sweep - Trigger a sweep now")

	log.Fatal(http.ListenAndServe(serverCfg.Host+":"+serverCfg.Port, c.Handler(r)))
}
