package config

import (
	"os"
	"strconv"
	"time"
)

// ScraperConfig holds the browser session configuration. One session is
// launched per scrape batch with these settings applied once.
type ScraperConfig struct {
	BrowserBin        string
	Headless          bool
	UserAgent         string
	AcceptLanguage    string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	ScrollSteps       int
	ScrollDelay       time.Duration
	DebugDir          string
}

// MailConfig holds the SMTP settings for price drop notifications.
type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Sender     string
	SenderName string
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins string
	RateLimit      float64 // requests per second per client
}

// LoadScraperConfig loads scraper configuration from environment variables
func LoadScraperConfig() ScraperConfig {
	return ScraperConfig{
		BrowserBin:        os.Getenv("BROWSER_BIN"),
		Headless:          getEnvBool("BROWSER_HEADLESS", true),
		UserAgent:         getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		AcceptLanguage:    getEnv("SCRAPER_ACCEPT_LANGUAGE", "en-US,en;q=0.9,hr;q=0.8"),
		ViewportWidth:     getEnvInt("SCRAPER_VIEWPORT_WIDTH", 1920),
		ViewportHeight:    getEnvInt("SCRAPER_VIEWPORT_HEIGHT", 1080),
		NavigationTimeout: getEnvDuration("SCRAPER_NAVIGATION_TIMEOUT", 30*time.Second),
		SettleDelay:       getEnvDuration("SCRAPER_SETTLE_DELAY", 2*time.Second),
		ScrollSteps:       getEnvInt("SCRAPER_SCROLL_STEPS", 8),
		ScrollDelay:       getEnvDuration("SCRAPER_SCROLL_DELAY", 250*time.Millisecond),
		DebugDir:          getEnv("SCRAPER_DEBUG_DIR", "debug"),
	}
}

// LoadMailConfig loads SMTP configuration from environment variables
func LoadMailConfig() MailConfig {
	return MailConfig{
		Host:       getEnv("SMTP_HOST", "localhost"),
		Port:       getEnvInt("SMTP_PORT", 587),
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		Sender:     getEnv("MAIL_SENDER", "alerts@pricehawk.app"),
		SenderName: getEnv("MAIL_SENDER_NAME", "PriceHawk"),
	}
}

// LoadServerConfig loads HTTP server configuration from environment variables
func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimit:      getEnvFloat("RATE_LIMIT_RPS", 5.0),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
