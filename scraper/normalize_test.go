package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"comma decimal with thousands dot", "1.083,39 €", 1083.39, true},
		{"dot decimal with currency", "19.99 EUR", 19.99, true},
		{"comma decimal", "49,90 €", 49.9, true},
		{"plain integer", "1200 kn", 1200, true},
		{"price embedded in text", "Cijena: 249,99 € s PDV-om", 249.99, true},
		{"dot decimal plain", "5.00", 5, true},
		{"letters only", "abc", 0, false},
		{"empty string", "", 0, false},
		{"whitespace only", "   ", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePrice(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestNormalizePriceRoundsToTwoDecimals(t *testing.T) {
	got, ok := NormalizePrice("19.99")
	assert.True(t, ok)
	assert.Equal(t, 19.99, got)
}
