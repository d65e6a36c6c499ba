package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsentButtonIndex(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   int
	}{
		{"exact english label", []string{"Search", "Accept all"}, 1},
		{"keyword inside longer label", []string{"Search", "Accept all cookies"}, 1},
		{"croatian label with suffix", []string{"Prihvaćam sve kolačiće"}, 0},
		{"german label", []string{"Mehr erfahren", "Alle akzeptieren"}, 1},
		{"first qualifying button wins", []string{"I agree", "Accept all"}, 0},
		{"disagree never qualifies", []string{"Disagree"}, -1},
		{"manage settings never qualifies", []string{"Manage cookie settings"}, -1},
		{"reject skipped, accept found", []string{"Reject all", "Accept all"}, 1},
		{"unrelated buttons", []string{"Add to cart", "Checkout"}, -1},
		{"empty labels", []string{"", "   "}, -1},
		{"no buttons", nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, consentButtonIndex(tt.labels))
		})
	}
}

func TestConsentButtonIndexIgnoresLongText(t *testing.T) {
	// A cookie policy paragraph wrapped in role="button" must not be clicked
	// even though it contains "accept".
	wall := "We and our partners use cookies. Click accept to consent to the processing of your data."
	assert.Equal(t, -1, consentButtonIndex([]string{wall}))
}
