package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePage struct {
	texts  map[string]string
	attrs  map[string]string
	markup string
	body   string
	url    string
}

func (f *fakePage) Text(selector string) string {
	return f.texts[selector]
}

func (f *fakePage) Attr(selector, attr string) string {
	return f.attrs[selector+"|"+attr]
}

func (f *fakePage) Markup() string   { return f.markup }
func (f *fakePage) BodyText() string { return f.body }
func (f *fakePage) URL() string      { return f.url }

func TestRegistryDispatch(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.de/dp/B0ABC123", "amazon"},
		{"https://WWW.AMAZON.COM/dp/B0ABC123", "amazon"},
		{"https://www.ebay.de/itm/123", "ebay"},
		{"https://en.zalando.de/some-shoe", "zalando"},
		{"https://www.asos.com/product/123", "asos"},
		{"https://www.njuskalo.hr/nekretnine/stan", "njuskalo"},
		{"https://www.links.hr/hr/laptop", "links"},
		{"https://shop.example.com/product/1", "generic"},
		{"not a url at all", "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, registry.ForURL(tt.url).Name)
		})
	}
}

func TestFirstSuccessPrecedence(t *testing.T) {
	pg := &fakePage{}

	attempts := []Attempt{
		{Name: "first", Run: func(Page) string { return "" }},
		{Name: "second", Run: func(Page) string { return "  19.99 €  " }},
		{Name: "third", Run: func(Page) string { return "9.99 €" }},
	}

	value, name := firstSuccess(pg, attempts)
	assert.Equal(t, "19.99 €", value)
	assert.Equal(t, "second", name)
}

func TestFirstSuccessAllMiss(t *testing.T) {
	pg := &fakePage{}

	value, name := firstSuccess(pg, []Attempt{
		{Name: "only", Run: func(Page) string { return "" }},
	})
	assert.Empty(t, value)
	assert.Empty(t, name)
}

func TestGenericAdapterSelectorChain(t *testing.T) {
	registry := NewRegistry()
	pg := &fakePage{
		texts: map[string]string{
			"[class*='price']": "49,90 €",
		},
	}

	extraction := registry.Generic().Extract(pg)
	assert.Equal(t, "49,90 €", extraction.PriceText)
	assert.Equal(t, "ui-text-selectors", extraction.Attempt)
}

func TestGenericAdapterBodyTextFallback(t *testing.T) {
	registry := NewRegistry()
	pg := &fakePage{
		body: "Super ponuda! Samo danas za 123,45 € umjesto 199,99 €",
	}

	extraction := registry.Generic().Extract(pg)
	assert.Equal(t, "123,45 €", extraction.PriceText)
	assert.Equal(t, "body-text-scan", extraction.Attempt)
}

func TestStructuredDataBeatsSelectors(t *testing.T) {
	registry := NewRegistry()
	pg := &fakePage{
		markup: `<html><head><script type="application/ld+json">
			{"@type": "Product", "offers": {"price": "89.99"}, "image": "https://cdn.example.com/p.jpg"}
		</script></head><body></body></html>`,
		texts: map[string]string{
			".price": "999,99 €",
		},
	}

	extraction := registry.Generic().Extract(pg)
	assert.Equal(t, "89.99", extraction.PriceText)
	assert.Equal(t, "structured-data", extraction.Attempt)
	assert.Equal(t, "https://cdn.example.com/p.jpg", extraction.ImageURL)
}
