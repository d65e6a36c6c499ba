package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

// Page is the read-only surface an extraction attempt works against. The live
// implementation wraps a navigated browser page; tests supply fakes.
type Page interface {
	// Text returns the trimmed text of the first element matching selector,
	// or "" when nothing matches.
	Text(selector string) string
	// Attr returns the named attribute of the first element matching
	// selector, or "" when nothing matches.
	Attr(selector, attr string) string
	// Markup returns the page HTML as captured after navigation settled.
	Markup() string
	// BodyText returns the rendered text content of the page body.
	BodyText() string
	// URL returns the page's current URL.
	URL() string
}

// Extraction is what one adapter pulls from a loaded page. PriceText is raw
// store text, not yet normalized; empty fields are misses.
type Extraction struct {
	PriceText string
	ImageURL  string
	Attempt   string
}

// Attempt is one named way of pulling a raw value from a page. Attempts
// return "" on a miss and are tried in order, first success wins.
type Attempt struct {
	Name string
	Run  func(pg Page) string
}

// firstSuccess runs attempts in order and returns the first non-empty result
// together with the attempt's name.
func firstSuccess(pg Page, attempts []Attempt) (string, string) {
	for _, attempt := range attempts {
		if value := strings.TrimSpace(attempt.Run(pg)); value != "" {
			return value, attempt.Name
		}
	}
	return "", ""
}

// Adapter is a store-specific extraction strategy: an ordered list of price
// attempts and an ordered list of image attempts. Adapters hold no mutable
// state, so adding a store never affects existing ones.
type Adapter struct {
	Name  string
	hosts []string
	price []Attempt
	image []Attempt
}

// Matches reports whether the adapter handles the given hostname
// (case-insensitive substring match).
func (a *Adapter) Matches(hostname string) bool {
	host := strings.ToLower(hostname)
	for _, h := range a.hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// Extract runs the adapter's attempt chains against a loaded page.
func (a *Adapter) Extract(pg Page) Extraction {
	priceText, attempt := firstSuccess(pg, a.price)
	imageURL, _ := firstSuccess(pg, a.image)
	return Extraction{PriceText: priceText, ImageURL: imageURL, Attempt: attempt}
}

// Registry maps URL hostnames to adapters. Known stores are checked in order,
// first match wins; everything else falls back to the generic adapter.
type Registry struct {
	adapters []*Adapter
	generic  *Adapter
}

// ForURL selects the adapter for a URL. Unparseable URLs get the generic one.
func (r *Registry) ForURL(rawURL string) *Adapter {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return r.generic
	}
	for _, adapter := range r.adapters {
		if adapter.Matches(parsed.Hostname()) {
			return adapter
		}
	}
	return r.generic
}

// Generic returns the fallback adapter used when no store matches.
func (r *Registry) Generic() *Adapter {
	return r.generic
}

// structured-data attempts shared by every adapter

func structuredPrice() Attempt {
	return Attempt{Name: "structured-data", Run: func(pg Page) string {
		for _, block := range ParseProductMarkup(pg.Markup()) {
			if block.Price != "" {
				return block.Price
			}
		}
		return ""
	}}
}

func structuredImage() Attempt {
	return Attempt{Name: "structured-data", Run: func(pg Page) string {
		for _, block := range ParseProductMarkup(pg.Markup()) {
			if block.Image != "" {
				return block.Image
			}
		}
		return ""
	}}
}

// textAttempt tries selectors in order and returns the first non-empty text
func textAttempt(name string, selectors ...string) Attempt {
	return Attempt{Name: name, Run: func(pg Page) string {
		for _, selector := range selectors {
			if text := strings.TrimSpace(pg.Text(selector)); len(text) > 1 {
				return text
			}
		}
		return ""
	}}
}

// attrAttempt tries selectors in order and returns the first non-empty attribute
func attrAttempt(name, attr string, selectors ...string) Attempt {
	return Attempt{Name: name, Run: func(pg Page) string {
		for _, selector := range selectors {
			if value := strings.TrimSpace(pg.Attr(selector, attr)); value != "" {
				return value
			}
		}
		return ""
	}}
}

// bodyPriceRe is the absolute last resort: a euro amount anywhere in the
// rendered page text.
var bodyPriceRe = regexp.MustCompile(`(?i)([0-9]{1,5}[,.][0-9]{2})\s*(€|EUR)`)

func bodyTextScan() Attempt {
	return Attempt{Name: "body-text-scan", Run: func(pg Page) string {
		return bodyPriceRe.FindString(pg.BodyText())
	}}
}

func metaImage() Attempt {
	return Attempt{Name: "og-image", Run: func(pg Page) string {
		return MetaImage(pg.Markup())
	}}
}

func nonLogoImage() Attempt {
	return Attempt{Name: "first-non-logo-image", Run: func(pg Page) string {
		return FirstNonLogoImage(pg.Markup(), pg.URL())
	}}
}

// genericImageChain is the image fallback shared by all adapters after their
// store-specific attempts: declared og:image, then the first non-logo image.
func genericImageChain() []Attempt {
	return []Attempt{metaImage(), nonLogoImage()}
}

// NewRegistry builds the registry of known store adapters plus the generic
// fallback. The per-store selector lists are ordered most to least specific.
func NewRegistry() *Registry {
	amazon := &Adapter{
		Name:  "amazon",
		hosts: []string{"amazon"},
		price: []Attempt{
			structuredPrice(),
			textAttempt("core-price", "#corePrice_feature_div span.a-offscreen", "#corePriceDisplay_desktop_feature_div .a-price .a-offscreen"),
			textAttempt("legacy-price", "#priceblock_ourprice", "#priceblock_dealprice", "span.a-price .a-offscreen"),
		},
		image: append([]Attempt{
			structuredImage(),
			attrAttempt("landing-image", "src", "#landingImage", "#imgBlkFront"),
		}, genericImageChain()...),
	}

	ebay := &Adapter{
		Name:  "ebay",
		hosts: []string{"ebay"},
		price: []Attempt{
			structuredPrice(),
			textAttempt("primary-price", ".x-price-primary .ux-textspans", "[data-testid='x-price-primary']"),
			textAttempt("itemprop-price", "[itemprop='price']", "#prcIsum"),
		},
		image: append([]Attempt{
			structuredImage(),
			attrAttempt("carousel-image", "src", ".ux-image-carousel-item img", "#icImg"),
		}, genericImageChain()...),
	}

	zalando := &Adapter{
		Name:  "zalando",
		hosts: []string{"zalando"},
		price: []Attempt{
			structuredPrice(),
			textAttempt("pdp-price", "[data-testid='pdp-price']", "span[class*='price']"),
		},
		image: append([]Attempt{
			structuredImage(),
			attrAttempt("gallery-image", "src", "[data-testid='pdp_gallery'] img", "x-wrapper-re-1-3 img"),
		}, genericImageChain()...),
	}

	asos := &Adapter{
		Name:  "asos",
		hosts: []string{"asos"},
		price: []Attempt{
			structuredPrice(),
			textAttempt("current-price", "[data-testid='current-price']", ".product-hero-price", "[data-testid='price-screenreader-only-text']"),
		},
		image: append([]Attempt{
			structuredImage(),
			attrAttempt("gallery-image", "src", ".gallery-image img", "#product-gallery img"),
		}, genericImageChain()...),
	}

	njuskalo := &Adapter{
		Name:  "njuskalo",
		hosts: []string{"njuskalo"},
		price: []Attempt{
			structuredPrice(),
			textAttempt("classified-price", ".ClassifiedDetailSummary-priceDomestic", ".ClassifiedDetailSummary-priceForeign"),
			textAttempt("price-class", "[class*='price']", "[class*='cijena']"),
		},
		image: append([]Attempt{
			structuredImage(),
			attrAttempt("gallery-image", "src", ".ClassifiedDetailGallery img", ".ClassifiedDetailOwnerDetails img"),
		}, genericImageChain()...),
	}

	links := &Adapter{
		Name:  "links",
		hosts: []string{"links"},
		price: []Attempt{
			structuredPrice(),
			textAttempt("product-price", "#our_price_display", ".product-price", ".price-actual"),
			textAttempt("price-class", "[class*='cijena']", "[class*='iznos']", "[class*='price']"),
		},
		image: append([]Attempt{
			structuredImage(),
			attrAttempt("product-image", "src", "#bigpic", ".product-image img"),
		}, genericImageChain()...),
	}

	generic := &Adapter{
		Name:  "generic",
		hosts: nil,
		price: []Attempt{
			structuredPrice(),
			textAttempt("field-selectors", "#our_price_display", "[itemprop='price']", "[data-price]", "[data-price-final]"),
			textAttempt("ui-text-selectors",
				"[class*='price__item']", "[class*='price']", "[class*='cijena']", "[class*='iznos']",
				"[class*='amount']", ".product-price", ".price", ".price-actual", ".price-final"),
			bodyTextScan(),
		},
		image: append([]Attempt{structuredImage()}, genericImageChain()...),
	}

	return &Registry{
		adapters: []*Adapter{amazon, ebay, zalando, asos, njuskalo, links},
		generic:  generic,
	}
}
