package scraper

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ProductMarkup is one embedded product metadata block (schema.org JSON-LD)
// reduced to the two fields extraction cares about. Empty fields mean the
// block did not declare them.
type ProductMarkup struct {
	Price string
	Image string
}

// ParseProductMarkup parses every application/ld+json block in the page
// markup. Blocks may hold a single object or an array; malformed blocks are
// skipped. Results keep document order so callers can take the first usable
// field.
func ParseProductMarkup(html string) []ProductMarkup {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var blocks []ProductMarkup
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		switch v := data.(type) {
		case map[string]interface{}:
			if m, ok := markupFromObject(v); ok {
				blocks = append(blocks, m)
			}
		case []interface{}:
			for _, item := range v {
				obj, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if m, ok := markupFromObject(obj); ok {
					blocks = append(blocks, m)
				}
			}
		}
	})

	return blocks
}

func markupFromObject(obj map[string]interface{}) (ProductMarkup, bool) {
	m := ProductMarkup{
		Price: offerPrice(obj["offers"]),
		Image: firstImage(obj["image"]),
	}
	return m, m.Price != "" || m.Image != ""
}

// offerPrice digs price (or priceSpecification.price) out of an offer object
// or the first element of an offer array.
func offerPrice(offers interface{}) string {
	switch v := offers.(type) {
	case map[string]interface{}:
		if p := stringValue(v["price"]); p != "" {
			return p
		}
		if spec, ok := v["priceSpecification"].(map[string]interface{}); ok {
			return stringValue(spec["price"])
		}
	case []interface{}:
		for _, item := range v {
			if p := offerPrice(item); p != "" {
				return p
			}
		}
	}
	return ""
}

func firstImage(image interface{}) string {
	switch v := image.(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// MetaImage returns the page's og:image declaration, if any.
func MetaImage(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// FirstNonLogoImage scans the markup for the first image that does not look
// like a site logo (filtered on src and alt text) and resolves it against the
// page URL.
func FirstNonLogoImage(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return true
		}
		alt, _ := s.Attr("alt")
		if strings.Contains(strings.ToLower(src), "logo") || strings.Contains(strings.ToLower(alt), "logo") {
			return true
		}
		found = resolveURL(pageURL, src)
		return false
	})

	return found
}

// resolveURL makes a possibly relative image source absolute against the page
func resolveURL(pageURL, src string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
