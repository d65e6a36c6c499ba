package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlPage implements Page over a markup snapshot captured after navigation
// settled. Extraction never talks to the live browser, so adapters stay
// testable with plain HTML fixtures.
type htmlPage struct {
	html string
	url  string
	doc  *goquery.Document
}

func newHTMLPage(html, url string) *htmlPage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}
	return &htmlPage{html: html, url: url, doc: doc}
}

func (p *htmlPage) Text(selector string) string {
	if p.doc == nil {
		return ""
	}
	return strings.TrimSpace(p.doc.Find(selector).First().Text())
}

func (p *htmlPage) Attr(selector, attr string) string {
	if p.doc == nil {
		return ""
	}
	value, _ := p.doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(value)
}

func (p *htmlPage) Markup() string {
	return p.html
}

func (p *htmlPage) BodyText() string {
	if p.doc == nil {
		return ""
	}
	return p.doc.Find("body").Text()
}

func (p *htmlPage) URL() string {
	return p.url
}
