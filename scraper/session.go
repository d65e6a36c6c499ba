package scraper

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pricehawk/config"
	"pricehawk/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Session owns one headless browser and one stealth page for the duration of
// one scrape batch. The page is configured once at launch and reused for every
// navigation, so per-URL work is just navigate + extract.
type Session struct {
	browser  *rod.Browser
	page     *rod.Page
	registry *Registry
	diag     *DiagnosticCapture
	cfg      config.ScraperConfig
}

// NewSession launches the browser and opens the batch page. This is the only
// fatal failure mode of a scrape batch; everything after launch degrades per
// URL.
func NewSession(cfg config.ScraperConfig, registry *Registry, diag *DiagnosticCapture) (*Session, error) {
	// Use system Chromium in Docker, auto-detect locally
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Leakless(false)

	switch {
	case cfg.BrowserBin != "":
		l = l.Bin(cfg.BrowserBin)
	default:
		if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
			l = l.Bin("/usr/bin/chromium-browser")
			log.Printf("Using system Chromium in Docker environment")
		} else {
			log.Printf("Using auto-detected Chromium (local environment)")
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		if closeErr := browser.Close(); closeErr != nil {
			log.Printf("⚠️ Failed to close browser: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to open stealth page: %v", err)
	}

	s := &Session{
		browser:  browser,
		page:     page,
		registry: registry,
		cfg:      cfg,
		diag:     diag,
	}

	if err := s.preparePage(); err != nil {
		log.Printf("⚠️ Failed to prepare page: %v", err)
	}

	return s, nil
}

// Close releases the page and the browser. Safe to call on a partially
// initialized session.
func (s *Session) Close() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Printf("⚠️ Failed to close page: %v", err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("⚠️ Failed to close browser: %v", err)
		}
	}
}

// ScrapePage navigates the batch page to one URL and extracts its price and
// image. It never returns an error: every failure degrades to null fields so
// one bad URL cannot fail the batch.
func (s *Session) ScrapePage(url string) models.PageResult {
	result := models.PageResult{URL: url}

	if err := s.navigate(url); err != nil {
		log.Printf("❌ Navigation failed for %s: %v", url, err)
		s.diag.Capture(s.page, url, "navigation-error")
		return result
	}

	s.dismissConsent()
	time.Sleep(s.cfg.SettleDelay)
	s.scrollToBottom()

	html, err := s.page.HTML()
	if err != nil {
		log.Printf("❌ Failed to read page markup for %s: %v", url, err)
		s.diag.Capture(s.page, url, "markup-error")
		return result
	}

	adapter := s.registry.ForURL(url)
	extraction := adapter.Extract(newHTMLPage(html, url))

	if extraction.ImageURL != "" {
		image := extraction.ImageURL
		result.ImageURL = &image
	}

	if extraction.PriceText == "" {
		log.Printf("🔍 No price text found for %s (adapter: %s)", url, adapter.Name)
		s.diag.Capture(s.page, url, adapter.Name+"_no-price")
		return result
	}

	price, ok := NormalizePrice(extraction.PriceText)
	if !ok {
		log.Printf("🔍 Unparseable price %q for %s (adapter: %s, attempt: %s)",
			extraction.PriceText, url, adapter.Name, extraction.Attempt)
		s.diag.Capture(s.page, url, adapter.Name+"_bad-price")
		return result
	}

	log.Printf("✅ Extracted %.2f from %s (adapter: %s, attempt: %s)", price, url, adapter.Name, extraction.Attempt)
	result.Price = &price
	return result
}

// preparePage applies the session's fingerprint configuration once; every
// navigation of the batch inherits it.
func (s *Session) preparePage() error {
	if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.cfg.UserAgent,
		AcceptLanguage: s.cfg.AcceptLanguage,
	}); err != nil {
		return fmt.Errorf("failed to set user agent: %v", err)
	}

	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return fmt.Errorf("failed to set viewport: %v", err)
	}

	return nil
}

func (s *Session) navigate(url string) error {
	timed := s.page.Timeout(s.cfg.NavigationTimeout)
	if err := timed.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %v", err)
	}
	if err := timed.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for load: %v", err)
	}
	return nil
}

// consentSelectors are the accept buttons of the consent frameworks seen on
// the supported stores (OneTrust, Amazon, Usercentrics, eBay).
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#sp-cc-accept",
	`button[data-testid="uc-accept-all-button"]`,
	"#gdpr-banner-accept",
}

// consentKeywords cover generic accept-button wording in English, Croatian
// and German. Matched by containment, so "Accept all cookies" and
// "Prihvaćam sve kolačiće" both hit.
var consentKeywords = []string{
	"accept all", "accept", "agree",
	"prihvaćam", "prihvati", "slažem se",
	"alle akzeptieren", "akzeptieren", "zustimmen",
}

// consentRejectWords disqualify buttons that contain a consent keyword but
// point the other way ("Disagree", "Manage settings", ...).
var consentRejectWords = []string{
	"disagree", "reject", "decline", "manage", "settings",
	"odbij", "postavke", "ablehnen", "einstellungen",
}

// consentButtonIndex picks the first button whose label reads like a consent
// accept. Returns -1 when none qualifies.
func consentButtonIndex(labels []string) int {
	for i, label := range labels {
		l := strings.ToLower(strings.TrimSpace(label))
		if l == "" || len(l) > 60 {
			continue
		}
		if containsAny(l, consentRejectWords) {
			continue
		}
		if containsAny(l, consentKeywords) {
			return i
		}
	}
	return -1
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// dismissConsent clicks away cookie banners so they don't cover prices in
// screenshots. Best effort; every error is swallowed.
func (s *Session) dismissConsent() {
	for _, selector := range consentSelectors {
		elements, err := s.page.Elements(selector)
		if err != nil || len(elements) == 0 {
			continue
		}
		if err := elements[0].Click(proto.InputMouseButtonLeft, 1); err == nil {
			log.Printf("🍪 Dismissed consent banner via %s", selector)
			time.Sleep(500 * time.Millisecond)
			return
		}
	}

	idx := consentButtonIndex(s.buttonLabels())
	if idx < 0 {
		return
	}

	_, err := s.page.Eval(`(i) => {
		const buttons = document.querySelectorAll('button, [role="button"]');
		if (buttons[i]) buttons[i].click();
	}`, idx)
	if err == nil {
		log.Printf("🍪 Dismissed consent banner via button text")
		time.Sleep(500 * time.Millisecond)
	}
}

// buttonLabels collects the visible labels of every button-like element.
func (s *Session) buttonLabels() []string {
	obj, err := s.page.Eval(`() =>
		Array.from(document.querySelectorAll('button, [role="button"]'))
			.map(b => (b.textContent || '').trim())`)
	if err != nil {
		return nil
	}

	items := obj.Value.Arr()
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Str())
	}
	return labels
}

// scrollToBottom steps the viewport down the page so lazy-loaded prices and
// images render before the markup snapshot is taken.
func (s *Session) scrollToBottom() {
	for i := 0; i < s.cfg.ScrollSteps; i++ {
		if _, err := s.page.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
			return
		}
		time.Sleep(s.cfg.ScrollDelay)
	}
}
