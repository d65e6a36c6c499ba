package services

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"pricehawk/models"
)

const (
	// MinDropAbs is the smallest absolute drop (vs. the last notified price)
	// worth a repeat notification.
	MinDropAbs = 1.00
	// MinDropPct is the smallest percentage drop (vs. the last notified
	// price) worth a repeat notification.
	MinDropPct = 5.0
	// CooldownWindow is the minimum gap between two notifications for the
	// same product.
	CooldownWindow = 24 * time.Hour
)

// NotificationStore persists the fact that a notification went out. It is
// called strictly after the mailer confirmed the send.
type NotificationStore interface {
	UpdateNotificationState(id int, notifiedAt time.Time, price float64) error
}

// PriceAlertService decides whether a freshly scraped price deserves a
// notification, sends it, and commits the notification state.
type PriceAlertService struct {
	store  NotificationStore
	mailer Mailer
	now    func() time.Time
}

func NewPriceAlertService(store NotificationStore, mailer Mailer) *PriceAlertService {
	return &PriceAlertService{
		store:  store,
		mailer: mailer,
		now:    time.Now,
	}
}

// IsSignificantDrop reports whether newPrice is enough of a drop from the last
// notified price to warrant another mail. A first-time notification (no prior
// notified price) is always significant.
func IsSignificantDrop(newPrice float64, lastNotified *float64) bool {
	if lastNotified == nil {
		return true
	}
	drop := *lastNotified - newPrice
	if drop <= 0 {
		return false
	}
	return drop >= MinDropAbs || (drop/(*lastNotified))*100 >= MinDropPct
}

// MaybeNotifyDrop runs the notification guard chain for one product and sends
// the alert if every guard passes. It returns whether a mail went out.
// Notification state is only updated after a confirmed send; a failed send
// leaves the product eligible for the next sweep.
func (s *PriceAlertService) MaybeNotifyDrop(p *models.Product) (bool, error) {
	if !p.HasScrapedPrice() || !p.HasTargetPrice() {
		return false, nil
	}

	scraped := p.GetScrapedPrice()
	target := p.GetTargetPrice()
	if scraped >= target {
		return false, nil
	}

	if p.UserEmail == "" {
		log.Printf("⚠️ Product %d has no notification email, skipping alert", p.ID)
		return false, nil
	}

	now := s.now()
	if p.LastNotifiedAt != nil && now.Sub(*p.LastNotifiedAt) < CooldownWindow {
		return false, nil
	}

	var lastNotified *float64
	if p.LastNotifiedPrice.Valid {
		v := p.LastNotifiedPrice.Float64
		lastNotified = &v
	}
	if !IsSignificantDrop(scraped, lastNotified) {
		return false, nil
	}

	subject := fmt.Sprintf("💰 Price drop: %s is now %.2f €", p.Name, scraped)
	if err := s.mailer.Send(p.UserEmail, subject, buildDropMail(p, scraped, target)); err != nil {
		return false, fmt.Errorf("failed to send price drop alert: %v", err)
	}

	if err := s.store.UpdateNotificationState(p.ID, now, scraped); err != nil {
		return true, fmt.Errorf("failed to record notification state: %v", err)
	}

	log.Printf("🔔 Sent price drop alert for product %d (%s): %.2f € (target %.2f €)", p.ID, p.Name, scraped, target)
	return true, nil
}

func buildDropMail(p *models.Product, scraped, target float64) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(fmt.Sprintf(`<h2 style="color: #2e7d32;">Price drop for %s</h2>`, p.Name))

	if p.ImageURL.Valid {
		b.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" style="max-width: 300px; border-radius: 8px;"/>`, p.ImageURL.String, p.Name))
	}

	b.WriteString(fmt.Sprintf(`<p style="font-size: 18px;">Current price: <strong>%.2f €</strong><br/>Your target: %.2f €</p>`, scraped, target))

	if p.BestURL.Valid {
		b.WriteString(fmt.Sprintf(`<p><a href="%s" style="background: #2e7d32; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 4px;">View at %s</a></p>`,
			p.BestURL.String, shopName(p.BestURL.String)))
	}

	b.WriteString(`<p style="color: #888; font-size: 12px;">You receive this mail because you track this product on PriceHawk.</p>`)
	b.WriteString(`</div>`)

	return b.String()
}

// shopName turns a store URL into a human label, e.g. "amazon.de"
func shopName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "the store"
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
