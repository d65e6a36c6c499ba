package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"pricehawk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent    []string
	failure error
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	if f.failure != nil {
		return f.failure
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeStore struct {
	notifiedID    int
	notifiedAt    time.Time
	notifiedPrice float64
	calls         int
}

func (f *fakeStore) UpdateNotificationState(id int, notifiedAt time.Time, price float64) error {
	f.calls++
	f.notifiedID = id
	f.notifiedAt = notifiedAt
	f.notifiedPrice = price
	return nil
}

func newTestService(store *fakeStore, mailer *fakeMailer, now time.Time) *PriceAlertService {
	svc := NewPriceAlertService(store, mailer)
	svc.now = func() time.Time { return now }
	return svc
}

func testProduct(scraped, target float64) *models.Product {
	return &models.Product{
		ID:           7,
		Name:         "Test Headphones",
		UserEmail:    "user@example.com",
		TargetPrice:  sql.NullFloat64{Float64: target, Valid: true},
		ScrapedPrice: sql.NullFloat64{Float64: scraped, Valid: true},
	}
}

func TestIsSignificantDrop(t *testing.T) {
	last := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		newPrice float64
		last     *float64
		want     bool
	}{
		{"first notification always fires", 99.99, nil, true},
		{"price went up", 95, last(90), false},
		{"price unchanged", 90, last(90), false},
		{"tiny drop below both thresholds", 89.60, last(90), false},
		{"absolute drop of one euro", 89, last(90), true},
		{"exactly five percent", 85.5, last(90), true},
		{"small percentage but large absolute drop", 1950, last(2000), true},
		{"small absolute but large percentage drop", 9.40, last(10), true},
		{"small absolute and small percentage drop", 19.60, last(20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSignificantDrop(tt.newPrice, tt.last))
		})
	}
}

func TestMaybeNotifyDropFirstAlert(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, mailer, now)

	sent, err := svc.MaybeNotifyDrop(testProduct(90, 100))
	require.NoError(t, err)
	assert.True(t, sent)

	assert.Equal(t, []string{"user@example.com"}, mailer.sent)
	assert.Equal(t, 7, store.notifiedID)
	assert.Equal(t, now, store.notifiedAt)
	assert.Equal(t, 90.0, store.notifiedPrice)
}

func TestMaybeNotifyDropSkipsWhenAboveTarget(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer, time.Now())

	sent, err := svc.MaybeNotifyDrop(testProduct(100, 100))
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, mailer.sent)
	assert.Zero(t, store.calls)
}

func TestMaybeNotifyDropSkipsWithoutPrices(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeMailer{}, time.Now())

	p := testProduct(90, 100)
	p.ScrapedPrice = sql.NullFloat64{}
	sent, err := svc.MaybeNotifyDrop(p)
	require.NoError(t, err)
	assert.False(t, sent)

	p = testProduct(90, 100)
	p.TargetPrice = sql.NullFloat64{}
	sent, err = svc.MaybeNotifyDrop(p)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestMaybeNotifyDropCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oneHourAgo := now.Add(-time.Hour)
	p := testProduct(80, 100)
	p.LastNotifiedAt = &oneHourAgo
	p.LastNotifiedPrice = sql.NullFloat64{Float64: 90, Valid: true}

	mailer := &fakeMailer{}
	svc := newTestService(&fakeStore{}, mailer, now)
	sent, err := svc.MaybeNotifyDrop(p)
	require.NoError(t, err)
	assert.False(t, sent, "cooldown window must block repeat alerts")

	dayAndHourAgo := now.Add(-25 * time.Hour)
	p.LastNotifiedAt = &dayAndHourAgo
	sent, err = svc.MaybeNotifyDrop(p)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []string{"user@example.com"}, mailer.sent)
}

func TestMaybeNotifyDropInsignificantRepeat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	twoDaysAgo := now.Add(-48 * time.Hour)

	p := testProduct(89.60, 100)
	p.LastNotifiedAt = &twoDaysAgo
	p.LastNotifiedPrice = sql.NullFloat64{Float64: 90, Valid: true}

	mailer := &fakeMailer{}
	store := &fakeStore{}
	svc := newTestService(store, mailer, now)

	sent, err := svc.MaybeNotifyDrop(p)
	require.NoError(t, err)
	assert.False(t, sent, "a 0.40 drop is not worth another mail")
	assert.Empty(t, mailer.sent)
	assert.Zero(t, store.calls)
}

func TestMaybeNotifyDropSendFailureKeepsState(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{failure: fmt.Errorf("smtp down")}
	svc := newTestService(store, mailer, time.Now())

	sent, err := svc.MaybeNotifyDrop(testProduct(90, 100))
	assert.Error(t, err)
	assert.False(t, sent)
	assert.Zero(t, store.calls, "state must only change after a confirmed send")
}

func TestMaybeNotifyDropSkipsWithoutEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestService(&fakeStore{}, mailer, time.Now())

	p := testProduct(90, 100)
	p.UserEmail = ""
	sent, err := svc.MaybeNotifyDrop(p)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, mailer.sent)
}
