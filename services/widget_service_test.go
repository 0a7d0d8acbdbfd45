package services

import (
	"strings"
	"testing"
	"time"

	"github.com/gilded-grove/concierge-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupWidgetTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.WidgetShortlist{},
		&models.InspirationItem{},
		&models.CapsuleHold{},
		&models.StylistTicket{},
		&models.CsatFeedback{},
		&models.OrderSubscription{},
		&models.AnalyticsEvent{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func TestCreateShortlist(t *testing.T) {
	db := setupWidgetTestDB(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewWidgetServiceWithClock(db, func() time.Time { return now })

	shortlist, err := service.CreateShortlist("sess-1", []string{"GG-R-001", "GG-N-001"}, "for anniversary", "gg-12001")
	assert.NoError(t, err)
	assert.Equal(t, "GG-R-001,GG-N-001", shortlist.ProductSKUs)
	assert.Equal(t, "GG-12001", shortlist.OrderNumber, "optional order number is normalized and persisted")
	assert.Equal(t, now.Add(ShortlistTTL), shortlist.ExpiresAt)

	// The interaction leaves an analytics event behind
	var event models.AnalyticsEvent
	assert.NoError(t, db.Where("session_id = ? AND name = ?", "sess-1", "shortlist_saved").First(&event).Error)
}

func TestCreateCapsuleHold(t *testing.T) {
	db := setupWidgetTestDB(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewWidgetServiceWithClock(db, func() time.Time { return now })

	hold, err := service.CreateCapsuleHold("sess-2", "GG-R-002", "")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hold.Reference, "HOLD-"))
	assert.Len(t, hold.Reference, len("HOLD-")+8)
	assert.Equal(t, models.HoldStatusActive, hold.Status)
	assert.Equal(t, now.Add(CapsuleHoldTTL), hold.ExpiresAt, "capsule holds last 7 days, not 30")
	assert.Empty(t, hold.OrderNumber)
}

func TestCreateStylistTicket(t *testing.T) {
	db := setupWidgetTestDB(t)
	service := NewWidgetService(db)

	ticket, err := service.CreateStylistTicket("sess-3", "bride@example.com", "engagement", "Looking for a solitaire", "GG-12345")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.Reference, "STY-"))
	assert.Equal(t, "open", ticket.Status)
	assert.Equal(t, "GG-12345", ticket.OrderNumber)

	// Persisted, not just returned
	var stored models.StylistTicket
	assert.NoError(t, db.Where("reference = ?", ticket.Reference).First(&stored).Error)
	assert.Equal(t, "GG-12345", stored.OrderNumber)
}

func TestCreateCsatFeedback(t *testing.T) {
	db := setupWidgetTestDB(t)
	service := NewWidgetService(db)

	feedback, err := service.CreateCsatFeedback("sess-4", 5, "lovely help", "GG-12001")
	assert.NoError(t, err)
	assert.Equal(t, 5, feedback.Score)
	assert.Equal(t, "GG-12001", feedback.OrderNumber)

	_, err = service.CreateCsatFeedback("sess-4", 0, "", "")
	assert.Error(t, err)
	_, err = service.CreateCsatFeedback("sess-4", 6, "", "")
	assert.Error(t, err)
}

func TestCreateOrderSubscription(t *testing.T) {
	db := setupWidgetTestDB(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewWidgetServiceWithClock(db, func() time.Time { return now })

	subscription, err := service.CreateOrderSubscription("sess-5", "gg-12001", "customer@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "GG-12001", subscription.OrderNumber)
	assert.Equal(t, "email", subscription.Channel)
	assert.Equal(t, now.Add(SubscriptionTTL), subscription.ExpiresAt)
}

func TestCreateInspiration(t *testing.T) {
	db := setupWidgetTestDB(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	service := NewWidgetServiceWithClock(db, func() time.Time { return now })

	item, err := service.CreateInspiration("sess-6", "inspiration/123_ring.png", "GG-12001")
	assert.NoError(t, err)
	assert.Equal(t, "inspiration/123_ring.png", item.ImageS3Key)
	assert.Equal(t, "GG-12001", item.OrderNumber)
	assert.Equal(t, now.Add(InspirationTTL), item.ExpiresAt)
}

func TestOrderNumberSurvivesToStorageEverywhere(t *testing.T) {
	// Regression: the optional order number used to be dropped before it
	// reached storage, so support couldn't link interactions to orders
	db := setupWidgetTestDB(t)
	service := NewWidgetService(db)

	if _, err := service.CreateShortlist("sess-7", []string{"A"}, "", "GG-1"); err != nil {
		t.Fatalf("shortlist: %v", err)
	}
	if _, err := service.CreateCapsuleHold("sess-7", "SKU", "GG-2"); err != nil {
		t.Fatalf("capsule: %v", err)
	}
	if _, err := service.CreateStylistTicket("sess-7", "a@b.com", "topic", "", "GG-3"); err != nil {
		t.Fatalf("stylist: %v", err)
	}
	if _, err := service.CreateCsatFeedback("sess-7", 4, "", "GG-4"); err != nil {
		t.Fatalf("csat: %v", err)
	}
	if _, err := service.CreateOrderSubscription("sess-7", "GG-5", "a@b.com"); err != nil {
		t.Fatalf("subscription: %v", err)
	}

	var shortlist models.WidgetShortlist
	assert.NoError(t, db.First(&shortlist).Error)
	assert.Equal(t, "GG-1", shortlist.OrderNumber)

	var hold models.CapsuleHold
	assert.NoError(t, db.First(&hold).Error)
	assert.Equal(t, "GG-2", hold.OrderNumber)

	var ticket models.StylistTicket
	assert.NoError(t, db.First(&ticket).Error)
	assert.Equal(t, "GG-3", ticket.OrderNumber)

	var feedback models.CsatFeedback
	assert.NoError(t, db.First(&feedback).Error)
	assert.Equal(t, "GG-4", feedback.OrderNumber)

	var subscription models.OrderSubscription
	assert.NoError(t, db.First(&subscription).Error)
	assert.Equal(t, "GG-5", subscription.OrderNumber)
}
