package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gilded-grove/concierge-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record lifetimes. Expiry is an explicit column swept by the reaper, not a
// storage-engine TTL index.
const (
	ShortlistTTL    = 30 * 24 * time.Hour
	InspirationTTL  = 30 * 24 * time.Hour
	CapsuleHoldTTL  = 7 * 24 * time.Hour
	SubscriptionTTL = 30 * 24 * time.Hour
)

// WidgetService persists concierge-widget interaction records
type WidgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWidgetService creates a widget service over the given database
func NewWidgetService(db *gorm.DB) *WidgetService {
	return &WidgetService{db: db, now: time.Now}
}

// NewWidgetServiceWithClock creates a widget service with a fixed clock
// (primarily for testing expiry stamps)
func NewWidgetServiceWithClock(db *gorm.DB, now func() time.Time) *WidgetService {
	return &WidgetService{db: db, now: now}
}

// CreateShortlist saves a session's shortlisted SKUs. The optional order
// number must survive to storage; it once got dropped on the way in and
// support couldn't link conversations back to orders.
func (s *WidgetService) CreateShortlist(sessionID string, skus []string, note, orderNumber string) (*models.WidgetShortlist, error) {
	shortlist := models.WidgetShortlist{
		SessionID:   sessionID,
		ProductSKUs: strings.Join(skus, ","),
		Note:        note,
		OrderNumber: normalizeOrderNumber(orderNumber),
		ExpiresAt:   s.now().Add(ShortlistTTL),
	}
	if err := s.db.Create(&shortlist).Error; err != nil {
		return nil, fmt.Errorf("failed to create shortlist: %w", err)
	}
	s.recordEvent(sessionID, "shortlist_saved", map[string]interface{}{"skus": len(skus)})
	return &shortlist, nil
}

// CreateInspiration records an uploaded inspiration image for a session
func (s *WidgetService) CreateInspiration(sessionID, imageS3Key, orderNumber string) (*models.InspirationItem, error) {
	item := models.InspirationItem{
		SessionID:   sessionID,
		ImageS3Key:  imageS3Key,
		OrderNumber: normalizeOrderNumber(orderNumber),
		ExpiresAt:   s.now().Add(InspirationTTL),
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create inspiration item: %w", err)
	}
	s.recordEvent(sessionID, "inspiration_uploaded", nil)
	return &item, nil
}

// CreateCapsuleHold reserves a capsule piece for 7 days
func (s *WidgetService) CreateCapsuleHold(sessionID, productSKU, orderNumber string) (*models.CapsuleHold, error) {
	hold := models.CapsuleHold{
		Reference:   "HOLD-" + shortReference(),
		SessionID:   sessionID,
		ProductSKU:  productSKU,
		OrderNumber: normalizeOrderNumber(orderNumber),
		Status:      models.HoldStatusActive,
		ExpiresAt:   s.now().Add(CapsuleHoldTTL),
	}
	if err := s.db.Create(&hold).Error; err != nil {
		return nil, fmt.Errorf("failed to create capsule hold: %w", err)
	}
	s.recordEvent(sessionID, "capsule_hold_created", map[string]interface{}{"sku": productSKU})
	return &hold, nil
}

// CreateStylistTicket opens a consultation request
func (s *WidgetService) CreateStylistTicket(sessionID, email, topic, message, orderNumber string) (*models.StylistTicket, error) {
	ticket := models.StylistTicket{
		Reference:   "STY-" + shortReference(),
		SessionID:   sessionID,
		Email:       email,
		Topic:       topic,
		Message:     message,
		OrderNumber: normalizeOrderNumber(orderNumber),
		Status:      "open",
	}
	if err := s.db.Create(&ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create stylist ticket: %w", err)
	}
	s.recordEvent(sessionID, "stylist_ticket_opened", map[string]interface{}{"topic": topic})
	return &ticket, nil
}

// CreateCsatFeedback records a 1-5 satisfaction score for a conversation
func (s *WidgetService) CreateCsatFeedback(sessionID string, score int, comment, orderNumber string) (*models.CsatFeedback, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("score must be between 1 and 5, got %d", score)
	}
	feedback := models.CsatFeedback{
		SessionID:   sessionID,
		Score:       score,
		Comment:     comment,
		OrderNumber: normalizeOrderNumber(orderNumber),
	}
	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to create CSAT feedback: %w", err)
	}
	s.recordEvent(sessionID, "csat_submitted", map[string]interface{}{"score": score})
	return &feedback, nil
}

// CreateOrderSubscription registers an email for status updates on an order
func (s *WidgetService) CreateOrderSubscription(sessionID, orderNumber, email string) (*models.OrderSubscription, error) {
	subscription := models.OrderSubscription{
		SessionID:   sessionID,
		OrderNumber: normalizeOrderNumber(orderNumber),
		Email:       email,
		Channel:     "email",
		ExpiresAt:   s.now().Add(SubscriptionTTL),
	}
	if err := s.db.Create(&subscription).Error; err != nil {
		return nil, fmt.Errorf("failed to create order subscription: %w", err)
	}
	s.recordEvent(sessionID, "order_updates_subscribed", map[string]interface{}{"orderNumber": subscription.OrderNumber})
	return &subscription, nil
}

// TrackEvent records a widget analytics event on behalf of a handler
func (s *WidgetService) TrackEvent(sessionID, name string, payload map[string]interface{}) {
	s.recordEvent(sessionID, name, payload)
}

// recordEvent writes one analytics event. Event failures are logged, never
// surfaced; analytics must not break a support interaction.
func (s *WidgetService) recordEvent(sessionID, name string, payload map[string]interface{}) {
	event := models.AnalyticsEvent{
		SessionID: sessionID,
		Name:      name,
	}
	if payload != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			event.Payload = string(encoded)
		}
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Printf("Failed to record analytics event %s: %v", name, err)
	}
}

// normalizeOrderNumber uppercases and trims an optional order number so
// lookups by support staff match regardless of how the customer typed it
func normalizeOrderNumber(orderNumber string) string {
	return strings.ToUpper(strings.TrimSpace(orderNumber))
}

// shortReference is the 8-character reference fragment used for holds and
// tickets
func shortReference() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
