package models

import (
	"time"

	"gorm.io/gorm"
)

// Capsule hold lifecycle states
const (
	HoldStatusActive   = "active"
	HoldStatusReleased = "released"
	HoldStatusExpired  = "expired"
)

// WidgetShortlist is a session-scoped list of saved product SKUs.
// Expired rows are removed by the reaper; ExpiresAt is always set on create.
type WidgetShortlist struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SessionID   string         `gorm:"not null;index" json:"session_id"`
	ProductSKUs string         `gorm:"not null" json:"product_skus"` // comma-separated
	OrderNumber string         `gorm:"index" json:"order_number,omitempty"`
	Note        string         `json:"note,omitempty"`
	ExpiresAt   time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the WidgetShortlist model
func (WidgetShortlist) TableName() string {
	return "widget_shortlists"
}

// InspirationItem is a customer-uploaded reference image attached to a session
type InspirationItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SessionID   string         `gorm:"not null;index" json:"session_id"`
	ImageS3Key  string         `gorm:"not null" json:"image_s3_key"`
	ImageURL    string         `gorm:"-" json:"image_url,omitempty"` // computed, presigned
	OrderNumber string         `gorm:"index" json:"order_number,omitempty"`
	ExpiresAt   time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the InspirationItem model
func (InspirationItem) TableName() string {
	return "widget_inspiration"
}

// CapsuleHold reserves a capsule-collection piece for a limited time
type CapsuleHold struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Reference   string         `gorm:"uniqueIndex;not null" json:"reference"` // HOLD-xxxxxxxx
	SessionID   string         `gorm:"not null;index" json:"session_id"`
	ProductSKU  string         `gorm:"not null" json:"product_sku"`
	OrderNumber string         `gorm:"index" json:"order_number,omitempty"`
	Status      string         `gorm:"not null;default:'active'" json:"status"` // active, released, expired
	ExpiresAt   time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the CapsuleHold model
func (CapsuleHold) TableName() string {
	return "capsule_holds"
}

// StylistTicket is a request for a consultation with a stylist
type StylistTicket struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Reference   string         `gorm:"uniqueIndex;not null" json:"reference"` // STY-xxxxxxxx
	SessionID   string         `gorm:"not null;index" json:"session_id"`
	Email       string         `gorm:"not null" json:"email"`
	Topic       string         `gorm:"not null" json:"topic"`
	Message     string         `json:"message,omitempty"`
	OrderNumber string         `gorm:"index" json:"order_number,omitempty"`
	Status      string         `gorm:"not null;default:'open'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the StylistTicket model
func (StylistTicket) TableName() string {
	return "stylist_tickets"
}

// CsatFeedback is a post-conversation satisfaction score
type CsatFeedback struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"not null;index" json:"session_id"`
	Score       int       `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
	Comment     string    `json:"comment,omitempty"`
	OrderNumber string    `gorm:"index" json:"order_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CsatFeedback model
func (CsatFeedback) TableName() string {
	return "csat_feedback"
}

// OrderSubscription registers a session for status updates on an order
type OrderSubscription struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SessionID   string         `gorm:"not null;index" json:"session_id"`
	OrderNumber string         `gorm:"not null;index" json:"order_number"`
	Email       string         `gorm:"not null" json:"email"`
	Channel     string         `gorm:"not null;default:'email'" json:"channel"`
	ExpiresAt   time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderSubscription model
func (OrderSubscription) TableName() string {
	return "widget_order_subscriptions"
}

// AnalyticsEvent records one widget interaction for later reporting
type AnalyticsEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Payload   string    `json:"payload,omitempty"` // JSON blob
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the AnalyticsEvent model
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
