package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog item surfaced through the concierge widget.
// The catalog itself is owned by the storefront; the concierge only reads it.
type Product struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SKU              string         `gorm:"uniqueIndex;not null" json:"sku"`
	Title            string         `gorm:"not null" json:"title"`
	Category         string         `gorm:"not null;index" json:"category"` // ring, necklace, bracelet, earrings
	Metal            string         `json:"metal"`                          // 14k-gold, 18k-gold, platinum
	PriceCents       int64          `gorm:"not null;check:price_cents >= 0" json:"price_cents"`
	Tags             string         `gorm:"index" json:"tags"` // comma-separated, lowercase
	ReadyToShip      bool           `gorm:"not null;default:false" json:"ready_to_ship"`
	FeaturedInWidget bool           `gorm:"not null;default:false" json:"featured_in_widget"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TagList splits the serialized tag column into individual tags
func (p *Product) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SetTagList serializes tags into the stored column form
func (p *Product) SetTagList(tags []string) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	p.Tags = strings.Join(cleaned, ",")
}

// HasAnyTag reports whether the product shares at least one tag with the
// given set. Partial overlap is sufficient; callers must never require all
// tags to match.
func (p *Product) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, own := range p.TagList() {
		for _, want := range tags {
			if own == strings.ToLower(strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}
