package services

import (
	"context"
	"log"
	"time"

	"github.com/gilded-grove/concierge-api/models"
	"gorm.io/gorm"
)

// DefaultReapInterval is how often expired widget records are swept
const DefaultReapInterval = time.Hour

// ReaperService removes widget records whose ExpiresAt has passed. Expiry
// is owned by the application, not by a storage-engine TTL index, so the
// sweep works the same against any SQL backend.
type ReaperService struct {
	db       *gorm.DB
	interval time.Duration
	now      func() time.Time
}

// NewReaperService creates a reaper sweeping at the default interval
func NewReaperService(db *gorm.DB) *ReaperService {
	return &ReaperService{db: db, interval: DefaultReapInterval, now: time.Now}
}

// NewReaperServiceWithOptions creates a reaper with a custom interval and
// clock (primarily for testing)
func NewReaperServiceWithOptions(db *gorm.DB, interval time.Duration, now func() time.Time) *ReaperService {
	return &ReaperService{db: db, interval: interval, now: now}
}

// Start runs the sweep loop until the context is cancelled
func (s *ReaperService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Expiry reaper running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry reaper stopped")
			return
		case <-ticker.C:
			if err := s.ReapExpired(); err != nil {
				log.Printf("Expiry sweep failed: %v", err)
			}
		}
	}
}

// ReapExpired performs one sweep: expired shortlists, inspiration items,
// and subscriptions are deleted; expired active capsule holds are marked
// expired so the reference stays resolvable for support staff.
func (s *ReaperService) ReapExpired() error {
	cutoff := s.now()

	shortlists := s.db.Where("expires_at <= ?", cutoff).Delete(&models.WidgetShortlist{})
	if shortlists.Error != nil {
		return shortlists.Error
	}

	inspiration := s.db.Where("expires_at <= ?", cutoff).Delete(&models.InspirationItem{})
	if inspiration.Error != nil {
		return inspiration.Error
	}

	subscriptions := s.db.Where("expires_at <= ?", cutoff).Delete(&models.OrderSubscription{})
	if subscriptions.Error != nil {
		return subscriptions.Error
	}

	holds := s.db.Model(&models.CapsuleHold{}).
		Where("status = ? AND expires_at <= ?", models.HoldStatusActive, cutoff).
		Update("status", models.HoldStatusExpired)
	if holds.Error != nil {
		return holds.Error
	}

	total := shortlists.RowsAffected + inspiration.RowsAffected + subscriptions.RowsAffected + holds.RowsAffected
	if total > 0 {
		log.Printf("Expiry sweep: %d shortlists, %d inspiration items, %d subscriptions removed, %d holds expired",
			shortlists.RowsAffected, inspiration.RowsAffected, subscriptions.RowsAffected, holds.RowsAffected)
	}
	return nil
}
