package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gilded-grove/concierge-api/models"
	"gorm.io/gorm"
)

// Return windows in days. Resize requests get the longer window.
const (
	StandardReturnWindowDays = 30
	ResizeReturnWindowDays   = 60
)

// OrderServiceError is a typed lookup or eligibility failure. Eligibility
// failures always carry exactly one reason code.
type OrderServiceError struct {
	Code    string
	Message string
}

func (e *OrderServiceError) Error() string {
	return e.Message
}

// TimelineEntry is one visible step of an order's journey
type TimelineEntry struct {
	Label  string    `json:"label"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// OrderTimeline is the normalized order-status shape returned regardless of
// how the order was looked up
type OrderTimeline struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Entries   []TimelineEntry `json:"entries"`
}

// OrderService answers order-status lookups and return requests
type OrderService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewOrderService creates an order service over the given database
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, now: time.Now}
}

// NewOrderServiceWithClock creates an order service with a fixed clock
// (primarily for testing eligibility windows)
func NewOrderServiceWithClock(db *gorm.DB, now func() time.Time) *OrderService {
	return &OrderService{db: db, now: now}
}

// GetOrderStatus looks up an order by its order number and builds its
// timeline
func (s *OrderService) GetOrderStatus(orderNumber string) (*OrderTimeline, error) {
	var order models.Order
	err := s.db.Preload("StatusHistory").
		Where("order_number = ?", strings.ToUpper(strings.TrimSpace(orderNumber))).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &OrderServiceError{Code: "ORDER_NOT_FOUND", Message: "No order found with that order number"}
		}
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	return s.buildTimeline(&order), nil
}

// GetOrderStatusByEmail looks up an order by the customer email and postal
// code on file. Returns the same normalized timeline shape as a lookup by
// order number.
func (s *OrderService) GetOrderStatusByEmail(email, postalCode string) (*OrderTimeline, error) {
	var order models.Order
	err := s.db.Preload("StatusHistory").
		Where("LOWER(customer_email) = ? AND postal_code = ?",
			strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(postalCode)).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &OrderServiceError{Code: "ORDER_NOT_FOUND", Message: "No order found for that email and postal code"}
		}
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	return s.buildTimeline(&order), nil
}

// buildTimeline prefers the stored status history; orders without one get a
// single entry inferred from the current status
func (s *OrderService) buildTimeline(order *models.Order) *OrderTimeline {
	timeline := &OrderTimeline{
		Reference: order.OrderNumber,
		Status:    order.Status,
	}

	if len(order.StatusHistory) > 0 {
		entries := make([]TimelineEntry, 0, len(order.StatusHistory))
		for _, step := range order.StatusHistory {
			entries = append(entries, TimelineEntry{
				Label:  step.Label,
				Date:   step.OccurredAt,
				Status: step.Status,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Date.Before(entries[j].Date)
		})
		timeline.Entries = entries
		return timeline
	}

	// No stored history: infer a one-entry timeline from the current status
	occurred := order.UpdatedAt
	if order.Status == "shipped" && order.ShippedAt != nil {
		occurred = *order.ShippedAt
	}
	timeline.Entries = []TimelineEntry{{
		Label:  statusLabel(order.Status),
		Date:   occurred,
		Status: order.Status,
	}}
	return timeline
}

func statusLabel(status string) string {
	switch status {
	case "placed":
		return "Order placed"
	case "in_production":
		return "In production at our studio"
	case "shipped":
		return "Shipped"
	case "delivered":
		return "Delivered"
	case "return_requested":
		return "Return requested"
	default:
		return "Order " + status
	}
}

// CreateReturn checks eligibility and opens an RMA. Eligibility is a
// deterministic function of the item flags and order age: non-returnable
// items are rejected before any window math, then the shipped date must fall
// inside the 30-day standard window or the 60-day resize window. Failures
// never mutate the order.
func (s *OrderService) CreateReturn(orderNumber, reason string) (*models.ReturnRequest, error) {
	var order models.Order
	err := s.db.Where("order_number = ?", strings.ToUpper(strings.TrimSpace(orderNumber))).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &OrderServiceError{Code: "ORDER_NOT_FOUND", Message: "No order found with that order number"}
		}
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}

	if order.NonReturnable {
		return nil, &OrderServiceError{Code: "NON_RETURNABLE", Message: "Custom and engraved pieces are final sale and cannot be returned"}
	}

	if order.ShippedAt == nil {
		return nil, &OrderServiceError{Code: "ORDER_NOT_SHIPPED", Message: "This order has not shipped yet; returns open once it does"}
	}

	windowDays := StandardReturnWindowDays
	if isResizeReason(reason) {
		windowDays = ResizeReturnWindowDays
	}

	elapsed := s.now().Sub(*order.ShippedAt)
	if elapsed > time.Duration(windowDays)*24*time.Hour {
		return nil, &OrderServiceError{
			Code:    "WINDOW_EXPIRED",
			Message: fmt.Sprintf("The %d-day return window for this order has passed", windowDays),
		}
	}

	returnRequest := models.ReturnRequest{
		RMAID:      generateRMAID(s.now()),
		OrderID:    order.ID,
		Reason:     reason,
		WindowDays: windowDays,
	}

	// RMA creation, history entry, and status change land together or not
	// at all
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&returnRequest).Error; err != nil {
			return fmt.Errorf("failed to create return request: %w", err)
		}
		entry := models.OrderStatusEntry{
			OrderID:    order.ID,
			Label:      "Return requested (" + returnRequest.RMAID + ")",
			Status:     "return_requested",
			OccurredAt: s.now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}
		if err := tx.Model(&order).Update("status", "return_requested").Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &returnRequest, nil
}

// isResizeReason reports whether a return reason qualifies for the longer
// resize window
func isResizeReason(reason string) bool {
	normalized := strings.ToLower(reason)
	return strings.Contains(normalized, "resize") || strings.Contains(normalized, "resizing")
}

// generateRMAID builds an RMA id of the form RMA-{unix timestamp}-{6 hex}
func generateRMAID(now time.Time) string {
	random := make([]byte, 3)
	if _, err := rand.Read(random); err != nil {
		// Fall back to the timestamp's own low bits; uniqueness is still
		// enforced by the column index
		return fmt.Sprintf("RMA-%d-%06x", now.Unix(), now.UnixNano()&0xffffff)
	}
	return fmt.Sprintf("RMA-%d-%s", now.Unix(), hex.EncodeToString(random))
}
