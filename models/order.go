package models

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a storefront order in the system
type Order struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	OrderNumber   string             `gorm:"uniqueIndex;not null" json:"order_number"` // GG-12001
	CustomerEmail string             `gorm:"not null;index" json:"customer_email"`
	PostalCode    string             `gorm:"not null" json:"postal_code"`
	Status        string             `gorm:"not null;default:'placed'" json:"status"` // placed, in_production, shipped, delivered, return_requested
	ShippedAt     *time.Time         `json:"shipped_at"`                              // nullable, set when the order ships
	NonReturnable bool               `gorm:"not null;default:false" json:"non_returnable"` // custom/engraved pieces cannot be returned
	StatusHistory []OrderStatusEntry `gorm:"foreignKey:OrderID" json:"status_history,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderStatusEntry is one step in an order's visible timeline
type OrderStatusEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	Label      string    `gorm:"not null" json:"label"`
	Status     string    `gorm:"not null" json:"status"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderStatusEntry model
func (OrderStatusEntry) TableName() string {
	return "order_status_entries"
}

// ReturnRequest is the RMA record permitting a product return.
// Immutable after creation except for Status.
type ReturnRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RMAID      string    `gorm:"uniqueIndex;not null" json:"rma_id"` // RMA-{timestamp}-{6 chars}
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	Order      Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Reason     string    `gorm:"not null" json:"reason"`
	WindowDays int       `gorm:"not null" json:"window_days"` // 30 standard, 60 resize
	Status     string    `gorm:"not null;default:'open'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ReturnRequest model
func (ReturnRequest) TableName() string {
	return "return_requests"
}
