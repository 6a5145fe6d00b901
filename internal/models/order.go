package models

import (
	"github.com/jinzhu/gorm"
)

// Table is a physical dining table, created lazily on the first order
// that names its number.
type Table struct {
	gorm.Model
	TableNumber string         `gorm:"size:32;unique_index;not null" json:"table_number"`
	UserID      *uint          `json:"user_id,omitempty"`
	State       LifecycleState `gorm:"size:16;not null;default:'active'" json:"state"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CanTransitionTo reports whether next is a legal move from s.
// pending -> preparing -> served; cancellation is allowed until the
// order is served. served and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPreparing || next == OrderStatusCancelled
	case OrderStatusPreparing:
		return next == OrderStatusServed || next == OrderStatusCancelled
	default:
		return false
	}
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is one submission from a table. The item list is fixed at
// creation; only Status (and UpdatedAt with it) mutates afterwards.
// TotalAmount is always the server-computed sum of line subtotals.
type Order struct {
	gorm.Model
	TableID             uint        `gorm:"index;not null" json:"table_id"`
	Table               Table       `json:"-"`
	UserID              *uint       `json:"user_id,omitempty"`
	Status              OrderStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	TotalAmount         float64     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	SpecialInstructions string      `gorm:"type:text" json:"special_instructions"`
	Items               []OrderItem `gorm:"foreignkey:OrderID" json:"items,omitempty"`
}

// OrderItem is one line of an order. Price is a snapshot of the menu
// item's price at submission time and is never recomputed from the
// current catalog.
type OrderItem struct {
	gorm.Model
	OrderID    uint     `gorm:"index;not null" json:"order_id"`
	MenuItemID uint     `gorm:"index;not null" json:"menu_item_id"`
	MenuItem   MenuItem `json:"-"`
	Quantity   int      `gorm:"not null" json:"quantity"`
	Price      float64  `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Subtotal returns the snapshot price times quantity.
func (i *OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}
