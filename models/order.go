package models

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderArriving  OrderStatus = "arriving"
	OrderDelivered OrderStatus = "delivered"
)

// OrderStatuses lists the fulfillment states in progression order.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderConfirmed,
	OrderPreparing,
	OrderArriving,
	OrderDelivered,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func AllowedStatusValues() string {
	values := make([]string, len(OrderStatuses))
	for i, s := range OrderStatuses {
		values[i] = string(s)
	}
	return strings.Join(values, ", ")
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Order struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	CustomerID      uint                `gorm:"not null;index" json:"customer_id"`
	Customer        User                `gorm:"foreignKey:CustomerID" json:"-"`
	RestaurantID    uint                `gorm:"not null;index" json:"restaurant_id"`
	OrderItems      []OrderItem         `gorm:"foreignKey:OrderID" json:"order_items"`
	DeliveryAddress string              `gorm:"type:varchar(500);not null" json:"delivery_address"`
	Status          OrderStatus         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus       `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentMethod   string              `gorm:"type:varchar(20);not null;default:'card'" json:"payment_method"`
	PaymentRef      string              `gorm:"type:varchar(255)" json:"payment_ref"`
	TotalPrice      float64             `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Version         uint                `gorm:"not null;default:0" json:"version"`
	StatusHistory   []OrderStatusChange `gorm:"foreignKey:OrderID" json:"status_history"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderStatusChange is one entry of the append-only fulfillment audit log.
// Rows are inserted, never updated or deleted.
type OrderStatusChange struct {
	ID      uint        `gorm:"primaryKey" json:"-"`
	OrderID uint        `gorm:"not null;index" json:"-"`
	Status  OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Time    time.Time   `gorm:"not null" json:"time"`
}

// NewOrderForRestaurant builds an Order for a single restaurant. Every item
// must reference that restaurant; a mixed set is a programming error at the
// call site, not caller data to be trusted.
func NewOrderForRestaurant(customerID, restaurantID uint, deliveryAddress string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order for restaurant %d has no items", restaurantID)
	}
	var total float64
	for _, item := range items {
		if item.RestaurantID != restaurantID {
			return nil, fmt.Errorf("order item for restaurant %d mixed into order for restaurant %d",
				item.RestaurantID, restaurantID)
		}
		total += item.Price
	}
	return &Order{
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		OrderItems:      items,
		DeliveryAddress: deliveryAddress,
		Status:          OrderPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   "card",
		TotalPrice:      total,
	}, nil
}

// DeliveredAt returns the time of the first delivered history entry, or nil.
// The history log is the only source for this derived field.
func (o *Order) DeliveredAt() *time.Time {
	for _, change := range o.StatusHistory {
		if change.Status == OrderDelivered {
			t := change.Time
			return &t
		}
	}
	return nil
}
