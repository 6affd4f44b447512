package models

import "time"

// OrderItem is a denormalized line item. Price is the snapshotted line total
// (unit price at order time multiplied by quantity), not the unit price; it is
// never updated after creation even if the menu item's price changes.
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	MenuItemID   uint      `gorm:"not null" json:"menu_item_id"`
	MenuItem     MenuItem  `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
