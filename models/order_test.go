package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderForRestaurant(t *testing.T) {
	items := []OrderItem{
		{RestaurantID: 1, MenuItemID: 10, Quantity: 2, Price: 20.0},
		{RestaurantID: 1, MenuItemID: 11, Quantity: 1, Price: 15.5},
	}

	order, err := NewOrderForRestaurant(7, 1, "123 Main St", items)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), order.CustomerID)
	assert.Equal(t, uint(1), order.RestaurantID)
	assert.Equal(t, 35.5, order.TotalPrice)
	assert.Equal(t, OrderPending, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Len(t, order.OrderItems, 2)
}

func TestNewOrderForRestaurantRejectsMixedItems(t *testing.T) {
	items := []OrderItem{
		{RestaurantID: 1, MenuItemID: 10, Quantity: 1, Price: 10.0},
		{RestaurantID: 2, MenuItemID: 20, Quantity: 1, Price: 12.0},
	}

	order, err := NewOrderForRestaurant(7, 1, "123 Main St", items)
	assert.Error(t, err)
	assert.Nil(t, order)
}

func TestNewOrderForRestaurantRejectsEmptyItems(t *testing.T) {
	order, err := NewOrderForRestaurant(7, 1, "123 Main St", nil)
	assert.Error(t, err)
	assert.Nil(t, order)
}

func TestDeliveredAt(t *testing.T) {
	order := Order{}
	assert.Nil(t, order.DeliveredAt())

	deliveredTime := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	order.StatusHistory = []OrderStatusChange{
		{Status: OrderConfirmed, Time: deliveredTime.Add(-2 * time.Hour)},
		{Status: OrderArriving, Time: deliveredTime.Add(-30 * time.Minute)},
		{Status: OrderDelivered, Time: deliveredTime},
	}

	got := order.DeliveredAt()
	assert.NotNil(t, got)
	assert.Equal(t, deliveredTime, *got)
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderPending.Valid())
	assert.True(t, OrderDelivered.Valid())
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCustomer.Valid())
	assert.True(t, RoleComplaintManager.Valid())
	assert.False(t, Role("superadmin").Valid())
}
