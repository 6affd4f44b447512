package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
)

// fakeCheckout records the session request and returns a canned session or a
// configured failure.
type fakeCheckout struct {
	lineItems []CheckoutLineItem
	orderIDs  []uint
	calls     int
	fail      bool
}

func (f *fakeCheckout) CreateCheckoutSession(ctx context.Context, items []CheckoutLineItem, orderIDs []uint) (*CheckoutSession, error) {
	f.calls++
	f.lineItems = items
	f.orderIDs = orderIDs
	if f.fail {
		return nil, errors.New("provider unavailable")
	}
	return &CheckoutSession{ID: "cs_test_123", URL: "https://checkout.test/cs_test_123"}, nil
}

func setupPlacementDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:placement_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.MenuItem{}, &models.Order{}, &models.OrderItem{}, &models.OrderStatusChange{})
	if err != nil {
		t.Fatal(err)
	}

	// Two restaurants, one menu item each.
	db.Create(&models.MenuItem{RestaurantID: 1, Name: "Margherita", Price: 10.0, Category: "Pizza"})
	db.Create(&models.MenuItem{RestaurantID: 2, Name: "Pad Thai", Price: 15.0, Category: "Noodles"})
	return db
}

func TestPlaceOrderSplitsCartByRestaurant(t *testing.T) {
	db := setupPlacementDB(t)
	checkout := &fakeCheckout{}
	svc := NewPlacementService(db, checkout)

	result, err := svc.PlaceOrder(context.Background(), 7, []CartItem{
		{MenuItemID: 1, Quantity: 2},
		{MenuItemID: 2, Quantity: 1},
	}, "123 Main St")
	assert.NoError(t, err)
	assert.Len(t, result.OrderIDs, 2)
	assert.Equal(t, "https://checkout.test/cs_test_123", result.CheckoutURL)

	var orders []models.Order
	assert.NoError(t, db.Preload("OrderItems").Order("id asc").Find(&orders).Error)
	assert.Len(t, orders, 2)

	assert.Equal(t, uint(1), orders[0].RestaurantID)
	assert.Equal(t, 20.0, orders[0].TotalPrice)
	assert.Equal(t, uint(2), orders[1].RestaurantID)
	assert.Equal(t, 15.0, orders[1].TotalPrice)

	for _, order := range orders {
		assert.Equal(t, uint(7), order.CustomerID)
		assert.Equal(t, models.OrderPending, order.Status)
		assert.Equal(t, models.PaymentPending, order.PaymentStatus)
		assert.Equal(t, "cs_test_123", order.PaymentRef)
		assert.Len(t, order.OrderItems, 1)
	}

	// One session covering the whole cart, priced in minor units.
	assert.Equal(t, 1, checkout.calls)
	assert.Equal(t, result.OrderIDs, checkout.orderIDs)
	assert.Equal(t, []CheckoutLineItem{
		{Name: "Margherita", UnitAmount: 1000, Quantity: 2},
		{Name: "Pad Thai", UnitAmount: 1500, Quantity: 1},
	}, checkout.lineItems)
}

func TestPlaceOrderMissingMenuItemAbortsEverything(t *testing.T) {
	db := setupPlacementDB(t)
	checkout := &fakeCheckout{}
	svc := NewPlacementService(db, checkout)

	result, err := svc.PlaceOrder(context.Background(), 7, []CartItem{
		{MenuItemID: 1, Quantity: 1},
		{MenuItemID: 999, Quantity: 1},
	}, "123 Main St")
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, checkout.calls)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPlaceOrderCheckoutFailureRollsBackOrders(t *testing.T) {
	db := setupPlacementDB(t)
	checkout := &fakeCheckout{fail: true}
	svc := NewPlacementService(db, checkout)

	result, err := svc.PlaceOrder(context.Background(), 7, []CartItem{
		{MenuItemID: 1, Quantity: 2},
		{MenuItemID: 2, Quantity: 1},
	}, "123 Main St")
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, checkout.calls)

	var orderCount, itemCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), itemCount)
}

func TestPlaceOrderValidation(t *testing.T) {
	db := setupPlacementDB(t)
	svc := NewPlacementService(db, &fakeCheckout{})

	_, err := svc.PlaceOrder(context.Background(), 7, nil, "123 Main St")
	assert.Error(t, err)

	_, err = svc.PlaceOrder(context.Background(), 7, []CartItem{{MenuItemID: 1, Quantity: 1}}, "   ")
	assert.Error(t, err)

	_, err = svc.PlaceOrder(context.Background(), 7, []CartItem{{MenuItemID: 1, Quantity: 0}}, "123 Main St")
	assert.Error(t, err)
}
