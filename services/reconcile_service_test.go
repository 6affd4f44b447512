package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
)

func setupReconcileDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:reconcile_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderStatusChange{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func completedEvent(orderIDs string) *WebhookEvent {
	event := &WebhookEvent{ID: "evt_1", Type: EventCheckoutCompleted}
	event.Data.Object.ID = "cs_test_123"
	event.Data.Object.Metadata = map[string]string{"orderIds": orderIDs}
	return event
}

func TestCompletedEventConfirmsOrders(t *testing.T) {
	db := setupReconcileDB(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 2, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 15})

	svc := NewReconciliationService(db)
	assert.NoError(t, svc.HandleEvent(context.Background(), completedEvent("1,2")))

	var orders []models.Order
	db.Preload("StatusHistory").Order("id asc").Find(&orders)
	for _, order := range orders {
		assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
		assert.Equal(t, models.OrderConfirmed, order.Status)
		assert.Equal(t, uint(1), order.Version)
		assert.Len(t, order.StatusHistory, 1)
		assert.Equal(t, models.OrderConfirmed, order.StatusHistory[0].Status)
	}
}

func TestCompletedEventReplayIsIdempotent(t *testing.T) {
	db := setupReconcileDB(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	svc := NewReconciliationService(db)
	assert.NoError(t, svc.HandleEvent(context.Background(), completedEvent("1")))
	assert.NoError(t, svc.HandleEvent(context.Background(), completedEvent("1")))
	assert.NoError(t, svc.HandleEvent(context.Background(), completedEvent("1")))

	var order models.Order
	db.Preload("StatusHistory").First(&order, 1)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Len(t, order.StatusHistory, 1)
}

func TestCompletedEventSkipsMissingOrders(t *testing.T) {
	db := setupReconcileDB(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	svc := NewReconciliationService(db)
	assert.NoError(t, svc.HandleEvent(context.Background(), completedEvent("999,1")))

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
}

func TestExpiredEventOnlyFailsPayment(t *testing.T) {
	db := setupReconcileDB(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	event := &WebhookEvent{ID: "evt_2", Type: EventCheckoutExpired}
	event.Data.Object.Metadata = map[string]string{"orderIds": "1"}

	svc := NewReconciliationService(db)
	assert.NoError(t, svc.HandleEvent(context.Background(), event))

	var order models.Order
	db.Preload("StatusHistory").First(&order, 1)
	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	// Fulfillment status and history stay untouched.
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Empty(t, order.StatusHistory)
}

func TestExpiredEventNeverDowngradesPaidOrder(t *testing.T) {
	db := setupReconcileDB(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderConfirmed, PaymentStatus: models.PaymentPaid, TotalPrice: 20})

	event := &WebhookEvent{ID: "evt_3", Type: EventCheckoutExpired}
	event.Data.Object.Metadata = map[string]string{"orderIds": "1"}

	svc := NewReconciliationService(db)
	assert.NoError(t, svc.HandleEvent(context.Background(), event))

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.Status)
}

func TestUnknownEventTypeIsAcknowledged(t *testing.T) {
	db := setupReconcileDB(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	event := &WebhookEvent{ID: "evt_4", Type: "payment_intent.created"}
	event.Data.Object.Metadata = map[string]string{"orderIds": "1"}

	svc := NewReconciliationService(db)
	assert.NoError(t, svc.HandleEvent(context.Background(), event))

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, models.OrderPending, order.Status)
}
