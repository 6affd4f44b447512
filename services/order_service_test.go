package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

func setupOrderServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderStatusChange{}); err != nil {
		t.Fatal(err)
	}
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPaid, TotalPrice: 20})
	return db
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db)

	_, err := svc.UpdateStatus(context.Background(), 1, models.OrderStatus("cancelled"))
	assert.Error(t, err)
	assert.Equal(t, 400, utils.StatusCode(err))

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, uint(0), order.Version)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db)

	_, err := svc.UpdateStatus(context.Background(), 999, models.OrderPreparing)
	assert.Error(t, err)
	assert.Equal(t, 404, utils.StatusCode(err))
}

func TestUpdateStatusAppendsHistoryAndBumpsVersion(t *testing.T) {
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db)

	order, err := svc.UpdateStatus(context.Background(), 1, models.OrderConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, uint(1), order.Version)
	assert.Len(t, order.StatusHistory, 1)

	order, err = svc.UpdateStatus(context.Background(), 1, models.OrderPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, order.Status)
	assert.Equal(t, uint(2), order.Version)
	assert.Len(t, order.StatusHistory, 2)
	assert.Equal(t, models.OrderConfirmed, order.StatusHistory[0].Status)
	assert.Equal(t, models.OrderPreparing, order.StatusHistory[1].Status)
}

func TestUpdateStatusDeliveredSetsDeliveredAt(t *testing.T) {
	db := setupOrderServiceDB(t)
	svc := NewOrderService(db)

	order, err := svc.UpdateStatus(context.Background(), 1, models.OrderDelivered)
	assert.NoError(t, err)
	assert.NotNil(t, order.DeliveredAt())
}

func TestUpdateStatusVersionConflict(t *testing.T) {
	db := setupOrderServiceDB(t)

	// A concurrent writer bumped the version between the read and the CAS
	// write; the stale update must affect zero rows and surface a conflict.
	var order models.Order
	db.First(&order, 1)
	res := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version+1).
		Updates(map[string]interface{}{"status": models.OrderConfirmed, "version": order.Version + 2})
	assert.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)
}
