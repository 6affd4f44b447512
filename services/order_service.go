package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

// OrderService owns fulfillment status transitions.
type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

// UpdateStatus sets an order's fulfillment status and appends the transition
// to the history log. The write is a compare-and-swap on the order's version
// counter, so two actors racing on the same order get a conflict instead of a
// silent last-write-wins.
func (os *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, utils.ValidationError("invalid status. Allowed values: %s", models.AllowedStatusValues())
	}

	var order models.Order
	if err := os.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("order %d not found", orderID)
		}
		return nil, err
	}

	err := os.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]interface{}{
				"status":  status,
				"version": order.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictError("order was updated concurrently, retry")
		}

		change := models.OrderStatusChange{
			OrderID: order.ID,
			Status:  status,
			Time:    time.Now(),
		}
		return tx.Create(&change).Error
	})
	if err != nil {
		return nil, err
	}

	var updated models.Order
	if err := os.DB.WithContext(ctx).
		Preload("OrderItems").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_changes.time asc, order_status_changes.id asc")
		}).
		First(&updated, orderID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}
