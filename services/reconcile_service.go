package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

// ReconciliationService applies payment-provider webhook events to orders.
// Events may be delivered more than once; every handler here must be
// idempotent.
type ReconciliationService struct {
	DB *gorm.DB
}

func NewReconciliationService(db *gorm.DB) *ReconciliationService {
	return &ReconciliationService{DB: db}
}

// HandleEvent processes a verified webhook event. Unknown event types and
// references to missing orders are acknowledged without action; only storage
// failures are returned.
func (rs *ReconciliationService) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return rs.markPaid(ctx, event.OrderIDs())
	case EventCheckoutExpired:
		return rs.markExpired(ctx, event.OrderIDs())
	default:
		if utils.InfoLogger != nil {
			utils.InfoLogger.Printf("Ignoring webhook event type %q (id=%s)", event.Type, event.ID)
		}
		return nil
	}
}

func (rs *ReconciliationService) markPaid(ctx context.Context, orderIDs []uint) error {
	return rs.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, orderID := range orderIDs {
			var order models.Order
			if err := tx.First(&order, orderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}

			// Replay guard: an order that is already paid was confirmed by an
			// earlier delivery of this event; appending again would duplicate
			// the history entry.
			if order.PaymentStatus == models.PaymentPaid {
				continue
			}

			res := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", order.ID, order.Version).
				Updates(map[string]interface{}{
					"payment_status": models.PaymentPaid,
					"status":         models.OrderConfirmed,
					"version":        order.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Lost the race to a concurrent update; the provider retry
				// will reconcile.
				continue
			}

			change := models.OrderStatusChange{
				OrderID: order.ID,
				Status:  models.OrderConfirmed,
				Time:    time.Now(),
			}
			if err := tx.Create(&change).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (rs *ReconciliationService) markExpired(ctx context.Context, orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return nil
	}
	// Fulfillment status is left untouched; a paid order is never downgraded
	// by a late expiry event.
	return rs.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id IN ? AND payment_status <> ?", orderIDs, models.PaymentPaid).
		Update("payment_status", models.PaymentFailed).Error
}
