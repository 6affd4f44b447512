package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

// CartItem is one entry of a customer's flat cart, possibly spanning several
// restaurants.
type CartItem struct {
	MenuItemID uint `json:"menuItem" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

type PlacementResult struct {
	CheckoutURL string `json:"stripeUrl"`
	OrderIDs    []uint `json:"orderIds"`
}

// PlacementService turns a multi-restaurant cart into one Order per restaurant
// plus a single checkout session covering the whole cart. All database writes
// and the checkout call share one transaction scope: any failure rolls back
// every order, so no partial placement can persist.
type PlacementService struct {
	DB       *gorm.DB
	Checkout CheckoutProvider
}

func NewPlacementService(db *gorm.DB, checkout CheckoutProvider) *PlacementService {
	return &PlacementService{DB: db, Checkout: checkout}
}

func (ps *PlacementService) PlaceOrder(ctx context.Context, customerID uint, items []CartItem, deliveryAddress string) (*PlacementResult, error) {
	if len(items) == 0 || strings.TrimSpace(deliveryAddress) == "" {
		return nil, utils.ValidationError("items and delivery address are required")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, utils.ValidationError("quantity must be at least 1 for menu item %d", item.MenuItemID)
		}
	}

	menuItemIDs := make([]uint, 0, len(items))
	for _, item := range items {
		menuItemIDs = append(menuItemIDs, item.MenuItemID)
	}

	// One bulk fetch; a single missing menu item aborts the whole placement.
	var menuItems []models.MenuItem
	if err := ps.DB.WithContext(ctx).Where("id IN ?", menuItemIDs).Find(&menuItems).Error; err != nil {
		return nil, err
	}
	menuByID := make(map[uint]models.MenuItem, len(menuItems))
	for _, m := range menuItems {
		menuByID[m.ID] = m
	}
	for _, item := range items {
		if _, ok := menuByID[item.MenuItemID]; !ok {
			return nil, utils.NotFoundError("menu item %d not found", item.MenuItemID)
		}
	}

	// Partition by restaurant, keeping first-seen restaurant order stable.
	var restaurantOrder []uint
	grouped := make(map[uint][]CartItem)
	for _, item := range items {
		restaurantID := menuByID[item.MenuItemID].RestaurantID
		if _, seen := grouped[restaurantID]; !seen {
			restaurantOrder = append(restaurantOrder, restaurantID)
		}
		grouped[restaurantID] = append(grouped[restaurantID], item)
	}

	result := &PlacementResult{}
	err := ps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, restaurantID := range restaurantOrder {
			orderItems := make([]models.OrderItem, 0, len(grouped[restaurantID]))
			for _, cartItem := range grouped[restaurantID] {
				menu := menuByID[cartItem.MenuItemID]
				orderItems = append(orderItems, models.OrderItem{
					RestaurantID: restaurantID,
					MenuItemID:   menu.ID,
					Quantity:     cartItem.Quantity,
					Price:        utils.RoundToCents(menu.Price * float64(cartItem.Quantity)),
				})
			}

			order, err := models.NewOrderForRestaurant(customerID, restaurantID, deliveryAddress, orderItems)
			if err != nil {
				return err
			}
			if err := tx.Create(order).Error; err != nil {
				return err
			}
			result.OrderIDs = append(result.OrderIDs, order.ID)
		}

		// One checkout session for the entire cart. The provider call sits
		// inside the transaction scope so a failure rolls back every order;
		// the reverse inconsistency (session created, transaction aborted on
		// commit) resolves through the expired-session webhook.
		lineItems := make([]CheckoutLineItem, 0, len(items))
		for _, cartItem := range items {
			menu := menuByID[cartItem.MenuItemID]
			lineItems = append(lineItems, CheckoutLineItem{
				Name:       menu.Name,
				UnitAmount: utils.ToMinorUnits(menu.Price),
				Quantity:   int64(cartItem.Quantity),
			})
		}

		session, err := ps.Checkout.CreateCheckoutSession(ctx, lineItems, result.OrderIDs)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Order{}).
			Where("id IN ?", result.OrderIDs).
			Update("payment_ref", session.ID).Error; err != nil {
			return err
		}

		result.CheckoutURL = session.URL
		return nil
	})
	if err != nil {
		result.OrderIDs = nil
		return nil, err
	}

	return result, nil
}
