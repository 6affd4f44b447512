package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/middlewares"
	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/services"
	"github.com/feastly/foodmarket-app/utils"
)

type OrderController struct {
	DB        *gorm.DB
	Placement *services.PlacementService
	Orders    *services.OrderService
}

func NewOrderController(db *gorm.DB, placement *services.PlacementService, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Placement: placement, Orders: orders}
}

// PlaceOrder accepts the customer's flat cart and delivery address, splits the
// cart into one order per restaurant, and returns the hosted checkout URL.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	customerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var req struct {
		Items           []services.CartItem `json:"items" binding:"required,min=1,dive"`
		DeliveryAddress string              `json:"deliveryAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := oc.Placement.PlaceOrder(c.Request.Context(), customerID, req.Items, req.DeliveryAddress)
	if err != nil {
		utils.ErrorLogger.Printf("Order placement failed for customer %d: %v", customerID, err)
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Placed %d order(s) for customer %d", len(result.OrderIDs), customerID)
	utils.RespondJSON(c, http.StatusCreated, "Order placed, awaiting payment", result)
}

// orderView augments an order with its delivery time derived from the history.
type orderView struct {
	models.Order
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

func toOrderView(o models.Order) orderView {
	return orderView{Order: o, DeliveredAt: o.DeliveredAt()}
}

func (oc *OrderController) MyOrders(c *gin.Context) {
	customerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var orders []models.Order
	if err := oc.DB.
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Preload("StatusHistory").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	utils.RespondJSON(c, http.StatusOK, "Orders fetched", views)
}

func (oc *OrderController) OrderDetail(c *gin.Context) {
	customerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_changes.time asc, order_status_changes.id asc")
		}).
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order fetched", toOrderView(order))
}

// RestaurantOrders lists the caller's restaurant orders, optionally filtered
// by ?status=.
func (oc *OrderController) RestaurantOrders(c *gin.Context) {
	ownerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var restaurant models.Restaurant
	if err := oc.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("no restaurant registered for this account"))
		return
	}

	query := oc.DB.
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Preload("StatusHistory").
		Where("restaurant_id = ?", restaurant.ID)
	if status := c.Query("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			utils.RespondAppError(c, utils.ValidationError("invalid status. Allowed values: %s", models.AllowedStatusValues()))
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	utils.RespondJSON(c, http.StatusOK, "Orders fetched", views)
}

// UpdateOrderStatus moves an order through fulfillment. Restaurant owners may
// only touch their own orders; admins may touch any.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if ok := oc.authorizeOrderAccess(c, uint(orderID)); !ok {
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), uint(orderID), models.OrderStatus(req.Status))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d moved to status %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", toOrderView(*order))
}

func (oc *OrderController) authorizeOrderAccess(c *gin.Context, orderID uint) bool {
	role, _ := middlewares.CurrentRole(c)
	if role == models.RoleAdmin {
		return true
	}

	ownerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return false
	}

	var restaurant models.Restaurant
	if err := oc.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		utils.RespondAppError(c, utils.AuthorizationError("no restaurant registered for this account"))
		return false
	}

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("order %d not found", orderID))
		return false
	}
	if order.RestaurantID != restaurant.ID {
		utils.RespondAppError(c, utils.AuthorizationError("order belongs to another restaurant"))
		return false
	}
	return true
}
