package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/services"
	"github.com/feastly/foodmarket-app/utils"
)

type AdminController struct {
	DB        *gorm.DB
	Analytics *services.AnalyticsService
}

func NewAdminController(db *gorm.DB, analytics *services.AnalyticsService) *AdminController {
	return &AdminController{DB: db, Analytics: analytics}
}

// VerifyRestaurant approves or rejects a pending restaurant registration.
func (ac *AdminController) VerifyRestaurant(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("restaurant_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid restaurant id"))
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var status models.VerificationStatus
	switch req.Action {
	case "approve":
		status = models.VerificationApproved
	case "reject":
		status = models.VerificationRejected
	default:
		utils.RespondAppError(c, utils.ValidationError("action must be approve or reject"))
		return
	}

	var restaurant models.Restaurant
	if err := ac.DB.First(&restaurant, restaurantID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("restaurant not found"))
		return
	}

	restaurant.VerificationStatus = status
	if err := ac.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d verification set to %s", restaurant.ID, status)
	utils.RespondJSON(c, http.StatusOK, "Restaurant verification updated", restaurant)
}

func (ac *AdminController) DashboardStats(c *gin.Context) {
	dash, err := ac.Analytics.AdminDashboardStats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats fetched", dash)
}

// AnalyticsReport serves the platform-wide report for ?range=weekly|monthly|yearly.
func (ac *AdminController) AnalyticsReport(c *gin.Context) {
	rng := c.DefaultQuery("range", services.RangeMonthly)
	report, err := ac.Analytics.AdminAnalytics(c.Request.Context(), rng)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics fetched", report)
}

func (ac *AdminController) AllOrders(c *gin.Context) {
	query := ac.DB.
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Preload("StatusHistory")
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

func (ac *AdminController) SingleOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid order id"))
		return
	}

	var order models.Order
	if err := ac.DB.
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_changes.time asc, order_status_changes.id asc")
		}).
		First(&order, orderID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order fetched", toOrderView(order))
}

func (ac *AdminController) AllRestaurants(c *gin.Context) {
	query := ac.DB.Model(&models.Restaurant{})
	if status := c.Query("verificationStatus"); status != "" {
		query = query.Where("verification_status = ?", status)
	}

	var restaurants []models.Restaurant
	if err := query.Order("created_at desc").Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurants fetched", restaurants)
}

func (ac *AdminController) AllCustomers(c *gin.Context) {
	var customers []models.User
	if err := ac.DB.Where("role = ?", models.RoleCustomer).
		Order("created_at desc").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customers fetched", customers)
}

// CustomerProfile is the admin view of one customer: account details plus
// order history and complaint record.
func (ac *AdminController) CustomerProfile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid user id"))
		return
	}

	var customer models.User
	if err := ac.DB.Where("id = ? AND role = ?", userID, models.RoleCustomer).
		First(&customer).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("customer not found"))
		return
	}

	var orders []models.Order
	if err := ac.DB.Preload("OrderItems").
		Where("customer_id = ?", customer.ID).
		Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var complaints []models.Complaint
	if err := ac.DB.Where("raised_by = ? OR against_user = ?", customer.ID, customer.ID).
		Order("created_at desc").Find(&complaints).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	stats, err := ac.Analytics.CustomerProfileStats(c.Request.Context(), customer.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer profile fetched", gin.H{
		"customer":   customer,
		"orders":     orders,
		"complaints": complaints,
		"stats":      stats,
	})
}

// UpdateUserStatus sets a user's account status (active, warned, blocked).
func (ac *AdminController) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid user id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	status := models.UserStatus(req.Status)
	if !status.Valid() {
		utils.RespondAppError(c, utils.ValidationError("unknown user status %q", req.Status))
		return
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("user not found"))
		return
	}

	user.Status = status
	if err := ac.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User status updated", user)
}
