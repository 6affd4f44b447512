package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/middlewares"
	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

type ComplaintController struct {
	DB *gorm.DB
}

func NewComplaintController(db *gorm.DB) *ComplaintController {
	return &ComplaintController{DB: db}
}

// Create files a complaint about an order. Customers complain against the
// order's restaurant; restaurant owners complain against the order's customer.
// The target is resolved from the order, never from the request body.
func (cc *ComplaintController) Create(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}
	role, _ := middlewares.CurrentRole(c)

	var req struct {
		OrderID uint   `json:"orderId" binding:"required"`
		Reason  string `json:"reason" binding:"required,min=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := cc.DB.First(&order, req.OrderID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("order not found"))
		return
	}

	complaint := models.Complaint{
		RaisedBy: userID,
		OrderID:  order.ID,
		Reason:   req.Reason,
		Status:   models.ComplaintPending,
	}

	switch role {
	case models.RoleCustomer:
		if order.CustomerID != userID {
			utils.RespondAppError(c, utils.AuthorizationError("order belongs to another customer"))
			return
		}
		complaint.Origin = models.ComplaintFromCustomer
		restaurantID := order.RestaurantID
		complaint.AgainstRestaurant = &restaurantID
	case models.RoleRestaurantOwner:
		var restaurant models.Restaurant
		if err := cc.DB.Where("owner_id = ?", userID).First(&restaurant).Error; err != nil {
			utils.RespondAppError(c, utils.NotFoundError("no restaurant registered for this account"))
			return
		}
		if order.RestaurantID != restaurant.ID {
			utils.RespondAppError(c, utils.AuthorizationError("order belongs to another restaurant"))
			return
		}
		complaint.Origin = models.ComplaintFromRestaurant
		customerID := order.CustomerID
		complaint.AgainstUser = &customerID
	default:
		utils.RespondAppError(c, utils.AuthorizationError("only customers and restaurant owners can file complaints"))
		return
	}

	if err := cc.DB.Create(&complaint).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Complaint %d filed on order %d by user %d", complaint.ID, order.ID, userID)
	utils.RespondJSON(c, http.StatusCreated, "Complaint submitted", complaint)
}

func (cc *ComplaintController) MyComplaints(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var complaints []models.Complaint
	if err := cc.DB.Where("raised_by = ?", userID).
		Order("created_at desc").Find(&complaints).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaints fetched", complaints)
}

// AllComplaints lists every complaint for the complaint-manager queue,
// optionally filtered by ?status=.
func (cc *ComplaintController) AllComplaints(c *gin.Context) {
	query := cc.DB.Model(&models.Complaint{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var complaints []models.Complaint
	if err := query.Order("created_at asc").Find(&complaints).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaints fetched", complaints)
}

func (cc *ComplaintController) ComplaintDetail(c *gin.Context) {
	complaintID, err := strconv.ParseUint(c.Param("complaint_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid complaint id"))
		return
	}

	var complaint models.Complaint
	if err := cc.DB.First(&complaint, complaintID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("complaint not found"))
		return
	}

	role, _ := middlewares.CurrentRole(c)
	if role != models.RoleComplaintManager && role != models.RoleAdmin {
		userID, _ := middlewares.CurrentUserID(c)
		if complaint.RaisedBy != userID {
			utils.RespondAppError(c, utils.AuthorizationError("complaint belongs to another user"))
			return
		}
	}

	var order models.Order
	if err := cc.DB.Preload("OrderItems").First(&order, complaint.OrderID).Error; err == nil {
		utils.RespondJSON(c, http.StatusOK, "Complaint fetched", gin.H{
			"complaint": complaint,
			"order":     order,
		})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaint fetched", gin.H{"complaint": complaint})
}

// StartReview moves a pending complaint into the reviewing state and records
// the handling manager.
func (cc *ComplaintController) StartReview(c *gin.Context) {
	managerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	complaintID, err := strconv.ParseUint(c.Param("complaint_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid complaint id"))
		return
	}

	var complaint models.Complaint
	if err := cc.DB.First(&complaint, complaintID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("complaint not found"))
		return
	}
	if complaint.Status == models.ComplaintResolved {
		utils.RespondAppError(c, utils.ValidationError("complaint is already resolved"))
		return
	}

	complaint.Status = models.ComplaintReviewing
	complaint.HandledBy = &managerID
	if err := cc.DB.Save(&complaint).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaint under review", complaint)
}

// Resolve closes a complaint with responses for both parties and applies the
// manager's sanction to the party the complaint was raised against.
func (cc *ComplaintController) Resolve(c *gin.Context) {
	managerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	complaintID, err := strconv.ParseUint(c.Param("complaint_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid complaint id"))
		return
	}

	var req struct {
		ManagerAction        string `json:"managerAction" binding:"required"`
		ResponseToCustomer   string `json:"responseToCustomer"`
		ResponseToRestaurant string `json:"responseToRestaurant"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	action := models.ManagerAction(req.ManagerAction)
	if !action.Valid() {
		utils.RespondAppError(c, utils.ValidationError("unknown manager action %q", req.ManagerAction))
		return
	}

	var complaint models.Complaint
	if err := cc.DB.First(&complaint, complaintID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("complaint not found"))
		return
	}
	if complaint.Status == models.ComplaintResolved {
		utils.RespondAppError(c, utils.ValidationError("complaint is already resolved"))
		return
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		complaint.Status = models.ComplaintResolved
		complaint.ManagerAction = action
		complaint.ResponseToCustomer = req.ResponseToCustomer
		complaint.ResponseToRestaurant = req.ResponseToRestaurant
		complaint.HandledBy = &managerID
		if err := tx.Save(&complaint).Error; err != nil {
			return err
		}
		return applyManagerAction(tx, &complaint, action)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Complaint %d resolved with action %s by manager %d", complaint.ID, action, managerID)
	utils.RespondJSON(c, http.StatusOK, "Complaint resolved", complaint)
}

// applyManagerAction propagates the sanction to the complaint's target: user
// account status for complaints against customers, operational status for
// complaints against restaurants. ActionNone leaves the target untouched.
func applyManagerAction(tx *gorm.DB, complaint *models.Complaint, action models.ManagerAction) error {
	if action == models.ActionNone {
		return nil
	}

	if complaint.AgainstUser != nil {
		var status models.UserStatus
		switch action {
		case models.ActionWarned:
			status = models.UserWarned
		case models.ActionBlocked:
			status = models.UserBlocked
		case models.ActionActive:
			status = models.UserActive
		}
		return tx.Model(&models.User{}).
			Where("id = ?", *complaint.AgainstUser).
			Update("status", status).Error
	}

	if complaint.AgainstRestaurant != nil {
		var status models.OperationalStatus
		switch action {
		case models.ActionWarned:
			status = models.OperationalWarned
		case models.ActionBlocked:
			status = models.OperationalBlocked
		case models.ActionActive:
			status = models.OperationalActive
		}
		return tx.Model(&models.Restaurant{}).
			Where("id = ?", *complaint.AgainstRestaurant).
			Update("operational_status", status).Error
	}

	return nil
}
