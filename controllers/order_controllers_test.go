package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/services"
	"github.com/feastly/foodmarket-app/utils"
)

type stubCheckout struct{ fail bool }

func (s *stubCheckout) CreateCheckoutSession(ctx context.Context, items []services.CheckoutLineItem, orderIDs []uint) (*services.CheckoutSession, error) {
	if s.fail {
		return nil, utils.ExternalServiceError("provider unavailable", nil)
	}
	return &services.CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

// asUser stands in for the auth middleware.
func asUser(userID uint, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupOrderTest(t *testing.T, checkout services.CheckoutProvider) (*gorm.DB, *gin.Engine) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:orderctrl_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.Restaurant{}, &models.MenuItem{},
		&models.Order{}, &models.OrderItem{}, &models.OrderStatusChange{})
	if err != nil {
		t.Fatal(err)
	}

	db.Create(&models.MenuItem{RestaurantID: 1, Name: "Margherita", Price: 10.0, Category: "Pizza"})
	db.Create(&models.MenuItem{RestaurantID: 2, Name: "Pad Thai", Price: 15.0, Category: "Noodles"})

	orderCtrl := NewOrderController(db,
		services.NewPlacementService(db, checkout),
		services.NewOrderService(db))

	router := gin.New()
	router.POST("/orders", asUser(7, models.RoleCustomer), orderCtrl.PlaceOrder)
	router.GET("/orders", asUser(7, models.RoleCustomer), orderCtrl.MyOrders)
	router.PATCH("/admin/orders/:order_id/status", asUser(1, models.RoleAdmin), orderCtrl.UpdateOrderStatus)
	return db, router
}

func TestPlaceOrderEndpoint(t *testing.T) {
	db, router := setupOrderTest(t, &stubCheckout{})

	body, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{
			{"menuItem": 1, "quantity": 2},
			{"menuItem": 2, "quantity": 1},
		},
		"deliveryAddress": "123 Main St",
	})
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Data struct {
			StripeURL string `json:"stripeUrl"`
			OrderIDs  []uint `json:"orderIds"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.test/cs_test", resp.Data.StripeURL)
	assert.Len(t, resp.Data.OrderIDs, 2)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestPlaceOrderEndpointCheckoutFailure(t *testing.T) {
	db, router := setupOrderTest(t, &stubCheckout{fail: true})

	body, _ := json.Marshal(map[string]interface{}{
		"items":           []map[string]interface{}{{"menuItem": 1, "quantity": 1}},
		"deliveryAddress": "123 Main St",
	})
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPlaceOrderEndpointRejectsBadBody(t *testing.T) {
	_, router := setupOrderTest(t, &stubCheckout{})

	req, _ := http.NewRequest("POST", "/orders", bytes.NewBufferString(`{"items": []}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	db, router := setupOrderTest(t, &stubCheckout{})
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderConfirmed, PaymentStatus: models.PaymentPaid, TotalPrice: 20})

	body := bytes.NewBufferString(`{"status": "preparing"}`)
	req, _ := http.NewRequest("PATCH", "/admin/orders/1/status", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.Preload("StatusHistory").First(&order, 1)
	assert.Equal(t, models.OrderPreparing, order.Status)
	assert.Equal(t, uint(1), order.Version)
	assert.Len(t, order.StatusHistory, 1)
}

func TestUpdateOrderStatusEndpointRejectsUnknownStatus(t *testing.T) {
	db, router := setupOrderTest(t, &stubCheckout{})
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderConfirmed, PaymentStatus: models.PaymentPaid, TotalPrice: 20})

	body := bytes.NewBufferString(`{"status": "cancelled"}`)
	req, _ := http.NewRequest("PATCH", "/admin/orders/1/status", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.OrderConfirmed, order.Status)
}

func TestMyOrdersIncludesDeliveredAt(t *testing.T) {
	db, router := setupOrderTest(t, &stubCheckout{})
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderDelivered, PaymentStatus: models.PaymentPaid, TotalPrice: 20,
		StatusHistory: []models.OrderStatusChange{
			{Status: models.OrderConfirmed, Time: webhookNow},
			{Status: models.OrderDelivered, Time: webhookNow.Add(time.Hour)},
		}})

	req, _ := http.NewRequest("GET", "/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []struct {
			DeliveredAt *string `json:"delivered_at"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.NotNil(t, resp.Data[0].DeliveredAt)
}
