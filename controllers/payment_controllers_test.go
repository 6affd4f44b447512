package controllers

import (
	"bytes"
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

var webhookNow = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

func setupWebhookTest(t *testing.T) (*gorm.DB, *gin.Engine, *services.WebhookVerifier) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:webhook_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderStatusChange{}); err != nil {
		t.Fatal(err)
	}

	verifier := services.NewWebhookVerifier("whsec_test")
	verifier.Now = func() time.Time { return webhookNow }

	paymentCtrl := NewPaymentController(verifier, services.NewReconciliationService(db))
	router := gin.New()
	router.POST("/stripe-payments/webhook", paymentCtrl.Webhook)
	return db, router, verifier
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/stripe-payments/webhook", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signedHeader(v *services.WebhookVerifier, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", webhookNow.Unix(), v.Sign(webhookNow, payload))
}

func completedPayload(orderIDs string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "metadata": {"orderIds": "%s"}}}
	}`, orderIDs))
}

func TestWebhookCompletedConfirmsOrder(t *testing.T) {
	db, router, verifier := setupWebhookTest(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	payload := completedPayload("1")
	w := postWebhook(router, payload, signedHeader(verifier, payload))
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.Preload("StatusHistory").First(&order, 1)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Len(t, order.StatusHistory, 1)
}

func TestWebhookReplayDeliversOnce(t *testing.T) {
	db, router, verifier := setupWebhookTest(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	payload := completedPayload("1")
	header := signedHeader(verifier, payload)
	assert.Equal(t, http.StatusOK, postWebhook(router, payload, header).Code)
	assert.Equal(t, http.StatusOK, postWebhook(router, payload, header).Code)

	var order models.Order
	db.Preload("StatusHistory").First(&order, 1)
	assert.Len(t, order.StatusHistory, 1)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db, router, _ := setupWebhookTest(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	payload := completedPayload("1")
	w := postWebhook(router, payload, fmt.Sprintf("t=%d,v1=deadbeef", webhookNow.Unix()))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postWebhook(router, payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing changed.
	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, models.OrderPending, order.Status)
}

func TestWebhookExpiredFailsPaymentOnly(t *testing.T) {
	db, router, verifier := setupWebhookTest(t)
	db.Create(&models.Order{CustomerID: 7, RestaurantID: 1, DeliveryAddress: "a",
		Status: models.OrderPending, PaymentStatus: models.PaymentPending, TotalPrice: 20})

	payload := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.expired",
		"data": {"object": {"id": "cs_1", "metadata": {"orderIds": "1"}}}
	}`)
	w := postWebhook(router, payload, signedHeader(verifier, payload))
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.Preload("StatusHistory").First(&order, 1)
	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Empty(t, order.StatusHistory)
}

func TestWebhookAcknowledgesUnknownEventType(t *testing.T) {
	_, router, verifier := setupWebhookTest(t)

	payload := []byte(`{"id": "evt_3", "type": "invoice.created", "data": {"object": {"id": "in_1"}}}`)
	w := postWebhook(router, payload, signedHeader(verifier, payload))
	assert.Equal(t, http.StatusOK, w.Code)
}
