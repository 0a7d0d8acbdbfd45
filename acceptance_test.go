package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/controllers"
	"github.com/gilded-grove/concierge-api/models"
	"github.com/gilded-grove/concierge-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAcceptanceApp wires the widget routes against an in-memory database,
// the way the storefront sees them
func setupAcceptanceApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderStatusEntry{},
		&models.ReturnRequest{},
		&models.WidgetShortlist{},
		&models.InspirationItem{},
		&models.CapsuleHold{},
		&models.StylistTicket{},
		&models.CsatFeedback{},
		&models.OrderSubscription{},
		&models.AnalyticsEvent{},
	))

	config.SetDB(db)
	config.SetConfig(&config.Config{FallbackCategory: "ring", ProductProvider: config.ProviderLocalDB})
	services.SetProductProvider(services.NewLocalDBProvider(db))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/concierge/message", controllers.ResolveMessage)
		v1.GET("/concierge/products", controllers.QueryProducts)
		v1.POST("/support/order-status", controllers.OrderStatus)
		v1.POST("/support/returns", controllers.CreateReturn)
	}
	return router, db
}

func acceptancePost(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestWidgetConversationFlow walks the journey a shopper takes: ask for a
// piece, hit an empty result, follow a suggestion, then check an order and
// open a return.
func TestWidgetConversationFlow(t *testing.T) {
	router, db := setupAcceptanceApp(t)

	require.NoError(t, db.Create(&models.Product{
		SKU: "GG-B-001", Title: "Tennis Bracelet", Category: "bracelet",
		PriceCents: 320000, Tags: "bracelet,tennis", ReadyToShip: true,
	}).Error)

	shippedAt := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, db.Create(&models.Order{
		OrderNumber: "GG-12001", CustomerEmail: "shopper@example.com",
		PostalCode: "97201", Status: "shipped", ShippedAt: &shippedAt,
	}).Error)

	// 1. The shopper asks for rings; the catalog has none
	w := acceptancePost(router, "/api/v1/concierge/message", map[string]string{
		"sessionId": "accept-1",
		"text":      "show me rings",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var msgResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgResponse))
	data := msgResponse["data"].(map[string]interface{})
	assert.Equal(t, "product-search", data["intent"])
	assert.Empty(t, data["products"])

	suggestions := data["suggestions"].([]interface{})
	require.NotEmpty(t, suggestions)

	// 2. One of the suggestions names a sibling category that has stock
	found := false
	for _, raw := range suggestions {
		filter := raw.(map[string]interface{})["filter"].(map[string]interface{})
		if filter["category"] == "bracelet" {
			found = true
		}
	}
	assert.True(t, found, "a sibling-category suggestion should be offered")

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/concierge/products?category=bracelet", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var productResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &productResponse))
	assert.Equal(t, float64(1), productResponse["data"].(map[string]interface{})["count"])

	// 3. The shopper looks up their order
	w = acceptancePost(router, "/api/v1/support/order-status", map[string]string{
		"orderNumber": "GG-12001",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 4. And opens a return, well inside the 30-day window
	w = acceptancePost(router, "/api/v1/support/returns", map[string]string{
		"orderNumber": "GG-12001",
		"reason":      "wrong size",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var returnResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &returnResponse))
	returnData := returnResponse["data"].(map[string]interface{})
	assert.Equal(t, float64(30), returnData["windowDays"])

	var count int64
	db.Model(&models.ReturnRequest{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
