package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appConfig "github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/models"
	"github.com/gilded-grove/concierge-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
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
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupConciergeEnv wires the test database, config, and a localdb provider
func setupConciergeEnv(t *testing.T) *gorm.DB {
	t.Helper()

	db := setupControllerTestDB(t)
	appConfig.SetDB(db)
	appConfig.SetConfig(&appConfig.Config{FallbackCategory: "ring", ProductProvider: appConfig.ProviderLocalDB})
	services.SetProductProvider(services.NewLocalDBProvider(db))
	return db
}

// seedWidgetCatalog seeds seven products, four of which are ring pieces
// flagged ready-to-ship
func seedWidgetCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	products := []models.Product{
		{SKU: "C-R-1", Title: "Solitaire", Category: "ring", PriceCents: 120000, Tags: "ring,solitaire", ReadyToShip: true},
		{SKU: "C-R-2", Title: "Halo", Category: "ring", PriceCents: 180000, Tags: "ring,halo", ReadyToShip: true},
		{SKU: "C-R-3", Title: "Band", Category: "ring", PriceCents: 90000, Tags: "ring,band", ReadyToShip: true},
		{SKU: "C-R-4", Title: "Pave Band", Category: "ring", PriceCents: 110000, Tags: "ring,pave", ReadyToShip: true},
		{SKU: "C-R-5", Title: "Custom Ring", Category: "ring", PriceCents: 250000, Tags: "ring,custom", ReadyToShip: false},
		{SKU: "C-N-1", Title: "Pendant", Category: "necklace", PriceCents: 70000, Tags: "pendant", ReadyToShip: true},
		{SKU: "C-E-1", Title: "Studs", Category: "earrings", PriceCents: 60000, Tags: "studs", ReadyToShip: true},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("Failed to seed product: %v", err)
		}
	}
}

func TestQueryProductsRingReadyToShip(t *testing.T) {
	db := setupConciergeEnv(t)
	seedWidgetCatalog(t, db)

	router := setupTestRouter()
	router.GET("/products", QueryProducts)

	req, _ := http.NewRequest(http.MethodGet, "/products?category=ring&readyToShip=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["count"], "exactly the four ring + ready-to-ship pieces")
	assert.Len(t, data["products"].([]interface{}), 4)

	// The effective filter is echoed back
	filter := data["filter"].(map[string]interface{})
	assert.Equal(t, "ring", filter["category"])
	assert.Equal(t, true, filter["ready_to_ship"])

	// A non-empty result carries no suggestions
	assert.NotContains(t, data, "suggestions")
}

func TestQueryProductsEmptyResultSuggestions(t *testing.T) {
	db := setupConciergeEnv(t)
	seedWidgetCatalog(t, db)

	router := setupTestRouter()
	router.GET("/products", QueryProducts)

	// Nothing under $100 exists
	req, _ := http.NewRequest(http.MethodGet, "/products?category=ring&priceLt=100", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "an empty result is a designed response, not an error")

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
	assert.Empty(t, data["products"])

	suggestions := data["suggestions"].([]interface{})
	assert.GreaterOrEqual(t, len(suggestions), 1)
	assert.LessOrEqual(t, len(suggestions), 3)

	original := data["filter"].(map[string]interface{})
	for _, raw := range suggestions {
		suggestion := raw.(map[string]interface{})
		assert.NotEmpty(t, suggestion["label"])
		assert.NotEqual(t, original, suggestion["filter"],
			"the original filter is never re-issued as a suggestion")
	}
}

func TestQueryProductsCategorySynonym(t *testing.T) {
	db := setupConciergeEnv(t)
	seedWidgetCatalog(t, db)

	router := setupTestRouter()
	router.GET("/products", QueryProducts)

	req, _ := http.NewRequest(http.MethodGet, "/products?category=rings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["count"], "plural category normalizes to singular")
}

func TestResolveMessageProductSearch(t *testing.T) {
	db := setupConciergeEnv(t)
	seedWidgetCatalog(t, db)

	router := setupTestRouter()
	router.POST("/message", ResolveMessage)

	body, _ := json.Marshal(map[string]interface{}{
		"sessionId": "sess-1",
		"text":      "show me rings under $2000",
	})
	req, _ := http.NewRequest(http.MethodPost, "/message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "product-search", data["intent"])

	products := data["products"].([]interface{})
	assert.Len(t, products, 4, "rings at or under $2000: everything but the $2500 custom piece")

	// The resolution left an analytics event behind
	var event models.AnalyticsEvent
	assert.NoError(t, db.Where("session_id = ? AND name = ?", "sess-1", "message_resolved").First(&event).Error)
}

func TestResolveMessageSupportIntent(t *testing.T) {
	setupConciergeEnv(t)

	router := setupTestRouter()
	router.POST("/message", ResolveMessage)

	body, _ := json.Marshal(map[string]interface{}{
		"sessionId": "sess-2",
		"text":      "I want to return my order GG-12001",
	})
	req, _ := http.NewRequest(http.MethodPost, "/message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "returns", data["intent"])
	assert.Equal(t, "start-return", data["action"])

	params := data["params"].(map[string]interface{})
	assert.Equal(t, "GG-12001", params["orderNumber"])

	// Non-search intents don't run the catalog
	assert.NotContains(t, data, "products")
}

func TestResolveMessageUnknown(t *testing.T) {
	setupConciergeEnv(t)

	router := setupTestRouter()
	router.POST("/message", ResolveMessage)

	body, _ := json.Marshal(map[string]interface{}{
		"sessionId": "sess-3",
		"text":      "tell me a joke",
	})
	req, _ := http.NewRequest(http.MethodPost, "/message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "unknown", data["intent"])
	assert.NotEmpty(t, data["reply"])
}

func TestResolveMessageValidation(t *testing.T) {
	setupConciergeEnv(t)

	router := setupTestRouter()
	router.POST("/message", ResolveMessage)

	// Missing sessionId
	body, _ := json.Marshal(map[string]interface{}{"text": "hello"})
	req, _ := http.NewRequest(http.MethodPost, "/message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}
