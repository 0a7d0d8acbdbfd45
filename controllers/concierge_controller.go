package controllers

import (
	"errors"
	"net/http"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/models"
	"github.com/gilded-grove/concierge-api/services"
	"github.com/gin-gonic/gin"
)

// ConciergeMessageRequest represents the request body for a widget message
type ConciergeMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Text      string `json:"text"`
}

// ResolveMessage handles POST /api/v1/concierge/message - resolves a free-text
// or slash-command message to an intent and, for product searches, runs the
// catalog query inline
func ResolveMessage(c *gin.Context) {
	var req ConciergeMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	intentService := services.GetIntentService()
	result := intentService.Resolve(req.Text)

	widgetService := services.NewWidgetService(config.GetDB())
	widgetService.TrackEvent(req.SessionID, "message_resolved", map[string]interface{}{
		"intent": result.Intent,
	})

	response := gin.H{
		"success": true,
		"data": gin.H{
			"intent": result.Intent,
			"reply":  result.Reply,
			"action": result.Action,
			"params": result.Params,
		},
	}

	// Product-search intents answer with catalog results directly
	if result.Intent == "product-search" {
		filterService := services.NewFilterService(config.GetConfig())
		filter := filterService.BuildFilter(result.Params)

		products, suggestions, err := queryWithSuggestions(c, filter)
		if err != nil {
			respondProviderError(c, err)
			return
		}

		data := response["data"].(gin.H)
		data["filter"] = filter
		data["products"] = products
		if len(suggestions) > 0 {
			data["suggestions"] = suggestions
		}
	}

	c.JSON(http.StatusOK, response)
}

// QueryProducts handles GET /api/v1/concierge/products - runs a catalog query
// from explicit query parameters and echoes the effective filter back
func QueryProducts(c *gin.Context) {
	params := map[string]string{}
	for _, key := range []string{"q", "category", "tags", "priceLt", "readyToShip", "featured", "sort"} {
		if value := c.Query(key); value != "" {
			params[key] = value
		}
	}

	filterService := services.NewFilterService(config.GetConfig())
	filter := filterService.BuildFilter(params)

	products, suggestions, err := queryWithSuggestions(c, filter)
	if err != nil {
		respondProviderError(c, err)
		return
	}

	data := gin.H{
		"filter":   filter,
		"products": products,
		"count":    len(products),
	}
	if len(suggestions) > 0 {
		data["suggestions"] = suggestions
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// queryWithSuggestions runs the provider query and, on an empty result,
// proposes alternative filters. An empty result is a designed response, not
// an error; the original filter is never re-run broadened.
func queryWithSuggestions(c *gin.Context, filter services.ProductFilter) ([]models.Product, []services.Suggestion, error) {
	provider := services.GetProductProvider()
	products, err := provider.QueryProducts(c.Request.Context(), filter)
	if err != nil {
		return nil, nil, err
	}

	if products == nil {
		products = []models.Product{}
	}

	var suggestions []services.Suggestion
	if len(products) == 0 {
		suggestions = services.NewSuggestionService().SuggestAlternatives(filter)
	}
	return products, suggestions, nil
}

// respondProviderError maps provider failures to the widget error envelope
func respondProviderError(c *gin.Context, err error) {
	var providerErr *services.ProviderError
	if errors.As(err, &providerErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    providerErr.Code,
				"message": providerErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Something went wrong on our side",
		},
	})
}
