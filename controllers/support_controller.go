package controllers

import (
	"errors"
	"net/http"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/services"
	"github.com/gin-gonic/gin"
)

// OrderStatusRequest accepts either an order number or the email and postal
// code on the order
type OrderStatusRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email"`
	PostalCode  string `json:"postalCode"`
}

// OrderStatus handles POST /api/v1/support/order-status - looks up an order
// by either key and returns its normalized timeline
func OrderStatus(c *gin.Context) {
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.OrderNumber == "" && (req.Email == "" || req.PostalCode == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Provide an orderNumber, or both email and postalCode",
			},
		})
		return
	}

	orderService := services.NewOrderService(config.GetDB())

	var timeline *services.OrderTimeline
	var err error
	if req.OrderNumber != "" {
		timeline, err = orderService.GetOrderStatus(req.OrderNumber)
	} else {
		timeline, err = orderService.GetOrderStatusByEmail(req.Email, req.PostalCode)
	}
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reference": timeline.Reference,
			"status":    timeline.Status,
			"entries":   timeline.Entries,
		},
	})
}

// CreateReturnRequest represents the request body for opening a return
type CreateReturnRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

// CreateReturn handles POST /api/v1/support/returns - checks eligibility and
// opens an RMA
func CreateReturn(c *gin.Context) {
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	orderService := services.NewOrderService(config.GetDB())
	returnRequest, err := orderService.CreateReturn(req.OrderNumber, req.Reason)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"rmaId":      returnRequest.RMAID,
			"windowDays": returnRequest.WindowDays,
			"status":     returnRequest.Status,
		},
	})
}

// CreateShortlistRequest represents the request body for saving a shortlist
type CreateShortlistRequest struct {
	SessionID   string   `json:"sessionId" binding:"required"`
	ProductSKUs []string `json:"productSkus" binding:"required,min=1"`
	Note        string   `json:"note"`
	OrderNumber string   `json:"orderNumber"`
}

// CreateShortlist handles POST /api/v1/support/shortlist
func CreateShortlist(c *gin.Context) {
	var req CreateShortlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	widgetService := services.NewWidgetService(config.GetDB())
	shortlist, err := widgetService.CreateShortlist(req.SessionID, req.ProductSKUs, req.Note, req.OrderNumber)
	if err != nil {
		respondDatabaseError(c, "Failed to save shortlist")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    shortlist,
	})
}

// CreateCapsuleHoldRequest represents the request body for a capsule hold
type CreateCapsuleHoldRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	ProductSKU  string `json:"productSku" binding:"required"`
	OrderNumber string `json:"orderNumber"`
}

// CreateCapsuleHold handles POST /api/v1/support/capsule
func CreateCapsuleHold(c *gin.Context) {
	var req CreateCapsuleHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	widgetService := services.NewWidgetService(config.GetDB())
	hold, err := widgetService.CreateCapsuleHold(req.SessionID, req.ProductSKU, req.OrderNumber)
	if err != nil {
		respondDatabaseError(c, "Failed to create capsule hold")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    hold,
	})
}

// CreateStylistTicketRequest represents the request body for a stylist ticket
type CreateStylistTicketRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Topic       string `json:"topic" binding:"required"`
	Message     string `json:"message"`
	OrderNumber string `json:"orderNumber"`
}

// CreateStylistTicket handles POST /api/v1/support/stylist
func CreateStylistTicket(c *gin.Context) {
	var req CreateStylistTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	widgetService := services.NewWidgetService(config.GetDB())
	ticket, err := widgetService.CreateStylistTicket(req.SessionID, req.Email, req.Topic, req.Message, req.OrderNumber)
	if err != nil {
		respondDatabaseError(c, "Failed to create stylist ticket")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// CreateCsatRequest represents the request body for CSAT feedback
type CreateCsatRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	Score       int    `json:"score" binding:"required,gte=1,lte=5"`
	Comment     string `json:"comment"`
	OrderNumber string `json:"orderNumber"`
}

// CreateCsat handles POST /api/v1/support/csat
func CreateCsat(c *gin.Context) {
	var req CreateCsatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	widgetService := services.NewWidgetService(config.GetDB())
	feedback, err := widgetService.CreateCsatFeedback(req.SessionID, req.Score, req.Comment, req.OrderNumber)
	if err != nil {
		respondDatabaseError(c, "Failed to record feedback")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    feedback,
	})
}

// CreateOrderSubscriptionRequest represents the request body for order updates
type CreateOrderSubscriptionRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	OrderNumber string `json:"orderNumber" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

// CreateOrderSubscription handles POST /api/v1/support/order-updates
func CreateOrderSubscription(c *gin.Context) {
	var req CreateOrderSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	widgetService := services.NewWidgetService(config.GetDB())
	subscription, err := widgetService.CreateOrderSubscription(req.SessionID, req.OrderNumber, req.Email)
	if err != nil {
		respondDatabaseError(c, "Failed to subscribe to order updates")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    subscription,
	})
}

// respondValidationError reports a malformed request body
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondDatabaseError reports a persistence failure without internal detail
func respondDatabaseError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": message,
		},
	})
}

// respondOrderServiceError maps order-service failures to status codes:
// lookups that find nothing are 404, ineligibility reasons are 422, anything
// else is a generic 500
func respondOrderServiceError(c *gin.Context, err error) {
	var serviceErr *services.OrderServiceError
	if errors.As(err, &serviceErr) {
		status := http.StatusUnprocessableEntity
		if serviceErr.Code == "ORDER_NOT_FOUND" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    serviceErr.Code,
				"message": serviceErr.Message,
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
