package controllers

import (
	"net/http"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// UpsertProductRequest represents one catalog entry in an admin upsert
type UpsertProductRequest struct {
	SKU              string   `json:"sku" binding:"required"`
	Title            string   `json:"title" binding:"required"`
	Category         string   `json:"category" binding:"required"`
	Metal            string   `json:"metal"`
	PriceCents       int64    `json:"priceCents" binding:"required,gt=0"`
	Tags             []string `json:"tags"`
	ReadyToShip      bool     `json:"readyToShip"`
	FeaturedInWidget bool     `json:"featuredInWidget"`
}

// UpsertProducts handles POST /api/v1/admin/products - creates or updates
// catalog entries by SKU (back-office seeding)
func UpsertProducts(c *gin.Context) {
	var requests []UpsertProductRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		respondValidationError(c, err)
		return
	}
	if len(requests) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "At least one product is required",
			},
		})
		return
	}

	db := config.GetDB()
	products := make([]models.Product, 0, len(requests))
	for _, req := range requests {
		product := models.Product{
			SKU:              req.SKU,
			Title:            req.Title,
			Category:         req.Category,
			Metal:            req.Metal,
			PriceCents:       req.PriceCents,
			ReadyToShip:      req.ReadyToShip,
			FeaturedInWidget: req.FeaturedInWidget,
		}
		product.SetTagList(req.Tags)
		products = append(products, product)
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "category", "metal", "price_cents", "tags", "ready_to_ship", "featured_in_widget",
		}),
	}).Create(&products).Error
	if err != nil {
		respondDatabaseError(c, "Failed to upsert products")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"upserted": len(products),
		},
	})
}

// ListStylistTickets handles GET /api/v1/admin/tickets - lists open stylist
// tickets for the back office
func ListStylistTickets(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.StylistTicket
	if err := query.Find(&tickets).Error; err != nil {
		respondDatabaseError(c, "Failed to fetch stylist tickets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tickets,
	})
}

// ListCsatFeedback handles GET /api/v1/admin/csat - lists recent CSAT scores
func ListCsatFeedback(c *gin.Context) {
	db := config.GetDB()

	var feedback []models.CsatFeedback
	if err := db.Order("created_at DESC").Limit(200).Find(&feedback).Error; err != nil {
		respondDatabaseError(c, "Failed to fetch CSAT feedback")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    feedback,
	})
}
