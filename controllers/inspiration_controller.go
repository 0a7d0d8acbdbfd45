package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/services"
	"github.com/gilded-grove/concierge-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadInspiration handles POST /api/v1/support/inspiration - accepts a
// multipart image upload, stores it in S3, and records the inspiration item
// against the session
func UploadInspiration(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "sessionId is required",
			},
		})
		return
	}
	orderNumber := c.PostForm("orderNumber")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "An image file is required",
			},
		})
		return
	}

	imageService := services.GetImageService()
	imageKey, err := imageService.UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store the image",
			},
		})
		return
	}

	widgetService := services.NewWidgetService(config.GetDB())
	item, err := widgetService.CreateInspiration(sessionID, imageKey, orderNumber)
	if err != nil {
		// The record failed; don't leave the orphaned object behind
		if deleteErr := imageService.DeleteImage(imageKey); deleteErr != nil {
			log.Printf("Failed to delete orphaned inspiration image %s: %v", imageKey, deleteErr)
		}
		respondDatabaseError(c, "Failed to save inspiration item")
		return
	}

	if url, urlErr := imageService.GetImageURL(imageKey); urlErr == nil {
		item.ImageURL = url
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}
