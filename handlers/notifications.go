package handlers

import (
	"net/http"

	"restora-api/config"
	"restora-api/middleware"
	"restora-api/models"

	"github.com/gin-gonic/gin"
)

// ListMyNotifications returns the caller's notifications, newest first
func ListMyNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c)

	query := config.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	query.Order("created_at desc").Find(&notifications)
	c.JSON(http.StatusOK, gin.H{"count": len(notifications), "notifications": notifications})
}

// MarkNotificationRead flags one of the caller's notifications as read
func MarkNotificationRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var n models.Notification
	if err := config.DB.Where("user_id = ?", userID).First(&n, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	config.DB.Model(&n).Update("is_read", true)
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "notification_id": n.ID})
}
