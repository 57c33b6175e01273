package handlers

import (
	"net/http"

	"restora-api/config"
	"restora-api/models"

	"github.com/gin-gonic/gin"
)

// ListStaff returns all staff records (admin only)
func ListStaff(c *gin.Context) {
	var staff []models.Staff
	query := config.DB.Preload("User")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	query.Find(&staff)
	c.JSON(http.StatusOK, gin.H{"count": len(staff), "staff": staff})
}

type StaffRequest struct {
	UserID   uint   `json:"user_id" binding:"required"`
	Position string `json:"position" binding:"required"`
}

// CreateStaff links an employment record to a staff-role user (admin only)
func CreateStaff(c *gin.Context) {
	var req StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, req.UserID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
		return
	}
	if user.Role != models.RoleStaff && user.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User must have the staff or admin role"})
		return
	}

	staff := models.Staff{UserID: req.UserID, Position: req.Position, IsActive: true}
	if err := config.DB.Create(&staff).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Staff record already exists for this user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Staff record created", "staff": staff})
}

type UpdateStaffRequest struct {
	Position string `json:"position"`
	IsActive *bool  `json:"is_active"`
}

// UpdateStaff changes position or active flag (admin only)
func UpdateStaff(c *gin.Context) {
	var staff models.Staff
	if err := config.DB.First(&staff, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff record not found"})
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if req.Position != "" {
		updates["position"] = req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		config.DB.Model(&staff).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff record updated", "staff": staff})
}

// DeleteStaff soft-deletes an employment record (admin only)
func DeleteStaff(c *gin.Context) {
	var staff models.Staff
	if err := config.DB.First(&staff, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff record not found"})
		return
	}
	config.DB.Delete(&staff)
	c.JSON(http.StatusOK, gin.H{"message": "Staff record deleted", "staff_id": staff.ID})
}
