package handlers

import (
	"errors"
	"net/http"

	"restora-api/bonus"
	"restora-api/config"
	"restora-api/discount"
	"restora-api/middleware"
	"restora-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errNotEnoughPoints = errors.New("not enough points")

// ListCustomers returns all customers (staff/admin only)
func ListCustomers(c *gin.Context) {
	var customers []models.User
	config.DB.Where("role = ?", models.RoleCustomer).Find(&customers)
	c.JSON(http.StatusOK, gin.H{"count": len(customers), "customers": customers})
}

// GetCustomer returns one customer; customers may only fetch themselves
func GetCustomer(c *gin.Context) {
	var customer models.User
	if err := config.DB.Where("role = ?", models.RoleCustomer).
		First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if middleware.GetRole(c) == models.RoleCustomer && customer.ID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

type UpdateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateCustomer updates a customer profile; customers may only update themselves
func UpdateCustomer(c *gin.Context) {
	var customer models.User
	if err := config.DB.Where("role = ?", models.RoleCustomer).
		First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if middleware.GetRole(c) == models.RoleCustomer && customer.ID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own data"})
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if len(updates) > 0 {
		config.DB.Model(&customer).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer updated", "customer": customer})
}

// DeleteCustomer soft-deletes a customer account (admin only)
func DeleteCustomer(c *gin.Context) {
	var customer models.User
	if err := config.DB.Where("role = ?", models.RoleCustomer).
		First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if c.Query("hard") == "true" {
		config.DB.Unscoped().Delete(&customer)
		c.JSON(http.StatusOK, gin.H{"message": "Customer permanently deleted", "customer_id": customer.ID})
		return
	}
	config.DB.Delete(&customer)
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted", "customer_id": customer.ID})
}

type CheckDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckDiscountCode previews a code's percentage without consuming it; the
// code is only spent during settlement (customer only)
func CheckDiscountCode(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CheckDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dc models.DiscountCode
	if err := config.DB.Where("code = ? AND user_id = ? AND is_used = ?", req.Code, userID, false).
		First(&dc).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount code is invalid or already used"})
		return
	}

	if dc.Reason == models.ReasonWelcome {
		var prior int64
		config.DB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&prior)
		if prior > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The 70% welcome code is only valid for your first order"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Discount code accepted. Use it when placing your order.",
		"code":                dc.Code,
		"discount_percentage": discount.Percentage(dc.Reason),
	})
}

type BonusRedeemRequest struct {
	Action string `json:"action" binding:"required"`
}

// RedeemCoffee spends 5 bonus points on a free coffee (customer only)
func RedeemCoffee(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req BonusRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Action != "coffee" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be 'coffee'"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		bp, err := bonus.GetOrCreate(tx, userID)
		if err != nil {
			return err
		}
		if bp.Points < models.BonusCoffeeThreshold {
			return errNotEnoughPoints
		}
		_, _, err = bonus.Credit(tx, userID, -models.BonusCoffeeThreshold, "free coffee reward", nil)
		return err
	})
	if err != nil {
		if errors.Is(err, errNotEnoughPoints) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A minimum of 5 points is required for a free coffee"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Free coffee redeemed successfully"})
}

// GetMyBonus returns the caller's balance and transaction history (customer only)
func GetMyBonus(c *gin.Context) {
	userID := middleware.GetUserID(c)

	bp, err := bonus.GetOrCreate(config.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bonus balance"})
		return
	}

	var txns []models.BonusTransaction
	config.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&txns)

	c.JSON(http.StatusOK, gin.H{
		"points":       bp.Points,
		"transactions": txns,
	})
}
