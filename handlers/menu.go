package handlers

import (
	"net/http"

	"restora-api/config"
	"restora-api/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListCategories returns all menu categories (public)
func ListCategories(c *gin.Context) {
	var categories []models.Category
	config.DB.Preload("Items").Find(&categories)
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCategory adds a menu category (staff/admin only)
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := models.Category{Name: req.Name, Description: req.Description}
	if err := config.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category name must be unique"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
}

// UpdateCategory renames a category (staff/admin only)
func UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := config.DB.First(&category, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config.DB.Model(&category).Updates(models.Category{Name: req.Name, Description: req.Description})
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": category})
}

// DeleteCategory soft-deletes a category (staff/admin only)
func DeleteCategory(c *gin.Context) {
	var category models.Category
	if err := config.DB.First(&category, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	config.DB.Delete(&category)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted", "category_id": category.ID})
}

// ListMenu returns menu items with their discounted prices (public)
func ListMenu(c *gin.Context) {
	query := config.DB.Preload("Category")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("available") == "true" {
		query = query.Where("is_available = ?", true)
	}

	var items []models.MenuItem
	query.Find(&items)

	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, gin.H{
			"item":             items[i],
			"discounted_price": items[i].DiscountedPrice(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": out})
}

type MenuItemRequest struct {
	CategoryID         uint            `json:"category_id" binding:"required"`
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price" binding:"required"`
	DiscountPercentage int             `json:"discount_percentage"`
	IsAvailable        *bool           `json:"is_available"`
	Image              string          `json:"image"`
}

// CreateMenuItem adds a dish or drink to the menu (staff/admin only)
func CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return
	}
	if !models.ValidDiscountPercentage(req.DiscountPercentage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount percentage must be one of: 0, 10, 20, 50, 70"})
		return
	}
	var category models.Category
	if err := config.DB.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	item := models.MenuItem{
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		IsAvailable:        true,
		Image:              req.Image,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := config.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item created", "item": item})
}

// UpdateMenuItem edits a menu item (staff/admin only). Changing the price
// here never touches the snapshots captured on past orders.
func UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return
	}
	if !models.ValidDiscountPercentage(req.DiscountPercentage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount percentage must be one of: 0, 10, 20, 50, 70"})
		return
	}

	updates := map[string]interface{}{
		"category_id":         req.CategoryID,
		"name":                req.Name,
		"description":         req.Description,
		"price":               req.Price,
		"discount_percentage": req.DiscountPercentage,
		"image":               req.Image,
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	config.DB.Model(&item).Updates(updates)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// DeleteMenuItem soft-deletes a menu item (staff/admin only)
func DeleteMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	config.DB.Delete(&item)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted", "item_id": item.ID})
}
