package handlers

import (
	"errors"
	"net/http"
	"time"

	"restora-api/config"
	"restora-api/discount"
	"restora-api/middleware"
	"restora-api/models"
	"restora-api/settlement"
	"restora-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	CustomerID   uint               `json:"customer_id" binding:"required"`
	PaymentType  models.PaymentType `json:"payment_type"`
	DiscountCode string             `json:"discount_code"`
	Items        []struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

// PlaceOrder settles a new order on behalf of a customer (staff/admin only)
func PlaceOrder(c *gin.Context) {
	creatorID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]settlement.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, settlement.Line{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}

	res, err := Engine.PlaceOrder(c.Request.Context(), settlement.PlaceOrderInput{
		CustomerID:   req.CustomerID,
		CreatedByID:  &creatorID,
		PaymentType:  req.PaymentType,
		Lines:        lines,
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		c.JSON(settlementStatus(err), gin.H{"error": err.Error()})
		return
	}

	// emails go out after the transaction committed, never before
	enqueueAll(res.Events)

	var order models.Order
	config.DB.Preload("Items.MenuItem").Preload("User").First(&order, res.Order.ID)

	resp := gin.H{
		"message":      "Order placed successfully",
		"order":        order,
		"bonus_points": res.BonusPointsEarned,
	}
	if res.DiscountPercentage > 0 {
		resp["discount_percentage"] = res.DiscountPercentage
	}
	if res.IssuedCode != nil {
		resp["new_discount_code"] = res.IssuedCode.Code
	}
	c.JSON(http.StatusCreated, resp)
}

// settlementStatus maps the settlement error taxonomy onto HTTP statuses.
// Everything in the taxonomy is a caller problem, not a server one.
func settlementStatus(err error) int {
	switch {
	case errors.Is(err, settlement.ErrInvalidItem),
		errors.Is(err, settlement.ErrInvalidQuantity),
		errors.Is(err, settlement.ErrNoItems),
		errors.Is(err, discount.ErrInvalidCode),
		errors.Is(err, discount.ErrNotOwner),
		errors.Is(err, discount.ErrNotFirstOrder):
		return http.StatusBadRequest
	case errors.Is(err, settlement.ErrUnknownCustomer):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetOrders returns the caller's orders; staff and admins see everything
// and may filter by status, customer and payment type.
func GetOrders(c *gin.Context) {
	role := middleware.GetRole(c)

	query := config.DB.Preload("Items.MenuItem").Preload("User")
	if role == models.RoleCustomer {
		query = query.Where("user_id = ?", middleware.GetUserID(c))
	} else {
		if customerID := c.Query("customer_id"); customerID != "" {
			query = query.Where("user_id = ?", customerID)
		}
		if payment := c.Query("payment_type"); payment != "" {
			query = query.Where("payment_type = ?", payment)
		}
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	query.Order("created_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order; customers only see their own
func GetOrderDetail(c *gin.Context) {
	var order models.Order
	if err := config.DB.Preload("Items.MenuItem").Preload("User").Preload("CreatedBy").
		First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if middleware.GetRole(c) == models.RoleCustomer && order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":        order,
		"bonus_points": bonusPointsFor(order.TotalAmount),
	})
}

func bonusPointsFor(total decimal.Decimal) int {
	return int(total.Div(decimal.NewFromInt(models.BonusPointsPerUnit)).IntPart())
}

// GetOrderLifecycle returns the order status transition table for
// informational purposes
func GetOrderLifecycle(c *gin.Context) {
	info := make([]gin.H, 0, len(statemachine.Transitions()))
	for _, t := range statemachine.Transitions() {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":     info,
		"terminal_statuses": []models.OrderStatus{models.StatusCompleted, models.StatusCancelled},
		"description":       "Restaurant Order Lifecycle",
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order between pending/completed/cancelled
// (staff/admin only)
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status. Must be: pending, completed, or cancelled"})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	prev := order.Status
	role := middleware.GetRole(c)
	if role != models.RoleAdmin {
		if err := statemachine.CanTransition(prev, req.Status, role); err != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":       err.Error(),
				"valid_moves": statemachine.ValidTransitionsFrom(prev),
			})
			return
		}
	}
	if err := config.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": prev,
		"current_status":  req.Status,
	})
}

// DeleteOrder soft-deletes an order; admins may hard-delete with ?hard=true,
// which also removes the line items the order owns.
func DeleteOrder(c *gin.Context) {
	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if c.Query("hard") == "true" {
		if middleware.GetRole(c) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can permanently delete orders"})
			return
		}
		config.DB.Unscoped().Where("order_id = ?", order.ID).Delete(&models.OrderItem{})
		config.DB.Unscoped().Delete(&order)
		c.JSON(http.StatusOK, gin.H{"message": "Order permanently deleted", "order_id": order.ID})
		return
	}

	config.DB.Delete(&order)
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "order_id": order.ID})
}

type SalesReportRequest struct {
	StartDate   string             `form:"start_date" binding:"required"`
	EndDate     string             `form:"end_date" binding:"required"`
	PaymentType models.PaymentType `form:"payment_type"`
}

// SalesReport aggregates orders over a date range (admin only)
func SalesReport(c *gin.Context) {
	var req SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return
	}

	query := config.DB.Preload("User").
		Where("created_at >= ? AND created_at < ?", start, end.AddDate(0, 0, 1))
	if req.PaymentType != "" {
		if !models.ValidPaymentType(req.PaymentType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment type. Must be: cash or card"})
			return
		}
		query = query.Where("payment_type = ?", req.PaymentType)
	}

	var orders []models.Order
	query.Order("created_at desc").Find(&orders)

	total := decimal.Zero
	totalBonus := 0
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
		totalBonus += bonusPointsFor(o.TotalAmount)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":             orders,
		"order_count":        len(orders),
		"total_amount":       total,
		"total_bonus_points": totalBonus,
	})
}
