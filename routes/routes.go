package routes

import (
	"restora-api/handlers"
	"restora-api/middleware"
	"restora-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Menu browsing (no auth needed)
		public.GET("/categories", handlers.ListCategories)
		public.GET("/menu", handlers.ListMenu)

		// Order lifecycle info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetOrderLifecycle)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
		auth.GET("/notifications", handlers.ListMyNotifications)
		auth.PUT("/notifications/:id/read", handlers.MarkNotificationRead)

		// customers see their own orders, staff/admin see everything
		auth.GET("/orders", handlers.GetOrders)
		auth.GET("/orders/:id", handlers.GetOrderDetail)

		auth.GET("/customers/:id", handlers.GetCustomer)
		auth.PUT("/customers/:id", handlers.UpdateCustomer)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/discount/check", handlers.CheckDiscountCode)
		customer.POST("/bonus/redeem", handlers.RedeemCoffee)
		customer.GET("/bonus", handlers.GetMyBonus)
	}

	// ── Staff & admin routes ───────────────────────────────────────
	staff := r.Group("/api")
	staff.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleStaff, models.RoleAdmin))
	{
		// Order settlement and management
		staff.POST("/orders", handlers.PlaceOrder)
		staff.PUT("/orders/:id/status", handlers.UpdateOrderStatus)
		staff.DELETE("/orders/:id", handlers.DeleteOrder)

		// Customer directory
		staff.GET("/customers", handlers.ListCustomers)

		// Menu management
		staff.POST("/categories", handlers.CreateCategory)
		staff.PUT("/categories/:id", handlers.UpdateCategory)
		staff.DELETE("/categories/:id", handlers.DeleteCategory)
		staff.POST("/menu", handlers.CreateMenuItem)
		staff.PUT("/menu/:id", handlers.UpdateMenuItem)
		staff.DELETE("/menu/:id", handlers.DeleteMenuItem)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/staff", handlers.ListStaff)
		admin.POST("/staff", handlers.CreateStaff)
		admin.PUT("/staff/:id", handlers.UpdateStaff)
		admin.DELETE("/staff/:id", handlers.DeleteStaff)

		admin.DELETE("/customers/:id", handlers.DeleteCustomer)
		admin.GET("/reports/sales", handlers.SalesReport)
	}
}
