package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"restora-api/bonus"
	"restora-api/config"
	"restora-api/handlers"
	"restora-api/models"
	"restora-api/notify"
	"restora-api/routes"
	"restora-api/settlement"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database
	config.InitDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background email dispatcher — settlement never waits on it
	dispatcher := notify.NewDispatcher(notify.NewMailer(config.SMTP()), 256)
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	handlers.Init(&settlement.Engine{DB: config.DB}, dispatcher)

	// Periodic bonus reconciliation — the safety net correcting drift
	// between incremental credits and the spend-derived balance
	go runReconciliationLoop(ctx, dispatcher)

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant Management API",
			"version": "1.0.0",
		})
	})

	// Register all routes
	routes.SetupRoutes(r)

	// Start server
	port := config.Port()
	log.Printf("Server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// runReconciliationLoop recomputes every customer's point balance on a
// fixed cadence and mails any newly earned coffee rewards.
func runReconciliationLoop(ctx context.Context, dispatcher *notify.Dispatcher) {
	interval := config.ReconcileInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("bonus reconciliation job: every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runBonusReconciliation(dispatcher)
		}
	}
}

func runBonusReconciliation(dispatcher *notify.Dispatcher) {
	notifs := bonus.ReconcileAll(config.DB)
	for _, n := range notifs {
		var user models.User
		if err := config.DB.First(&user, n.UserID).Error; err != nil {
			log.Printf("notification %d: recipient %d not found: %v", n.ID, n.UserID, err)
			continue
		}
		dispatcher.Enqueue(notify.Event{
			NotificationID: n.ID,
			Email:          user.Email,
			Title:          n.Title,
			Message:        n.Message,
		})
	}
}
