package handlers

import (
	"fmt"
	"net/http"
	"time"

	"restora-api/config"
	"restora-api/discount"
	"restora-api/middleware"
	"restora-api/models"
	"restora-api/notify"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"required"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account. Customers get a one-time welcome
// discount code for their first order, admins get their back-office access
// code; both are announced by email in the background.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validRoles := map[models.UserRole]bool{
		models.RoleCustomer: true,
		models.RoleStaff:    true,
		models.RoleAdmin:    true,
	}
	if !validRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: customer, staff, or admin"})
		return
	}

	var existing models.User
	if result := config.DB.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	switch user.Role {
	case models.RoleCustomer:
		issueWelcomeCode(&user)
	case models.RoleAdmin:
		issueAdminCode(&user)
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// issueWelcomeCode creates the first-order 70% code. Failures only cost the
// customer a promotion, never the account.
func issueWelcomeCode(user *models.User) {
	code, err := discount.Issue(config.DB, user.ID, models.ReasonWelcome)
	if err != nil {
		return
	}
	now := time.Now()
	n := models.Notification{
		UserID: user.ID,
		Title:  "Welcome! Your account has been created",
		Message: fmt.Sprintf(
			"Dear %s,\n\nWelcome to our restaurant! Your discount code for your first order is: **%s**\nThis code is one-time and valid only for your first order.\n\nThank you,\nThe Restaurant Team",
			user.Email, code.Code),
		SentAt: &now,
	}
	if err := config.DB.Create(&n).Error; err != nil {
		return
	}
	config.DB.Model(code).Update("notification_id", n.ID)
	enqueueAll([]notify.Event{{
		NotificationID: n.ID,
		Email:          user.Email,
		Title:          n.Title,
		Message:        n.Message,
	}})
}

// issueAdminCode mails the back-office access code to a new admin.
func issueAdminCode(user *models.User) {
	code := models.AdminCode{UserID: user.ID, Code: uuid.NewString()}
	if err := config.DB.Create(&code).Error; err != nil {
		return
	}
	now := time.Now()
	n := models.Notification{
		UserID: user.ID,
		Title:  "Your admin access code",
		Message: fmt.Sprintf(
			"Dear %s,\n\nYour access code for the restaurant management system is: **%s**\nUse it for end-of-day reports and other privileged operations.\n\nThank you,\nThe Restaurant Team",
			user.Email, code.Code),
		SentAt: &now,
	}
	if err := config.DB.Create(&n).Error; err != nil {
		return
	}
	config.DB.Model(&code).Update("notification_id", n.ID)
	enqueueAll([]notify.Event{{
		NotificationID: n.ID,
		Email:          user.Email,
		Title:          n.Title,
		Message:        n.Message,
	}})
}

// Login authenticates a user and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GetProfile returns the authenticated user's profile
func GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
