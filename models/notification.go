package models

import "time"

// Notification is an in-app message, created synchronously and emailed in
// the background.
type Notification struct {
	SoftDeleteModel
	UserID  uint       `json:"user_id" gorm:"not null;index"`
	User    User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title   string     `json:"title" gorm:"size:200;not null"`
	Message string     `json:"message" gorm:"not null"`
	IsRead  bool       `json:"is_read" gorm:"default:false"`
	SentAt  *time.Time `json:"sent_at"`
}

// DiscountCode belongs to exactly one customer and is spent exactly once.
type DiscountCode struct {
	SoftDeleteModel
	UserID         uint          `json:"user_id" gorm:"not null;index"`
	User           User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Code           string        `json:"code" gorm:"uniqueIndex;not null"`
	Reason         string        `json:"reason" gorm:"size:50;not null"`
	IsUsed         bool          `json:"is_used" gorm:"default:false"`
	NotificationID *uint         `json:"notification_id"`
	Notification   *Notification `json:"notification,omitempty" gorm:"foreignKey:NotificationID"`
}

// AdminCode is the access code mailed to admins at signup for privileged
// back-office operations.
type AdminCode struct {
	SoftDeleteModel
	UserID         uint          `json:"user_id" gorm:"not null;index"`
	User           User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Code           string        `json:"code" gorm:"uniqueIndex;not null"`
	NotificationID *uint         `json:"notification_id"`
	Notification   *Notification `json:"notification,omitempty" gorm:"foreignKey:NotificationID"`
}
