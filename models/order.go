package models

import "github.com/shopspring/decimal"

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentType is how the customer settles the bill
type PaymentType string

const (
	PaymentCash PaymentType = "cash"
	PaymentCard PaymentType = "card"
)

type Order struct {
	SoftDeleteModel
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	User        User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedByID *uint           `json:"created_by_id"`
	CreatedBy   *User           `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status      OrderStatus     `json:"status" gorm:"not null;default:'pending'"`
	PaymentType PaymentType     `json:"payment_type" gorm:"not null;default:'cash'"`
	Items       []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	SoftDeleteModel
	OrderID    uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null"`
	MenuItem   MenuItem        `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // snapshot price at order time
	Name       string          `json:"name"`                                     // snapshot name
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// ValidPaymentType reports whether p is a known payment type.
func ValidPaymentType(p PaymentType) bool {
	return p == PaymentCash || p == PaymentCard
}
