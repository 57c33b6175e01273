package models

// BonusPoints is the running balance, one row per customer (get-or-create).
// LastNotifiedPoints is the watermark that stops the coffee-reward email
// from being sent twice for the same threshold.
type BonusPoints struct {
	SoftDeleteModel
	UserID             uint `json:"user_id" gorm:"uniqueIndex;not null"`
	User               User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Points             int  `json:"points" gorm:"not null;default:0"`
	LastNotifiedPoints int  `json:"last_notified_points" gorm:"not null;default:0"`
}

// BonusTransaction is the append-only ledger row explaining every balance
// change. Positive points are earned, negative are spent.
type BonusTransaction struct {
	SoftDeleteModel
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	User        User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Points      int    `json:"points" gorm:"not null"`
	Description string `json:"description" gorm:"size:200"`
	OrderID     *uint  `json:"order_id"`
	Order       *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
