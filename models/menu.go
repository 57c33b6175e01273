package models

import "github.com/shopspring/decimal"

// Category groups menu items ("Starters", "Main Course", ...)
type Category struct {
	SoftDeleteModel
	Name        string     `json:"name" gorm:"uniqueIndex;not null"`
	Description string     `json:"description"`
	Items       []MenuItem `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
}

type MenuItem struct {
	SoftDeleteModel
	CategoryID         uint            `json:"category_id" gorm:"not null"`
	Category           Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name               string          `json:"name" gorm:"not null"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountPercentage int             `json:"discount_percentage" gorm:"default:0"`
	// no column default: gorm would skip a false zero value on Create and
	// the database default would silently flip the item back to available
	IsAvailable bool   `json:"is_available"`
	Image       string `json:"image"`
	Thumbnail   string `json:"thumbnail"`
}

// DiscountedPrice returns the price after the item's own discount.
func (m *MenuItem) DiscountedPrice() decimal.Decimal {
	if m.DiscountPercentage <= 0 {
		return m.Price
	}
	factor := decimal.NewFromInt(int64(100 - m.DiscountPercentage)).Div(decimal.NewFromInt(100))
	return m.Price.Mul(factor)
}

// ValidDiscountPercentage reports whether p is one of the allowed tiers.
func ValidDiscountPercentage(p int) bool {
	for _, v := range DiscountPercentages {
		if v == p {
			return true
		}
	}
	return false
}
