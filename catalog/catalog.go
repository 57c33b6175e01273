package catalog

import (
	"errors"

	"restora-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item not available")
)

// Lookup resolves a menu item reference. Soft-deleted items are treated as
// missing. No side effects.
func Lookup(db *gorm.DB, menuItemID uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := db.First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !item.IsAvailable {
		return nil, ErrItemUnavailable
	}
	return &item, nil
}

// PriceOf returns the item's current discounted unit price.
func PriceOf(db *gorm.DB, menuItemID uint) (decimal.Decimal, error) {
	item, err := Lookup(db, menuItemID)
	if err != nil {
		return decimal.Zero, err
	}
	return item.DiscountedPrice(), nil
}
