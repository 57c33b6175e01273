package discount

import (
	"errors"
	"log"

	"restora-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCode   = errors.New("discount code invalid or already used")
	ErrNotOwner      = errors.New("discount code belongs to another customer")
	ErrNotFirstOrder = errors.New("welcome code is only valid for the first order")
)

// Percentage returns the live tier for a code reason. The 10% and 50%
// tiers are reserved and never issued here.
func Percentage(reason string) int {
	if reason == models.ReasonWelcome {
		return models.DiscountTierWelcome
	}
	return models.DiscountTierGeneral
}

// Issue creates a new unused code for the customer. It persists the row
// only; announcing the code is the dispatcher's job.
func Issue(db *gorm.DB, userID uint, reason string) (*models.DiscountCode, error) {
	code := &models.DiscountCode{
		UserID: userID,
		Code:   uuid.NewString(),
		Reason: reason,
	}
	if err := db.Create(code).Error; err != nil {
		return nil, err
	}
	log.Printf("discount code issued: user=%d reason=%s", userID, reason)
	return code, nil
}

// Redeem marks the code used and returns its percentage. It must run inside
// the same transaction that creates the order: the first-order check below
// races with order creation otherwise, and the used flag must roll back with
// a failed settlement.
func Redeem(tx *gorm.DB, code string, userID uint) (int, error) {
	var dc models.DiscountCode
	if err := tx.Where("code = ?", code).First(&dc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidCode
		}
		return 0, err
	}
	if dc.UserID != userID {
		return 0, ErrNotOwner
	}
	if dc.IsUsed {
		return 0, ErrInvalidCode
	}

	if dc.Reason == models.ReasonWelcome {
		var prior int64
		if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Count(&prior).Error; err != nil {
			return 0, err
		}
		if prior > 0 {
			return 0, ErrNotFirstOrder
		}
	}

	// Guarded update: the WHERE on is_used makes consumption exactly-once
	// even if two settlements race on the same code.
	res := tx.Model(&models.DiscountCode{}).
		Where("id = ? AND is_used = ?", dc.ID, false).
		Update("is_used", true)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInvalidCode
	}

	log.Printf("discount code redeemed: user=%d code=%s reason=%s", userID, dc.Code, dc.Reason)
	return Percentage(dc.Reason), nil
}
