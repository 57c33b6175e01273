package bonus

import (
	"fmt"
	"log"
	"time"

	"restora-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CoffeeNotification builds the free-coffee reward message for a customer.
func CoffeeNotification(userID uint) models.Notification {
	now := time.Now()
	return models.Notification{
		UserID: userID,
		Title:  "Congratulations! You earned a free coffee!",
		Message: fmt.Sprintf(
			"Dear customer,\n\nYou collected %d points with your purchases and earned a free coffee from our restaurant!\nWe look forward to seeing you again!\n\nThank you,\nThe Restaurant Team",
			models.BonusCoffeeThreshold),
		SentAt: &now,
	}
}

// GetOrCreate loads the customer's balance row, creating it on first use.
func GetOrCreate(db *gorm.DB, userID uint) (*models.BonusPoints, error) {
	var bp models.BonusPoints
	err := db.Where(models.BonusPoints{UserID: userID}).FirstOrCreate(&bp).Error
	if err != nil {
		return nil, err
	}
	return &bp, nil
}

// Credit appends a ledger transaction and moves the running balance in one
// step. It must be called inside the settlement transaction. Returns the
// balance before and after.
func Credit(tx *gorm.DB, userID uint, points int, description string, orderID *uint) (before, after int, err error) {
	bp, err := GetOrCreate(tx, userID)
	if err != nil {
		return 0, 0, err
	}

	txn := models.BonusTransaction{
		UserID:      userID,
		Points:      points,
		Description: description,
		OrderID:     orderID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return 0, 0, err
	}

	before = bp.Points
	after = before + points
	// atomic increment, a concurrent reconciliation pass must not be
	// overwritten by a stale read
	if err := tx.Model(bp).Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
		return 0, 0, err
	}
	bp.Points = after

	log.Printf("bonus credit: user=%d points=%+d balance=%d", userID, points, after)
	return before, after, nil
}

// ThresholdsCrossed counts how many multiples of step lie in (before, after].
// A single large order can jump several thresholds, so this is a floor
// division, never an equality check.
func ThresholdsCrossed(before, after, step int) int {
	if step <= 0 || after <= before {
		return 0
	}
	return after/step - before/step
}

// QualifyingSpend sums the totals of the customer's live orders. Cancelled
// and soft-deleted orders do not count toward accrual.
func QualifyingSpend(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := db.Model(&models.Order{}).
		Where("user_id = ? AND status <> ?", userID, models.StatusCancelled).
		Pluck("total_amount", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}

// Reconcile recomputes the customer's balance from authoritative spend
// history, corrects any drift left by incremental credits, and raises one
// coffee notification per 5-point threshold newly crossed past the
// watermark. It is the source of truth when the two disagree, and running
// it twice with no new orders is a no-op.
func Reconcile(db *gorm.DB, userID uint) ([]models.Notification, error) {
	var created []models.Notification
	err := db.Transaction(func(tx *gorm.DB) error {
		spend, err := QualifyingSpend(tx, userID)
		if err != nil {
			return err
		}
		target := int(spend.Div(decimal.NewFromInt(models.BonusPointsPerUnit)).IntPart())

		bp, err := GetOrCreate(tx, userID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if target != bp.Points {
			drift := target - bp.Points
			txn := models.BonusTransaction{
				UserID:      userID,
				Points:      drift,
				Description: "balance reconciliation",
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
			updates["points"] = target
			log.Printf("bonus reconcile: user=%d stored=%d recomputed=%d drift=%+d",
				userID, bp.Points, target, drift)
		}

		// Watermark only advances; a balance that dropped after a
		// retroactive delete must not re-trigger emails on the way back up.
		if crossed := ThresholdsCrossed(bp.LastNotifiedPoints, target, models.BonusCoffeeThreshold); crossed > 0 {
			for i := 0; i < crossed; i++ {
				n := CoffeeNotification(userID)
				if err := tx.Create(&n).Error; err != nil {
					return err
				}
				created = append(created, n)
			}
			updates["last_notified_points"] = target
		}

		if len(updates) > 0 {
			if err := tx.Model(bp).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReconcileAll runs Reconcile for every active customer. A failure for one
// customer is logged and never aborts the batch.
func ReconcileAll(db *gorm.DB) []models.Notification {
	var userIDs []uint
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleCustomer).
		Pluck("id", &userIDs).Error; err != nil {
		log.Printf("bonus reconcile: listing customers failed: %v", err)
		return nil
	}

	var all []models.Notification
	for _, id := range userIDs {
		notifs, err := Reconcile(db, id)
		if err != nil {
			log.Printf("bonus reconcile: user=%d failed: %v", id, err)
			continue
		}
		all = append(all, notifs...)
	}
	return all
}
