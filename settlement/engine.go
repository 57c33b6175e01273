package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"restora-api/bonus"
	"restora-api/catalog"
	"restora-api/discount"
	"restora-api/models"
	"restora-api/notify"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidItem     = errors.New("unknown or unavailable menu item")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrNoItems         = errors.New("order must contain at least one item")
	ErrUnknownCustomer = errors.New("customer not found")
)

type Line struct {
	MenuItemID uint
	Quantity   int
}

type PlaceOrderInput struct {
	CustomerID   uint
	CreatedByID  *uint
	PaymentType  models.PaymentType
	Lines        []Line
	DiscountCode string
}

// Result is the settled order plus the domain events the caller drains into
// the dispatcher after commit.
type Result struct {
	Order              models.Order
	BonusPointsEarned  int
	DiscountPercentage int
	IssuedCode         *models.DiscountCode
	Events             []notify.Event
}

type Engine struct {
	DB *gorm.DB
}

// PlaceOrder runs the whole settlement in one transaction: price
// resolution, discount redemption, order + item persistence, bonus credit
// and follow-up code issuance either all commit or none do. Totals are
// always computed here, never taken from the client.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Result, error) {
	if len(in.Lines) == 0 {
		return nil, ErrNoItems
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if in.PaymentType == "" {
		in.PaymentType = models.PaymentCash
	}
	if !models.ValidPaymentType(in.PaymentType) {
		return nil, fmt.Errorf("invalid payment type %q", in.PaymentType)
	}

	res := &Result{}
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.User
		if err := tx.Where("role = ?", models.RoleCustomer).First(&customer, in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownCustomer
			}
			return err
		}

		// 1. snapshot unit prices and compute the subtotal
		items := make([]models.OrderItem, 0, len(in.Lines))
		subtotal := decimal.Zero
		for _, l := range in.Lines {
			item, err := catalog.Lookup(tx, l.MenuItemID)
			if err != nil {
				if errors.Is(err, catalog.ErrItemNotFound) || errors.Is(err, catalog.ErrItemUnavailable) {
					return fmt.Errorf("%w: menu item %d", ErrInvalidItem, l.MenuItemID)
				}
				return err
			}
			price := item.DiscountedPrice()
			items = append(items, models.OrderItem{
				MenuItemID: l.MenuItemID,
				Quantity:   l.Quantity,
				Price:      price,
				Name:       item.Name,
			})
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		// 2. redeem the code before the order exists; the first-order check
		// inside Redeem depends on it
		total := subtotal
		if in.DiscountCode != "" {
			pct, err := discount.Redeem(tx, in.DiscountCode, in.CustomerID)
			if err != nil {
				return err
			}
			res.DiscountPercentage = pct
			factor := decimal.NewFromInt(int64(100 - pct)).Div(decimal.NewFromInt(100))
			total = subtotal.Mul(factor)
		}
		total = total.Round(2)

		// 3. persist order and line items
		order := models.Order{
			UserID:      in.CustomerID,
			CreatedByID: in.CreatedByID,
			TotalAmount: total,
			Status:      models.StatusPending,
			PaymentType: in.PaymentType,
			Items:       items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// 4. spend threshold: flat point credit plus a fresh 20% code.
		// A redeemed code never blocks earning a new one in the same order.
		if total.GreaterThanOrEqual(decimal.NewFromInt(models.SpendThresholdAmount)) {
			bp, err := bonus.GetOrCreate(tx, in.CustomerID)
			if err != nil {
				return err
			}
			before, after, err := bonus.Credit(tx, in.CustomerID, models.OrderBonusPoints,
				fmt.Sprintf("order #%d bonus", order.ID), &order.ID)
			if err != nil {
				return err
			}
			res.BonusPointsEarned = models.OrderBonusPoints

			code, err := discount.Issue(tx, in.CustomerID, models.ReasonSpendThreshold)
			if err != nil {
				return err
			}
			now := time.Now()
			n := models.Notification{
				UserID: in.CustomerID,
				Title:  "You earned a new discount code!",
				Message: fmt.Sprintf(
					"Dear %s,\n\nYour order came to %s and earned you a %d%% discount code for your next visit: **%s**\n\nThank you,\nThe Restaurant Team",
					customer.Email, total.StringFixed(2), models.DiscountTierGeneral, code.Code),
				SentAt: &now,
			}
			if err := tx.Create(&n).Error; err != nil {
				return err
			}
			if err := tx.Model(code).Update("notification_id", n.ID).Error; err != nil {
				return err
			}
			res.IssuedCode = code
			res.Events = append(res.Events, notify.Event{
				NotificationID: n.ID,
				Email:          customer.Email,
				Title:          n.Title,
				Message:        n.Message,
			})

			// coffee rewards implied by the point crossing; crossings are
			// counted from the watermark, since a reconciliation can lower
			// the balance without resetting thresholds already notified
			notifiedUpTo := before
			if bp.LastNotifiedPoints > notifiedUpTo {
				notifiedUpTo = bp.LastNotifiedPoints
			}
			if crossed := bonus.ThresholdsCrossed(notifiedUpTo, after, models.BonusCoffeeThreshold); crossed > 0 {
				for i := 0; i < crossed; i++ {
					cn := bonus.CoffeeNotification(in.CustomerID)
					if err := tx.Create(&cn).Error; err != nil {
						return err
					}
					res.Events = append(res.Events, notify.Event{
						NotificationID: cn.ID,
						Email:          customer.Email,
						Title:          cn.Title,
						Message:        cn.Message,
					})
				}
				err := tx.Model(&models.BonusPoints{}).
					Where("user_id = ? AND last_notified_points < ?", in.CustomerID, after).
					Update("last_notified_points", after).Error
				if err != nil {
					return err
				}
			}
		}

		res.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("order settled: id=%d customer=%d total=%s bonus=%d",
		res.Order.ID, in.CustomerID, res.Order.TotalAmount.StringFixed(2), res.BonusPointsEarned)
	return res, nil
}
