package settlement

import (
	"context"
	"testing"

	"restora-api/bonus"
	"restora-api/config"
	"restora-api/discount"
	"restora-api/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))
	return &Engine{DB: db}, db
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Test", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedItem(t *testing.T, db *gorm.DB, name, price string) models.MenuItem {
	t.Helper()
	category := models.Category{Name: "Mains"}
	require.NoError(t, db.FirstOrCreate(&category, models.Category{Name: "Mains"}).Error)
	item := models.MenuItem{
		CategoryID:  category.ID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPlaceOrderComputesTotalFromSnapshots(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	pasta := seedItem(t, db, "Pasta", "12.00")
	soup := seedItem(t, db, "Soup", "5.50")

	res, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines: []Line{
			{MenuItemID: pasta.ID, Quantity: 2},
			{MenuItemID: soup.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.True(t, res.Order.TotalAmount.Equal(amount("29.50")), "got %s", res.Order.TotalAmount)
	require.Equal(t, models.StatusPending, res.Order.Status)
	require.Equal(t, 0, res.BonusPointsEarned, "below the 50 threshold")
	require.Nil(t, res.IssuedCode)

	var items []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", res.Order.ID).Find(&items).Error)
	require.Len(t, items, 2)
}

func TestPriceSnapshotSurvivesMenuChanges(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	item := seedItem(t, db, "Pasta", "12.00")

	res, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&item).Update("price", amount("99.00")).Error)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, res.Order.ID).Error)
	require.True(t, order.TotalAmount.Equal(amount("12.00")))
	require.True(t, order.Items[0].Price.Equal(amount("12.00")))
}

func TestSpendThresholdAwardsPointsAndCode(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	first := seedItem(t, db, "Steak", "15.00")
	second := seedItem(t, db, "Platter", "20.00")

	// 2x15.00 + 1x20.00 hits the threshold exactly
	res, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines: []Line{
			{MenuItemID: first.ID, Quantity: 2},
			{MenuItemID: second.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.True(t, res.Order.TotalAmount.Equal(amount("50.00")))
	require.Equal(t, models.OrderBonusPoints, res.BonusPointsEarned)

	bp, err := bonus.GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 5, bp.Points)

	require.NotNil(t, res.IssuedCode)
	require.Equal(t, models.ReasonSpendThreshold, res.IssuedCode.Reason)
	require.NotNil(t, res.IssuedCode.NotificationID, "code announcement is linked")

	// a discount-code email and a coffee email for crossing 5 points
	require.Len(t, res.Events, 2)
}

func TestFollowUpOrderWithIssuedCode(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	big := seedItem(t, db, "Feast", "50.00")
	small := seedItem(t, db, "Salad", "30.00")

	first, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: big.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, first.IssuedCode)

	second, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:   u.ID,
		Lines:        []Line{{MenuItemID: small.ID, Quantity: 1}},
		DiscountCode: first.IssuedCode.Code,
	})
	require.NoError(t, err)
	require.Equal(t, models.DiscountTierGeneral, second.DiscountPercentage)
	require.True(t, second.Order.TotalAmount.Equal(amount("24.00")), "30.00 scaled by 20%%: got %s", second.Order.TotalAmount)
	require.Nil(t, second.IssuedCode, "24.00 is below the 50 threshold")
	require.Equal(t, 0, second.BonusPointsEarned)
}

func TestWelcomeCodeOnFirstOrder(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "new@example.com")
	item := seedItem(t, db, "Breakfast", "10.00")
	code, err := discount.Issue(db, u.ID, models.ReasonWelcome)
	require.NoError(t, err)

	res, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:   u.ID,
		Lines:        []Line{{MenuItemID: item.ID, Quantity: 1}},
		DiscountCode: code.Code,
	})
	require.NoError(t, err)
	require.Equal(t, models.DiscountTierWelcome, res.DiscountPercentage)
	require.True(t, res.Order.TotalAmount.Equal(amount("3.00")), "got %s", res.Order.TotalAmount)

	// the spent code is rejected on the next order
	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:   u.ID,
		Lines:        []Line{{MenuItemID: item.ID, Quantity: 1}},
		DiscountCode: code.Code,
	})
	require.ErrorIs(t, err, discount.ErrInvalidCode)
}

func TestWelcomeCodeRejectedAfterPriorOrder(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "regular@example.com")
	item := seedItem(t, db, "Lunch", "10.00")
	code, err := discount.Issue(db, u.ID, models.ReasonWelcome)
	require.NoError(t, err)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:   u.ID,
		Lines:        []Line{{MenuItemID: item.ID, Quantity: 1}},
		DiscountCode: code.Code,
	})
	require.ErrorIs(t, err, discount.ErrNotFirstOrder)
}

func TestFailedRedemptionRollsBackEverything(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	item := seedItem(t, db, "Dinner", "40.00")

	_, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:   u.ID,
		Lines:        []Line{{MenuItemID: item.ID, Quantity: 1}},
		DiscountCode: "bogus",
	})
	require.ErrorIs(t, err, discount.ErrInvalidCode)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders, "no partial order persisted")
	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, items)
}

func TestInvalidInputsRejectedBeforeAnyWrite(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	item := seedItem(t, db, "Dinner", "40.00")
	// created unavailable, not flipped after the fact
	unavailable := models.MenuItem{CategoryID: item.CategoryID, Name: "SoldOut", Price: amount("10.00")}
	require.NoError(t, db.Create(&unavailable).Error)

	_, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: 0}},
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: -2}},
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{CustomerID: u.ID})
	require.ErrorIs(t, err, ErrNoItems)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: 9999, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: unavailable.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: 9999,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrUnknownCustomer)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestCoffeeNotResentAfterRetroactiveDelete(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	item := seedItem(t, db, "Banquet", "60.00")

	first, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// the order is retracted, reconciliation takes the points back but the
	// 5-point threshold stays notified
	require.NoError(t, db.Delete(&models.Order{}, first.Order.ID).Error)
	_, err = bonus.Reconcile(db, u.ID)
	require.NoError(t, err)

	bp, err := bonus.GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 0, bp.Points)
	require.Equal(t, 5, bp.LastNotifiedPoints)

	second, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: u.ID,
		Lines:      []Line{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, second.Events, 1, "only the new-code email, no second coffee")

	var coffee int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("title LIKE ?", "%free coffee%").Count(&coffee).Error)
	require.EqualValues(t, 1, coffee)
}

func TestLargeOrderCrossesSeveralThresholds(t *testing.T) {
	engine, db := testEngine(t)
	u := seedCustomer(t, db, "a@example.com")
	item := seedItem(t, db, "Banquet", "60.00")

	// three qualifying orders, 5 points each: 0→5, 5→10, 10→15
	for i := 0; i < 3; i++ {
		res, err := engine.PlaceOrder(context.Background(), PlaceOrderInput{
			CustomerID: u.ID,
			Lines:      []Line{{MenuItemID: item.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		require.Equal(t, models.OrderBonusPoints, res.BonusPointsEarned)
	}

	bp, err := bonus.GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 15, bp.Points)
	require.Equal(t, 15, bp.LastNotifiedPoints)

	// one coffee notification per crossing, plus one per issued code
	var coffee int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("title LIKE ?", "%free coffee%").Count(&coffee).Error)
	require.EqualValues(t, 3, coffee)
}
