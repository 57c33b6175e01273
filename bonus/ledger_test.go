package bonus

import (
	"testing"

	"restora-api/config"
	"restora-api/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Test", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, total string, status models.OrderStatus) models.Order {
	t.Helper()
	o := models.Order{UserID: userID, TotalAmount: decimal.RequireFromString(total), Status: status}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func TestCreditAppendsTransactionAndMovesBalance(t *testing.T) {
	db := testDB(t)
	u := seedCustomer(t, db, "a@example.com")

	before, after, err := Credit(db, u.ID, 5, "order bonus", nil)
	require.NoError(t, err)
	require.Equal(t, 0, before)
	require.Equal(t, 5, after)

	before, after, err = Credit(db, u.ID, -3, "partial spend", nil)
	require.NoError(t, err)
	require.Equal(t, 5, before)
	require.Equal(t, 2, after)

	bp, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, bp.Points)

	// ledger history explains the balance
	var txns []models.BonusTransaction
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&txns).Error)
	sum := 0
	for _, txn := range txns {
		sum += txn.Points
	}
	require.Equal(t, bp.Points, sum)
}

func TestCreditIncrementsOverInterleavedWrite(t *testing.T) {
	db := testDB(t)
	u := seedCustomer(t, db, "a@example.com")
	bp, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)

	// another writer moves the balance after our snapshot was taken
	require.NoError(t, db.Model(bp).Update("points", 10).Error)

	before, after, err := Credit(db, u.ID, 5, "order bonus", nil)
	require.NoError(t, err)
	require.Equal(t, 10, before)
	require.Equal(t, 15, after)

	fresh, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 15, fresh.Points)
}

func TestThresholdsCrossed(t *testing.T) {
	cases := []struct {
		before, after, step, want int
	}{
		{0, 0, 5, 0},
		{0, 4, 5, 0},
		{0, 5, 5, 1},
		{4, 5, 5, 1},
		{5, 9, 5, 0},
		{3, 17, 5, 3},
		{0, 25, 5, 5},
		{10, 10, 5, 0},
		{7, 3, 5, 0},
		{0, 10, 0, 0},
	}
	for _, tc := range cases {
		got := ThresholdsCrossed(tc.before, tc.after, tc.step)
		require.Equalf(t, tc.want, got, "ThresholdsCrossed(%d, %d, %d)", tc.before, tc.after, tc.step)
	}
}

func TestQualifyingSpendSkipsCancelledAndDeleted(t *testing.T) {
	db := testDB(t)
	u := seedCustomer(t, db, "a@example.com")
	seedOrder(t, db, u.ID, "30.00", models.StatusPending)
	seedOrder(t, db, u.ID, "20.00", models.StatusCompleted)
	seedOrder(t, db, u.ID, "99.00", models.StatusCancelled)
	deleted := seedOrder(t, db, u.ID, "40.00", models.StatusPending)
	require.NoError(t, db.Delete(&deleted).Error)

	spend, err := QualifyingSpend(db, u.ID)
	require.NoError(t, err)
	require.True(t, spend.Equal(decimal.RequireFromString("50.00")), "got %s", spend)
}

func TestReconcileCorrectsDriftAndNotifies(t *testing.T) {
	db := testDB(t)
	u := seedCustomer(t, db, "a@example.com")
	seedOrder(t, db, u.ID, "120.00", models.StatusCompleted)

	// stored balance is stale on purpose
	_, _, err := Credit(db, u.ID, 3, "stale", nil)
	require.NoError(t, err)

	notifs, err := Reconcile(db, u.ID)
	require.NoError(t, err)

	bp, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 12, bp.Points, "floor(120/10)")
	require.Equal(t, 12, bp.LastNotifiedPoints)
	// crossed 5 and 10 starting from watermark 0
	require.Len(t, notifs, 2)

	// the correction shows up in the ledger
	var corr models.BonusTransaction
	require.NoError(t, db.Where("user_id = ? AND description = ?", u.ID, "balance reconciliation").First(&corr).Error)
	require.Equal(t, 9, corr.Points)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := testDB(t)
	u := seedCustomer(t, db, "a@example.com")
	seedOrder(t, db, u.ID, "60.00", models.StatusCompleted)

	first, err := Reconcile(db, u.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	bpBefore, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)

	second, err := Reconcile(db, u.ID)
	require.NoError(t, err)
	require.Empty(t, second, "no new notifications without new orders")

	bpAfter, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, bpBefore.Points, bpAfter.Points)
	require.Equal(t, bpBefore.LastNotifiedPoints, bpAfter.LastNotifiedPoints)
}

func TestReconcileAfterRetroactiveDelete(t *testing.T) {
	db := testDB(t)
	u := seedCustomer(t, db, "a@example.com")
	order := seedOrder(t, db, u.ID, "100.00", models.StatusCompleted)

	_, err := Reconcile(db, u.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&order).Error)

	notifs, err := Reconcile(db, u.ID)
	require.NoError(t, err)
	require.Empty(t, notifs)

	bp, err := GetOrCreate(db, u.ID)
	require.NoError(t, err)
	require.Equal(t, 0, bp.Points)
	// watermark never moves backwards, so a later recovery does not
	// re-send the same coffee emails
	require.Equal(t, 10, bp.LastNotifiedPoints)
}

func TestReconcileAllCoversEveryCustomer(t *testing.T) {
	db := testDB(t)
	a := seedCustomer(t, db, "a@example.com")
	b := seedCustomer(t, db, "b@example.com")
	seedOrder(t, db, a.ID, "50.00", models.StatusCompleted)
	seedOrder(t, db, b.ID, "70.00", models.StatusCompleted)

	notifs := ReconcileAll(db)
	require.Len(t, notifs, 2)
}
