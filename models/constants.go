package models

// Discount tiers. Only the welcome and spend-threshold tiers are wired into
// redemption; 10% and 50% exist as menu-item discount levels and reserved
// code tiers.
const (
	DiscountTierNone    = 0
	DiscountTierLow     = 10
	DiscountTierGeneral = 20
	DiscountTierHalf    = 50
	DiscountTierWelcome = 70
)

// DiscountPercentages lists every percentage a menu item may carry.
var DiscountPercentages = []int{
	DiscountTierNone,
	DiscountTierLow,
	DiscountTierGeneral,
	DiscountTierHalf,
	DiscountTierWelcome,
}

// Bonus point system: 1 point per 10 currency units of qualifying spend,
// a free coffee every 5 points, and a flat 5-point credit plus a fresh
// 20% code for any single order of 50 or more.
const (
	BonusPointsPerUnit   = 10
	BonusCoffeeThreshold = 5
	OrderBonusPoints     = 5
	SpendThresholdAmount = 50
)

// Discount code reasons.
const (
	ReasonWelcome        = "welcome"
	ReasonSpendThreshold = "spend-threshold"
)
