package model

// DailyFeatures summarises one day of the power profile.
type DailyFeatures struct {
	MeanPowerW    float64 `json:"t1"` // T1: signed mean power
	MeanAbsPowerW float64 `json:"t4"` // T4: mean absolute power
}

// Positions of the estimator inputs inside a FeatureRow.
const (
	FeatSOH0 = iota
	FeatT1
	FeatStrategy
	FeatT4
	FeatDay

	FeatureCount
)

// FeatureRow is the estimator input for one day:
// [priorSOH, meanPower, strategy, meanAbsPower, dayIndex].
type FeatureRow [FeatureCount]float64

// FeatureNames lists the row components in order.
var FeatureNames = [FeatureCount]string{"SOH0", "T1", "Strategy", "T4", "Day"}
