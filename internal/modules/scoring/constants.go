package scoring

// Scoring constants - all thresholds and weights used by the credit engine.
// Every tier boundary and weight table lives here so the numbers can be
// audited in one place instead of drifting across modules.

// =============================================================================
// Risk Category Ladder
// =============================================================================

const (
	// Final and baseline scores are bucketed with the same ladder.
	// Boundary values map to the higher (safer) tier.
	RiskThresholdLow    = 75.0
	RiskThresholdMedium = 55.0
	RiskThresholdHigh   = 35.0
)

// =============================================================================
// Rule-Based Baseline Scoring
// =============================================================================

const (
	// Neutral starting point before any signal is applied
	RuleBaseScore = 50.0

	// Repayment history (up to 40 points)
	RuleOnTimeRateMax    = 30.0 // on_time_rate * 30
	RuleOverdueGraceDays = 10.0 // max(0, 10 - avg_days_overdue)

	// Financial behavior (up to 25 points)
	RuleBankAccountBonus = 8.0
	RuleRecordsBonus     = 10.0
	RuleLiteracyMax      = 7.0 // literacy/100 * 7

	// Business stability (up to 20 points)
	RuleYearsMultiplier  = 2.0
	RuleYearsMax         = 15.0
	RuleLoanHistoryBonus = 5.0

	// Demographics (up to 15 points)
	RulePrimeAgeMin     = 25
	RulePrimeAgeMax     = 50
	RuleWorkingAgeMin   = 18
	RuleWorkingAgeMax   = 60
	RulePrimeAgeBonus   = 8.0
	RuleWorkingAgeBonus = 5.0

	RuleMaxDependents    = 3
	RuleSmallFamilyBonus = 7.0
	RuleLargeFamilyBonus = 3.0

	// Rule-based predictions carry moderate confidence
	RuleConfidence = 0.70
)

// =============================================================================
// Score Fusion
// =============================================================================

const (
	// Adjustments are modifiers bounded to roughly ±15 points each and are
	// halved so they never dominate the baseline.
	FusionVisionWeight = 0.5
	FusionNLPWeight    = 0.5
)

// =============================================================================
// Vision Adjustment Tables
// =============================================================================

const (
	AdjustScaleLarge  = 5.0
	AdjustScaleMedium = 2.0

	AdjustInventoryHigh     = 3.0
	AdjustInventoryModerate = 1.0

	AdjustAssetExcellent = 5.0
	AdjustAssetGood      = 3.0
	AdjustAssetFair      = 1.0
	AdjustAssetPoor      = -2.0

	AdjustHousingGood     = 4.0
	AdjustHousingAdequate = 2.0
	AdjustHousingPoor     = -3.0
)

// =============================================================================
// NLP Adjustment Tables
// =============================================================================

const (
	SentimentVeryPositive = 0.8
	SentimentPositive     = 0.7
	SentimentNeutral      = 0.5

	AdjustSentimentVeryPositive = 5.0
	AdjustSentimentPositive     = 3.0
	AdjustSentimentNegative     = -3.0

	AdjustBehaviorHigh = 2.0
	AdjustBehaviorLow  = -2.0

	AdjustFlagHigh   = 2.0 // subtracted per high-severity flag
	AdjustFlagMedium = 1.0 // subtracted per medium-severity flag
)

// DefaultAggregateConfidence is used when an aggregation runs over an
// empty analysis list. Callers must guard against empty input before
// relying on it as a meaningful confidence.
const DefaultAggregateConfidence = 0.7

// =============================================================================
// Income Validation
// =============================================================================

const (
	IncomeWeightNLP       = 0.40
	IncomeWeightVision    = 0.35
	IncomeWeightBenchmark = 0.25

	// Vision-derived income multipliers by observed business scale
	VisionIncomeLargeRatio  = 1.10
	VisionIncomeMediumRatio = 0.95
	VisionIncomeSmallRatio  = 0.85 // default conservative estimate

	// Used when no estimate source is available at all
	IncomeFallbackRatio = 0.85

	// Variance thresholds for the narrative assessment
	VarianceHighThreshold     = 30.0
	VarianceModerateThreshold = 15.0
	VarianceLowThreshold      = -15.0
)

// DefaultBenchmarkIncome is the typical monthly income assumed when a
// business type matches no benchmark entry.
const DefaultBenchmarkIncome = 3000000

// =============================================================================
// Loan Recommendation
// =============================================================================

const (
	// Conservative recommendation as a share of the maximum safe loan
	RecommendedLoanFraction = 0.8

	// Average weeks per month, used for the repayment-to-income ratio
	WeeksPerMonth = 4.3

	// Recommendation confidence scales with income consistency: 0.3 to 1.0
	RecommendConfidenceFloor = 0.3
	RecommendConfidenceSlope = 0.7
)
