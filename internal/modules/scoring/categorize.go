package scoring

import "github.com/amara-ai/credit-engine/internal/domain"

// Categorize buckets a credit score into one of the four risk tiers.
// This is the single source of truth for category boundaries: the risk
// model and score fusion both categorize through it.
func Categorize(score float64) domain.RiskCategory {
	switch {
	case score >= RiskThresholdLow:
		return domain.RiskLow
	case score >= RiskThresholdMedium:
		return domain.RiskMedium
	case score >= RiskThresholdHigh:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}
