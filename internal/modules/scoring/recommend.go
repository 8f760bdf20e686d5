package scoring

import (
	"fmt"
	"math"
	"strconv"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// LoanTerms holds the per-risk-category sizing parameters.
type LoanTerms struct {
	MaxIncomeMultiple float64 // max safe loan as a multiple of monthly income
	TermWeeks         int
	SafeRepaymentRate float64 // share of monthly income safely spent on repayment
}

// loanTermsByRisk is the loan sizing table. Lower risk buys a larger
// multiple and a longer term.
var loanTermsByRisk = map[domain.RiskCategory]LoanTerms{
	domain.RiskLow:      {MaxIncomeMultiple: 3.0, TermWeeks: 24, SafeRepaymentRate: 0.30},
	domain.RiskMedium:   {MaxIncomeMultiple: 2.0, TermWeeks: 20, SafeRepaymentRate: 0.25},
	domain.RiskHigh:     {MaxIncomeMultiple: 1.0, TermWeeks: 16, SafeRepaymentRate: 0.20},
	domain.RiskVeryHigh: {MaxIncomeMultiple: 0.5, TermWeeks: 12, SafeRepaymentRate: 0.15},
}

// TermsFor returns the sizing parameters for a risk category, defaulting
// to the high-risk terms for unknown categories.
func TermsFor(category domain.RiskCategory) LoanTerms {
	if terms, ok := loanTermsByRisk[category]; ok {
		return terms
	}
	return loanTermsByRisk[domain.RiskHigh]
}

// Recommend derives a safe loan size and term from the assessed risk
// category and the AI-validated income. The justification is a
// deterministic template: identical numeric inputs always reproduce the
// same text.
func Recommend(
	finalScore float64,
	category domain.RiskCategory,
	validation domain.IncomeValidation,
) domain.LoanRecommendation {
	monthlyIncome := validation.AIEstimatedIncome
	terms := TermsFor(category)

	maxLoan := monthlyIncome * terms.MaxIncomeMultiple
	recommended := maxLoan * RecommendedLoanFraction
	weekly := recommended / float64(terms.TermWeeks)

	monthlyRepayment := weekly * WeeksPerMonth
	ratio := 0.0
	if monthlyIncome > 0 {
		ratio = monthlyRepayment / monthlyIncome * 100
	}

	confidence := RecommendConfidenceFloor +
		RecommendConfidenceSlope*(validation.ConsistencyScore/100)

	justification := fmt.Sprintf(
		"Based on %s risk profile and estimated monthly income of Rp %s, "+
			"safe repayment capacity is approximately %.0f%% of income (Rp %s/month). "+
			"Recommended loan of Rp %s over %d weeks results in weekly payments of Rp %s, "+
			"which is %.1f%% of monthly income - within safe lending parameters.",
		category,
		formatAmount(monthlyIncome),
		terms.SafeRepaymentRate*100,
		formatAmount(monthlyIncome*terms.SafeRepaymentRate),
		formatAmount(recommended),
		terms.TermWeeks,
		formatAmount(weekly),
		ratio,
	)

	return domain.LoanRecommendation{
		RecommendedAmount: formulas.Round2(recommended),
		MaxSafeAmount:     formulas.Round2(maxLoan),
		TermWeeks:         terms.TermWeeks,
		WeeklyRepayment:   formulas.Round2(weekly),
		RepaymentRatio:    formulas.Round2(ratio),
		Confidence:        formulas.Round2(confidence),
		Justification:     justification,
	}
}

// formatAmount renders a currency amount with thousands separators and no
// decimals, e.g. 7200000 -> "7,200,000".
func formatAmount(amount float64) string {
	s := strconv.FormatInt(int64(math.Round(amount)), 10)

	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out)
	}
	return string(out)
}
