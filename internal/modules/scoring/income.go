package scoring

import (
	"math"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// IncomeValidator reconciles claimed income against AI-derived estimates
// from field notes, photos and business-type benchmarks.
type IncomeValidator struct {
	benchmarks BenchmarkProvider
}

// NewIncomeValidator creates an income validator over the given benchmark
// provider.
func NewIncomeValidator(benchmarks BenchmarkProvider) *IncomeValidator {
	return &IncomeValidator{benchmarks: benchmarks}
}

// Validate produces a consistency score and narrative assessment for the
// claimed monthly income.
func (v *IncomeValidator) Validate(
	claimedIncome float64,
	noteAnalyses []domain.NoteAnalysis,
	photoAnalyses []domain.PhotoAnalysis,
	businessType string,
) domain.IncomeValidation {
	nlpEstimate := nlpIncomeEstimate(noteAnalyses)
	visionEstimate := visionIncomeEstimate(claimedIncome, photoAnalyses)
	benchmarkEstimate := v.benchmarks.BenchmarkIncome(businessType)

	// Weighted mean over whichever estimates are present, weights
	// renormalized over the present subset.
	var estimates, weights []float64
	if nlpEstimate > 0 {
		estimates = append(estimates, nlpEstimate)
		weights = append(weights, IncomeWeightNLP)
	}
	if visionEstimate > 0 {
		estimates = append(estimates, visionEstimate)
		weights = append(weights, IncomeWeightVision)
	}
	if benchmarkEstimate > 0 {
		estimates = append(estimates, benchmarkEstimate)
		weights = append(weights, IncomeWeightBenchmark)
	}

	aiEstimate := claimedIncome * IncomeFallbackRatio
	if len(estimates) > 0 {
		aiEstimate = formulas.WeightedMean(estimates, weights)
	}

	variance := 0.0
	if aiEstimate > 0 {
		variance = (claimedIncome - aiEstimate) / aiEstimate * 100
	}

	consistency := math.Max(0, 100-math.Abs(variance))

	return domain.IncomeValidation{
		ClaimedIncome:      formulas.Round2(claimedIncome),
		AIEstimatedIncome:  formulas.Round2(aiEstimate),
		ConsistencyScore:   formulas.Round2(consistency),
		VariancePercentage: formulas.Round2(variance),
		Assessment:         varianceAssessment(variance),
	}
}

// nlpIncomeEstimate is the mean of positive extracted income values, or 0
// when no note produced a positive estimate.
func nlpIncomeEstimate(analyses []domain.NoteAnalysis) float64 {
	var positive []float64
	for _, a := range analyses {
		if a.ExtractedIncomeEstimate > 0 {
			positive = append(positive, a.ExtractedIncomeEstimate)
		}
	}
	return formulas.Mean(positive)
}

// visionIncomeEstimate scales the claimed income by the largest business
// scale observed across photo analyses, defaulting conservatively.
func visionIncomeEstimate(claimedIncome float64, analyses []domain.PhotoAnalysis) float64 {
	ratio := VisionIncomeSmallRatio
	for _, a := range analyses {
		switch a.BusinessScale {
		case domain.ScaleLarge:
			return claimedIncome * VisionIncomeLargeRatio
		case domain.ScaleMedium:
			ratio = VisionIncomeMediumRatio
		}
	}
	return claimedIncome * ratio
}

func varianceAssessment(variance float64) string {
	switch {
	case variance > VarianceHighThreshold:
		return "Claimed income significantly higher than AI estimate - verify carefully"
	case variance > VarianceModerateThreshold:
		return "Claimed income moderately higher than AI estimate"
	case variance < VarianceLowThreshold:
		return "Claimed income lower than AI estimate - borrower may be conservative"
	default:
		return "Income claim appears consistent with AI estimate"
	}
}
