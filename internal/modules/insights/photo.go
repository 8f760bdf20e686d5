package insights

import (
	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/modules/scoring"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// PhotoAggregation reduces a set of per-photo analyses to a single score
// adjustment with confidence and a headline summary.
type PhotoAggregation struct {
	ScoreAdjustment float64              `json:"score_adjustment"`
	Confidence      float64              `json:"confidence"`
	Summary         domain.VisionSummary `json:"summary"`
}

// PhotoAggregator reduces vision analyses. It is pure: the external
// vision analyzer has already run by the time analyses reach it.
type PhotoAggregator struct{}

// NewPhotoAggregator creates a new photo aggregator
func NewPhotoAggregator() *PhotoAggregator {
	return &PhotoAggregator{}
}

// Aggregate averages per-photo adjustments and confidences. An empty list
// yields adjustment 0 with the default confidence; callers must guard
// against empty input before relying on that confidence.
func (pa *PhotoAggregator) Aggregate(analyses []domain.PhotoAnalysis) PhotoAggregation {
	if len(analyses) == 0 {
		return PhotoAggregation{
			ScoreAdjustment: 0,
			Confidence:      scoring.DefaultAggregateConfidence,
		}
	}

	adjustments := make([]float64, len(analyses))
	confidences := make([]float64, len(analyses))
	for i, a := range analyses {
		adjustments[i] = PhotoAdjustment(a)
		confidences[i] = a.ConfidenceScore
	}

	return PhotoAggregation{
		ScoreAdjustment: formulas.Round2(formulas.Mean(adjustments)),
		Confidence:      formulas.Round2(formulas.Mean(confidences)),
		Summary:         summarizePhotos(analyses),
	}
}

// PhotoAdjustment computes the bounded adjustment contributed by one photo
// analysis, weighted by that analysis's confidence.
func PhotoAdjustment(a domain.PhotoAnalysis) float64 {
	adjustment := 0.0

	switch a.BusinessScale {
	case domain.ScaleLarge:
		adjustment += scoring.AdjustScaleLarge
	case domain.ScaleMedium:
		adjustment += scoring.AdjustScaleMedium
	}

	switch a.InventoryDensity {
	case domain.InventoryHigh:
		adjustment += scoring.AdjustInventoryHigh
	case domain.InventoryModerate:
		adjustment += scoring.AdjustInventoryModerate
	}

	switch a.AssetQuality {
	case domain.AssetExcellent:
		adjustment += scoring.AdjustAssetExcellent
	case domain.AssetGood:
		adjustment += scoring.AdjustAssetGood
	case domain.AssetFair:
		adjustment += scoring.AdjustAssetFair
	case domain.AssetPoor:
		adjustment += scoring.AdjustAssetPoor
	}

	switch a.HousingCondition {
	case domain.HousingGood:
		adjustment += scoring.AdjustHousingGood
	case domain.HousingAdequate:
		adjustment += scoring.AdjustHousingAdequate
	case domain.HousingPoor:
		adjustment += scoring.AdjustHousingPoor
	}

	return formulas.Round2(adjustment * a.ConfidenceScore)
}

func summarizePhotos(analyses []domain.PhotoAnalysis) domain.VisionSummary {
	scales := make([]string, 0, len(analyses))
	qualities := make([]string, 0, len(analyses))
	highInventory := false

	for _, a := range analyses {
		if a.BusinessScale != "" {
			scales = append(scales, a.BusinessScale)
		}
		if a.AssetQuality != "" {
			qualities = append(qualities, a.AssetQuality)
		}
		if a.InventoryDensity == domain.InventoryHigh {
			highInventory = true
		}
	}

	scale := mostFrequent(scales, domain.ScaleSmall)
	quality := mostFrequent(qualities, domain.AssetFair)

	return domain.VisionSummary{
		MostCommonBusinessScale: scale,
		AverageAssetQuality:     quality,
		GoodAssetQuality:        quality == domain.AssetGood || quality == domain.AssetExcellent,
		HighInventory:           highInventory,
	}
}

// mostFrequent returns the most common value, breaking ties by first
// occurrence in the list.
func mostFrequent(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}

	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := values[0]
	for _, v := range values {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
