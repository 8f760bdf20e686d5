// Package analyzers holds the AI-backed photo, note and explanation
// analyzers together with their deterministic fallbacks. Every analyzer
// degrades instead of failing: a dead completion endpoint produces a
// conservative low-confidence analysis, never an error that would block
// an assessment.
package analyzers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/clients/llm"
	"github.com/amara-ai/credit-engine/internal/domain"
)

// VisionAnalyzer produces a structured analysis for one borrower photo.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, photo domain.Photo, borrower domain.Borrower) domain.PhotoAnalysis
}

// LLMVisionAnalyzer analyzes photos with a vision-capable completion model.
type LLMVisionAnalyzer struct {
	client *llm.Client
	model  string
	log    zerolog.Logger
}

// NewLLMVisionAnalyzer creates an analyzer backed by the given completion client.
func NewLLMVisionAnalyzer(client *llm.Client, model string, log zerolog.Logger) *LLMVisionAnalyzer {
	return &LLMVisionAnalyzer{
		client: client,
		model:  model,
		log:    log.With().Str("analyzer", "vision").Logger(),
	}
}

const visionSystemPrompt = "You are a rural micro-business credit analyst. Respond ONLY with valid JSON."

// Analyze sends the photo to the vision model. House photos and business
// photos get different prompts. Any transport or parse failure degrades to
// the deterministic fallback analysis.
func (v *LLMVisionAnalyzer) Analyze(ctx context.Context, photo domain.Photo, borrower domain.Borrower) domain.PhotoAnalysis {
	house := isHousePhoto(photo.PhotoType)

	var prompt string
	if house {
		prompt = buildHousePhotoPrompt(photo.PhotoType)
	} else {
		prompt = buildBusinessPhotoPrompt(photo.PhotoType, borrower)
	}

	raw, err := v.client.CompleteWithImage(ctx, v.model, visionSystemPrompt, prompt, photo.PhotoURL)
	if err != nil {
		v.log.Error().Err(err).Str("photo_id", photo.ID).Msg("vision analysis failed, using fallback")
		return fallbackPhotoAnalysis(house)
	}

	var analysis domain.PhotoAnalysis
	if err := decodeJSON(raw, &analysis); err != nil {
		v.log.Error().Err(err).Str("photo_id", photo.ID).Msg("vision response unparseable, using fallback")
		return fallbackPhotoAnalysis(house)
	}

	analysis.RawAnalysis = raw
	if analysis.ConfidenceScore <= 0 || analysis.ConfidenceScore > 1 {
		analysis.ConfidenceScore = 0.7
	}

	v.log.Debug().
		Str("photo_id", photo.ID).
		Str("photo_type", photo.PhotoType).
		Float64("confidence", analysis.ConfidenceScore).
		Msg("vision analysis completed")

	return analysis
}

// FallbackVisionAnalyzer returns conservative deterministic analyses. It is
// the active analyzer when no completion API is configured.
type FallbackVisionAnalyzer struct {
	log zerolog.Logger
}

// NewFallbackVisionAnalyzer creates the deterministic vision analyzer.
func NewFallbackVisionAnalyzer(log zerolog.Logger) *FallbackVisionAnalyzer {
	return &FallbackVisionAnalyzer{log: log.With().Str("analyzer", "vision_fallback").Logger()}
}

// Analyze returns the conservative baseline analysis for the photo type.
func (v *FallbackVisionAnalyzer) Analyze(_ context.Context, photo domain.Photo, _ domain.Borrower) domain.PhotoAnalysis {
	v.log.Debug().Str("photo_id", photo.ID).Msg("deterministic vision analysis")
	return fallbackPhotoAnalysis(isHousePhoto(photo.PhotoType))
}

func isHousePhoto(photoType string) bool {
	return strings.HasPrefix(photoType, "house")
}

// fallbackPhotoAnalysis is the conservative analysis used when no model
// output is available. Values sit at the low-middle of each tier so the
// resulting score adjustment stays small.
func fallbackPhotoAnalysis(house bool) domain.PhotoAnalysis {
	if house {
		return domain.PhotoAnalysis{
			HousingCondition: domain.HousingBasic,
			SocioeconomicIndicators: map[string]string{
				"building_materials": "mixed brick and wood",
				"roof_condition":     "adequate",
			},
			ConfidenceScore: 0.50,
			RawAnalysis:     "Fallback analysis - vision analyzer unavailable",
			Fallback:        true,
		}
	}
	return domain.PhotoAnalysis{
		BusinessScale:    domain.ScaleSmall,
		InventoryDensity: domain.InventoryModerate,
		AssetQuality:     domain.AssetFair,
		SocioeconomicIndicators: map[string]string{
			"building_condition": "basic",
			"equipment_modernity": "standard",
		},
		EstimatedValueRange: "Rp 3M - 8M",
		ConfidenceScore:     0.50,
		RawAnalysis:         "Fallback analysis - vision analyzer unavailable",
		Fallback:            true,
	}
}

func buildBusinessPhotoPrompt(photoType string, borrower domain.Borrower) string {
	return fmt.Sprintf(`You are analyzing a photo of a micro-business in rural Indonesia for credit assessment purposes.

Photo Type: %s

Borrower Context:
- Business Type: %s
- Claimed Monthly Income: Rp %.0f
- Location: %s, %s

Analyze this image and provide a structured JSON assessment with:

1. "business_scale": small (home-based, minimal assets), medium (dedicated space, visible inventory) or large (substantial inventory, good infrastructure)
2. "inventory_density": low, moderate or high
3. "asset_quality": poor, fair, good or excellent
4. "socioeconomic_indicators": object with building_condition, equipment_modernity, organization_level, cleanliness, signage_quality
5. "estimated_value_range": rough total asset value in Rupiah, e.g. "Rp 5M - 10M"
6. "confidence_score": your confidence in this analysis (0.0 to 1.0)

Respond ONLY with valid JSON. Be objective and specific.`,
		photoType, borrower.BusinessType, floatValue(borrower.ClaimedMonthlyIncome), borrower.Village, borrower.District)
}

func buildHousePhotoPrompt(photoType string) string {
	return fmt.Sprintf(`You are analyzing a photo of a borrower's house in rural Indonesia for credit assessment purposes.

Photo Type: %s

Analyze this image and provide a structured JSON assessment with:

1. "housing_condition": poor (significant deterioration), basic (simple structure), adequate (decent condition) or good (well-maintained)
2. "socioeconomic_indicators": object with building_materials, roof_condition, windows_doors_quality, visible_amenities
3. "confidence_score": your confidence in this analysis (0.0 to 1.0)

Respond ONLY with valid JSON.`, photoType)
}
