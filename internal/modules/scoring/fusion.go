package scoring

import "github.com/amara-ai/credit-engine/pkg/formulas"

// Fuse combines the baseline score with the vision and NLP adjustments
// into a single bounded final score.
//
// Final = Baseline + (Vision * 0.5) + (NLP * 0.5), capped to [0, 100].
//
// The half weights apply to the adjustments only, never to the baseline:
// adjustments are bounded modifiers (roughly ±15 points each) and must not
// dominate the statistical baseline.
func Fuse(baseline, visionAdjustment, nlpAdjustment float64) float64 {
	final := baseline + visionAdjustment*FusionVisionWeight + nlpAdjustment*FusionNLPWeight
	return formulas.Clamp(final, 0, 100)
}
