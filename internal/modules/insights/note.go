package insights

import (
	"sort"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/modules/scoring"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// NoteAggregation reduces a set of per-note analyses to a single score
// adjustment with confidence and a headline summary.
type NoteAggregation struct {
	ScoreAdjustment float64            `json:"score_adjustment"`
	Confidence      float64            `json:"confidence"`
	Summary         domain.NoteSummary `json:"summary"`
}

// NoteAggregator reduces field note analyses.
type NoteAggregator struct{}

// NewNoteAggregator creates a new note aggregator
func NewNoteAggregator() *NoteAggregator {
	return &NoteAggregator{}
}

// Aggregate averages per-note adjustments and confidences. An empty list
// yields adjustment 0 with the default confidence.
func (na *NoteAggregator) Aggregate(analyses []domain.NoteAnalysis) NoteAggregation {
	if len(analyses) == 0 {
		return NoteAggregation{
			ScoreAdjustment: 0,
			Confidence:      scoring.DefaultAggregateConfidence,
		}
	}

	adjustments := make([]float64, len(analyses))
	confidences := make([]float64, len(analyses))
	for i, a := range analyses {
		adjustments[i] = NoteAdjustment(a)
		confidences[i] = a.ConfidenceScore
	}

	return NoteAggregation{
		ScoreAdjustment: formulas.Round2(formulas.Mean(adjustments)),
		Confidence:      formulas.Round2(formulas.Mean(confidences)),
		Summary:         summarizeNotes(analyses),
	}
}

// NoteAdjustment computes the bounded adjustment contributed by one note
// analysis, weighted by that analysis's confidence.
func NoteAdjustment(a domain.NoteAnalysis) float64 {
	adjustment := 0.0

	switch {
	case a.SentimentScore >= scoring.SentimentVeryPositive:
		adjustment += scoring.AdjustSentimentVeryPositive
	case a.SentimentScore >= scoring.SentimentPositive:
		adjustment += scoring.AdjustSentimentPositive
	case a.SentimentScore >= scoring.SentimentNeutral:
		// neutral, no contribution
	default:
		adjustment += scoring.AdjustSentimentNegative
	}

	switch a.BehavioralInsights.CooperationLevel {
	case domain.LevelHigh:
		adjustment += scoring.AdjustBehaviorHigh
	case domain.LevelLow:
		adjustment += scoring.AdjustBehaviorLow
	}

	switch a.BehavioralInsights.Transparency {
	case domain.LevelHigh:
		adjustment += scoring.AdjustBehaviorHigh
	case domain.LevelLow:
		adjustment += scoring.AdjustBehaviorLow
	}

	switch a.BehavioralInsights.FinancialPlanning {
	case domain.PlanningGood, domain.PlanningStrong:
		adjustment += scoring.AdjustBehaviorHigh
	case domain.PlanningWeak:
		adjustment += scoring.AdjustBehaviorLow
	}

	for _, flag := range a.RiskFlags {
		switch flag.Severity {
		case domain.SeverityHigh:
			adjustment -= scoring.AdjustFlagHigh
		case domain.SeverityMedium:
			adjustment -= scoring.AdjustFlagMedium
		}
	}

	return formulas.Round2(adjustment * a.ConfidenceScore)
}

func summarizeNotes(analyses []domain.NoteAnalysis) domain.NoteSummary {
	sentiments := make([]float64, len(analyses))
	flagSet := make(map[string]struct{})
	highCooperation := 0

	for i, a := range analyses {
		sentiments[i] = a.SentimentScore
		for _, f := range a.RiskFlags {
			flagSet[f.Flag] = struct{}{}
		}
		if a.BehavioralInsights.CooperationLevel == domain.LevelHigh {
			highCooperation++
		}
	}

	flags := make([]string, 0, len(flagSet))
	for f := range flagSet {
		flags = append(flags, f)
	}
	sort.Strings(flags)

	return domain.NoteSummary{
		AverageSentiment:    formulas.Round2(formulas.Mean(sentiments)),
		AggregatedRiskFlags: flags,
		HighCooperation:     highCooperation*2 > len(analyses),
	}
}
