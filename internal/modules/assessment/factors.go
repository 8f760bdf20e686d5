package assessment

import (
	"fmt"

	"github.com/amara-ai/credit-engine/internal/domain"
)

// maxFlagFactors caps how many aggregated note risk flags become factors.
const maxFlagFactors = 3

// extractFactors derives the weighted risk and positive factor lists from
// the borrower profile and the analyzer summaries.
func extractFactors(features domain.BorrowerFeatures, vision *domain.VisionInsights, notes *domain.NoteInsights) (risk, positive []domain.Factor) {
	risk = []domain.Factor{}
	positive = []domain.Factor{}

	if features.HasBankAccount {
		positive = append(positive, domain.Factor{Factor: "Has bank account", Weight: 0.08, Impact: "positive"})
	} else {
		risk = append(risk, domain.Factor{Factor: "No bank account", Weight: 0.10, Impact: "negative"})
	}

	if !features.KeepsFinancialRecords {
		risk = append(risk, domain.Factor{Factor: "No financial records", Weight: 0.12, Impact: "negative"})
	}

	years := features.YearsInBusiness
	if years >= 5 {
		positive = append(positive, domain.Factor{
			Factor: fmt.Sprintf("%g years business continuity", years),
			Weight: 0.15,
			Impact: "positive",
		})
	} else if years < 1 {
		risk = append(risk, domain.Factor{Factor: "New business (< 1 year)", Weight: 0.10, Impact: "negative"})
	}

	if notes != nil {
		if notes.Summary.HighCooperation {
			positive = append(positive, domain.Factor{Factor: "Cooperative and transparent", Weight: 0.12, Impact: "positive"})
		}
		flags := notes.Summary.AggregatedRiskFlags
		if len(flags) > maxFlagFactors {
			flags = flags[:maxFlagFactors]
		}
		for _, flag := range flags {
			risk = append(risk, domain.Factor{Factor: flag, Weight: 0.08, Impact: "negative"})
		}
	}

	if vision != nil {
		if vision.Summary.GoodAssetQuality {
			positive = append(positive, domain.Factor{Factor: "Good business asset quality", Weight: 0.10, Impact: "positive"})
		}
		if vision.Summary.HighInventory {
			positive = append(positive, domain.Factor{Factor: "High inventory density", Weight: 0.08, Impact: "positive"})
		}
	}

	return risk, positive
}
