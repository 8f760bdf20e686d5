package analyzers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/clients/llm"
	"github.com/amara-ai/credit-engine/internal/domain"
)

// ExplanationGenerator writes the field-agent facing risk explanation for a
// completed assessment.
type ExplanationGenerator interface {
	Explain(ctx context.Context, borrower domain.Borrower, assessment domain.Assessment) string
}

// LLMExplanationGenerator asks a completion model for a narrative
// explanation in Bahasa Indonesia.
type LLMExplanationGenerator struct {
	client *llm.Client
	model  string
	log    zerolog.Logger
}

// NewLLMExplanationGenerator creates a generator backed by the given client.
func NewLLMExplanationGenerator(client *llm.Client, model string, log zerolog.Logger) *LLMExplanationGenerator {
	return &LLMExplanationGenerator{
		client: client,
		model:  model,
		log:    log.With().Str("analyzer", "explanation").Logger(),
	}
}

const explanationSystemPrompt = "You are a credit analyst explaining assessment results to microfinance field agents in Indonesia."

// Explain generates the narrative explanation, falling back to the
// deterministic template when the endpoint is unreachable.
func (g *LLMExplanationGenerator) Explain(ctx context.Context, borrower domain.Borrower, assessment domain.Assessment) string {
	prompt := buildExplanationPrompt(borrower, assessment)

	text, err := g.client.Complete(ctx, g.model, explanationSystemPrompt, prompt)
	if err != nil {
		g.log.Error().Err(err).Str("borrower_id", borrower.ID).Msg("explanation generation failed, using template")
		return templateExplanation(borrower, assessment)
	}
	return text
}

// TemplateExplanationGenerator produces the deterministic Indonesian
// explanation without a model.
type TemplateExplanationGenerator struct{}

// NewTemplateExplanationGenerator creates the deterministic generator.
func NewTemplateExplanationGenerator() *TemplateExplanationGenerator {
	return &TemplateExplanationGenerator{}
}

// Explain returns the template explanation for the assessment's risk tier.
func (g *TemplateExplanationGenerator) Explain(_ context.Context, borrower domain.Borrower, assessment domain.Assessment) string {
	return templateExplanation(borrower, assessment)
}

// templateExplanation gives field agents a usable summary per risk tier.
// High and very high risk share the cautious wording.
func templateExplanation(borrower domain.Borrower, assessment domain.Assessment) string {
	name := borrower.FullName
	if name == "" {
		name = "Peminjam"
	}
	business := borrower.BusinessType
	if business == "" {
		business = "usaha"
	}
	score := assessment.FinalScore

	switch assessment.RiskCategory {
	case domain.RiskLow:
		return fmt.Sprintf("%s menunjukkan profil kredit yang baik dengan skor %.1f/100. "+
			"Riwayat pembayaran stabil, usaha %s sudah berjalan dengan baik, dan menunjukkan perilaku keuangan yang bertanggung jawab. "+
			"Rekomendasi: Approve dengan jumlah pinjaman sesuai kapasitas.", name, score, business)
	case domain.RiskMedium:
		return fmt.Sprintf("%s memiliki profil risiko menengah dengan skor %.1f/100. "+
			"Usaha %s cukup stabil namun ada beberapa area yang perlu diperhatikan seperti pencatatan keuangan atau riwayat pembayaran. "+
			"Rekomendasi: Approve dengan monitoring ketat dan pinjaman konservatif.", name, score, business)
	default:
		return fmt.Sprintf("%s menunjukkan risiko tinggi dengan skor %.1f/100. "+
			"Terdapat beberapa indikator risiko pada usaha %s yang perlu evaluasi lebih lanjut. "+
			"Rekomendasi: Pertimbangkan dengan hati-hati, pinjaman minimal dengan pendampingan intensif.", name, score, business)
	}
}

func buildExplanationPrompt(borrower domain.Borrower, assessment domain.Assessment) string {
	return fmt.Sprintf(`Borrower Profile:
- Name: %s
- Business: %s
- Claimed Income: Rp %.0f/month
- Years in Business: %.1f years

Credit Assessment Results:
- Baseline Score: %.1f/100
- Vision Analysis Adjustment: %.2f
- NLP Analysis Adjustment: %.2f
- Final Credit Score: %.1f/100
- Risk Category: %s

Additional Context:
- Financial Literacy Score: %d/100
- Has Bank Account: %t
- Keeps Records: %t

Write a clear, 2-3 paragraph explanation in Indonesian (Bahasa Indonesia) that:
1. Summarizes the borrower's creditworthiness
2. Highlights key positive factors
3. Points out any risk factors to monitor
4. Provides a balanced recommendation

Keep it professional but accessible to field agents. Focus on practical insights.`,
		borrower.FullName, borrower.BusinessType,
		floatValue(borrower.ClaimedMonthlyIncome), floatValue(borrower.YearsInBusiness),
		assessment.BaselineScore, assessment.VisionAdjustment, assessment.NLPAdjustment,
		assessment.FinalScore, assessment.RiskCategory,
		intValue(borrower.FinancialLiteracyScore), borrower.HasBankAccount, borrower.KeepsFinancialRecords)
}
