package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/clients/llm"
	"github.com/amara-ai/credit-engine/internal/domain"
)

// NoteAnalyzer extracts structured insights from one field agent note.
type NoteAnalyzer interface {
	Analyze(ctx context.Context, note domain.FieldNote, borrower domain.Borrower) domain.NoteAnalysis
}

// LLMNoteAnalyzer analyzes notes with a text completion model.
type LLMNoteAnalyzer struct {
	client *llm.Client
	model  string
	log    zerolog.Logger
}

// NewLLMNoteAnalyzer creates an analyzer backed by the given completion client.
func NewLLMNoteAnalyzer(client *llm.Client, model string, log zerolog.Logger) *LLMNoteAnalyzer {
	return &LLMNoteAnalyzer{
		client: client,
		model:  model,
		log:    log.With().Str("analyzer", "nlp").Logger(),
	}
}

const noteSystemPrompt = "You are a microfinance credit analyst. Respond ONLY with valid JSON."

// Analyze sends the note to the completion model. An unreachable endpoint
// degrades to a neutral analysis derived from the claimed income; an
// unparseable response degrades to regex extraction over the note text.
func (n *LLMNoteAnalyzer) Analyze(ctx context.Context, note domain.FieldNote, borrower domain.Borrower) domain.NoteAnalysis {
	prompt := buildNotePrompt(note, borrower)

	raw, err := n.client.Complete(ctx, n.model, noteSystemPrompt, prompt)
	if err != nil {
		n.log.Error().Err(err).Str("note_id", note.ID).Msg("note analysis failed, using fallback")
		return fallbackNoteAnalysis(floatValue(borrower.ClaimedMonthlyIncome))
	}

	var analysis domain.NoteAnalysis
	if err := decodeJSON(raw, &analysis); err != nil {
		n.log.Error().Err(err).Str("note_id", note.ID).Msg("note response unparseable, using regex extraction")
		return regexNoteAnalysis(note.NoteText)
	}

	analysis.RawAnalysis = raw
	if analysis.ConfidenceScore <= 0 || analysis.ConfidenceScore > 1 {
		analysis.ConfidenceScore = 0.7
	}

	n.log.Debug().
		Str("note_id", note.ID).
		Float64("sentiment", analysis.SentimentScore).
		Float64("confidence", analysis.ConfidenceScore).
		Msg("note analysis completed")

	return analysis
}

// FallbackNoteAnalyzer extracts what it can from the note text without a
// model: Rupiah amounts by regex and sentiment by keyword counting. It is
// the active analyzer when no completion API is configured.
type FallbackNoteAnalyzer struct {
	log zerolog.Logger
}

// NewFallbackNoteAnalyzer creates the deterministic note analyzer.
func NewFallbackNoteAnalyzer(log zerolog.Logger) *FallbackNoteAnalyzer {
	return &FallbackNoteAnalyzer{log: log.With().Str("analyzer", "nlp_fallback").Logger()}
}

// Analyze runs regex income extraction and keyword sentiment over the note.
func (n *FallbackNoteAnalyzer) Analyze(_ context.Context, note domain.FieldNote, _ domain.Borrower) domain.NoteAnalysis {
	n.log.Debug().Str("note_id", note.ID).Msg("deterministic note analysis")
	return regexNoteAnalysis(note.NoteText)
}

var rupiahPattern = regexp.MustCompile(`Rp\s?(\d{1,3}(?:[.,]\d{3})*)`)

// Field agents write in Indonesian. The keyword lists cover the vocabulary
// that reliably signals note polarity.
var (
	positiveKeywords = []string{"kooperatif", "ramai", "stabil", "bagus", "baik", "tertata", "rapi", "loyal"}
	negativeKeywords = []string{"sepi", "susah", "sulit", "rusak", "tidak", "belum", "kurang"}
)

// regexNoteAnalysis extracts the largest Rupiah amount as the income
// estimate and scores sentiment by keyword balance.
func regexNoteAnalysis(noteText string) domain.NoteAnalysis {
	var income float64
	for _, match := range rupiahPattern.FindAllStringSubmatch(noteText, -1) {
		digits := strings.NewReplacer(".", "", ",", "").Replace(match[1])
		if amount, err := strconv.ParseFloat(digits, 64); err == nil && amount > income {
			income = amount
		}
	}

	lower := strings.ToLower(noteText)
	positive, negative := 0, 0
	for _, word := range positiveKeywords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range negativeKeywords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	sentiment := 0.55
	switch {
	case positive > negative:
		sentiment = 0.7
	case negative > positive:
		sentiment = 0.4
	}

	return domain.NoteAnalysis{
		ExtractedIncomeEstimate: income,
		SentimentScore:          sentiment,
		BehavioralInsights:      neutralBehavior(),
		KeyEntities:             map[string]string{"extracted_method": "regex_fallback"},
		ConfidenceScore:         0.40,
		Fallback:                true,
	}
}

// fallbackNoteAnalysis is the neutral analysis used when the completion
// endpoint is unreachable. The income estimate sits slightly below the
// claim so the validator leans conservative.
func fallbackNoteAnalysis(claimedIncome float64) domain.NoteAnalysis {
	return domain.NoteAnalysis{
		ExtractedIncomeEstimate: claimedIncome * 0.9,
		SentimentScore:          0.60,
		RiskFlags: []domain.RiskFlag{
			{Flag: "api_unavailable", Severity: domain.SeverityLow},
		},
		BehavioralInsights: neutralBehavior(),
		ConfidenceScore:    0.50,
		RawAnalysis:        "Fallback analysis - note analyzer unavailable",
		Fallback:           true,
	}
}

func neutralBehavior() domain.BehavioralInsights {
	return domain.BehavioralInsights{
		CooperationLevel:  domain.LevelMedium,
		Transparency:      domain.LevelMedium,
		BusinessKnowledge: domain.PlanningBasic,
		FinancialPlanning: domain.PlanningBasic,
		Trustworthiness:   domain.LevelMedium,
	}
}

func buildNotePrompt(note domain.FieldNote, borrower domain.Borrower) string {
	return fmt.Sprintf(`You are analyzing a field agent's narrative report about a micro-entrepreneur borrower in rural Indonesia for credit assessment.

Borrower Context:
- Name: %s
- Business Type: %s
- Claimed Monthly Income: Rp %.0f
- Years in Business: %.1f years
- Location: %s, %s

Field Agent Note:
%s

Extract the following information in JSON format:

1. "extracted_income_estimate" (number): estimated monthly income in Rupiah based on the narrative. Look for daily income, weekly sales and customer numbers. If unclear, provide a range midpoint.
2. "sentiment_score" (0.0 to 1.0): 0.0-0.3 negative, 0.4-0.6 neutral, 0.7-1.0 positive.
3. "risk_flags": array of {"flag": "description", "severity": "low|medium|high"}. Examples: irregular_income, no_financial_records, family_financial_pressure, debt_concerns, health_issues.
4. "behavioral_insights": object with cooperation_level (low|medium|high), transparency (low|medium|high), business_knowledge (weak|basic|good|strong), financial_planning (weak|basic|good|strong), trustworthiness (low|medium|high).
5. "confidence_score" (0.0 to 1.0): your confidence based on the clarity and detail of the note.

Respond ONLY with valid JSON. Base your assessment strictly on the text provided.`,
		borrower.FullName, borrower.BusinessType, floatValue(borrower.ClaimedMonthlyIncome),
		floatValue(borrower.YearsInBusiness), borrower.Village, borrower.District, note.NoteText)
}
