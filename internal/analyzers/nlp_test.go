package analyzers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/domain"
)

func TestRegexNoteAnalysis_IncomeExtraction(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "Largest amount wins",
			text: "Pendapatan harian sekitar Rp 150.000, kadang Rp 200.000 saat ramai.",
			want: 200000,
		},
		{
			name: "Comma separators",
			text: "Omzet bulanan Rp 3,500,000.",
			want: 3500000,
		},
		{
			name: "No amounts",
			text: "Usaha berjalan lancar.",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := regexNoteAnalysis(tt.text)
			if got.ExtractedIncomeEstimate != tt.want {
				t.Errorf("ExtractedIncomeEstimate = %v, want %v", got.ExtractedIncomeEstimate, tt.want)
			}
			if !got.Fallback {
				t.Error("Fallback = false, want true")
			}
			if got.ConfidenceScore != 0.40 {
				t.Errorf("ConfidenceScore = %v, want 0.40", got.ConfidenceScore)
			}
		})
	}
}

func TestRegexNoteAnalysis_Sentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"Positive keywords dominate", "Ibu sangat kooperatif, warung ramai dan tertata rapi.", 0.7},
		{"Negative keywords dominate", "Usaha sepi, pembukuan tidak ada, peralatan rusak.", 0.4},
		{"Balanced is neutral", "Warung ramai tapi pembukuan tidak ada.", 0.55},
		{"No keywords is neutral", "Kunjungan rutin bulanan.", 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := regexNoteAnalysis(tt.text); got.SentimentScore != tt.want {
				t.Errorf("SentimentScore = %v, want %v", got.SentimentScore, tt.want)
			}
		})
	}
}

func TestFallbackNoteAnalysis(t *testing.T) {
	got := fallbackNoteAnalysis(3000000)

	if got.ExtractedIncomeEstimate != 2700000 {
		t.Errorf("ExtractedIncomeEstimate = %v, want 2700000", got.ExtractedIncomeEstimate)
	}
	if got.SentimentScore != 0.60 {
		t.Errorf("SentimentScore = %v, want 0.60", got.SentimentScore)
	}
	if got.ConfidenceScore != 0.50 {
		t.Errorf("ConfidenceScore = %v, want 0.50", got.ConfidenceScore)
	}
	if len(got.RiskFlags) != 1 || got.RiskFlags[0].Flag != "api_unavailable" {
		t.Errorf("RiskFlags = %v, want single api_unavailable flag", got.RiskFlags)
	}
	if got.BehavioralInsights.CooperationLevel != domain.LevelMedium {
		t.Errorf("CooperationLevel = %v, want medium", got.BehavioralInsights.CooperationLevel)
	}
}

func TestFallbackNoteAnalyzer_UsesNoteText(t *testing.T) {
	analyzer := NewFallbackNoteAnalyzer(zerolog.Nop())

	note := domain.FieldNote{
		ID:       "note-1",
		NoteText: "Warung ramai, pendapatan harian Rp 250.000.",
	}
	claimed := 9000000.0
	got := analyzer.Analyze(context.Background(), note, domain.Borrower{ClaimedMonthlyIncome: &claimed})

	// Deterministic analysis reads the note, not the claim.
	if got.ExtractedIncomeEstimate != 250000 {
		t.Errorf("ExtractedIncomeEstimate = %v, want 250000", got.ExtractedIncomeEstimate)
	}
	if got.SentimentScore != 0.7 {
		t.Errorf("SentimentScore = %v, want 0.7", got.SentimentScore)
	}
}
