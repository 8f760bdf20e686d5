package scoring

import (
	"testing"

	"github.com/amara-ai/credit-engine/internal/domain"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  domain.RiskCategory
	}{
		{"Perfect score", 100, domain.RiskLow},
		{"Boundary low", 75, domain.RiskLow},
		{"Just below low", 74.99, domain.RiskMedium},
		{"Boundary medium", 55, domain.RiskMedium},
		{"Just below medium", 54.99, domain.RiskHigh},
		{"Boundary high", 35, domain.RiskHigh},
		{"Just below high", 34.99, domain.RiskVeryHigh},
		{"Zero score", 0, domain.RiskVeryHigh},
		{"Negative score still categorizes", -5, domain.RiskVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.score); got != tt.want {
				t.Errorf("Categorize(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

// Categorization must be monotonic: a higher score never maps to a
// riskier tier.
func TestCategorizeMonotonic(t *testing.T) {
	rank := map[domain.RiskCategory]int{
		domain.RiskVeryHigh: 0,
		domain.RiskHigh:     1,
		domain.RiskMedium:   2,
		domain.RiskLow:      3,
	}

	prev := rank[Categorize(0)]
	for s := 0.5; s <= 100; s += 0.5 {
		cur := rank[Categorize(s)]
		if cur < prev {
			t.Fatalf("Categorize not monotonic at score %v", s)
		}
		prev = cur
	}
}
