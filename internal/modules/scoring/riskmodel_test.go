package scoring

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/events"
)

func newRuleOnlyModel() *RiskModel {
	return NewRiskModel("", events.NewManager(zerolog.Nop()), zerolog.Nop())
}

func TestRuleBasedScoring_StrongBorrower(t *testing.T) {
	model := newRuleOnlyModel()

	// Every rule at its maximum: 50+30+10+8+10+7+15+5+8+7 = 150, clamped.
	features := domain.BorrowerFeatures{
		Age:                    35,
		YearsInBusiness:        10,
		NumDependents:          2,
		FinancialLiteracyScore: 100,
		HasBankAccount:         true,
		KeepsFinancialRecords:  true,
		LoanHistory:            domain.LoanHistory{NumLoans: 1},
		RepaymentHistory: domain.RepaymentHistory{
			OnTimeRate:     1.0,
			AvgDaysOverdue: 0,
		},
	}

	pred := model.Predict(features)

	if pred.BaselineScore != 100 {
		t.Errorf("BaselineScore = %v, want 100 (clamped)", pred.BaselineScore)
	}
	if pred.RiskCategory != domain.RiskLow {
		t.Errorf("RiskCategory = %v, want low", pred.RiskCategory)
	}
	if pred.Confidence != RuleConfidence {
		t.Errorf("Confidence = %v, want %v", pred.Confidence, RuleConfidence)
	}
	if !strings.HasSuffix(pred.ModelVersion, "-rule-based") {
		t.Errorf("ModelVersion = %q, want -rule-based suffix", pred.ModelVersion)
	}
}

func TestRuleBasedScoring_WeakBorrower(t *testing.T) {
	model := newRuleOnlyModel()

	// All-negative signals still land at 58 (medium): additive rules have
	// a floor, not a cliff to very_high.
	features := domain.BorrowerFeatures{
		Age:                    70,
		YearsInBusiness:        0,
		NumDependents:          5,
		FinancialLiteracyScore: 0,
		RepaymentHistory: domain.RepaymentHistory{
			OnTimeRate:     0,
			AvgDaysOverdue: 10,
		},
	}

	pred := model.Predict(features)

	if pred.BaselineScore != 58 {
		t.Errorf("BaselineScore = %v, want 58", pred.BaselineScore)
	}
	if pred.RiskCategory != domain.RiskMedium {
		t.Errorf("RiskCategory = %v, want medium", pred.RiskCategory)
	}
}

func TestRuleBasedScoring_AgeBands(t *testing.T) {
	model := newRuleOnlyModel()

	base := domain.BorrowerFeatures{
		NumDependents: 5, // avoid small family bonus shifting comparisons
		RepaymentHistory: domain.RepaymentHistory{
			AvgDaysOverdue: 10, // zero out the overdue grace contribution
		},
	}

	tests := []struct {
		name      string
		age       int
		wantBonus float64
	}{
		{"Prime working age", 40, RulePrimeAgeBonus},
		{"Prime lower boundary", 25, RulePrimeAgeBonus},
		{"Prime upper boundary", 50, RulePrimeAgeBonus},
		{"Working age", 55, RuleWorkingAgeBonus},
		{"Working lower boundary", 18, RuleWorkingAgeBonus},
		{"Working upper boundary", 60, RuleWorkingAgeBonus},
		{"Outside working age", 70, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			f.Age = tt.age
			got := model.Predict(f).BaselineScore
			want := RuleBaseScore + RuleLargeFamilyBonus + tt.wantBonus
			if got != want {
				t.Errorf("score at age %d = %v, want %v", tt.age, got, want)
			}
		})
	}
}

// Rule-based scoring is pure: same features, same score, every time.
func TestRuleBasedScoring_Deterministic(t *testing.T) {
	model := newRuleOnlyModel()

	features := domain.BorrowerFeatures{
		Age:                    42,
		YearsInBusiness:        3.5,
		NumDependents:          4,
		FinancialLiteracyScore: 65,
		HasBankAccount:         true,
		RepaymentHistory: domain.RepaymentHistory{
			OnTimeRate:     0.8,
			AvgDaysOverdue: 2.5,
		},
	}

	first := model.Predict(features)
	for i := 0; i < 10; i++ {
		if got := model.Predict(features); got != first {
			t.Fatalf("Predict not deterministic: %+v != %+v", got, first)
		}
	}
}

func TestClassifierPrediction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	// Zero coefficients with zero intercept: probability is exactly 0.5
	// regardless of input, so score is 50 and confidence 0.5.
	clf := classifierFile{
		Version:      "2.1.0",
		Coefficients: make([]float64, 15),
		ScalerMean:   make([]float64, 15),
		ScalerScale:  ones(15),
	}
	writeModel(t, path, clf)

	model := NewRiskModel(path, events.NewManager(zerolog.Nop()), zerolog.Nop())
	pred := model.Predict(domain.BorrowerFeatures{Age: 35})

	if pred.BaselineScore != 50 {
		t.Errorf("BaselineScore = %v, want 50", pred.BaselineScore)
	}
	if pred.ModelVersion != "2.1.0" {
		t.Errorf("ModelVersion = %q, want 2.1.0", pred.ModelVersion)
	}
	if pred.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", pred.Confidence)
	}
}

func TestClassifierDimensionMismatchFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	clf := classifierFile{
		Version:      "2.1.0",
		Coefficients: []float64{1, 2, 3}, // wrong arity
		ScalerMean:   []float64{0, 0, 0},
		ScalerScale:  []float64{1, 1, 1},
	}
	writeModel(t, path, clf)

	model := NewRiskModel(path, events.NewManager(zerolog.Nop()), zerolog.Nop())
	pred := model.Predict(domain.BorrowerFeatures{Age: 35, NumDependents: 2})

	// Must silently degrade to the rule-based path.
	if !strings.HasSuffix(pred.ModelVersion, "-rule-based") {
		t.Errorf("ModelVersion = %q, want rule-based fallback", pred.ModelVersion)
	}
}

func TestMissingModelFileFallsBack(t *testing.T) {
	model := NewRiskModel("/nonexistent/model.json", events.NewManager(zerolog.Nop()), zerolog.Nop())

	if model.classifier != nil {
		t.Fatal("classifier should be nil for missing model file")
	}
	if !strings.HasSuffix(model.Version(), "-rule-based") {
		t.Errorf("Version() = %q, want -rule-based suffix", model.Version())
	}
}

func TestMissingModelFileEmitsLoadFailure(t *testing.T) {
	var buf bytes.Buffer
	em := events.NewManager(zerolog.New(&buf))

	NewRiskModel("/nonexistent/model.json", em, zerolog.Nop())

	if !strings.Contains(buf.String(), string(events.ModelLoadFailed)) {
		t.Errorf("event log = %q, want a %s event", buf.String(), events.ModelLoadFailed)
	}
}

func TestEmptyModelPathEmitsNoEvent(t *testing.T) {
	var buf bytes.Buffer
	em := events.NewManager(zerolog.New(&buf))

	NewRiskModel("", em, zerolog.Nop())

	if buf.Len() != 0 {
		t.Errorf("event log = %q, want empty for unconfigured model path", buf.String())
	}
}

func TestEncodeBusinessType(t *testing.T) {
	tests := []struct {
		businessType string
		want         float64
	}{
		{"Warung Kelontong Bu Sari", 1},
		{"Catering", 5},
		{"Unknown Trade", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := encodeBusinessType(tt.businessType); got != tt.want {
			t.Errorf("encodeBusinessType(%q) = %v, want %v", tt.businessType, got, tt.want)
		}
	}
}

func TestEncodeBusinessType_MultiMatchIsStable(t *testing.T) {
	// Contains both "Warung Kelontong" (code 1) and "Catering" (code 5);
	// the earlier entry must win on every call.
	for i := 0; i < 50; i++ {
		if got := encodeBusinessType("Warung Kelontong dan Catering"); got != 1 {
			t.Fatalf("call %d: encodeBusinessType = %v, want 1", i, got)
		}
	}
}

func writeModel(t *testing.T, path string, clf classifierFile) {
	t.Helper()
	data, err := json.Marshal(clf)
	if err != nil {
		t.Fatalf("marshal model: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write model: %v", err)
	}
}

func ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}
