package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/events"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// Prediction is the result of a baseline credit risk prediction.
type Prediction struct {
	BaselineScore float64             `json:"baseline_score"`
	RiskCategory  domain.RiskCategory `json:"risk_category"`
	Confidence    float64             `json:"confidence"`
	ModelVersion  string              `json:"model_version"`
}

// classifierFile is the on-disk format for a trained logistic classifier:
// feature coefficients plus the fitted scaler parameters. Training happens
// offline; the engine only consumes the exported file.
type classifierFile struct {
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	ScalerMean   []float64 `json:"scaler_mean"`
	ScalerScale  []float64 `json:"scaler_scale"`
}

// RiskModel converts a borrower feature vector into a baseline score and
// risk label. When no trained classifier is available it falls back to
// deterministic weighted rules; classifier-path failures are never
// surfaced to the caller.
type RiskModel struct {
	classifier *classifierFile
	version    string
	log        zerolog.Logger
}

// NewRiskModel creates a risk model, loading the classifier from modelPath
// if present. A missing or corrupt model file means rule-based scoring for
// the process lifetime; this is logged and emitted once here.
func NewRiskModel(modelPath string, eventManager *events.Manager, log zerolog.Logger) *RiskModel {
	m := &RiskModel{
		version: "1.0.0",
		log:     log.With().Str("module", "risk_model").Logger(),
	}

	if modelPath == "" {
		m.log.Warn().Msg("No model path configured, using rule-based scoring")
		return m
	}

	clf, err := loadClassifier(modelPath)
	if err != nil {
		m.log.Warn().Err(err).Str("path", modelPath).
			Msg("Classifier unavailable, using rule-based scoring")
		eventManager.Emit(events.ModelLoadFailed, "risk_model", map[string]interface{}{
			"path":  modelPath,
			"error": err.Error(),
		})
		return m
	}

	m.classifier = clf
	if clf.Version != "" {
		m.version = clf.Version
	}
	m.log.Info().Str("version", m.version).
		Int("features", len(clf.FeatureNames)).
		Msg("Classifier loaded")

	return m
}

// Version returns the active model version. Rule-based mode is marked
// with a "-rule-based" suffix on predictions.
func (m *RiskModel) Version() string {
	if m.classifier == nil {
		return m.version + "-rule-based"
	}
	return m.version
}

// Predict produces the baseline score for a borrower. The classifier path
// is attempted first; any failure degrades silently to the rule-based score.
func (m *RiskModel) Predict(f domain.BorrowerFeatures) Prediction {
	if m.classifier == nil {
		return m.ruleBased(f)
	}

	pred, err := m.predictClassifier(f)
	if err != nil {
		m.log.Error().Err(err).Str("borrower_id", f.BorrowerID).
			Msg("Classifier prediction failed, falling back to rules")
		return m.ruleBased(f)
	}

	return pred
}

func (m *RiskModel) predictClassifier(f domain.BorrowerFeatures) (Prediction, error) {
	vec := featureVector(f)
	clf := m.classifier

	if len(clf.Coefficients) != len(vec) ||
		len(clf.ScalerMean) != len(vec) ||
		len(clf.ScalerScale) != len(vec) {
		return Prediction{}, fmt.Errorf("classifier dimensions mismatch: %d coefficients for %d features",
			len(clf.Coefficients), len(vec))
	}

	// Scale with the fitted scaler, then logistic regression on the
	// positive ("good credit") class.
	z := clf.Intercept
	for i, x := range vec {
		scale := clf.ScalerScale[i]
		if scale == 0 {
			scale = 1
		}
		z += clf.Coefficients[i] * (x - clf.ScalerMean[i]) / scale
	}

	prob := 1.0 / (1.0 + math.Exp(-z))
	score := prob * 100

	return Prediction{
		BaselineScore: formulas.Round2(score),
		RiskCategory:  Categorize(score),
		Confidence:    formulas.Round2(math.Max(prob, 1-prob)),
		ModelVersion:  m.version,
	}, nil
}

// ruleBased scores a borrower with deterministic weighted rules.
// Contributions: repayment history up to 40, financial behavior up to 25,
// business stability up to 20, demographics up to 15, from a neutral 50.
func (m *RiskModel) ruleBased(f domain.BorrowerFeatures) Prediction {
	score := RuleBaseScore

	// Repayment history
	score += f.RepaymentHistory.OnTimeRate * RuleOnTimeRateMax
	score += math.Max(0, RuleOverdueGraceDays-f.RepaymentHistory.AvgDaysOverdue)

	// Financial behavior
	if f.HasBankAccount {
		score += RuleBankAccountBonus
	}
	if f.KeepsFinancialRecords {
		score += RuleRecordsBonus
	}
	score += float64(f.FinancialLiteracyScore) / 100 * RuleLiteracyMax

	// Business stability
	score += math.Min(f.YearsInBusiness*RuleYearsMultiplier, RuleYearsMax)
	if f.LoanHistory.NumLoans > 0 {
		score += RuleLoanHistoryBonus
	}

	// Demographics
	switch {
	case f.Age >= RulePrimeAgeMin && f.Age <= RulePrimeAgeMax:
		score += RulePrimeAgeBonus
	case f.Age >= RuleWorkingAgeMin && f.Age <= RuleWorkingAgeMax:
		score += RuleWorkingAgeBonus
	}

	if f.NumDependents <= RuleMaxDependents {
		score += RuleSmallFamilyBonus
	} else {
		score += RuleLargeFamilyBonus
	}

	score = formulas.Clamp(score, 0, 100)

	return Prediction{
		BaselineScore: formulas.Round2(score),
		RiskCategory:  Categorize(score),
		Confidence:    RuleConfidence,
		ModelVersion:  m.version + "-rule-based",
	}
}

// featureVector flattens borrower features into the classifier's input
// order. The order must match the offline training pipeline.
func featureVector(f domain.BorrowerFeatures) []float64 {
	return []float64{
		float64(f.Age),
		f.YearsInBusiness,
		float64(f.NumDependents),
		f.ClaimedMonthlyIncome,
		float64(f.FinancialLiteracyScore),
		boolToFloat(f.HasBankAccount),
		boolToFloat(f.KeepsFinancialRecords),
		float64(f.LoanHistory.NumLoans),
		f.LoanHistory.AvgLoanAmount,
		f.LoanHistory.TotalBorrowed,
		f.RepaymentHistory.OnTimeRate,
		f.RepaymentHistory.AvgDaysOverdue,
		f.RepaymentHistory.DefaultRate,
		float64(f.RepaymentHistory.TotalRepayments),
		encodeBusinessType(f.BusinessType),
	}
}

// businessTypeCodes maps known trades to the numeric codes used at
// training time. Match order is fixed so a type containing several known
// trades always encodes the same. Unknown types encode to 0.
var businessTypeCodes = []struct {
	name string
	code float64
}{
	{"Warung Kelontong", 1},
	{"Warung Gorengan", 2},
	{"Jahit Pakaian", 3},
	{"Jualan Sayur", 4},
	{"Catering", 5},
	{"Salon", 6},
	{"Toko Pulsa", 7},
	{"Warung Nasi", 8},
	{"Industri Kerupuk", 9},
}

func encodeBusinessType(businessType string) float64 {
	for _, entry := range businessTypeCodes {
		if strings.Contains(businessType, entry.name) {
			return entry.code
		}
	}
	return 0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func loadClassifier(path string) (*classifierFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var clf classifierFile
	if err := json.Unmarshal(data, &clf); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}

	if len(clf.Coefficients) == 0 {
		return nil, fmt.Errorf("model file has no coefficients")
	}

	return &clf, nil
}
