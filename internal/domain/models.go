package domain

import "time"

// RiskCategory is one of four ordered risk tiers derived from a credit score.
type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskMedium   RiskCategory = "medium"
	RiskHigh     RiskCategory = "high"
	RiskVeryHigh RiskCategory = "very_high"
)

// Business scale tiers observed in business photos.
const (
	ScaleSmall  = "small"
	ScaleMedium = "medium"
	ScaleLarge  = "large"
)

// Inventory density tiers.
const (
	InventoryLow      = "low"
	InventoryModerate = "moderate"
	InventoryHigh     = "high"
)

// Asset quality tiers.
const (
	AssetPoor      = "poor"
	AssetFair      = "fair"
	AssetGood      = "good"
	AssetExcellent = "excellent"
)

// Housing condition tiers observed in house photos.
const (
	HousingPoor     = "poor"
	HousingBasic    = "basic"
	HousingAdequate = "adequate"
	HousingGood     = "good"
)

// Behavioral levels reported by the note analyzer.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"

	PlanningWeak   = "weak"
	PlanningBasic  = "basic"
	PlanningGood   = "good"
	PlanningStrong = "strong"
)

// Risk flag severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Borrower is the stored borrower record. Optional numeric fields are
// pointers: nil means the field was never provided at intake, which is
// distinct from an explicit zero (a brand new business, a zero literacy
// score). Only nil fields take the documented defaults downstream.
type Borrower struct {
	ID                     string    `json:"id"`
	FullName               string    `json:"full_name"`
	Age                    *int      `json:"age"`
	Gender                 string    `json:"gender"`
	Village                string    `json:"village"`
	District               string    `json:"district"`
	Province               string    `json:"province"`
	BusinessType           string    `json:"business_type"`
	BusinessDescription    string    `json:"business_description"`
	ClaimedMonthlyIncome   *float64  `json:"claimed_monthly_income"`
	YearsInBusiness        *float64  `json:"years_in_business"`
	MaritalStatus          string    `json:"marital_status"`
	NumDependents          *int      `json:"num_dependents"`
	EducationLevel         string    `json:"education_level"`
	PhoneNumber            string    `json:"phone_number"`
	HasBankAccount         bool      `json:"has_bank_account"`
	KeepsFinancialRecords  bool      `json:"keeps_financial_records"`
	FinancialLiteracyScore *int      `json:"financial_literacy_score"`
	CreatedAt              time.Time `json:"created_at"`
}

// Loan is a stored loan record for a borrower.
type Loan struct {
	ID             string     `json:"id"`
	BorrowerID     string     `json:"borrower_id"`
	LoanAmount     float64    `json:"loan_amount"`
	LoanPurpose    string     `json:"loan_purpose"`
	InterestRate   float64    `json:"interest_rate"`
	LoanTermWeeks  int        `json:"loan_term_weeks"`
	LoanStatus     string     `json:"loan_status"`
	ApprovalStatus string     `json:"approval_status"`
	DisbursedAt    *time.Time `json:"disbursed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Repayment is one scheduled repayment installment on a loan.
type Repayment struct {
	ID             string     `json:"id"`
	LoanID         string     `json:"loan_id"`
	DueDate        time.Time  `json:"due_date"`
	PaidDate       *time.Time `json:"paid_date,omitempty"`
	ExpectedAmount float64    `json:"expected_amount"`
	PaidAmount     float64    `json:"paid_amount"`
	PaymentStatus  string     `json:"payment_status"`
	DaysOverdue    int        `json:"days_overdue"`
}

// Photo is a stored borrower photo awaiting or holding vision analysis.
type Photo struct {
	ID          string         `json:"id"`
	BorrowerID  string         `json:"borrower_id"`
	PhotoType   string         `json:"photo_type"` // business_exterior, business_interior, inventory, house_exterior, house_interior, assets
	PhotoURL    string         `json:"photo_url"`
	StoragePath string         `json:"storage_path"`
	Analysis    *PhotoAnalysis `json:"analysis,omitempty"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

// FieldNote is a field agent's narrative report about a borrower.
type FieldNote struct {
	ID             string        `json:"id"`
	BorrowerID     string        `json:"borrower_id"`
	NoteText       string        `json:"note_text"`
	NoteType       string        `json:"note_type"` // initial_visit, follow_up, repayment_collection, business_observation, risk_assessment, general
	FieldAgentName string        `json:"field_agent_name"`
	Analysis       *NoteAnalysis `json:"analysis,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// LoanHistory aggregates a borrower's prior loans.
type LoanHistory struct {
	NumLoans      int     `json:"num_loans"`
	AvgLoanAmount float64 `json:"avg_loan_amount"`
	TotalBorrowed float64 `json:"total_borrowed"`
}

// RepaymentHistory aggregates a borrower's repayment behavior.
// Rate fields lie in [0,1].
type RepaymentHistory struct {
	OnTimeRate      float64 `json:"on_time_rate"`
	AvgDaysOverdue  float64 `json:"avg_days_overdue"`
	DefaultRate     float64 `json:"default_rate"`
	TotalRepayments int     `json:"total_repayments"`
}

// BorrowerFeatures is the feature vector consumed by the risk model.
// All values are resolved at assembly time; missing source fields take
// the documented neutral defaults, so the scorers never guess.
type BorrowerFeatures struct {
	BorrowerID             string           `json:"borrower_id"`
	FullName               string           `json:"full_name"`
	BusinessType           string           `json:"business_type"`
	Age                    int              `json:"age"`
	YearsInBusiness        float64          `json:"years_in_business"`
	NumDependents          int              `json:"num_dependents"`
	ClaimedMonthlyIncome   float64          `json:"claimed_monthly_income"`
	FinancialLiteracyScore int              `json:"financial_literacy_score"`
	HasBankAccount         bool             `json:"has_bank_account"`
	KeepsFinancialRecords  bool             `json:"keeps_financial_records"`
	LoanHistory            LoanHistory      `json:"loan_history"`
	RepaymentHistory       RepaymentHistory `json:"repayment_history"`
}

// RiskFlag is one concerning indicator extracted from a field note.
type RiskFlag struct {
	Flag     string `json:"flag"`
	Severity string `json:"severity"` // low, medium, high
}

// BehavioralInsights are the analyzer's read of borrower conduct.
type BehavioralInsights struct {
	CooperationLevel  string `json:"cooperation_level"`  // low, medium, high
	Transparency      string `json:"transparency"`       // low, medium, high
	BusinessKnowledge string `json:"business_knowledge"` // weak, basic, good, strong
	FinancialPlanning string `json:"financial_planning"` // weak, basic, good, strong
	Trustworthiness   string `json:"trustworthiness"`    // low, medium, high
}

// PhotoAnalysis is the structured output of the vision analyzer for one photo.
// Business photos populate BusinessScale/InventoryDensity/AssetQuality;
// house photos populate HousingCondition. The engine treats it as an
// opaque validated input.
type PhotoAnalysis struct {
	BusinessScale           string            `json:"business_scale,omitempty"`
	InventoryDensity        string            `json:"inventory_density,omitempty"`
	AssetQuality            string            `json:"asset_quality,omitempty"`
	HousingCondition        string            `json:"housing_condition,omitempty"`
	SocioeconomicIndicators map[string]string `json:"socioeconomic_indicators,omitempty"`
	EstimatedValueRange     string            `json:"estimated_value_range,omitempty"`
	ConfidenceScore         float64           `json:"confidence_score"`
	RawAnalysis             string            `json:"raw_analysis,omitempty"`
	Fallback                bool              `json:"fallback,omitempty"`
}

// NoteAnalysis is the structured output of the note analyzer for one field note.
type NoteAnalysis struct {
	ExtractedIncomeEstimate float64            `json:"extracted_income_estimate"`
	SentimentScore          float64            `json:"sentiment_score"`
	RiskFlags               []RiskFlag         `json:"risk_flags,omitempty"`
	BehavioralInsights      BehavioralInsights `json:"behavioral_insights"`
	KeyEntities             map[string]string  `json:"key_entities,omitempty"`
	ConfidenceScore         float64            `json:"confidence_score"`
	RawAnalysis             string             `json:"raw_analysis,omitempty"`
	Fallback                bool               `json:"fallback,omitempty"`
}

// Factor is a single weighted risk or positive factor on an assessment.
type Factor struct {
	Factor string  `json:"factor"`
	Weight float64 `json:"weight"`
	Impact string  `json:"impact"` // positive, negative
}

// IncomeValidation reconciles claimed income against AI-derived estimates.
type IncomeValidation struct {
	ClaimedIncome      float64 `json:"claimed_income"`
	AIEstimatedIncome  float64 `json:"ai_estimated_income"`
	ConsistencyScore   float64 `json:"income_consistency_score"`
	VariancePercentage float64 `json:"variance_percentage"`
	Assessment         string  `json:"assessment"`
}

// LoanRecommendation is the derived safe loan size and terms.
type LoanRecommendation struct {
	RecommendedAmount float64 `json:"recommended_loan_amount"`
	MaxSafeAmount     float64 `json:"max_safe_loan_amount"`
	TermWeeks         int     `json:"recommended_term_weeks"`
	WeeklyRepayment   float64 `json:"weekly_repayment"`
	RepaymentRatio    float64 `json:"repayment_to_income_ratio"`
	Confidence        float64 `json:"recommendation_confidence"`
	Justification     string  `json:"justification"`
}

// Assessment is the complete output of one orchestration run.
// Constructed once per run and immutable thereafter.
type Assessment struct {
	ID                   string             `json:"id"`
	BorrowerID           string             `json:"borrower_id"`
	BaselineScore        float64            `json:"ml_baseline_score"`
	BaselineModelVersion string             `json:"ml_model_version"`
	VisionAdjustment     float64            `json:"vision_score_adjustment"`
	VisionConfidence     float64            `json:"vision_confidence"`
	VisionInsights       *VisionInsights    `json:"vision_insights,omitempty"`
	NLPAdjustment        float64            `json:"nlp_score_adjustment"`
	NLPConfidence        float64            `json:"nlp_confidence"`
	NLPInsights          *NoteInsights      `json:"nlp_insights,omitempty"`
	FinalScore           float64            `json:"final_credit_score"`
	RiskCategory         RiskCategory       `json:"risk_category"`
	IncomeValidation     IncomeValidation   `json:"income_validation"`
	LoanRecommendation   LoanRecommendation `json:"loan_recommendation"`
	RiskExplanation      string             `json:"risk_explanation"`
	RiskFactors          []Factor           `json:"risk_factors"`
	PositiveFactors      []Factor           `json:"positive_factors"`
	AssessmentVersion    string             `json:"assessment_version"`
	AssessedAt           time.Time          `json:"assessed_at"`
}

// VisionInsights aggregates per-photo analyses for an assessment.
type VisionInsights struct {
	NumPhotosAnalyzed int             `json:"num_photos_analyzed"`
	Analyses          []PhotoAnalysis `json:"analyses"`
	Summary           VisionSummary   `json:"summary"`
}

// VisionSummary reduces photo analyses to headline observations.
type VisionSummary struct {
	MostCommonBusinessScale string `json:"most_common_business_scale"`
	AverageAssetQuality     string `json:"average_asset_quality"`
	GoodAssetQuality        bool   `json:"good_asset_quality"`
	HighInventory           bool   `json:"high_inventory"`
}

// NoteInsights aggregates per-note analyses for an assessment.
type NoteInsights struct {
	NumNotesAnalyzed int            `json:"num_notes_analyzed"`
	Analyses         []NoteAnalysis `json:"analyses"`
	Summary          NoteSummary    `json:"summary"`
}

// NoteSummary reduces note analyses to headline observations.
type NoteSummary struct {
	AverageSentiment    float64  `json:"average_sentiment"`
	AggregatedRiskFlags []string `json:"aggregated_risk_flags"`
	HighCooperation     bool     `json:"high_cooperation"`
}
