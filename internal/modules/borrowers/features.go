package borrowers

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/database"
	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// Neutral defaults substituted for NULL demographic columns at feature
// assembly time. An explicit zero in the database is kept as-is.
const (
	DefaultAge             = 35
	DefaultYearsInBusiness = 2.0
	DefaultNumDependents   = 2
	DefaultLiteracyScore   = 50
	DefaultMonthlyIncome   = 3000000
)

// Neutral repayment history used when a borrower has no repayment rows.
const (
	DefaultOnTimeRate = 0.5
)

// ErrBorrowerNotFound is returned when the borrower does not exist.
var ErrBorrowerNotFound = errors.New("borrower not found")

// FeatureBuilder assembles the feature vector the risk model consumes. It
// reads the borrower row with NULL awareness so intake gaps take defaults
// while explicit zeros survive.
type FeatureBuilder struct {
	db   *database.DB
	repo *Repository
	log  zerolog.Logger
}

// NewFeatureBuilder creates a new feature builder
func NewFeatureBuilder(db *database.DB, repo *Repository, log zerolog.Logger) *FeatureBuilder {
	return &FeatureBuilder{
		db:   db,
		repo: repo,
		log:  log.With().Str("service", "features").Logger(),
	}
}

// Build assembles the full feature vector for a borrower.
func (f *FeatureBuilder) Build(borrowerID string) (domain.BorrowerFeatures, error) {
	features, err := f.loadBorrowerFeatures(borrowerID)
	if err != nil {
		return domain.BorrowerFeatures{}, err
	}

	loans, err := f.repo.GetLoansByBorrower(borrowerID)
	if err != nil {
		return domain.BorrowerFeatures{}, err
	}
	features.LoanHistory = deriveLoanHistory(loans)

	repayments, err := f.repo.GetRepaymentsByBorrower(borrowerID)
	if err != nil {
		return domain.BorrowerFeatures{}, err
	}
	features.RepaymentHistory = deriveRepaymentHistory(repayments)

	f.log.Debug().
		Str("borrower_id", borrowerID).
		Int("num_loans", features.LoanHistory.NumLoans).
		Int("num_repayments", features.RepaymentHistory.TotalRepayments).
		Msg("feature vector assembled")

	return features, nil
}

func (f *FeatureBuilder) loadBorrowerFeatures(borrowerID string) (domain.BorrowerFeatures, error) {
	query := `
		SELECT id, full_name, business_type, age, years_in_business,
		       num_dependents, claimed_monthly_income, financial_literacy_score,
		       has_bank_account, keeps_financial_records
		FROM borrowers WHERE id = ?
	`

	var features domain.BorrowerFeatures
	var businessType sql.NullString
	var age, dependents, literacy sql.NullInt64
	var years, income sql.NullFloat64
	var hasBank, keepsRecords int

	err := f.db.QueryRow(query, borrowerID).Scan(
		&features.BorrowerID, &features.FullName, &businessType,
		&age, &years, &dependents, &income, &literacy,
		&hasBank, &keepsRecords,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BorrowerFeatures{}, ErrBorrowerNotFound
	}
	if err != nil {
		return domain.BorrowerFeatures{}, fmt.Errorf("failed to load borrower features: %w", err)
	}

	features.BusinessType = businessType.String
	features.Age = intOrDefault(age, DefaultAge)
	features.YearsInBusiness = floatOrDefault(years, DefaultYearsInBusiness)
	features.NumDependents = intOrDefault(dependents, DefaultNumDependents)
	features.ClaimedMonthlyIncome = floatOrDefault(income, DefaultMonthlyIncome)
	features.FinancialLiteracyScore = intOrDefault(literacy, DefaultLiteracyScore)
	features.HasBankAccount = hasBank != 0
	features.KeepsFinancialRecords = keepsRecords != 0

	return features, nil
}

func deriveLoanHistory(loans []domain.Loan) domain.LoanHistory {
	history := domain.LoanHistory{NumLoans: len(loans)}
	for _, l := range loans {
		history.TotalBorrowed += l.LoanAmount
	}
	if len(loans) > 0 {
		history.AvgLoanAmount = formulas.Round2(history.TotalBorrowed / float64(len(loans)))
	}
	return history
}

// deriveRepaymentHistory reduces repayment rows to the rate features. A
// borrower with no rows gets the neutral 0.5 on-time rate rather than a
// perfect or failing record.
func deriveRepaymentHistory(repayments []domain.Repayment) domain.RepaymentHistory {
	if len(repayments) == 0 {
		return domain.RepaymentHistory{OnTimeRate: DefaultOnTimeRate}
	}

	onTime := 0
	totalOverdue := 0.0
	defaulted := 0
	for _, p := range repayments {
		if p.DaysOverdue == 0 {
			onTime++
		}
		totalOverdue += float64(p.DaysOverdue)
		if p.PaymentStatus == "defaulted" {
			defaulted++
		}
	}

	total := float64(len(repayments))
	return domain.RepaymentHistory{
		OnTimeRate:      float64(onTime) / total,
		AvgDaysOverdue:  totalOverdue / total,
		DefaultRate:     float64(defaulted) / total,
		TotalRepayments: len(repayments),
	}
}

func intOrDefault(v sql.NullInt64, fallback int) int {
	if v.Valid {
		return int(v.Int64)
	}
	return fallback
}

func floatOrDefault(v sql.NullFloat64, fallback float64) float64 {
	if v.Valid {
		return v.Float64
	}
	return fallback
}
