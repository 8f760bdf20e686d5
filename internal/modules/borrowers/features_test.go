package borrowers

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/credit-engine/internal/domain"
)

func TestFeatureBuilder_DefaultsForMissingFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	builder := NewFeatureBuilder(db, repo, zerolog.Nop())

	// Intake row with every optional column NULL.
	_, err := db.Exec(
		"INSERT INTO borrowers (id, full_name, created_at) VALUES (?, ?, ?)",
		"b1", "Ibu Siti", time.Now().UTC().Format(time.RFC3339),
	)
	require.NoError(t, err)

	features, err := builder.Build("b1")
	require.NoError(t, err)

	assert.Equal(t, DefaultAge, features.Age)
	assert.Equal(t, DefaultYearsInBusiness, features.YearsInBusiness)
	assert.Equal(t, DefaultNumDependents, features.NumDependents)
	assert.Equal(t, float64(DefaultMonthlyIncome), features.ClaimedMonthlyIncome)
	assert.Equal(t, DefaultLiteracyScore, features.FinancialLiteracyScore)
	assert.False(t, features.HasBankAccount)
	assert.False(t, features.KeepsFinancialRecords)
}

func TestFeatureBuilder_ExplicitValuesSurvive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	builder := NewFeatureBuilder(db, repo, zerolog.Nop())

	// Explicit zeros are stored values, not intake gaps.
	_, err := db.Exec(`
		INSERT INTO borrowers
		(id, full_name, age, years_in_business, num_dependents,
		 claimed_monthly_income, financial_literacy_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"b1", "Ibu Siti", 45, 0.0, 0, 2500000.0, 0,
		time.Now().UTC().Format(time.RFC3339),
	)
	require.NoError(t, err)

	features, err := builder.Build("b1")
	require.NoError(t, err)

	assert.Equal(t, 45, features.Age)
	assert.Equal(t, 0.0, features.YearsInBusiness)
	assert.Equal(t, 0, features.NumDependents)
	assert.Equal(t, 2500000.0, features.ClaimedMonthlyIncome)
	assert.Equal(t, 0, features.FinancialLiteracyScore)
}

func TestFeatureBuilder_ExplicitZerosSurviveIntake(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	builder := NewFeatureBuilder(db, repo, zerolog.Nop())

	// Zeros submitted through the intake path must reach the feature
	// vector as zeros, not as the neutral defaults.
	borrower := domain.Borrower{
		FullName:               "Pak Budi",
		YearsInBusiness:        ptr(0.0),
		FinancialLiteracyScore: ptr(0),
		NumDependents:          ptr(0),
	}
	require.NoError(t, repo.Create(&borrower))

	features, err := builder.Build(borrower.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, features.YearsInBusiness)
	assert.Equal(t, 0, features.FinancialLiteracyScore)
	assert.Equal(t, 0, features.NumDependents)

	// Omitted fields still default.
	assert.Equal(t, DefaultAge, features.Age)
	assert.Equal(t, float64(DefaultMonthlyIncome), features.ClaimedMonthlyIncome)
}

func TestFeatureBuilder_BorrowerNotFound(t *testing.T) {
	db := newTestDB(t)
	builder := NewFeatureBuilder(db, NewRepository(db, zerolog.Nop()), zerolog.Nop())

	_, err := builder.Build("missing")
	assert.ErrorIs(t, err, ErrBorrowerNotFound)
}

func TestFeatureBuilder_LoanAndRepaymentHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	builder := NewFeatureBuilder(db, repo, zerolog.Nop())

	borrower := domain.Borrower{FullName: "Ibu Siti"}
	require.NoError(t, repo.Create(&borrower))

	loan1 := domain.Loan{BorrowerID: borrower.ID, LoanAmount: 2000000}
	loan2 := domain.Loan{BorrowerID: borrower.ID, LoanAmount: 4000000}
	require.NoError(t, repo.CreateLoan(&loan1))
	require.NoError(t, repo.CreateLoan(&loan2))

	due := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, overdue := range []int{0, 0, 0, 8} {
		status := "paid"
		if overdue > 0 {
			status = "late"
		}
		require.NoError(t, repo.CreateRepayment(&domain.Repayment{
			LoanID:         loan1.ID,
			DueDate:        due.AddDate(0, 0, 7*i),
			ExpectedAmount: 100000,
			PaymentStatus:  status,
			DaysOverdue:    overdue,
		}))
	}

	features, err := builder.Build(borrower.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, features.LoanHistory.NumLoans)
	assert.Equal(t, 3000000.0, features.LoanHistory.AvgLoanAmount)
	assert.Equal(t, 6000000.0, features.LoanHistory.TotalBorrowed)

	assert.Equal(t, 0.75, features.RepaymentHistory.OnTimeRate)
	assert.Equal(t, 2.0, features.RepaymentHistory.AvgDaysOverdue)
	assert.Equal(t, 0.0, features.RepaymentHistory.DefaultRate)
	assert.Equal(t, 4, features.RepaymentHistory.TotalRepayments)
}

func TestDeriveRepaymentHistory_NoRowsIsNeutral(t *testing.T) {
	history := deriveRepaymentHistory(nil)

	assert.Equal(t, DefaultOnTimeRate, history.OnTimeRate)
	assert.Equal(t, 0.0, history.AvgDaysOverdue)
	assert.Equal(t, 0, history.TotalRepayments)
}

func TestDeriveRepaymentHistory_DefaultedPayments(t *testing.T) {
	history := deriveRepaymentHistory([]domain.Repayment{
		{DaysOverdue: 0, PaymentStatus: "paid"},
		{DaysOverdue: 30, PaymentStatus: "defaulted"},
	})

	assert.Equal(t, 0.5, history.OnTimeRate)
	assert.Equal(t, 15.0, history.AvgDaysOverdue)
	assert.Equal(t, 0.5, history.DefaultRate)
}
