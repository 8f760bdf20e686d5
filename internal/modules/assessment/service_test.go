package assessment

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/credit-engine/internal/analyzers"
	"github.com/amara-ai/credit-engine/internal/database"
	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/events"
	"github.com/amara-ai/credit-engine/internal/modules/borrowers"
	"github.com/amara-ai/credit-engine/internal/modules/scoring"
)

func ptr[T any](v T) *T { return &v }

type testEnv struct {
	service      *Service
	borrowerRepo *borrowers.Repository
	repo         *Repository
}

// newTestEnv builds a service on an in-memory database with the
// deterministic analyzers and the rule-based risk model.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, borrowers.InitSchema(db))
	require.NoError(t, InitSchema(db))

	log := zerolog.Nop()
	borrowerRepo := borrowers.NewRepository(db, log)
	repo := NewRepository(db, log)

	service := NewService(Config{
		Features:     borrowers.NewFeatureBuilder(db, borrowerRepo, log),
		BorrowerRepo: borrowerRepo,
		Repo:         repo,
		Model:        scoring.NewRiskModel("", events.NewManager(log), log),
		Validator:    scoring.NewIncomeValidator(scoring.DefaultBenchmarks()),
		Vision:       analyzers.NewFallbackVisionAnalyzer(log),
		NLP:          analyzers.NewFallbackNoteAnalyzer(log),
		Explainer:    analyzers.NewTemplateExplanationGenerator(),
		Events:       events.NewManager(log),
		Log:          log,
	})

	return testEnv{service: service, borrowerRepo: borrowerRepo, repo: repo}
}

func TestAssess_NoPhotosOrNotes(t *testing.T) {
	env := newTestEnv(t)

	borrower := domain.Borrower{
		FullName:               "Ibu Siti",
		Age:                    ptr(38),
		BusinessType:           "Warung Kelontong",
		ClaimedMonthlyIncome:   ptr(3500000.0),
		YearsInBusiness:        ptr(6.0),
		NumDependents:          ptr(2),
		HasBankAccount:         true,
		KeepsFinancialRecords:  true,
		FinancialLiteracyScore: ptr(70),
	}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	assessment, err := env.service.Assess(context.Background(), borrower.ID, DefaultOptions())
	require.NoError(t, err)

	// Strong profile saturates the rule-based score.
	assert.Equal(t, 100.0, assessment.BaselineScore)
	assert.Contains(t, assessment.BaselineModelVersion, "-rule-based")

	// No photos or notes: both channels contribute nothing.
	assert.Equal(t, 0.0, assessment.VisionAdjustment)
	assert.Equal(t, 0.0, assessment.VisionConfidence)
	assert.Nil(t, assessment.VisionInsights)
	assert.Equal(t, 0.0, assessment.NLPAdjustment)
	assert.Equal(t, 0.0, assessment.NLPConfidence)
	assert.Nil(t, assessment.NLPInsights)

	assert.Equal(t, 100.0, assessment.FinalScore)
	assert.Equal(t, domain.RiskLow, assessment.RiskCategory)

	// With no analyzer estimates the AI income is the business benchmark,
	// which matches the claim here.
	assert.Equal(t, 3500000.0, assessment.IncomeValidation.AIEstimatedIncome)
	assert.Equal(t, 0.0, assessment.IncomeValidation.VariancePercentage)
	assert.Equal(t, 100.0, assessment.IncomeValidation.ConsistencyScore)

	assert.Equal(t, 10500000.0, assessment.LoanRecommendation.MaxSafeAmount)
	assert.Equal(t, 8400000.0, assessment.LoanRecommendation.RecommendedAmount)
	assert.Equal(t, 24, assessment.LoanRecommendation.TermWeeks)
	assert.Equal(t, 1.0, assessment.LoanRecommendation.Confidence)

	assert.Contains(t, assessment.RiskExplanation, "profil kredit yang baik")
	assert.Equal(t, Version, assessment.AssessmentVersion)

	// Persisted.
	stored, err := env.repo.GetLatest(borrower.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, assessment.ID, stored.ID)
}

func TestAssess_WithPhotosAndNotes(t *testing.T) {
	env := newTestEnv(t)

	borrower := domain.Borrower{
		FullName:               "Pak Budi",
		Age:                    ptr(52),
		BusinessType:           "Jualan Sayur",
		ClaimedMonthlyIncome:   ptr(3500000.0),
		YearsInBusiness:        ptr(1.0),
		NumDependents:          ptr(4),
		FinancialLiteracyScore: ptr(40),
	}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	photo := domain.Photo{BorrowerID: borrower.ID, PhotoType: "business_interior"}
	require.NoError(t, env.borrowerRepo.CreatePhoto(&photo))

	note := domain.FieldNote{BorrowerID: borrower.ID, NoteText: "Kunjungan rutin bulanan."}
	require.NoError(t, env.borrowerRepo.CreateNote(&note))

	assessment, err := env.service.Assess(context.Background(), borrower.ID, DefaultOptions())
	require.NoError(t, err)

	// Rule score: 50 base + 15 on-time + 10 overdue grace + 2.8 literacy
	// + 2 years + 5 working age + 3 large family.
	assert.Equal(t, 87.8, assessment.BaselineScore)

	// Deterministic vision fallback: (moderate 1 + fair 1) * 0.5 confidence.
	assert.Equal(t, 1.0, assessment.VisionAdjustment)
	assert.Equal(t, 0.5, assessment.VisionConfidence)
	require.NotNil(t, assessment.VisionInsights)
	assert.Equal(t, 1, assessment.VisionInsights.NumPhotosAnalyzed)
	assert.True(t, assessment.VisionInsights.Analyses[0].Fallback)

	// Neutral note: no amounts, no sentiment keywords.
	assert.Equal(t, 0.0, assessment.NLPAdjustment)
	assert.Equal(t, 0.4, assessment.NLPConfidence)
	require.NotNil(t, assessment.NLPInsights)
	assert.Equal(t, 0.55, assessment.NLPInsights.Summary.AverageSentiment)

	// 87.8 + 1.0*0.5 + 0*0.5
	assert.Equal(t, 88.3, assessment.FinalScore)
	assert.Equal(t, domain.RiskLow, assessment.RiskCategory)

	// Analyses are written back to the source records.
	photos, err := env.borrowerRepo.GetPhotosByBorrower(borrower.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	require.NotNil(t, photos[0].Analysis)
	assert.True(t, photos[0].Analysis.Fallback)

	notes, err := env.borrowerRepo.GetNotesByBorrower(borrower.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].Analysis)
}

func TestAssess_OptionsSkipAnalyzerPasses(t *testing.T) {
	env := newTestEnv(t)

	borrower := domain.Borrower{FullName: "Ibu Siti", ClaimedMonthlyIncome: ptr(3000000.0)}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	photo := domain.Photo{BorrowerID: borrower.ID, PhotoType: "inventory"}
	require.NoError(t, env.borrowerRepo.CreatePhoto(&photo))

	assessment, err := env.service.Assess(context.Background(), borrower.ID,
		Options{IncludeVision: false, IncludeNotes: false})
	require.NoError(t, err)

	assert.Equal(t, 0.0, assessment.VisionAdjustment)
	assert.Nil(t, assessment.VisionInsights)

	// The skipped photo keeps its analysis column empty.
	photos, err := env.borrowerRepo.GetPhotosByBorrower(borrower.ID)
	require.NoError(t, err)
	assert.Nil(t, photos[0].Analysis)
}

func TestAssess_BorrowerNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Assess(context.Background(), "missing", DefaultOptions())
	assert.ErrorIs(t, err, borrowers.ErrBorrowerNotFound)
}

func TestBatchAssess_IsolatesFailures(t *testing.T) {
	env := newTestEnv(t)

	borrower := domain.Borrower{FullName: "Ibu Siti", ClaimedMonthlyIncome: ptr(3000000.0)}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	result := env.service.BatchAssess(context.Background(),
		[]string{borrower.ID, "missing"}, DefaultOptions())

	require.Len(t, result.Assessments, 1)
	assert.Equal(t, borrower.ID, result.Assessments[0].BorrowerID)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.Contains(result.Errors["missing"], "not found"))
}

func TestReassessJob_SweepsAllBorrowers(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"Ibu Ani", "Ibu Dewi"} {
		b := domain.Borrower{FullName: name, ClaimedMonthlyIncome: ptr(3000000.0)}
		require.NoError(t, env.borrowerRepo.Create(&b))
	}

	job := NewReassessJob(env.service, env.borrowerRepo, zerolog.Nop())
	assert.Equal(t, "reassess_all_borrowers", job.Name())
	require.NoError(t, job.Run())

	distribution, err := env.repo.RiskDistribution()
	require.NoError(t, err)

	total := 0
	for _, count := range distribution {
		total += count
	}
	assert.Equal(t, 2, total)
}
