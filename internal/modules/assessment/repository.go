package assessment

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/database"
	"github.com/amara-ai/credit-engine/internal/domain"
)

// Repository handles credit assessment database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new assessment repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "assessment").Logger(),
	}
}

// Create persists a completed assessment.
func (r *Repository) Create(a *domain.Assessment) error {
	visionInsights, err := marshalNullable(a.VisionInsights)
	if err != nil {
		return err
	}
	nlpInsights, err := marshalNullable(a.NLPInsights)
	if err != nil {
		return err
	}
	incomeValidation, err := json.Marshal(a.IncomeValidation)
	if err != nil {
		return fmt.Errorf("failed to marshal income validation: %w", err)
	}
	recommendation, err := json.Marshal(a.LoanRecommendation)
	if err != nil {
		return fmt.Errorf("failed to marshal loan recommendation: %w", err)
	}
	riskFactors, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}
	positiveFactors, err := json.Marshal(a.PositiveFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal positive factors: %w", err)
	}

	query := `
		INSERT INTO credit_assessments
		(id, borrower_id, ml_baseline_score, ml_model_version,
		 vision_score_adjustment, vision_confidence, vision_insights,
		 nlp_score_adjustment, nlp_confidence, nlp_insights,
		 final_credit_score, risk_category, income_validation,
		 loan_recommendation, risk_explanation, risk_factors,
		 positive_factors, assessment_version, assessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		a.ID, a.BorrowerID, a.BaselineScore, a.BaselineModelVersion,
		a.VisionAdjustment, a.VisionConfidence, visionInsights,
		a.NLPAdjustment, a.NLPConfidence, nlpInsights,
		a.FinalScore, string(a.RiskCategory), string(incomeValidation),
		string(recommendation), a.RiskExplanation, string(riskFactors),
		string(positiveFactors), a.AssessmentVersion,
		a.AssessedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	r.log.Info().
		Str("assessment_id", a.ID).
		Str("borrower_id", a.BorrowerID).
		Float64("final_score", a.FinalScore).
		Str("risk_category", string(a.RiskCategory)).
		Msg("Assessment persisted")

	return nil
}

// GetLatest retrieves the most recent assessment for a borrower.
// Returns (nil, nil) when the borrower has never been assessed.
func (r *Repository) GetLatest(borrowerID string) (*domain.Assessment, error) {
	query := selectColumns + `
		FROM credit_assessments
		WHERE borrower_id = ?
		ORDER BY assessed_at DESC
		LIMIT 1
	`

	a, err := scanAssessment(r.db.QueryRow(query, borrowerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}
	return a, nil
}

// GetHistory retrieves a borrower's assessments, most recent first.
func (r *Repository) GetHistory(borrowerID string, limit int) ([]domain.Assessment, error) {
	query := selectColumns + `
		FROM credit_assessments
		WHERE borrower_id = ?
		ORDER BY assessed_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, borrowerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment history: %w", err)
	}
	defer rows.Close()

	var assessments []domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, *a)
	}
	return assessments, rows.Err()
}

// RiskDistribution counts borrowers per risk tier using each borrower's
// latest assessment.
func (r *Repository) RiskDistribution() (map[string]int, error) {
	query := `
		SELECT a.risk_category, COUNT(*)
		FROM credit_assessments a
		JOIN (
			SELECT borrower_id, MAX(assessed_at) AS latest
			FROM credit_assessments
			GROUP BY borrower_id
		) l ON a.borrower_id = l.borrower_id AND a.assessed_at = l.latest
		GROUP BY a.risk_category
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get risk distribution: %w", err)
	}
	defer rows.Close()

	distribution := map[string]int{
		string(domain.RiskLow):      0,
		string(domain.RiskMedium):   0,
		string(domain.RiskHigh):     0,
		string(domain.RiskVeryHigh): 0,
	}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan risk distribution: %w", err)
		}
		distribution[category] = count
	}
	return distribution, rows.Err()
}

const selectColumns = `
	SELECT id, borrower_id, ml_baseline_score, ml_model_version,
	       vision_score_adjustment, vision_confidence, vision_insights,
	       nlp_score_adjustment, nlp_confidence, nlp_insights,
	       final_credit_score, risk_category, income_validation,
	       loan_recommendation, risk_explanation, risk_factors,
	       positive_factors, assessment_version, assessed_at
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var a domain.Assessment
	var visionInsights, nlpInsights, explanation sql.NullString
	var incomeValidation, recommendation, riskFactors, positiveFactors string
	var category, assessedAt string

	err := row.Scan(&a.ID, &a.BorrowerID, &a.BaselineScore, &a.BaselineModelVersion,
		&a.VisionAdjustment, &a.VisionConfidence, &visionInsights,
		&a.NLPAdjustment, &a.NLPConfidence, &nlpInsights,
		&a.FinalScore, &category, &incomeValidation,
		&recommendation, &explanation, &riskFactors,
		&positiveFactors, &a.AssessmentVersion, &assessedAt)
	if err != nil {
		return nil, err
	}

	a.RiskCategory = domain.RiskCategory(category)
	a.RiskExplanation = explanation.String
	a.AssessedAt, _ = time.Parse(time.RFC3339, assessedAt)

	if visionInsights.Valid && visionInsights.String != "" {
		var v domain.VisionInsights
		if err := json.Unmarshal([]byte(visionInsights.String), &v); err == nil {
			a.VisionInsights = &v
		}
	}
	if nlpInsights.Valid && nlpInsights.String != "" {
		var n domain.NoteInsights
		if err := json.Unmarshal([]byte(nlpInsights.String), &n); err == nil {
			a.NLPInsights = &n
		}
	}
	if err := json.Unmarshal([]byte(incomeValidation), &a.IncomeValidation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal income validation: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendation), &a.LoanRecommendation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal loan recommendation: %w", err)
	}
	if err := json.Unmarshal([]byte(riskFactors), &a.RiskFactors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk factors: %w", err)
	}
	if err := json.Unmarshal([]byte(positiveFactors), &a.PositiveFactors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positive factors: %w", err)
	}

	return &a, nil
}

func marshalNullable(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case *domain.VisionInsights:
		if t == nil {
			return nil, nil
		}
	case *domain.NoteInsights:
		if t == nil {
			return nil, nil
		}
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal insights: %w", err)
	}
	return string(payload), nil
}
