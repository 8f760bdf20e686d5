package assessment

import (
	"fmt"

	"github.com/amara-ai/credit-engine/internal/database"
)

// Nested structures (insights, validation, recommendation, factors) are
// stored as JSON columns: they are written once per run and only ever read
// back whole.
const schema = `
CREATE TABLE IF NOT EXISTS credit_assessments (
	id TEXT PRIMARY KEY,
	borrower_id TEXT NOT NULL,
	ml_baseline_score REAL NOT NULL,
	ml_model_version TEXT NOT NULL,
	vision_score_adjustment REAL NOT NULL DEFAULT 0,
	vision_confidence REAL NOT NULL DEFAULT 0,
	vision_insights TEXT,
	nlp_score_adjustment REAL NOT NULL DEFAULT 0,
	nlp_confidence REAL NOT NULL DEFAULT 0,
	nlp_insights TEXT,
	final_credit_score REAL NOT NULL,
	risk_category TEXT NOT NULL,
	income_validation TEXT NOT NULL,
	loan_recommendation TEXT NOT NULL,
	risk_explanation TEXT,
	risk_factors TEXT,
	positive_factors TEXT,
	assessment_version TEXT NOT NULL,
	assessed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_borrower ON credit_assessments(borrower_id, assessed_at DESC);
`

// InitSchema creates the assessment tables if they do not exist.
func InitSchema(db *database.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize assessment schema: %w", err)
	}
	return nil
}
