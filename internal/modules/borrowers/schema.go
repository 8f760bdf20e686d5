package borrowers

import (
	"fmt"

	"github.com/amara-ai/credit-engine/internal/database"
)

// Schema holds the borrower-side tables. Demographic fields are nullable:
// intake forms from the field are often incomplete and the feature builder
// substitutes documented defaults at read time.
const schema = `
CREATE TABLE IF NOT EXISTS borrowers (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	age INTEGER,
	gender TEXT,
	village TEXT,
	district TEXT,
	province TEXT,
	business_type TEXT,
	business_description TEXT,
	claimed_monthly_income REAL,
	years_in_business REAL,
	marital_status TEXT,
	num_dependents INTEGER,
	education_level TEXT,
	phone_number TEXT,
	has_bank_account INTEGER NOT NULL DEFAULT 0,
	keeps_financial_records INTEGER NOT NULL DEFAULT 0,
	financial_literacy_score INTEGER,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
	id TEXT PRIMARY KEY,
	borrower_id TEXT NOT NULL REFERENCES borrowers(id),
	loan_amount REAL NOT NULL,
	loan_purpose TEXT,
	interest_rate REAL,
	loan_term_weeks INTEGER,
	loan_status TEXT NOT NULL DEFAULT 'pending',
	approval_status TEXT NOT NULL DEFAULT 'pending',
	disbursed_at TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS repayments (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(id),
	due_date TEXT NOT NULL,
	paid_date TEXT,
	expected_amount REAL NOT NULL,
	paid_amount REAL NOT NULL DEFAULT 0,
	payment_status TEXT NOT NULL DEFAULT 'pending',
	days_overdue INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS photos (
	id TEXT PRIMARY KEY,
	borrower_id TEXT NOT NULL REFERENCES borrowers(id),
	photo_type TEXT NOT NULL,
	photo_url TEXT,
	storage_path TEXT,
	analysis TEXT,
	uploaded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS field_notes (
	id TEXT PRIMARY KEY,
	borrower_id TEXT NOT NULL REFERENCES borrowers(id),
	note_text TEXT NOT NULL,
	note_type TEXT NOT NULL DEFAULT 'general',
	field_agent_name TEXT,
	analysis TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower_id);
CREATE INDEX IF NOT EXISTS idx_repayments_loan ON repayments(loan_id);
CREATE INDEX IF NOT EXISTS idx_photos_borrower ON photos(borrower_id);
CREATE INDEX IF NOT EXISTS idx_field_notes_borrower ON field_notes(borrower_id);
`

// InitSchema creates the borrower tables if they do not exist.
func InitSchema(db *database.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize borrower schema: %w", err)
	}
	return nil
}
