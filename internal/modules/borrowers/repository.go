package borrowers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/database"
	"github.com/amara-ai/credit-engine/internal/domain"
)

// Repository handles borrower, loan, repayment, photo and field note
// database operations.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new borrower repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "borrowers").Logger(),
	}
}

// Create inserts a new borrower record. A missing ID is generated.
func (r *Repository) Create(b *domain.Borrower) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO borrowers
		(id, full_name, age, gender, village, district, province,
		 business_type, business_description, claimed_monthly_income,
		 years_in_business, marital_status, num_dependents, education_level,
		 phone_number, has_bank_account, keeps_financial_records,
		 financial_literacy_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Pointer fields pass through as-is: nil stores NULL, an explicit
	// zero stores 0.
	_, err := r.db.Exec(query,
		b.ID,
		b.FullName,
		b.Age,
		nullString(b.Gender),
		nullString(b.Village),
		nullString(b.District),
		nullString(b.Province),
		nullString(b.BusinessType),
		nullString(b.BusinessDescription),
		b.ClaimedMonthlyIncome,
		b.YearsInBusiness,
		nullString(b.MaritalStatus),
		b.NumDependents,
		nullString(b.EducationLevel),
		nullString(b.PhoneNumber),
		boolToInt(b.HasBankAccount),
		boolToInt(b.KeepsFinancialRecords),
		b.FinancialLiteracyScore,
		b.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create borrower: %w", err)
	}

	r.log.Info().Str("borrower_id", b.ID).Str("name", b.FullName).Msg("Borrower created")
	return nil
}

// GetByID retrieves a borrower by ID. Returns (nil, nil) when not found.
func (r *Repository) GetByID(id string) (*domain.Borrower, error) {
	query := `
		SELECT id, full_name, age, gender, village, district, province,
		       business_type, business_description, claimed_monthly_income,
		       years_in_business, marital_status, num_dependents, education_level,
		       phone_number, has_bank_account, keeps_financial_records,
		       financial_literacy_score, created_at
		FROM borrowers WHERE id = ?
	`

	b, err := scanBorrower(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}
	return b, nil
}

// List retrieves borrowers, most recent first.
func (r *Repository) List(limit int) ([]domain.Borrower, error) {
	query := `
		SELECT id, full_name, age, gender, village, district, province,
		       business_type, business_description, claimed_monthly_income,
		       years_in_business, marital_status, num_dependents, education_level,
		       phone_number, has_bank_account, keeps_financial_records,
		       financial_literacy_score, created_at
		FROM borrowers ORDER BY created_at DESC LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowers: %w", err)
	}
	defer rows.Close()

	var result []domain.Borrower
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrower: %w", err)
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

// ListIDs returns the IDs of all borrowers, used by the re-assessment job.
func (r *Repository) ListIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT id FROM borrowers ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list borrower ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan borrower id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateLoan inserts a loan record for a borrower.
func (r *Repository) CreateLoan(l *domain.Loan) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	var disbursedAt interface{}
	if l.DisbursedAt != nil {
		disbursedAt = l.DisbursedAt.Format(time.RFC3339)
	}

	query := `
		INSERT INTO loans
		(id, borrower_id, loan_amount, loan_purpose, interest_rate,
		 loan_term_weeks, loan_status, approval_status, disbursed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		l.ID, l.BorrowerID, l.LoanAmount, nullString(l.LoanPurpose),
		l.InterestRate, l.LoanTermWeeks, defaultString(l.LoanStatus, "pending"),
		defaultString(l.ApprovalStatus, "pending"), disbursedAt,
		l.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	r.log.Info().Str("loan_id", l.ID).Str("borrower_id", l.BorrowerID).
		Float64("amount", l.LoanAmount).Msg("Loan created")
	return nil
}

// GetLoansByBorrower retrieves all loans for a borrower, oldest first.
func (r *Repository) GetLoansByBorrower(borrowerID string) ([]domain.Loan, error) {
	query := `
		SELECT id, borrower_id, loan_amount, loan_purpose, interest_rate,
		       loan_term_weeks, loan_status, approval_status, disbursed_at, created_at
		FROM loans WHERE borrower_id = ? ORDER BY created_at
	`

	rows, err := r.db.Query(query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var purpose, disbursedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&l.ID, &l.BorrowerID, &l.LoanAmount, &purpose,
			&l.InterestRate, &l.LoanTermWeeks, &l.LoanStatus, &l.ApprovalStatus,
			&disbursedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		l.LoanPurpose = purpose.String
		if disbursedAt.Valid {
			if t, err := time.Parse(time.RFC3339, disbursedAt.String); err == nil {
				l.DisbursedAt = &t
			}
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// CreateRepayment inserts a repayment installment record.
func (r *Repository) CreateRepayment(p *domain.Repayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var paidDate interface{}
	if p.PaidDate != nil {
		paidDate = p.PaidDate.Format(time.RFC3339)
	}

	query := `
		INSERT INTO repayments
		(id, loan_id, due_date, paid_date, expected_amount, paid_amount,
		 payment_status, days_overdue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		p.ID, p.LoanID, p.DueDate.Format(time.RFC3339), paidDate,
		p.ExpectedAmount, p.PaidAmount, defaultString(p.PaymentStatus, "pending"),
		p.DaysOverdue,
	)
	if err != nil {
		return fmt.Errorf("failed to create repayment: %w", err)
	}
	return nil
}

// GetRepaymentsByBorrower retrieves all repayments across a borrower's loans.
func (r *Repository) GetRepaymentsByBorrower(borrowerID string) ([]domain.Repayment, error) {
	query := `
		SELECT p.id, p.loan_id, p.due_date, p.paid_date, p.expected_amount,
		       p.paid_amount, p.payment_status, p.days_overdue
		FROM repayments p
		JOIN loans l ON l.id = p.loan_id
		WHERE l.borrower_id = ?
		ORDER BY p.due_date
	`

	rows, err := r.db.Query(query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get repayments: %w", err)
	}
	defer rows.Close()

	var repayments []domain.Repayment
	for rows.Next() {
		var p domain.Repayment
		var dueDate string
		var paidDate sql.NullString
		if err := rows.Scan(&p.ID, &p.LoanID, &dueDate, &paidDate,
			&p.ExpectedAmount, &p.PaidAmount, &p.PaymentStatus, &p.DaysOverdue); err != nil {
			return nil, fmt.Errorf("failed to scan repayment: %w", err)
		}
		p.DueDate, _ = time.Parse(time.RFC3339, dueDate)
		if paidDate.Valid {
			if t, err := time.Parse(time.RFC3339, paidDate.String); err == nil {
				p.PaidDate = &t
			}
		}
		repayments = append(repayments, p)
	}
	return repayments, rows.Err()
}

// CreatePhoto inserts a photo record. The analysis column starts empty and
// is filled by UpdatePhotoAnalysis once the vision analyzer has run.
func (r *Repository) CreatePhoto(p *domain.Photo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO photos (id, borrower_id, photo_type, photo_url, storage_path, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, p.ID, p.BorrowerID, p.PhotoType,
		nullString(p.PhotoURL), nullString(p.StoragePath),
		p.UploadedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetPhotosByBorrower retrieves all photos for a borrower, oldest first.
func (r *Repository) GetPhotosByBorrower(borrowerID string) ([]domain.Photo, error) {
	query := `
		SELECT id, borrower_id, photo_type, photo_url, storage_path, analysis, uploaded_at
		FROM photos WHERE borrower_id = ? ORDER BY uploaded_at
	`

	rows, err := r.db.Query(query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		var url, storagePath, analysis sql.NullString
		var uploadedAt string
		if err := rows.Scan(&p.ID, &p.BorrowerID, &p.PhotoType, &url,
			&storagePath, &analysis, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		p.PhotoURL = url.String
		p.StoragePath = storagePath.String
		if analysis.Valid && analysis.String != "" {
			var a domain.PhotoAnalysis
			if err := json.Unmarshal([]byte(analysis.String), &a); err == nil {
				p.Analysis = &a
			}
		}
		p.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// UpdatePhotoAnalysis stores the vision analysis for a photo.
func (r *Repository) UpdatePhotoAnalysis(photoID string, a domain.PhotoAnalysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal photo analysis: %w", err)
	}

	if _, err := r.db.Exec("UPDATE photos SET analysis = ? WHERE id = ?", string(payload), photoID); err != nil {
		return fmt.Errorf("failed to update photo analysis: %w", err)
	}
	return nil
}

// CreateNote inserts a field note record.
func (r *Repository) CreateNote(n *domain.FieldNote) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO field_notes (id, borrower_id, note_text, note_type, field_agent_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, n.ID, n.BorrowerID, n.NoteText,
		defaultString(n.NoteType, "general"), nullString(n.FieldAgentName),
		n.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create field note: %w", err)
	}
	return nil
}

// GetNotesByBorrower retrieves all field notes for a borrower, oldest first.
func (r *Repository) GetNotesByBorrower(borrowerID string) ([]domain.FieldNote, error) {
	query := `
		SELECT id, borrower_id, note_text, note_type, field_agent_name, analysis, created_at
		FROM field_notes WHERE borrower_id = ? ORDER BY created_at
	`

	rows, err := r.db.Query(query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get field notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.FieldNote
	for rows.Next() {
		var n domain.FieldNote
		var agentName, analysis sql.NullString
		var createdAt string
		if err := rows.Scan(&n.ID, &n.BorrowerID, &n.NoteText, &n.NoteType,
			&agentName, &analysis, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan field note: %w", err)
		}
		n.FieldAgentName = agentName.String
		if analysis.Valid && analysis.String != "" {
			var a domain.NoteAnalysis
			if err := json.Unmarshal([]byte(analysis.String), &a); err == nil {
				n.Analysis = &a
			}
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNoteAnalysis stores the NLP analysis for a field note.
func (r *Repository) UpdateNoteAnalysis(noteID string, a domain.NoteAnalysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal note analysis: %w", err)
	}

	if _, err := r.db.Exec("UPDATE field_notes SET analysis = ? WHERE id = ?", string(payload), noteID); err != nil {
		return fmt.Errorf("failed to update note analysis: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBorrower(row rowScanner) (*domain.Borrower, error) {
	var b domain.Borrower
	var age, dependents, literacy sql.NullInt64
	var income, years sql.NullFloat64
	var gender, village, district, province, businessType, businessDesc sql.NullString
	var maritalStatus, education, phone sql.NullString
	var hasBank, keepsRecords int
	var createdAt string

	err := row.Scan(&b.ID, &b.FullName, &age, &gender, &village, &district,
		&province, &businessType, &businessDesc, &income, &years,
		&maritalStatus, &dependents, &education, &phone, &hasBank,
		&keepsRecords, &literacy, &createdAt)
	if err != nil {
		return nil, err
	}

	b.Age = intPtr(age)
	b.Gender = gender.String
	b.Village = village.String
	b.District = district.String
	b.Province = province.String
	b.BusinessType = businessType.String
	b.BusinessDescription = businessDesc.String
	b.ClaimedMonthlyIncome = floatPtr(income)
	b.YearsInBusiness = floatPtr(years)
	b.MaritalStatus = maritalStatus.String
	b.NumDependents = intPtr(dependents)
	b.EducationLevel = education.String
	b.PhoneNumber = phone.String
	b.HasBankAccount = hasBank != 0
	b.KeepsFinancialRecords = keepsRecords != 0
	b.FinancialLiteracyScore = intPtr(literacy)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &b, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
