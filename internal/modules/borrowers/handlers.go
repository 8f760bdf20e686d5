package borrowers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/events"
)

// Handlers contains HTTP handlers for the borrower API
type Handlers struct {
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewHandlers creates a new borrower handlers instance
func NewHandlers(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("handler", "borrowers").Logger(),
	}
}

// RegisterRoutes mounts the borrower routes on the given router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateBorrower)
	r.Get("/", h.HandleListBorrowers)
	r.Route("/{borrowerID}", func(r chi.Router) {
		r.Get("/", h.HandleGetBorrower)
		r.Post("/loans", h.HandleCreateLoan)
		r.Get("/loans", h.HandleGetLoans)
		r.Post("/repayments", h.HandleCreateRepayment)
		r.Post("/photos", h.HandleCreatePhoto)
		r.Get("/photos", h.HandleGetPhotos)
		r.Post("/notes", h.HandleCreateNote)
		r.Get("/notes", h.HandleGetNotes)
	})
}

// HandleCreateBorrower registers a new borrower
// POST /api/borrowers
func (h *Handlers) HandleCreateBorrower(w http.ResponseWriter, r *http.Request) {
	var borrower domain.Borrower
	if err := json.NewDecoder(r.Body).Decode(&borrower); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if borrower.FullName == "" {
		writeError(w, http.StatusBadRequest, "full_name is required")
		return
	}

	if err := h.repo.Create(&borrower); err != nil {
		h.log.Error().Err(err).Msg("Failed to create borrower")
		writeError(w, http.StatusInternalServerError, "Failed to create borrower")
		return
	}

	h.events.Emit(events.BorrowerCreated, "borrowers", map[string]interface{}{
		"borrower_id": borrower.ID,
	})

	writeJSON(w, http.StatusCreated, borrower)
}

// HandleListBorrowers returns registered borrowers, most recent first
// GET /api/borrowers?limit=50
func (h *Handlers) HandleListBorrowers(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)

	borrowers, err := h.repo.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list borrowers")
		writeError(w, http.StatusInternalServerError, "Failed to list borrowers")
		return
	}
	if borrowers == nil {
		borrowers = []domain.Borrower{}
	}

	writeJSON(w, http.StatusOK, borrowers)
}

// HandleGetBorrower returns one borrower
// GET /api/borrowers/{borrowerID}
func (h *Handlers) HandleGetBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	borrower, err := h.repo.GetByID(borrowerID)
	if err != nil {
		h.log.Error().Err(err).Str("borrower_id", borrowerID).Msg("Failed to get borrower")
		writeError(w, http.StatusInternalServerError, "Failed to get borrower")
		return
	}
	if borrower == nil {
		writeError(w, http.StatusNotFound, "Borrower not found")
		return
	}

	writeJSON(w, http.StatusOK, borrower)
}

// HandleCreateLoan records a loan for a borrower
// POST /api/borrowers/{borrowerID}/loans
func (h *Handlers) HandleCreateLoan(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	var loan domain.Loan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	loan.BorrowerID = borrowerID
	if loan.LoanAmount <= 0 {
		writeError(w, http.StatusBadRequest, "loan_amount must be positive")
		return
	}

	if exists, err := h.borrowerExists(borrowerID); err != nil || !exists {
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to verify borrower")
		} else {
			writeError(w, http.StatusNotFound, "Borrower not found")
		}
		return
	}

	if err := h.repo.CreateLoan(&loan); err != nil {
		h.log.Error().Err(err).Msg("Failed to create loan")
		writeError(w, http.StatusInternalServerError, "Failed to create loan")
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

// HandleGetLoans returns a borrower's loans
// GET /api/borrowers/{borrowerID}/loans
func (h *Handlers) HandleGetLoans(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	loans, err := h.repo.GetLoansByBorrower(borrowerID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get loans")
		writeError(w, http.StatusInternalServerError, "Failed to get loans")
		return
	}
	if loans == nil {
		loans = []domain.Loan{}
	}

	writeJSON(w, http.StatusOK, loans)
}

// HandleCreateRepayment records a repayment installment on a loan
// POST /api/borrowers/{borrowerID}/repayments
func (h *Handlers) HandleCreateRepayment(w http.ResponseWriter, r *http.Request) {
	var repayment domain.Repayment
	if err := json.NewDecoder(r.Body).Decode(&repayment); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if repayment.LoanID == "" {
		writeError(w, http.StatusBadRequest, "loan_id is required")
		return
	}

	if err := h.repo.CreateRepayment(&repayment); err != nil {
		h.log.Error().Err(err).Msg("Failed to create repayment")
		writeError(w, http.StatusInternalServerError, "Failed to create repayment")
		return
	}

	writeJSON(w, http.StatusCreated, repayment)
}

// HandleCreatePhoto registers a photo for later vision analysis
// POST /api/borrowers/{borrowerID}/photos
func (h *Handlers) HandleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	var photo domain.Photo
	if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	photo.BorrowerID = borrowerID
	if photo.PhotoType == "" {
		writeError(w, http.StatusBadRequest, "photo_type is required")
		return
	}

	if err := h.repo.CreatePhoto(&photo); err != nil {
		h.log.Error().Err(err).Msg("Failed to create photo")
		writeError(w, http.StatusInternalServerError, "Failed to create photo")
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

// HandleGetPhotos returns a borrower's photos with any stored analyses
// GET /api/borrowers/{borrowerID}/photos
func (h *Handlers) HandleGetPhotos(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	photos, err := h.repo.GetPhotosByBorrower(borrowerID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get photos")
		writeError(w, http.StatusInternalServerError, "Failed to get photos")
		return
	}
	if photos == nil {
		photos = []domain.Photo{}
	}

	writeJSON(w, http.StatusOK, photos)
}

// HandleCreateNote records a field agent note
// POST /api/borrowers/{borrowerID}/notes
func (h *Handlers) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	var note domain.FieldNote
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	note.BorrowerID = borrowerID
	if note.NoteText == "" {
		writeError(w, http.StatusBadRequest, "note_text is required")
		return
	}

	if err := h.repo.CreateNote(&note); err != nil {
		h.log.Error().Err(err).Msg("Failed to create note")
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// HandleGetNotes returns a borrower's field notes with any stored analyses
// GET /api/borrowers/{borrowerID}/notes
func (h *Handlers) HandleGetNotes(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "borrowerID")

	notes, err := h.repo.GetNotesByBorrower(borrowerID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get notes")
		writeError(w, http.StatusInternalServerError, "Failed to get notes")
		return
	}
	if notes == nil {
		notes = []domain.FieldNote{}
	}

	writeJSON(w, http.StatusOK, notes)
}

func (h *Handlers) borrowerExists(borrowerID string) (bool, error) {
	borrower, err := h.repo.GetByID(borrowerID)
	if err != nil {
		return false, err
	}
	return borrower != nil, nil
}

func parseLimit(r *http.Request, fallback int) int {
	limit := fallback
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
