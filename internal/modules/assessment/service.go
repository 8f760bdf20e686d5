package assessment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/analyzers"
	"github.com/amara-ai/credit-engine/internal/domain"
	"github.com/amara-ai/credit-engine/internal/events"
	"github.com/amara-ai/credit-engine/internal/modules/borrowers"
	"github.com/amara-ai/credit-engine/internal/modules/insights"
	"github.com/amara-ai/credit-engine/internal/modules/scoring"
	"github.com/amara-ai/credit-engine/pkg/formulas"
)

// Version stamps every assessment produced by this engine revision.
const Version = "1.0.0"

// Options control which analyzer passes an assessment runs. Both passes
// are skipped silently when the borrower has no photos or notes.
type Options struct {
	IncludeVision bool
	IncludeNotes  bool
}

// DefaultOptions runs every analyzer pass.
func DefaultOptions() Options {
	return Options{IncludeVision: true, IncludeNotes: true}
}

// Service orchestrates a full credit assessment run. It is the only
// component with side effects: the scorers and aggregators it calls are
// pure, and the analyzers degrade internally instead of failing.
type Service struct {
	features     *borrowers.FeatureBuilder
	borrowerRepo *borrowers.Repository
	repo         *Repository
	model        *scoring.RiskModel
	photoAgg     *insights.PhotoAggregator
	noteAgg      *insights.NoteAggregator
	validator    *scoring.IncomeValidator
	vision       analyzers.VisionAnalyzer
	nlp          analyzers.NoteAnalyzer
	explainer    analyzers.ExplanationGenerator
	events       *events.Manager
	log          zerolog.Logger
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Features     *borrowers.FeatureBuilder
	BorrowerRepo *borrowers.Repository
	Repo         *Repository
	Model        *scoring.RiskModel
	Validator    *scoring.IncomeValidator
	Vision       analyzers.VisionAnalyzer
	NLP          analyzers.NoteAnalyzer
	Explainer    analyzers.ExplanationGenerator
	Events       *events.Manager
	Log          zerolog.Logger
}

// NewService creates a new assessment service
func NewService(cfg Config) *Service {
	return &Service{
		features:     cfg.Features,
		borrowerRepo: cfg.BorrowerRepo,
		repo:         cfg.Repo,
		model:        cfg.Model,
		photoAgg:     insights.NewPhotoAggregator(),
		noteAgg:      insights.NewNoteAggregator(),
		validator:    cfg.Validator,
		vision:       cfg.Vision,
		nlp:          cfg.NLP,
		explainer:    cfg.Explainer,
		events:       cfg.Events,
		log:          cfg.Log.With().Str("service", "assessment").Logger(),
	}
}

// Assess runs a complete assessment for one borrower: baseline prediction,
// the analyzer passes, score fusion, income validation, loan
// recommendation and explanation. Persistence is best effort: a storage
// failure is reported as an event but the assessment is still returned.
func (s *Service) Assess(ctx context.Context, borrowerID string, opts Options) (*domain.Assessment, error) {
	s.events.Emit(events.AssessmentStarted, "assessment", map[string]interface{}{
		"borrower_id": borrowerID,
	})

	features, err := s.features.Build(borrowerID)
	if err != nil {
		s.events.Emit(events.AssessmentFailed, "assessment", map[string]interface{}{
			"borrower_id": borrowerID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("failed to assemble features: %w", err)
	}

	borrower, err := s.borrowerRepo.GetByID(borrowerID)
	if err != nil {
		return nil, err
	}
	if borrower == nil {
		return nil, borrowers.ErrBorrowerNotFound
	}

	prediction := s.model.Predict(features)
	s.log.Info().
		Str("borrower_id", borrowerID).
		Float64("baseline_score", prediction.BaselineScore).
		Str("model_version", prediction.ModelVersion).
		Msg("Baseline prediction computed")

	// Analyzer passes. A borrower without photos or notes keeps a zero
	// adjustment and zero confidence for that channel.
	var visionInsights *domain.VisionInsights
	var photoAnalyses []domain.PhotoAnalysis
	visionAdjustment, visionConfidence := 0.0, 0.0
	if opts.IncludeVision {
		if agg, analyses := s.analyzePhotos(ctx, *borrower); analyses != nil {
			visionAdjustment = agg.ScoreAdjustment
			visionConfidence = agg.Confidence
			photoAnalyses = analyses
			visionInsights = &domain.VisionInsights{
				NumPhotosAnalyzed: len(analyses),
				Analyses:          analyses,
				Summary:           agg.Summary,
			}
			s.log.Info().
				Str("borrower_id", borrowerID).
				Float64("adjustment", visionAdjustment).
				Int("photos", len(analyses)).
				Msg("Vision pass completed")
		}
	}

	var noteInsights *domain.NoteInsights
	var noteAnalyses []domain.NoteAnalysis
	nlpAdjustment, nlpConfidence := 0.0, 0.0
	if opts.IncludeNotes {
		if agg, analyses := s.analyzeNotes(ctx, *borrower); analyses != nil {
			nlpAdjustment = agg.ScoreAdjustment
			nlpConfidence = agg.Confidence
			noteAnalyses = analyses
			noteInsights = &domain.NoteInsights{
				NumNotesAnalyzed: len(analyses),
				Analyses:         analyses,
				Summary:          agg.Summary,
			}
			s.log.Info().
				Str("borrower_id", borrowerID).
				Float64("adjustment", nlpAdjustment).
				Int("notes", len(analyses)).
				Msg("Note pass completed")
		}
	}

	finalScore := scoring.Fuse(prediction.BaselineScore, visionAdjustment, nlpAdjustment)
	category := scoring.Categorize(finalScore)

	validation := s.validator.Validate(
		features.ClaimedMonthlyIncome, noteAnalyses, photoAnalyses, features.BusinessType)
	recommendation := scoring.Recommend(finalScore, category, validation)

	assessment := domain.Assessment{
		ID:                   uuid.NewString(),
		BorrowerID:           borrowerID,
		BaselineScore:        formulas.Round2(prediction.BaselineScore),
		BaselineModelVersion: prediction.ModelVersion,
		VisionAdjustment:     formulas.Round2(visionAdjustment),
		VisionConfidence:     formulas.Round2(visionConfidence),
		VisionInsights:       visionInsights,
		NLPAdjustment:        formulas.Round2(nlpAdjustment),
		NLPConfidence:        formulas.Round2(nlpConfidence),
		NLPInsights:          noteInsights,
		FinalScore:           formulas.Round2(finalScore),
		RiskCategory:         category,
		IncomeValidation:     validation,
		LoanRecommendation:   recommendation,
		RiskFactors:          nil,
		PositiveFactors:      nil,
		AssessmentVersion:    Version,
		AssessedAt:           time.Now().UTC(),
	}
	assessment.RiskExplanation = s.explainer.Explain(ctx, *borrower, assessment)
	assessment.RiskFactors, assessment.PositiveFactors = extractFactors(features, visionInsights, noteInsights)

	if err := s.repo.Create(&assessment); err != nil {
		s.log.Error().Err(err).Str("borrower_id", borrowerID).Msg("Failed to persist assessment")
		s.events.Emit(events.PersistenceFailed, "assessment", map[string]interface{}{
			"borrower_id":   borrowerID,
			"assessment_id": assessment.ID,
			"error":         err.Error(),
		})
	}

	s.events.Emit(events.AssessmentCompleted, "assessment", map[string]interface{}{
		"borrower_id":   borrowerID,
		"assessment_id": assessment.ID,
		"final_score":   assessment.FinalScore,
		"risk_category": string(assessment.RiskCategory),
	})

	return &assessment, nil
}

// BatchResult collects per-borrower outcomes of a batch run.
type BatchResult struct {
	Assessments []domain.Assessment `json:"assessments"`
	Errors      map[string]string   `json:"errors,omitempty"`
}

// BatchAssess runs assessments for multiple borrowers sequentially. One
// borrower's failure never aborts the batch.
func (s *Service) BatchAssess(ctx context.Context, borrowerIDs []string, opts Options) BatchResult {
	result := BatchResult{Errors: map[string]string{}}

	for _, id := range borrowerIDs {
		if err := ctx.Err(); err != nil {
			result.Errors[id] = err.Error()
			continue
		}

		assessment, err := s.Assess(ctx, id, opts)
		if err != nil {
			s.log.Error().Err(err).Str("borrower_id", id).Msg("Batch item failed")
			result.Errors[id] = err.Error()
			continue
		}
		result.Assessments = append(result.Assessments, *assessment)
	}

	s.events.Emit(events.BatchCompleted, "assessment", map[string]interface{}{
		"requested": len(borrowerIDs),
		"assessed":  len(result.Assessments),
		"failed":    len(result.Errors),
	})

	return result
}

// analyzePhotos runs the vision analyzer over all of the borrower's photos
// concurrently and aggregates the results. Returns (zero, nil) when the
// borrower has no photos.
func (s *Service) analyzePhotos(ctx context.Context, borrower domain.Borrower) (insights.PhotoAggregation, []domain.PhotoAnalysis) {
	photos, err := s.borrowerRepo.GetPhotosByBorrower(borrower.ID)
	if err != nil {
		s.log.Error().Err(err).Str("borrower_id", borrower.ID).Msg("Failed to load photos")
		return insights.PhotoAggregation{}, nil
	}
	if len(photos) == 0 {
		return insights.PhotoAggregation{}, nil
	}

	analyses := make([]domain.PhotoAnalysis, len(photos))
	var wg sync.WaitGroup
	for i, photo := range photos {
		wg.Add(1)
		go func(i int, photo domain.Photo) {
			defer wg.Done()
			analyses[i] = s.vision.Analyze(ctx, photo, borrower)
		}(i, photo)
	}
	wg.Wait()

	for i, photo := range photos {
		if analyses[i].Fallback {
			s.events.Emit(events.AnalyzerFallback, "assessment", map[string]interface{}{
				"analyzer": "vision",
				"photo_id": photo.ID,
			})
		}
		if err := s.borrowerRepo.UpdatePhotoAnalysis(photo.ID, analyses[i]); err != nil {
			s.log.Error().Err(err).Str("photo_id", photo.ID).Msg("Failed to store photo analysis")
		}
		s.events.Emit(events.PhotoAnalyzed, "assessment", map[string]interface{}{
			"photo_id":   photo.ID,
			"photo_type": photo.PhotoType,
		})
	}

	return s.photoAgg.Aggregate(analyses), analyses
}

// analyzeNotes runs the note analyzer over all of the borrower's field
// notes concurrently and aggregates the results. Returns (zero, nil) when
// the borrower has no notes.
func (s *Service) analyzeNotes(ctx context.Context, borrower domain.Borrower) (insights.NoteAggregation, []domain.NoteAnalysis) {
	notes, err := s.borrowerRepo.GetNotesByBorrower(borrower.ID)
	if err != nil {
		s.log.Error().Err(err).Str("borrower_id", borrower.ID).Msg("Failed to load notes")
		return insights.NoteAggregation{}, nil
	}
	if len(notes) == 0 {
		return insights.NoteAggregation{}, nil
	}

	analyses := make([]domain.NoteAnalysis, len(notes))
	var wg sync.WaitGroup
	for i, note := range notes {
		wg.Add(1)
		go func(i int, note domain.FieldNote) {
			defer wg.Done()
			analyses[i] = s.nlp.Analyze(ctx, note, borrower)
		}(i, note)
	}
	wg.Wait()

	for i, note := range notes {
		if analyses[i].Fallback {
			s.events.Emit(events.AnalyzerFallback, "assessment", map[string]interface{}{
				"analyzer": "nlp",
				"note_id":  note.ID,
			})
		}
		if err := s.borrowerRepo.UpdateNoteAnalysis(note.ID, analyses[i]); err != nil {
			s.log.Error().Err(err).Str("note_id", note.ID).Msg("Failed to store note analysis")
		}
		s.events.Emit(events.NoteAnalyzed, "assessment", map[string]interface{}{
			"note_id":   note.ID,
			"note_type": note.NoteType,
		})
	}

	return s.noteAgg.Aggregate(analyses), analyses
}
