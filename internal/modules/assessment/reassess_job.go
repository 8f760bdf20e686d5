package assessment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/modules/borrowers"
)

// ReassessJob periodically re-runs assessments for every borrower so
// scores track new repayments, photos and notes.
type ReassessJob struct {
	service      *Service
	borrowerRepo *borrowers.Repository
	timeout      time.Duration
	log          zerolog.Logger
}

// NewReassessJob creates the scheduled re-assessment job.
func NewReassessJob(service *Service, borrowerRepo *borrowers.Repository, log zerolog.Logger) *ReassessJob {
	return &ReassessJob{
		service:      service,
		borrowerRepo: borrowerRepo,
		timeout:      30 * time.Minute,
		log:          log.With().Str("job", "reassess").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *ReassessJob) Name() string {
	return "reassess_all_borrowers"
}

// Run re-assesses every borrower. Individual failures are accumulated by
// the batch runner rather than aborting the sweep.
func (j *ReassessJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	ids, err := j.borrowerRepo.ListIDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		j.log.Debug().Msg("No borrowers to re-assess")
		return nil
	}

	result := j.service.BatchAssess(ctx, ids, DefaultOptions())

	j.log.Info().
		Int("total", len(ids)).
		Int("assessed", len(result.Assessments)).
		Int("failed", len(result.Errors)).
		Msg("Re-assessment sweep completed")

	return nil
}
