package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amara-ai/credit-engine/internal/analyzers"
	"github.com/amara-ai/credit-engine/internal/clients/llm"
	"github.com/amara-ai/credit-engine/internal/config"
	"github.com/amara-ai/credit-engine/internal/database"
	"github.com/amara-ai/credit-engine/internal/events"
	"github.com/amara-ai/credit-engine/internal/modules/assessment"
	"github.com/amara-ai/credit-engine/internal/modules/borrowers"
	"github.com/amara-ai/credit-engine/internal/modules/scoring"
	"github.com/amara-ai/credit-engine/internal/scheduler"
	"github.com/amara-ai/credit-engine/internal/server"
	"github.com/amara-ai/credit-engine/pkg/logger"
)

// reassessSchedule runs the full borrower sweep every Sunday at 2 AM.
const reassessSchedule = "0 2 * * 0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting credit engine")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := borrowers.InitSchema(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize borrower schema")
	}
	if err := assessment.InitSchema(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize assessment schema")
	}

	eventManager := events.NewManager(log)

	// Scoring components. A missing model file puts the risk model into
	// rule-based mode permanently.
	model := scoring.NewRiskModel(cfg.ModelPath, eventManager, log)

	benchmarks, err := scoring.LoadBenchmarks(cfg.BenchmarksPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load benchmark overrides")
	}
	validator := scoring.NewIncomeValidator(benchmarks)

	// Analyzers: LLM-backed when an API key is configured, deterministic
	// fallbacks otherwise.
	var (
		vision    analyzers.VisionAnalyzer
		nlp       analyzers.NoteAnalyzer
		explainer analyzers.ExplanationGenerator
	)
	if cfg.AnalyzersEnabled() {
		client := llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		}, log)
		vision = analyzers.NewLLMVisionAnalyzer(client, cfg.VisionModel, log)
		nlp = analyzers.NewLLMNoteAnalyzer(client, cfg.TextModel, log)
		explainer = analyzers.NewLLMExplanationGenerator(client, cfg.TextModel, log)
		log.Info().Str("text_model", cfg.TextModel).Str("vision_model", cfg.VisionModel).
			Msg("LLM analyzers enabled")
	} else {
		vision = analyzers.NewFallbackVisionAnalyzer(log)
		nlp = analyzers.NewFallbackNoteAnalyzer(log)
		explainer = analyzers.NewTemplateExplanationGenerator()
		log.Warn().Msg("No API key configured, running deterministic analyzers")
	}

	// Repositories and services
	borrowerRepo := borrowers.NewRepository(db, log)
	featureBuilder := borrowers.NewFeatureBuilder(db, borrowerRepo, log)
	assessmentRepo := assessment.NewRepository(db, log)

	assessmentService := assessment.NewService(assessment.Config{
		Features:     featureBuilder,
		BorrowerRepo: borrowerRepo,
		Repo:         assessmentRepo,
		Model:        model,
		Validator:    validator,
		Vision:       vision,
		NLP:          nlp,
		Explainer:    explainer,
		Events:       eventManager,
		Log:          log,
	})

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	reassessJob := assessment.NewReassessJob(assessmentService, borrowerRepo, log)
	if err := sched.AddJob(reassessSchedule, reassessJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register re-assessment job")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:               cfg.Port,
		Log:                log,
		Config:             cfg,
		Model:              model,
		BorrowerHandlers:   borrowers.NewHandlers(borrowerRepo, eventManager, log),
		AssessmentHandlers: assessment.NewHandlers(assessmentService, assessmentRepo, log),
		DevMode:            cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
