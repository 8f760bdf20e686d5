package events

import (
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	AssessmentStarted   EventType = "ASSESSMENT_STARTED"
	AssessmentCompleted EventType = "ASSESSMENT_COMPLETED"
	AssessmentFailed    EventType = "ASSESSMENT_FAILED"
	AnalyzerFallback    EventType = "ANALYZER_FALLBACK"
	ModelLoadFailed     EventType = "MODEL_LOAD_FAILED"
	PersistenceFailed   EventType = "PERSISTENCE_FAILED"
	BatchCompleted      EventType = "BATCH_COMPLETED"
	BorrowerCreated     EventType = "BORROWER_CREATED"
	PhotoAnalyzed       EventType = "PHOTO_ANALYZED"
	NoteAnalyzed        EventType = "NOTE_ANALYZED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission and logging
type Manager struct {
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("service", "events").Logger(),
	}
}

// Emit emits an event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	m.log.Info().
		Str("event", string(event.Type)).
		Str("module", event.Module).
		Fields(event.Data).
		Msg("Event emitted")
}
