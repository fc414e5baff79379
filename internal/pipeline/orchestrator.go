package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
	"github.com/stardeck/logbook/internal/notify"
)

const (
	errNoAudioFile     = "No audio file associated with this log entry"
	errEmptyAudio      = "Audio file is empty or corrupted"
	errEmptyTranscript = "Transcription resulted in empty text"
	errNoTranscript    = "No transcript available for enrichment"
)

type OrchestratorConfig struct {
	TranscriptionTimeout time.Duration
	EnrichmentTimeout    time.Duration
}

// Orchestrator drives a log entry through the processing state machine:
// UPLOADED -> TRANSCRIBING -> TRANSCRIBED -> ENRICHING -> COMPLETED, with
// FAILED as the terminal state of any failed stage. Step failures are
// captured as data on the entry (error fields plus FAILED status), never
// returned to the scheduler, so observers always receive a terminal change
// event describing what happened.
type Orchestrator struct {
	entries     domain.LogEntryRepository
	audio       AudioSource
	transcriber Transcriber
	enricher    Enricher
	publisher   notify.Publisher
	logger      logging.Logger
	metrics     *metrics.Metrics
	cfg         OrchestratorConfig
}

func NewOrchestrator(
	entries domain.LogEntryRepository,
	audio AudioSource,
	transcriber Transcriber,
	enricher Enricher,
	publisher notify.Publisher,
	logger logging.Logger,
	m *metrics.Metrics,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.TranscriptionTimeout <= 0 {
		cfg.TranscriptionTimeout = 5 * time.Minute
	}
	if cfg.EnrichmentTimeout <= 0 {
		cfg.EnrichmentTimeout = 2 * time.Minute
	}

	return &Orchestrator{
		entries:     entries,
		audio:       audio,
		transcriber: transcriber,
		enricher:    enricher,
		publisher:   publisher,
		logger:      logger,
		metrics:     m,
		cfg:         cfg,
	}
}

// Run executes one pipeline pass for the entry. It never returns an error:
// anything unexpected, panics included, marks the entry FAILED with the
// failure recorded as the enrichment error.
func (o *Orchestrator) Run(ctx context.Context, entryID string) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.handleProcessingError(ctx, entryID, fmt.Errorf("panic: %v", r))
		}
		o.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	if err := o.process(ctx, entryID); err != nil {
		o.handleProcessingError(ctx, entryID, err)
	}
}

func (o *Orchestrator) process(ctx context.Context, entryID string) error {
	o.logger.Info(logging.Pipeline, logging.StatusChange, "starting processing", map[logging.ExtraKey]any{
		logging.EntryID: entryID,
	})

	entry, err := o.entries.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to load log entry %s: %w", entryID, err)
	}

	if entry.ProcessingStatus != domain.StatusUploaded {
		o.logger.Warn(logging.Pipeline, logging.StatusChange, "entry not in UPLOADED status, skipping", map[logging.ExtraKey]any{
			logging.EntryID: entryID,
			logging.Status:  string(entry.ProcessingStatus),
		})
		return nil
	}

	// Atomic claim: a concurrent duplicate trigger loses this update and
	// aborts without touching the entry.
	err = o.entries.ClaimForProcessing(ctx, entryID, domain.StatusUploaded, domain.StatusTranscribing)
	if errors.Is(err, domain.ErrStatusConflict) {
		o.logger.Warn(logging.Pipeline, logging.StatusChange, "lost processing claim race, skipping", map[logging.ExtraKey]any{
			logging.EntryID: entryID,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to claim log entry %s: %w", entryID, err)
	}

	entry.ProcessingStatus = domain.StatusTranscribing
	o.emitChange(ctx, entry)

	o.transcribeStep(ctx, entry)

	entry.UpdatedAt = time.Now().UTC()
	if err := o.entries.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist transcription result for %s: %w", entryID, err)
	}
	o.emitChange(ctx, entry)

	if entry.TranscriptionErr != "" {
		o.logger.Error(logging.Pipeline, logging.Transcription, "transcription failed", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: entry.TranscriptionErr,
		})
		return o.finishFailed(ctx, entry)
	}

	if err := entry.TransitionTo(domain.StatusEnriching); err != nil {
		return err
	}
	entry.UpdatedAt = time.Now().UTC()
	if err := o.entries.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist ENRICHING status for %s: %w", entryID, err)
	}
	o.emitChange(ctx, entry)

	o.enrichStep(ctx, entry)

	entry.UpdatedAt = time.Now().UTC()
	if err := o.entries.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist enrichment result for %s: %w", entryID, err)
	}
	o.emitChange(ctx, entry)

	if entry.EnrichmentErr != "" {
		o.logger.Error(logging.Pipeline, logging.Enrichment, "enrichment failed", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: entry.EnrichmentErr,
		})
		return o.finishFailed(ctx, entry)
	}

	o.metrics.PipelineRuns.WithLabelValues("completed").Inc()
	o.logger.Info(logging.Pipeline, logging.StatusChange, "processing completed", map[logging.ExtraKey]any{
		logging.EntryID: entryID,
	})
	return nil
}

// transcribeStep mutates the entry in place: either a transcript and
// TRANSCRIBED status, or a transcription error with the status untouched.
func (o *Orchestrator) transcribeStep(ctx context.Context, entry *domain.LogEntry) {
	if entry.AudioFileID == "" {
		entry.TranscriptionErr = errNoAudioFile
		return
	}

	tctx, cancel := context.WithTimeout(ctx, o.cfg.TranscriptionTimeout)
	defer cancel()

	audio, err := o.audio.AudioContent(tctx, entry.AuthorID, entry.AudioFileID)
	if err != nil {
		entry.TranscriptionErr = "Transcription failed: " + err.Error()
		return
	}

	if len(audio) == 0 {
		entry.TranscriptionErr = errEmptyAudio
		return
	}

	transcript, err := o.transcriber.Transcribe(tctx, audio)
	if err != nil {
		entry.TranscriptionErr = "Transcription failed: " + err.Error()
		return
	}

	if strings.TrimSpace(transcript) == "" {
		entry.TranscriptionErr = errEmptyTranscript
		return
	}

	entry.Transcript = transcript
	entry.TranscriptionErr = ""
	entry.ProcessingStatus = domain.StatusTranscribed
}

// enrichStep mutates the entry in place: either title/summary/category and
// COMPLETED status, or an enrichment error with the status untouched.
func (o *Orchestrator) enrichStep(ctx context.Context, entry *domain.LogEntry) {
	if strings.TrimSpace(entry.Transcript) == "" {
		entry.EnrichmentErr = errNoTranscript
		return
	}

	ectx, cancel := context.WithTimeout(ctx, o.cfg.EnrichmentTimeout)
	defer cancel()

	enrichment, err := o.enricher.Enrich(ectx, entry.Transcript)
	if err != nil {
		entry.EnrichmentErr = "Enrichment failed: " + err.Error()
		return
	}

	entry.Title = enrichment.Title
	entry.SummaryText = enrichment.SummaryText
	entry.Category = enrichment.Category
	entry.EnrichmentErr = ""
	entry.ProcessingStatus = domain.StatusCompleted
}

func (o *Orchestrator) finishFailed(ctx context.Context, entry *domain.LogEntry) error {
	entry.ProcessingStatus = domain.StatusFailed
	entry.UpdatedAt = time.Now().UTC()
	if err := o.entries.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist FAILED status for %s: %w", entry.ID, err)
	}

	o.emitChange(ctx, entry)
	o.metrics.PipelineRuns.WithLabelValues("failed").Inc()
	return nil
}

// handleProcessingError is the outer catch-all: the failure is recorded as
// the enrichment error and the entry goes terminal. It emits a change event
// like every other transition so the owner still learns the run is over.
func (o *Orchestrator) handleProcessingError(ctx context.Context, entryID string, cause error) {
	o.logger.Error(logging.Pipeline, logging.StatusChange, "processing failed", map[logging.ExtraKey]any{
		logging.EntryID:      entryID,
		logging.ErrorMessage: cause.Error(),
	})

	entry, err := o.entries.GetByID(ctx, entryID)
	if err != nil {
		o.logger.Error(logging.Pipeline, logging.StatusChange, "cannot mark entry failed", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	entry.ProcessingStatus = domain.StatusFailed
	entry.EnrichmentErr = cause.Error()
	entry.UpdatedAt = time.Now().UTC()

	if err := o.entries.Upsert(ctx, entry); err != nil {
		o.logger.Error(logging.Pipeline, logging.StatusChange, "cannot persist FAILED entry", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	o.emitChange(ctx, entry)
	o.metrics.PipelineRuns.WithLabelValues("failed").Inc()
}

func (o *Orchestrator) emitChange(ctx context.Context, entry *domain.LogEntry) {
	event := domain.ChangeEvent{
		EntityID:        entry.ID,
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: entry.AuthorID,
		ReceiverUserIDs: []string{entry.AuthorID},
	}

	if err := o.publisher.PublishEntityChanged(ctx, event); err != nil {
		o.logger.Warn(logging.Pipeline, logging.StatusChange, "failed to publish change event", map[logging.ExtraKey]any{
			logging.EntryID:      entry.ID,
			logging.ErrorMessage: err.Error(),
		})
	}
}
