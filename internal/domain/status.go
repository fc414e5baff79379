package domain

import "fmt"

type ProcessingStatus string

const (
	StatusPending      ProcessingStatus = "PENDING"
	StatusUploading    ProcessingStatus = "UPLOADING"
	StatusUploaded     ProcessingStatus = "UPLOADED"
	StatusTranscribing ProcessingStatus = "TRANSCRIBING"
	StatusTranscribed  ProcessingStatus = "TRANSCRIBED"
	StatusEnriching    ProcessingStatus = "ENRICHING"
	StatusCompleted    ProcessingStatus = "COMPLETED"
	StatusFailed       ProcessingStatus = "FAILED"
)

// statusTransitions is the pipeline state machine. The client owns the
// PENDING/UPLOADING/UPLOADED stages through upserts; everything after
// UPLOADED is owned by the processing orchestrator. COMPLETED and FAILED
// are terminal until an external upsert resets the entry to UPLOADED.
var statusTransitions = map[ProcessingStatus][]ProcessingStatus{
	StatusPending:      {StatusUploading, StatusUploaded},
	StatusUploading:    {StatusUploaded, StatusFailed},
	StatusUploaded:     {StatusTranscribing},
	StatusTranscribing: {StatusTranscribed, StatusFailed},
	StatusTranscribed:  {StatusEnriching, StatusFailed},
	StatusEnriching:    {StatusCompleted, StatusFailed},
	StatusCompleted:    {StatusUploaded},
	StatusFailed:       {StatusUploaded},
}

func (s ProcessingStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether the orchestrator is done with the entry.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the entry to the next pipeline stage, enforcing the
// transition table above.
func (e *LogEntry) TransitionTo(next ProcessingStatus) error {
	if !e.ProcessingStatus.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, e.ProcessingStatus, next)
	}
	e.ProcessingStatus = next
	return nil
}
