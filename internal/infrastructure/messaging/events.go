package messaging

const (
	PipelineQueue   = "pipeline"
	DeadLetterQueue = "dead_letter_queue"
)

// Routing keys
const (
	EventLogEntryUploaded = "logentry.uploaded"
)

// PipelineEventData is the body of a pipeline trigger message.
type PipelineEventData struct {
	EntryID string `json:"entryId"`
}
