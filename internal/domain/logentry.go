package domain

import (
	"context"
	"time"
)

type Category string

const (
	CategoryMission    Category = "MISSION"
	CategoryOperations Category = "OPERATIONS"
	CategoryPersonal   Category = "PERSONAL"
	CategoryResearch   Category = "RESEARCH"
	CategoryOther      Category = "OTHER"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMission, CategoryOperations, CategoryPersonal, CategoryResearch, CategoryOther:
		return true
	}
	return false
}

type OrderBy string

const (
	OrderByCreatedAt OrderBy = "CREATED_AT"
	OrderByUpdatedAt OrderBy = "UPDATED_AT"
	OrderByTitle     OrderBy = "TITLE"
)

// LogEntry is the audio-backed record that progresses through the
// transcription and enrichment pipeline. IDs are client-generated, the
// mobile app works local-first and syncs via upserts.
type LogEntry struct {
	ID                string           `bson:"_id" json:"id"`
	AuthorID          string           `bson:"author_id" json:"authorId"`
	AudioFileID       string           `bson:"audio_file_id,omitempty" json:"audioFileId,omitempty"`
	AudioURL          string           `bson:"audio_url,omitempty" json:"audioUrl,omitempty"`
	ProcessingStatus  ProcessingStatus `bson:"processing_status" json:"processingStatus"`
	Transcript        string           `bson:"transcript,omitempty" json:"transcript,omitempty"`
	StructuredSummary string           `bson:"structured_summary,omitempty" json:"structuredSummary,omitempty"`
	SummaryText       string           `bson:"summary_text,omitempty" json:"summaryText,omitempty"`
	Title             string           `bson:"title,omitempty" json:"title,omitempty"`
	Category          Category         `bson:"category" json:"category"`
	DurationSeconds   float64          `bson:"duration_seconds,omitempty" json:"durationSeconds,omitempty"`
	FolderID          string           `bson:"folder_id,omitempty" json:"folderId,omitempty"`
	TranscriptionErr  string           `bson:"transcription_error,omitempty" json:"transcriptionError,omitempty"`
	EnrichmentErr     string           `bson:"enrichment_error,omitempty" json:"enrichmentError,omitempty"`
	Archived          bool             `bson:"archived" json:"archived"`
	Deleted           bool             `bson:"deleted" json:"deleted"`
	CreatedAt         time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time        `bson:"updated_at" json:"updatedAt"`
	DeletedAt         *time.Time       `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
}

type LogEntryQuery struct {
	AuthorID       string
	Limit          int
	Offset         int
	Search         string
	OrderBy        OrderBy
	OrderAscending bool
}

type LogEntryRepository interface {
	GetByID(ctx context.Context, id string) (*LogEntry, error)
	GetByIDAndAuthor(ctx context.Context, id, authorID string) (*LogEntry, error)
	GetByAuthor(ctx context.Context, q LogEntryQuery) ([]LogEntry, error)
	CountByAuthor(ctx context.Context, authorID, search string) (int64, error)
	Upsert(ctx context.Context, entry *LogEntry) error
	// ClaimForProcessing atomically moves the entry from `expected` to `next`.
	// Returns ErrStatusConflict when the persisted status is not `expected`.
	ClaimForProcessing(ctx context.Context, id string, expected, next ProcessingStatus) error
	EnsureIndexes(ctx context.Context) error
}
