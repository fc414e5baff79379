package logentries

import (
	"time"

	"github.com/stardeck/logbook/internal/domain"
)

type upsertLogEntryRequest struct {
	AuthorID         string     `json:"authorId,omitempty"`
	AudioFileID      string     `json:"audioFileId,omitempty"`
	AudioURL         string     `json:"audioUrl,omitempty"`
	ProcessingStatus string     `json:"processingStatus,omitempty"`
	Transcript       string     `json:"transcript,omitempty"`
	SummaryText      string     `json:"summaryText,omitempty"`
	Title            string     `json:"title,omitempty"`
	Category         string     `json:"category,omitempty"`
	DurationSeconds  float64    `json:"durationSeconds,omitempty"`
	FolderID         string     `json:"folderId,omitempty"`
	Archived         bool       `json:"archived,omitempty"`
	Deleted          bool       `json:"deleted,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

func (req *upsertLogEntryRequest) toDomain(id string) *domain.LogEntry {
	entry := &domain.LogEntry{
		ID:               id,
		AuthorID:         req.AuthorID,
		AudioFileID:      req.AudioFileID,
		AudioURL:         req.AudioURL,
		ProcessingStatus: domain.ProcessingStatus(req.ProcessingStatus),
		Transcript:       req.Transcript,
		SummaryText:      req.SummaryText,
		Title:            req.Title,
		Category:         domain.Category(req.Category),
		DurationSeconds:  req.DurationSeconds,
		FolderID:         req.FolderID,
		Archived:         req.Archived,
		Deleted:          req.Deleted,
	}
	if req.CreatedAt != nil {
		entry.CreatedAt = req.CreatedAt.UTC()
	}
	if entry.Deleted {
		now := time.Now().UTC()
		entry.DeletedAt = &now
	}
	return entry
}
