package pipeline

import (
	"context"

	"github.com/stardeck/logbook/internal/domain"
)

// Transcriber turns audio bytes into a transcript. Implementations are
// remote or model-backed and may retry internally, the orchestrator only
// sees the final result.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Enrichment is the structured result the enricher extracts from a
// transcript.
type Enrichment struct {
	Title       string          `json:"title"`
	SummaryText string          `json:"summaryText"`
	Category    domain.Category `json:"category"`
}

type Enricher interface {
	Enrich(ctx context.Context, transcript string) (Enrichment, error)
}

// AudioSource resolves a log entry's audio reference to its raw bytes.
type AudioSource interface {
	AudioContent(ctx context.Context, userID, fileID string) ([]byte, error)
}
