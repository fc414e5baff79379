package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/cenkalti/backoff/v5"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/pipeline"
)

type Config struct {
	Model      string
	MaxRetries int
}

// Enricher produces title, summary and category for a transcript through the
// Anthropic messages API. The model is asked for a bare JSON object; the
// response is extracted, validated and retried a bounded number of times
// before the failure surfaces to the pipeline.
type Enricher struct {
	client anthropic.Client
	logger logging.Logger
	cfg    Config
}

func NewEnricher(client anthropic.Client, logger logging.Logger, cfg Config) *Enricher {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &Enricher{
		client: client,
		logger: logger,
		cfg:    cfg,
	}
}

type enrichmentResponse struct {
	Title       string `json:"title"`
	SummaryText string `json:"summaryText"`
	Category    string `json:"category"`
}

func (e *Enricher) Enrich(ctx context.Context, transcript string) (pipeline.Enrichment, error) {
	operation := func() (pipeline.Enrichment, error) {
		result, err := e.callOnce(ctx, transcript)
		if err != nil {
			e.logger.Warn(logging.Pipeline, logging.Enrichment, "enrichment attempt failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		return result, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(e.cfg.MaxRetries)),
		backoff.WithMaxElapsedTime(90*time.Second),
	)
}

func (e *Enricher) callOnce(ctx context.Context, transcript string) (pipeline.Enrichment, error) {
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.cfg.Model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(transcript))),
		},
	})
	if err != nil {
		return pipeline.Enrichment{}, fmt.Errorf("enrichment api call: %w", err)
	}

	if len(msg.Content) == 0 {
		return pipeline.Enrichment{}, fmt.Errorf("empty enrichment response")
	}

	jsonStr, err := extractJSON(msg.Content[0].Text)
	if err != nil {
		return pipeline.Enrichment{}, err
	}

	var resp enrichmentResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return pipeline.Enrichment{}, fmt.Errorf("decode enrichment response: %w", err)
	}

	if strings.TrimSpace(resp.Title) == "" {
		return pipeline.Enrichment{}, fmt.Errorf("enrichment response has empty title")
	}

	category := domain.Category(strings.ToUpper(strings.TrimSpace(resp.Category)))
	if !category.Valid() {
		category = domain.CategoryOther
	}

	return pipeline.Enrichment{
		Title:       strings.TrimSpace(resp.Title),
		SummaryText: strings.TrimSpace(resp.SummaryText),
		Category:    category,
	}, nil
}

func buildPrompt(transcript string) string {
	return fmt.Sprintf(`You are the logbook assistant aboard a starship. Given the raw transcript of a crew member's spoken log entry, produce a concise record in JSON format.

Transcript:
%s

Output ONLY a valid JSON object matching this exact schema:
{
  "title": "<short descriptive title, at most 80 characters>",
  "summaryText": "<2-4 sentence summary of the entry>",
  "category": "<MISSION|OPERATIONS|PERSONAL|RESEARCH|OTHER>"
}

Rules:
- Keep the title specific to the content, not generic
- Summarize in the same language as the transcript
- Pick the single best-fitting category
- Output ONLY the JSON, no markdown, no explanations`, transcript)
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
