package ports

import (
	"context"
	"time"

	"DailyDigest/internal/domain"
)

// RecordSource gathers normalized records from every enabled adapter.
type RecordSource interface {
	Collect(ctx context.Context) []domain.Record
}

// Prompt is a single request to a chat model.
type Prompt struct {
	System    string
	User      string
	JSON      bool // ask the provider for a JSON-only answer
	MaxTokens int
}

// ChatClient sends prompts to an external language model.
type ChatClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Enricher classifies, translates and summarizes records.
type Enricher interface {
	Enrich(ctx context.Context, records []domain.Record) domain.EnrichmentResult
}

// Highlighter condenses a categorized digest into a few top points.
type Highlighter interface {
	Highlights(ctx context.Context, categories domain.Categorized, names map[string]string) []string
}

// Publisher hands the final digest to a delivery channel.
type Publisher interface {
	Publish(ctx context.Context, digest domain.Digest) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
