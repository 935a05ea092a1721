package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/processing"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Enricher, Highlighter and Publisher are optional: a nil Enricher passes
// records through unchanged.
type PipelineDeps struct {
	Source      ports.RecordSource
	Enricher    ports.Enricher
	Highlighter ports.Highlighter
	Publisher   ports.Publisher
	Options     PipelineOptions
	Logger      *slog.Logger
}

// PipelineOptions carries the processing knobs.
type PipelineOptions struct {
	Days           int
	MaxPerCategory int
	CategoryOrder  []string
	CategoryNames  map[string]string
}

// Pipeline implements the collect, filter, rank, enrich, highlight and
// publish workflow for one run.
type Pipeline struct {
	source      ports.RecordSource
	enricher    ports.Enricher
	highlighter ports.Highlighter
	publisher   ports.Publisher
	opts        PipelineOptions
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	opts := deps.Options
	if opts.Days <= 0 {
		opts.Days = processing.DefaultDays
	}
	if opts.MaxPerCategory <= 0 {
		opts.MaxPerCategory = processing.DefaultMaxPerCategory
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		source:      deps.Source,
		enricher:    deps.Enricher,
		highlighter: deps.Highlighter,
		publisher:   deps.Publisher,
		opts:        opts,
		logger:      log,
	}
}

// Run executes one pass relative to now and returns the digest it built.
// Only a publisher failure is reported as an error; every earlier stage
// degrades instead of failing.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.Digest, error) {
	digest := domain.Digest{Date: now, CategoryNames: p.opts.CategoryNames}
	if p.source == nil {
		return digest, nil
	}

	grouped, stats := processing.Process(p.source.Collect(ctx), processing.Options{
		Days:           p.opts.Days,
		MaxPerCategory: p.opts.MaxPerCategory,
		Now:            now,
	})
	p.logger.Info("records processed",
		"collected", stats.Collected,
		"after_dedup", stats.AfterDedup,
		"after_recency", stats.AfterRecency,
		"categories", len(grouped),
		"kept", stats.Kept)

	ranked := processing.Flatten(grouped, p.opts.CategoryOrder)
	switch {
	case p.enricher == nil:
		p.logger.Debug("enrichment skipped", "records", len(ranked))
	case len(ranked) > 0:
		ranked = p.enricher.Enrich(ctx, ranked).Valid
	}

	final := processing.GroupByCategory(ranked)
	digest.Categories = final
	digest.Order = processing.CategoryOrder(final, p.opts.CategoryOrder)

	if digest.Empty() {
		p.logger.Info("nothing to publish")
		return digest, nil
	}

	if p.highlighter != nil {
		digest.Highlights = p.highlighter.Highlights(ctx, final, p.opts.CategoryNames)
	}

	if p.publisher == nil {
		return digest, nil
	}
	if err := p.publisher.Publish(ctx, digest); err != nil {
		return digest, fmt.Errorf("publish digest: %w", err)
	}
	return digest, nil
}
