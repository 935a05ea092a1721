// Package enrichment runs the model-backed stages of a digest: per-record
// relevance classification, translation and summarization, and the aggregate
// highlight call.
package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const (
	// Irrelevant is written into Summary for records the model rejects.
	Irrelevant = "IRRELEVANT"
	// SummaryUnavailable replaces the summary when the model answer is not valid JSON.
	SummaryUnavailable = "[summary unavailable]"

	defaultConcurrency     = 5
	defaultMaxInputChars   = 10000
	defaultMaxSummaryChars = 300
	defaultMinScriptRatio  = 0.1
)

// Options tunes the enricher.
type Options struct {
	Concurrency     int
	MaxInputChars   int
	MaxSummaryChars int
	TargetLanguage  string
	MinScriptRatio  float64
	MaxAttempts     int
	RetryDelay      time.Duration
}

// Enricher implements ports.Enricher. The permit pool is the only state shared
// between item tasks.
type Enricher struct {
	client  ports.ChatClient
	permits *semaphore.Weighted
	opts    Options
	lang    language
	logger  *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// New builds an enricher around a chat client.
func New(client ports.ChatClient, opts Options, log *slog.Logger) *Enricher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = defaultMaxInputChars
	}
	if opts.MaxSummaryChars <= 0 {
		opts.MaxSummaryChars = defaultMaxSummaryChars
	}
	if opts.MinScriptRatio <= 0 {
		opts.MinScriptRatio = defaultMinScriptRatio
	}
	if log == nil {
		log = slog.Default()
	}

	return &Enricher{
		client:  client,
		permits: semaphore.NewWeighted(int64(opts.Concurrency)),
		opts:    opts,
		lang:    lookupLanguage(opts.TargetLanguage),
		logger:  log,
	}
}

type indexed struct {
	pos    int
	record domain.Record
}

// Enrich processes every record concurrently and always returns one record per
// input, in input order. Failed items come back unchanged.
func (e *Enricher) Enrich(ctx context.Context, records []domain.Record) domain.EnrichmentResult {
	results := make(chan indexed, len(records))
	for i, r := range records {
		go func(pos int, r domain.Record) {
			results <- indexed{pos: pos, record: e.enrichIsolated(ctx, r)}
		}(i, r)
	}

	out := make([]domain.Record, len(records))
	for range records {
		res := <-results
		out[res.pos] = res.record
	}

	result := domain.EnrichmentResult{Records: out}
	for _, r := range out {
		if r.Summary == Irrelevant {
			result.Dropped++
			continue
		}
		if r.IsTranslated {
			result.Translated++
		}
		result.Valid = append(result.Valid, r)
	}

	e.logger.Info("enrichment done",
		"total", len(out),
		"valid", len(result.Valid),
		"dropped", result.Dropped,
		"translated", result.Translated)
	return result
}

func (e *Enricher) enrichIsolated(ctx context.Context, r domain.Record) (out domain.Record) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("enrichment panicked", "fingerprint", r.Fingerprint(), "url", r.URL, "panic", p)
			out = r
		}
	}()

	enriched, err := e.enrichOne(ctx, r)
	if err != nil {
		e.logger.Error("enrichment failed", "fingerprint", r.Fingerprint(), "url", r.URL, "err", err)
		return r
	}
	return enriched
}

func (e *Enricher) enrichOne(ctx context.Context, r domain.Record) (domain.Record, error) {
	body := truncateRunes(strings.TrimSpace(r.Body()), e.opts.MaxInputChars)

	answer, err := e.complete(ctx, itemPrompt(r, body, e.lang, e.opts.MaxSummaryChars))
	if err != nil {
		return r, fmt.Errorf("model call: %w", err)
	}

	reply := parseItemReply(answer)
	out := r
	if !reply.parsed() {
		e.logger.Warn("unparseable model answer",
			"fingerprint", r.Fingerprint(), "err", reply.err, "answer", truncateRunes(reply.raw, 200))
		out.Summary = SummaryUnavailable
		return out, nil
	}

	if !reply.fields.IsRelevant {
		e.logger.Debug("record judged irrelevant", "fingerprint", r.Fingerprint(), "title", r.Title)
		out.Summary = Irrelevant
		return out, nil
	}

	if reply.fields.Title != "" {
		out.Title = reply.fields.Title
	}

	summary := reply.fields.Summary
	if summary == "" {
		summary = e.lang.placeholder(out.Title)
	}
	if e.wrongLanguage(summary) {
		summary = e.secondChance(ctx, r, summary)
	}
	out.Summary = clampSummary(summary, e.opts.MaxSummaryChars)
	out.IsTranslated = e.wrongLanguage(r.Title+" "+r.Summary) && !e.wrongLanguage(out.Summary)

	return out, nil
}

// secondChance asks for a plain translation; any failure keeps the given text.
func (e *Enricher) secondChance(ctx context.Context, r domain.Record, text string) string {
	translated, err := e.complete(ctx, translatePrompt(text, e.lang))
	if err != nil {
		e.logger.Debug("translation fallback failed", "fingerprint", r.Fingerprint(), "err", err)
		return text
	}
	translated = strings.TrimSpace(stripCodeFence(translated))
	if translated == "" {
		return text
	}
	return translated
}

func (e *Enricher) wrongLanguage(text string) bool {
	return e.lang.scriptRatio(text) < e.opts.MinScriptRatio
}

// complete holds one permit for the duration of a model request, retries included.
func (e *Enricher) complete(ctx context.Context, prompt ports.Prompt) (string, error) {
	if err := e.permits.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire permit: %w", err)
	}
	defer e.permits.Release(1)

	var answer string
	err := retryWithBackoff(ctx, e.opts.MaxAttempts, e.opts.RetryDelay, func() error {
		var callErr error
		answer, callErr = e.client.Complete(ctx, prompt)
		return callErr
	})
	return answer, err
}
