package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/processing"
)

const (
	defaultHighlightCount = 3
	digestItemsPerGroup   = 5
)

// HighlightOptions tunes the highlight synthesizer.
type HighlightOptions struct {
	Count          int
	TargetLanguage string
	CategoryOrder  []string
}

// Highlighter implements ports.Highlighter with a single aggregate model call.
type Highlighter struct {
	client ports.ChatClient
	opts   HighlightOptions
	lang   language
	logger *slog.Logger
}

var _ ports.Highlighter = (*Highlighter)(nil)

// NewHighlighter builds the synthesizer.
func NewHighlighter(client ports.ChatClient, opts HighlightOptions, log *slog.Logger) *Highlighter {
	if opts.Count <= 0 {
		opts.Count = defaultHighlightCount
	}
	if log == nil {
		log = slog.Default()
	}
	return &Highlighter{client: client, opts: opts, lang: lookupLanguage(opts.TargetLanguage), logger: log}
}

// Fallback is the neutral sentence returned when the model call fails.
func (h *Highlighter) Fallback() string {
	return h.lang.fallback
}

// Highlights returns up to Count ranked points. It never fails: a failed call
// yields the fallback sentence and an unparseable answer is split leniently.
func (h *Highlighter) Highlights(ctx context.Context, categories domain.Categorized, names map[string]string) []string {
	if categories.Total() == 0 {
		return nil
	}

	digest := buildDigest(categories, names, h.opts.CategoryOrder)
	answer, err := h.client.Complete(ctx, highlightPrompt(digest, h.opts.Count, h.lang))
	if err != nil {
		h.logger.Error("highlight call failed", "err", err)
		return []string{h.lang.fallback}
	}

	items := parseHighlights(answer)
	if len(items) == 0 {
		h.logger.Warn("empty highlight answer")
		return []string{h.lang.fallback}
	}
	if len(items) > h.opts.Count {
		items = items[:h.opts.Count]
	}
	return items
}

// buildDigest renders "## Category" followed by "- title (source)" lines,
// at most five per category.
func buildDigest(categories domain.Categorized, names map[string]string, order []string) string {
	var b strings.Builder
	for _, category := range processing.CategoryOrder(categories, order) {
		records := categories[category]
		if len(records) == 0 {
			continue
		}
		name := category
		if display, ok := names[category]; ok && display != "" {
			name = display
		}
		fmt.Fprintf(&b, "\n## %s\n", name)
		for i, r := range records {
			if i == digestItemsPerGroup {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.Source)
		}
	}
	return strings.TrimSpace(b.String())
}
