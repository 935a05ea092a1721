package collector

import (
	"context"
	"errors"
	"strings"

	"DailyDigest/internal/domain"
)

var (
	// ErrUnknownCollector is returned when a registry lookup misses.
	ErrUnknownCollector = errors.New("collector is not registered")
	// ErrAdapterPanic marks an adapter that panicked instead of degrading to an empty result.
	ErrAdapterPanic = errors.New("collector panicked")
)

// Collector is a source adapter. Collect never fails: adapters log their
// own network and parse errors and return whatever they gathered, possibly nothing.
type Collector interface {
	Name() string
	Enabled() bool
	Collect(ctx context.Context) []domain.Record
}

// Settings is the configuration every adapter carries.
type Settings struct {
	Enabled  bool
	MaxItems int
	Keywords []string
}

// Accepts applies the keyword allow-list to the given text.
func (s Settings) Accepts(text string) bool {
	return MatchesKeywords(text, s.Keywords)
}

// MatchesKeywords reports whether text contains any keyword, ignoring case.
// An empty allow-list accepts everything.
func MatchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
