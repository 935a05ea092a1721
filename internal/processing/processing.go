// Package processing holds the pure stages between collection and enrichment:
// deduplication, recency filtering, ranking, grouping and per-category caps.
package processing

import (
	"slices"
	"strings"
	"time"

	"DailyDigest/internal/domain"
)

const (
	// DefaultDays is the recency window used when none is configured.
	DefaultDays = 7
	// DefaultMaxPerCategory caps each category when none is configured.
	DefaultMaxPerCategory = 5

	titleKeyLength = 50
)

// Options controls Process.
type Options struct {
	Days           int
	MaxPerCategory int
	Now            time.Time
}

// Dedup drops records whose URL or lowercased 50-character title prefix was
// already seen. The first occurrence wins and survivors keep their order.
// Near duplicates that differ inside the prefix are not caught.
func Dedup(records []domain.Record) []domain.Record {
	seenURLs := make(map[string]struct{}, len(records))
	seenTitles := make(map[string]struct{}, len(records))
	unique := make([]domain.Record, 0, len(records))

	for _, r := range records {
		if _, ok := seenURLs[r.URL]; ok {
			continue
		}
		key := titleKey(r.Title)
		if _, ok := seenTitles[key]; ok {
			continue
		}
		seenURLs[r.URL] = struct{}{}
		seenTitles[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

func titleKey(title string) string {
	runes := []rune(strings.ToLower(title))
	if len(runes) > titleKeyLength {
		runes = runes[:titleKeyLength]
	}
	return string(runes)
}

// FilterRecent keeps records published within the last days relative to now.
// Records without a publication time are always kept.
func FilterRecent(records []domain.Record, days int, now time.Time) []domain.Record {
	cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)

	kept := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.HasPublished() && r.Published.UTC().Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// SortByPublished orders records newest first. Missing timestamps sort last
// and ties keep input order.
func SortByPublished(records []domain.Record) []domain.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.Record) int {
		switch {
		case !a.HasPublished() && !b.HasPublished():
			return 0
		case !a.HasPublished():
			return 1
		case !b.HasPublished():
			return -1
		}
		return b.Published.Compare(a.Published)
	})
	return sorted
}

// SortByScore orders records by their source-native score, highest first.
func SortByScore(records []domain.Record) []domain.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return sorted
}

// GroupByCategory partitions records, preserving order inside each group.
func GroupByCategory(records []domain.Record) domain.Categorized {
	grouped := domain.Categorized{}
	for _, r := range records {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// CapPerCategory truncates every group to limit records.
func CapPerCategory(grouped domain.Categorized, limit int) domain.Categorized {
	capped := make(domain.Categorized, len(grouped))
	for category, records := range grouped {
		if len(records) > limit {
			records = records[:limit]
		}
		capped[category] = records
	}
	return capped
}

// Stats counts records after each Process stage.
type Stats struct {
	Collected    int
	AfterDedup   int
	AfterRecency int
	Kept         int
}

// Process runs dedup, recency filter, sort, group and cap in that order.
func Process(records []domain.Record, opts Options) (domain.Categorized, Stats) {
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.MaxPerCategory <= 0 {
		opts.MaxPerCategory = DefaultMaxPerCategory
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	stats := Stats{Collected: len(records)}
	records = Dedup(records)
	stats.AfterDedup = len(records)
	records = FilterRecent(records, opts.Days, opts.Now)
	stats.AfterRecency = len(records)
	grouped := CapPerCategory(GroupByCategory(SortByPublished(records)), opts.MaxPerCategory)
	stats.Kept = grouped.Total()
	return grouped, stats
}

// Flatten lists grouped records with categories in the given order first,
// then any remaining categories alphabetically.
func Flatten(grouped domain.Categorized, order []string) []domain.Record {
	var out []domain.Record
	for _, category := range CategoryOrder(grouped, order) {
		out = append(out, grouped[category]...)
	}
	return out
}

// CategoryOrder returns the categories present in grouped, preferred ones first.
func CategoryOrder(grouped domain.Categorized, preferred []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, category := range preferred {
		if _, ok := grouped[category]; ok && !seen[category] {
			seen[category] = true
			out = append(out, category)
		}
	}
	var rest []string
	for category := range grouped {
		if !seen[category] {
			rest = append(rest, category)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
