package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Empty reports whether the digest carries no records.
func (d Digest) Empty() bool {
	return d.Categories.Total() == 0
}

// CategoryIDs returns Order followed by any category it does not mention,
// alphabetically.
func (d Digest) CategoryIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, id := range d.Order {
		if _, ok := d.Categories[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var rest []string
	for id := range d.Categories {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(ids, rest...)
}

// Text renders the digest as plain text: numbered highlights, then one
// block per category.
func (d Digest) Text() string {
	var b strings.Builder

	b.WriteString("Daily Digest")
	if !d.Date.IsZero() {
		b.WriteString(" " + d.Date.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, " (%d items)\n", d.Categories.Total())

	if len(d.Highlights) > 0 {
		b.WriteString("\nHighlights\n")
		for i, h := range d.Highlights {
			fmt.Fprintf(&b, "%d. %s\n", i+1, h)
		}
	}

	for _, id := range d.CategoryIDs() {
		records := d.Categories[id]
		if len(records) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", d.DisplayName(id))
		for _, r := range records {
			writeRecord(&b, r)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeRecord(b *strings.Builder, r Record) {
	fmt.Fprintf(b, "- %s\n", r.Title)
	if summary := strings.TrimSpace(r.Summary); summary != "" {
		fmt.Fprintf(b, "  %s\n", summary)
	}

	meta := r.Source
	if r.Organization != "" {
		meta += " / " + r.Organization
	}
	if r.HasPublished() {
		meta += " / " + r.Published.Format("2006-01-02")
	}
	fmt.Fprintf(b, "  %s\n  %s\n", meta, r.URL)
}
