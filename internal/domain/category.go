package domain

import "time"

// Category identifiers shared by adapters and publishers.
const (
	CategoryPapers  = "papers"
	CategorySocial  = "social"
	CategoryGeneral = "general"
)

// Categorized maps a category id to records in rank order.
type Categorized map[string][]Record

// Total counts records across all categories.
func (c Categorized) Total() int {
	total := 0
	for _, records := range c {
		total += len(records)
	}
	return total
}

// Digest is the payload handed to publishers at the end of a run.
// Order lists category ids in display order.
type Digest struct {
	Date          time.Time
	Categories    Categorized
	Order         []string
	CategoryNames map[string]string
	Highlights    []string
}

// DisplayName resolves a category id to its configured label.
func (d Digest) DisplayName(category string) string {
	if name, ok := d.CategoryNames[category]; ok && name != "" {
		return name
	}
	return category
}

// EnrichmentResult is the outcome of one enrichment batch.
// Records keeps input length and order; Valid excludes irrelevant items.
type EnrichmentResult struct {
	Records    []Record
	Valid      []Record
	Dropped    int
	Translated int
}
