package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"DailyDigest/internal/collector"
	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
)

const (
	arxivEndpoint     = "http://export.arxiv.org/api/query"
	arxivSource       = "arXiv"
	arxivSummaryChars = 3000
	arxivShownAuthors = 3
	defaultArxivItems = 50
)

// ArxivCollector queries the arXiv Atom API for the newest submissions.
type ArxivCollector struct {
	endpoint    string
	categories  []string
	filterByOrg bool
	settings    collector.Settings
	fetch       *Fetcher
	logger      *slog.Logger
}

var _ collector.Collector = (*ArxivCollector)(nil)

// NewArxivCollector wires the paper adapter.
func NewArxivCollector(cfg config.ArxivConfig, fetch *Fetcher, log *slog.Logger) *ArxivCollector {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = arxivEndpoint
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultArxivItems
	}
	if log == nil {
		log = slog.Default()
	}

	return &ArxivCollector{
		endpoint:    endpoint,
		categories:  cfg.Categories,
		filterByOrg: cfg.FilterOrganizations,
		settings: collector.Settings{
			Enabled:  config.IsEnabled(cfg.Enabled) && len(cfg.Categories) > 0,
			MaxItems: maxResults,
			Keywords: cfg.Keywords,
		},
		fetch:  fetch,
		logger: log,
	}
}

// Name identifies the adapter inside the registry.
func (a *ArxivCollector) Name() string {
	return "arxiv"
}

// Enabled reports whether the adapter should run.
func (a *ArxivCollector) Enabled() bool {
	return a.settings.Enabled
}

// Collect fetches one page of results sorted by submission date.
func (a *ArxivCollector) Collect(ctx context.Context) []domain.Record {
	queryURL, err := buildQueryURL(a.endpoint, a.categories, a.settings.MaxItems)
	if err != nil {
		a.logger.Warn("arxiv query", "err", err)
		return nil
	}

	body, err := a.fetch.Get(ctx, queryURL)
	if err != nil {
		a.logger.Warn("arxiv fetch failed", "err", err)
		return nil
	}

	entries, err := parseArxivFeed(body)
	if err != nil {
		a.logger.Warn("arxiv parse failed", "err", err)
		return nil
	}

	records := make([]domain.Record, 0, len(entries))
	for _, entry := range entries {
		r := entry.record()
		if r.URL == "" || !a.settings.Accepts(r.Title+" "+r.Summary) {
			continue
		}

		r.Organization = detectOrganization(r.Title, r.Summary, entry.authorLabels())
		if a.filterByOrg && r.Organization == "" {
			continue
		}
		records = append(records, r)
	}

	a.logger.Debug("arxiv parsed", "entries", len(entries), "kept", len(records))
	return records
}

func buildQueryURL(base string, categories []string, maxResults int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid arxiv endpoint %s: %w", base, err)
	}
	if len(categories) == 0 {
		return "", fmt.Errorf("no arxiv categories configured")
	}

	terms := make([]string, 0, len(categories))
	for _, cat := range categories {
		terms = append(terms, "cat:"+strings.TrimSpace(cat))
	}

	query := parsed.Query()
	query.Set("search_query", strings.Join(terms, " OR "))
	query.Set("start", "0")
	query.Set("max_results", strconv.Itoa(maxResults))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Links      []arxivLink     `xml:"link"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type arxivAuthor struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"affiliation"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

func parseArxivFeed(body []byte) ([]arxivEntry, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode atom: %w", err)
	}
	return feed.Entries, nil
}

func (e arxivEntry) record() domain.Record {
	var published time.Time
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		published = ts.UTC()
	}

	tags := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if c.Term != "" {
			tags = append(tags, c.Term)
		}
	}

	return domain.Record{
		Title:     collapseSpace(e.Title),
		URL:       e.link(),
		Source:    arxivSource,
		Category:  domain.CategoryPapers,
		Published: published,
		Summary:   truncate(collapseSpace(e.Summary), arxivSummaryChars),
		Author:    e.authorLine(),
		Tags:      domain.LimitTags(tags),
	}
}

// link prefers the abstract page over the PDF.
func (e arxivEntry) link() string {
	var first string
	for _, l := range e.Links {
		if l.Type == "text/html" && l.Href != "" {
			return l.Href
		}
		if first == "" {
			first = l.Href
		}
	}
	return first
}

func (e arxivEntry) authorLabels() []string {
	labels := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		name := collapseSpace(a.Name)
		if name == "" {
			continue
		}
		if aff := collapseSpace(a.Affiliation); aff != "" {
			name += " (" + aff + ")"
		}
		labels = append(labels, name)
	}
	return labels
}

// authorLine lists the first three authors and the total when there are more.
func (e arxivEntry) authorLine() string {
	labels := e.authorLabels()
	if len(labels) <= arxivShownAuthors {
		return strings.Join(labels, ", ")
	}
	return fmt.Sprintf("%s et al. (%d authors)", strings.Join(labels[:arxivShownAuthors], ", "), len(labels))
}
