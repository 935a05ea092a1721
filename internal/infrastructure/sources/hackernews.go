package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/panjf2000/ants/v2"

	"DailyDigest/internal/collector"
	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/processing"
)

const (
	hackerNewsURL          = "https://hnrss.org/newest?q=AI+OR+LLM+OR+GPT+OR+machine+learning"
	hackerNewsSource       = "Hacker News"
	defaultHNItems         = 10
	defaultHNMinPoints     = 50
	defaultHNTopK          = 5
	defaultHNContentWorker = 3
)

var (
	pointsLabeled    = regexp.MustCompile(`(?i)points?:\s*(\d+)`)
	pointsTrailing   = regexp.MustCompile(`(?i)(\d+)\s*points?`)
	commentsLabeled  = regexp.MustCompile(`(?i)comments?:\s*(\d+)`)
	commentsTrailing = regexp.MustCompile(`(?i)(\d+)\s*comments?`)
)

// HackerNewsCollector reads an hnrss.org search feed, keeps well-voted
// stories and optionally fetches readable text for the best of them.
type HackerNewsCollector struct {
	url                string
	minPoints          int
	fetchContent       bool
	contentTopK        int
	contentConcurrency int
	settings           collector.Settings
	fetch              *Fetcher
	logger             *slog.Logger
}

var _ collector.Collector = (*HackerNewsCollector)(nil)

// NewHackerNewsCollector wires the discussion board adapter.
func NewHackerNewsCollector(cfg config.HackerNewsConfig, fetch *Fetcher, log *slog.Logger) *HackerNewsCollector {
	feedURL := cfg.URL
	if feedURL == "" {
		feedURL = hackerNewsURL
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultHNItems
	}
	minPoints := cfg.MinPoints
	if minPoints < 0 {
		minPoints = defaultHNMinPoints
	}
	topK := cfg.ContentTopK
	if topK <= 0 {
		topK = defaultHNTopK
	}
	workers := cfg.ContentConcurrency
	if workers <= 0 {
		workers = defaultHNContentWorker
	}
	if log == nil {
		log = slog.Default()
	}

	return &HackerNewsCollector{
		url:                feedURL,
		minPoints:          minPoints,
		fetchContent:       cfg.FetchContent,
		contentTopK:        topK,
		contentConcurrency: workers,
		settings: collector.Settings{
			Enabled:  config.IsEnabled(cfg.Enabled),
			MaxItems: maxItems,
			Keywords: cfg.Keywords,
		},
		fetch:  fetch,
		logger: log,
	}
}

// Name identifies the adapter inside the registry.
func (h *HackerNewsCollector) Name() string {
	return "hackernews"
}

// Enabled reports whether the adapter should run.
func (h *HackerNewsCollector) Enabled() bool {
	return h.settings.Enabled
}

// Collect returns stories above the point threshold, highest score first.
func (h *HackerNewsCollector) Collect(ctx context.Context) []domain.Record {
	body, err := h.fetch.Get(ctx, h.url)
	if err != nil {
		h.logger.Warn("hackernews fetch failed", "err", err)
		return nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		h.logger.Warn("hackernews parse failed", "err", err)
		return nil
	}

	scan := min(len(feed.Items), 2*h.settings.MaxItems)
	records := make([]domain.Record, 0, h.settings.MaxItems)
	for _, item := range feed.Items[:scan] {
		if item == nil || item.Link == "" {
			continue
		}

		points, comments := parseEngagement(item.Description)
		if points < h.minPoints {
			continue
		}
		title := collapseSpace(item.Title)
		if !h.settings.Accepts(title) {
			continue
		}

		records = append(records, domain.Record{
			Title:     title,
			URL:       strings.TrimSpace(item.Link),
			Source:    hackerNewsSource,
			Category:  domain.CategorySocial,
			Published: itemTime(item),
			Summary:   fmt.Sprintf("%d points, %d comments", points, comments),
			Score:     float64(points),
		})
		if len(records) >= h.settings.MaxItems {
			break
		}
	}

	records = processing.SortByScore(records)
	if h.fetchContent {
		h.attachContent(ctx, records[:min(len(records), h.contentTopK)])
	}

	h.logger.Debug("hackernews parsed", "entries", len(feed.Items), "kept", len(records))
	return records
}

// parseEngagement reads "Points: N" / "N points" and the comment count from
// an hnrss description.
func parseEngagement(description string) (points, comments int) {
	return firstNumber(description, pointsLabeled, pointsTrailing),
		firstNumber(description, commentsLabeled, commentsTrailing)
}

func firstNumber(text string, exprs ...*regexp.Regexp) int {
	for _, expr := range exprs {
		if m := expr.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}

// attachContent fills Content for the given records in place. Each worker
// writes to its own slot only.
func (h *HackerNewsCollector) attachContent(ctx context.Context, records []domain.Record) {
	if len(records) == 0 {
		return
	}

	pool, err := ants.NewPool(h.contentConcurrency)
	if err != nil {
		h.logger.Warn("content pool", "err", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		r := &records[i]
		if err := pool.Submit(func() {
			defer wg.Done()
			text, image, err := h.readable(ctx, r.URL)
			if err != nil {
				h.logger.Debug("content fetch failed", "url", r.URL, "err", err)
				return
			}
			r.Content = text
			if r.ImageURL == "" {
				r.ImageURL = image
			}
		}); err != nil {
			wg.Done()
			h.logger.Warn("content submit", "url", r.URL, "err", err)
		}
	}
	wg.Wait()
}

func (h *HackerNewsCollector) readable(ctx context.Context, rawURL string) (string, string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse url: %w", err)
	}

	body, err := h.fetch.Get(ctx, rawURL)
	if err != nil {
		return "", "", err
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", "", fmt.Errorf("readability: %w", err)
	}
	return collapseSpace(article.TextContent), article.Image, nil
}
