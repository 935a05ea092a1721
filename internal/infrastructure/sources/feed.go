package sources

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"DailyDigest/internal/collector"
	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
)

const (
	defaultFeedItems = 10
	feedSummaryChars = 500
)

// FeedCollector reads one RSS or Atom feed.
type FeedCollector struct {
	id       string
	name     string
	url      string
	category string
	settings collector.Settings
	fetch    *Fetcher
	logger   *slog.Logger
}

var _ collector.Collector = (*FeedCollector)(nil)

// NewFeedCollector builds an adapter for a configured feed.
func NewFeedCollector(cfg config.FeedConfig, fetch *Fetcher, log *slog.Logger) *FeedCollector {
	name := cfg.Name
	if name == "" {
		name = cfg.ID
	}
	category := cfg.Category
	if category == "" {
		category = domain.CategoryGeneral
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultFeedItems
	}
	if log == nil {
		log = slog.Default()
	}

	return &FeedCollector{
		id:       cfg.ID,
		name:     name,
		url:      cfg.URL,
		category: category,
		settings: collector.Settings{
			Enabled:  config.IsEnabled(cfg.Enabled) && cfg.URL != "",
			MaxItems: maxItems,
			Keywords: cfg.Keywords,
		},
		fetch:  fetch,
		logger: log,
	}
}

// Name identifies the adapter inside the registry.
func (f *FeedCollector) Name() string {
	return "feed:" + f.id
}

// Enabled reports whether the feed should run.
func (f *FeedCollector) Enabled() bool {
	return f.settings.Enabled
}

// Collect scans up to twice the item cap so the keyword filter still has
// enough candidates, and stops once the cap is reached.
func (f *FeedCollector) Collect(ctx context.Context) []domain.Record {
	body, err := f.fetch.Get(ctx, f.url)
	if err != nil {
		f.logger.Warn("feed fetch failed", "feed", f.name, "err", err)
		return nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		f.logger.Warn("feed parse failed", "feed", f.name, "err", err)
		return nil
	}

	scan := min(len(feed.Items), 2*f.settings.MaxItems)
	records := make([]domain.Record, 0, f.settings.MaxItems)
	for _, item := range feed.Items[:scan] {
		if item == nil || item.Link == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		title := collapseSpace(item.Title)
		if !f.settings.Accepts(title + " " + summary) {
			continue
		}

		records = append(records, domain.Record{
			Title:     title,
			URL:       strings.TrimSpace(item.Link),
			Source:    f.name,
			Category:  f.category,
			Published: itemTime(item),
			Summary:   truncate(CleanHTML(summary), feedSummaryChars),
			Author:    itemAuthor(item),
			Tags:      domain.LimitTags(item.Categories),
			ImageURL:  itemImage(item),
		})
		if len(records) >= f.settings.MaxItems {
			break
		}
	}

	f.logger.Debug("feed parsed", "feed", f.name, "entries", len(feed.Items), "kept", len(records))
	return records
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
