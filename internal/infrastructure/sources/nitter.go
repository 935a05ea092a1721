package sources

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"DailyDigest/internal/collector"
	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
)

const (
	defaultPostsPerAccount = 5
	maxPostChars           = 280
	repostPrefix           = "RT @"
)

var picLink = regexp.MustCompile(`pic\.twitter\.com/\S+`)

// NitterCollector reads account timelines through Nitter RSS mirrors.
// Mirrors are tried in random order and the first one that yields posts wins.
type NitterCollector struct {
	accounts   []config.AccountConfig
	instances  []string
	perAccount int
	settings   collector.Settings
	limiter    *rate.Limiter
	shuffle    func([]string)
	fetch      *Fetcher
	logger     *slog.Logger
}

var _ collector.Collector = (*NitterCollector)(nil)

// NewNitterCollector wires the social post adapter.
func NewNitterCollector(cfg config.NitterConfig, fetch *Fetcher, log *slog.Logger) *NitterCollector {
	perAccount := cfg.PerAccount
	if perAccount <= 0 {
		perAccount = defaultPostsPerAccount
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if log == nil {
		log = slog.Default()
	}

	return &NitterCollector{
		accounts:   cfg.Accounts,
		instances:  cfg.Instances,
		perAccount: perAccount,
		settings: collector.Settings{
			Enabled:  config.IsEnabled(cfg.Enabled) && len(cfg.Accounts) > 0 && len(cfg.Instances) > 0,
			MaxItems: perAccount,
			Keywords: cfg.Keywords,
		},
		limiter: rate.NewLimiter(limit, 1),
		shuffle: func(s []string) {
			rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		},
		fetch:  fetch,
		logger: log,
	}
}

// Name identifies the adapter inside the registry.
func (n *NitterCollector) Name() string {
	return "nitter"
}

// Enabled reports whether the adapter should run.
func (n *NitterCollector) Enabled() bool {
	return n.settings.Enabled
}

// Collect walks the accounts sequentially, pacing requests with the limiter.
func (n *NitterCollector) Collect(ctx context.Context) []domain.Record {
	var records []domain.Record
	for _, account := range n.accounts {
		if ctx.Err() != nil {
			break
		}
		posts := n.collectAccount(ctx, account)
		n.logger.Debug("account collected", "account", account.Username, "count", len(posts))
		records = append(records, posts...)
	}
	return records
}

func (n *NitterCollector) collectAccount(ctx context.Context, account config.AccountConfig) []domain.Record {
	username := strings.TrimPrefix(strings.TrimSpace(account.Username), "@")
	if username == "" {
		return nil
	}

	instances := slices.Clone(n.instances)
	n.shuffle(instances)

	for _, instance := range instances {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil
		}

		feedURL := strings.TrimSuffix(instance, "/") + "/" + username + "/rss"
		body, err := n.fetch.Get(ctx, feedURL)
		if err != nil {
			n.logger.Debug("nitter instance failed", "instance", instance, "account", username, "err", err)
			continue
		}

		feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
		if err != nil {
			n.logger.Debug("nitter feed unreadable", "instance", instance, "account", username, "err", err)
			continue
		}

		if posts := n.toRecords(feed.Items, account); len(posts) > 0 {
			return posts
		}
	}

	n.logger.Warn("no nitter instance answered", "account", username)
	return nil
}

func (n *NitterCollector) toRecords(items []*gofeed.Item, account config.AccountConfig) []domain.Record {
	name := strings.TrimSpace(account.Name)
	if name == "" {
		name = account.Username
	}
	source := name
	if !strings.HasPrefix(source, "@") {
		source = "@" + source
	}

	var records []domain.Record
	for _, item := range items[:min(len(items), n.perAccount)] {
		if item == nil || item.Title == "" {
			continue
		}
		text := cleanPost(item.Title)
		if text == "" || strings.HasPrefix(text, repostPrefix) {
			continue
		}
		if !n.settings.Accepts(text) {
			continue
		}

		records = append(records, domain.Record{
			Title:     truncate(text, maxPostChars),
			URL:       strings.TrimSpace(item.Link),
			Source:    source,
			Category:  domain.CategorySocial,
			Published: itemTime(item),
			Author:    name,
		})
	}
	return records
}

func cleanPost(text string) string {
	return CleanHTML(picLink.ReplaceAllString(text, ""))
}
