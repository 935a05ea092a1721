package sources

import (
	"log/slog"

	"DailyDigest/internal/collector"
	"DailyDigest/internal/config"
)

// NewRegistry registers every configured adapter: feeds in config order,
// then arXiv, Hacker News and Nitter. Disabled adapters are registered too
// so they can be listed; Registry.Enabled filters them.
func NewRegistry(cfg config.SourcesConfig, log *slog.Logger) *collector.Registry {
	if log == nil {
		log = slog.Default()
	}
	fetch := NewFetcher(nil, cfg.Timeout, cfg.UserAgent)
	reg := collector.NewRegistry()

	for _, feed := range cfg.Feeds {
		if feed.ID == "" {
			log.Warn("skipping feed without id", "url", feed.URL)
			continue
		}
		reg.Register(NewFeedCollector(feed, fetch, log.With("adapter", "feed:"+feed.ID)))
	}
	reg.Register(NewArxivCollector(cfg.Arxiv, fetch, log.With("adapter", "arxiv")))
	reg.Register(NewHackerNewsCollector(cfg.HackerNews, fetch, log.With("adapter", "hackernews")))
	reg.Register(NewNitterCollector(cfg.Nitter, fetch, log.With("adapter", "nitter")))

	return reg
}
