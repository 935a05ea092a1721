package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"DailyDigest/pkg/logger"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "DAILY_DIGEST_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	llmProviderEnv    = "LLM_PROVIDER"
	llmModelEnv       = "LLM_MODEL"
	llmEndpointEnv    = "LLM_ENDPOINT"
	llmAPIKeyEnv      = "LLM_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Processing    ProcessingConfig   `yaml:"processing"`
	LLM           LLMConfig          `yaml:"llm"`
	Enrichment    EnrichmentConfig   `yaml:"enrichment"`
	Sources       SourcesConfig      `yaml:"sources"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// ProcessingConfig drives dedup, recency filtering and per-category caps.
type ProcessingConfig struct {
	Days           int               `yaml:"days"`
	MaxPerCategory int               `yaml:"maxPerCategory"`
	CategoryOrder  []string          `yaml:"categoryOrder"`
	CategoryNames  map[string]string `yaml:"categoryNames"`
}

// LLMConfig describes how to reach the language model.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// EnrichmentConfig bounds the per-item model stage and the highlight call.
type EnrichmentConfig struct {
	Concurrency     int           `yaml:"concurrency"`
	MaxInputChars   int           `yaml:"maxInputChars"`
	MaxSummaryChars int           `yaml:"maxSummaryChars"`
	TargetLanguage  string        `yaml:"targetLanguage"`
	MinScriptRatio  float64       `yaml:"minScriptRatio"`
	MaxAttempts     int           `yaml:"maxAttempts"`
	RetryDelay      time.Duration `yaml:"retryDelay"`
	HighlightCount  int           `yaml:"highlightCount"`
}

// SourcesConfig groups every adapter.
type SourcesConfig struct {
	Timeout    time.Duration    `yaml:"timeout"`
	UserAgent  string           `yaml:"userAgent"`
	Feeds      []FeedConfig     `yaml:"feeds"`
	Arxiv      ArxivConfig      `yaml:"arxiv"`
	HackerNews HackerNewsConfig `yaml:"hackernews"`
	Nitter     NitterConfig     `yaml:"nitter"`
}

// FeedConfig is one syndication feed.
type FeedConfig struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	MaxItems int      `yaml:"maxItems"`
	Enabled  *bool    `yaml:"enabled"`
}

// ArxivConfig drives the paper API adapter.
type ArxivConfig struct {
	Enabled             *bool    `yaml:"enabled"`
	Endpoint            string   `yaml:"endpoint"`
	Categories          []string `yaml:"categories"`
	MaxResults          int      `yaml:"maxResults"`
	FilterOrganizations bool     `yaml:"filterOrganizations"`
	Keywords            []string `yaml:"keywords"`
}

// HackerNewsConfig drives the discussion board adapter.
type HackerNewsConfig struct {
	Enabled            *bool    `yaml:"enabled"`
	URL                string   `yaml:"url"`
	MinPoints          int      `yaml:"minPoints"`
	MaxItems           int      `yaml:"maxItems"`
	Keywords           []string `yaml:"keywords"`
	FetchContent       bool     `yaml:"fetchContent"`
	ContentTopK        int      `yaml:"contentTopK"`
	ContentConcurrency int      `yaml:"contentConcurrency"`
}

// NitterConfig drives the social post adapter.
type NitterConfig struct {
	Enabled           *bool           `yaml:"enabled"`
	Accounts          []AccountConfig `yaml:"accounts"`
	Instances         []string        `yaml:"instances"`
	PerAccount        int             `yaml:"perAccount"`
	RequestsPerSecond float64         `yaml:"requestsPerSecond"`
	Keywords          []string        `yaml:"keywords"`
}

// AccountConfig is one followed social account.
type AccountConfig struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// IsEnabled treats an absent flag as enabled.
func IsEnabled(flag *bool) bool {
	return flag == nil || *flag
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.New("config").Printf("cannot read .env: %v", err)
	}
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads the YAML file at path over the defaults. An empty path means defaults only.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			logger.New("config").Printf("cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				logger.New("config").Printf("cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}

	switch {
	case os.Getenv(llmAPIKeyEnv) != "":
		c.LLM.APIKey = os.Getenv(llmAPIKeyEnv)
	case c.LLM.APIKey != "":
	case strings.EqualFold(c.LLM.Provider, "anthropic"):
		c.LLM.APIKey = os.Getenv(anthropicKeyEnv)
	default:
		c.LLM.APIKey = os.Getenv(openAIAPIKeyEnv)
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := defaultConfig()

	if c.Processing.Days <= 0 {
		c.Processing.Days = def.Processing.Days
	}
	if c.Processing.MaxPerCategory <= 0 {
		c.Processing.MaxPerCategory = def.Processing.MaxPerCategory
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = def.LLM.Timeout
	}
	if c.Sources.Timeout <= 0 {
		c.Sources.Timeout = def.Sources.Timeout
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = def.Sources.UserAgent
	}

	e := &c.Enrichment
	if e.Concurrency <= 0 {
		e.Concurrency = def.Enrichment.Concurrency
	}
	if e.MaxInputChars <= 0 {
		e.MaxInputChars = def.Enrichment.MaxInputChars
	}
	if e.MaxSummaryChars <= 0 {
		e.MaxSummaryChars = def.Enrichment.MaxSummaryChars
	}
	if e.TargetLanguage == "" {
		e.TargetLanguage = def.Enrichment.TargetLanguage
	}
	if e.MinScriptRatio <= 0 || e.MinScriptRatio > 1 {
		e.MinScriptRatio = def.Enrichment.MinScriptRatio
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = def.Enrichment.MaxAttempts
	}
	if e.HighlightCount <= 0 {
		e.HighlightCount = def.Enrichment.HighlightCount
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.New("config").Printf("unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{CronExpression: "0 8 * * *", Timezone: defaultTimezone, location: tz},
		Processing: ProcessingConfig{
			Days:           7,
			MaxPerCategory: 5,
			CategoryOrder:  []string{"news", "research", "papers", "social"},
			CategoryNames: map[string]string{
				"news":     "Industry News",
				"research": "Research Blogs",
				"papers":   "Papers",
				"social":   "Community",
			},
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  60 * time.Second,
		},
		Enrichment: EnrichmentConfig{
			Concurrency:     5,
			MaxInputChars:   10000,
			MaxSummaryChars: 300,
			TargetLanguage:  "zh",
			MinScriptRatio:  0.1,
			MaxAttempts:     1,
			RetryDelay:      2 * time.Second,
			HighlightCount:  3,
		},
		Sources: SourcesConfig{
			Timeout:   30 * time.Second,
			UserAgent: "DailyDigest/1.0",
			Feeds: []FeedConfig{
				{ID: "openai", Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Category: "news", MaxItems: 10},
				{ID: "google-ai", Name: "Google AI Blog", URL: "https://blog.google/technology/ai/rss/", Category: "news", MaxItems: 10},
				{ID: "huggingface", Name: "Hugging Face Blog", URL: "https://huggingface.co/blog/feed.xml", Category: "research", MaxItems: 10},
				{
					ID: "mit-tr", Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/",
					Category: "news", MaxItems: 10, Keywords: []string{"AI", "LLM", "model", "machine learning"},
				},
			},
			Arxiv: ArxivConfig{
				Endpoint:            "http://export.arxiv.org/api/query",
				Categories:          []string{"cs.AI", "cs.LG", "cs.CL"},
				MaxResults:          50,
				FilterOrganizations: true,
			},
			HackerNews: HackerNewsConfig{
				URL:                "https://hnrss.org/newest?q=AI+OR+LLM+OR+GPT+OR+machine+learning&points=50",
				MinPoints:          50,
				MaxItems:           10,
				FetchContent:       true,
				ContentTopK:        5,
				ContentConcurrency: 3,
			},
			Nitter: NitterConfig{
				Accounts: []AccountConfig{
					{Username: "karpathy", Name: "Andrej Karpathy"},
					{Username: "OpenAI", Name: "OpenAI"},
				},
				Instances:         []string{"https://nitter.privacydev.net", "https://nitter.poast.org"},
				PerAccount:        5,
				RequestsPerSecond: 2,
			},
		},
	}
}
