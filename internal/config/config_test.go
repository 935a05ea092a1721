package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		logLevelEnv, logFormatEnv, llmProviderEnv, llmModelEnv, llmEndpointEnv, llmAPIKeyEnv,
		openAIAPIKeyEnv, anthropicKeyEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFile("")
	assert.Equal(t, 7, cfg.Processing.Days)
	assert.Equal(t, 5, cfg.Processing.MaxPerCategory)
	assert.Equal(t, 5, cfg.Enrichment.Concurrency)
	assert.Equal(t, 10000, cfg.Enrichment.MaxInputChars)
	assert.Equal(t, 300, cfg.Enrichment.MaxSummaryChars)
	assert.Equal(t, 1, cfg.Enrichment.MaxAttempts)
	assert.Equal(t, 3, cfg.Enrichment.HighlightCount)
	assert.Equal(t, "zh", cfg.Enrichment.TargetLanguage)
	assert.Equal(t, 30*time.Second, cfg.Sources.Timeout)
	assert.NotEmpty(t, cfg.Sources.Feeds)
	assert.True(t, IsEnabled(cfg.Sources.Arxiv.Enabled))
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
logging:
  level: debug
scheduler:
  timezone: Asia/Shanghai
processing:
  days: 3
  maxPerCategory: 2
  categoryNames:
    papers: 论文
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
  timeout: 15s
enrichment:
  concurrency: 2
  minScriptRatio: 5
sources:
  feeds:
    - id: only
      name: Only Feed
      url: https://example.org/rss
      category: news
      enabled: false
  arxiv:
    enabled: false
`)

	cfg := LoadFile(path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Processing.Days)
	assert.Equal(t, 2, cfg.Processing.MaxPerCategory)
	assert.Equal(t, "论文", cfg.Processing.CategoryNames["papers"])
	assert.Equal(t, "Community", cfg.Processing.CategoryNames["social"])
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Enrichment.Concurrency)
	assert.Equal(t, 0.1, cfg.Enrichment.MinScriptRatio)
	require.Len(t, cfg.Sources.Feeds, 1)
	assert.False(t, IsEnabled(cfg.Sources.Feeds[0].Enabled))
	assert.False(t, IsEnabled(cfg.Sources.Arxiv.Enabled))
	assert.True(t, IsEnabled(cfg.Sources.HackerNews.Enabled))
	assert.Equal(t, "Asia/Shanghai", cfg.Scheduler.Location().String())
}

func TestLoadFileFallsBackOnBrokenYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "processing: [not, a, map")
	cfg := LoadFile(path)
	assert.Equal(t, 7, cfg.Processing.Days)

	cfg = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 5, cfg.Processing.MaxPerCategory)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(llmAPIKeyEnv, "generic-key")
	t.Setenv(llmModelEnv, "gpt-4.1-mini")
	t.Setenv(telegramTokenEnv, "bot")
	t.Setenv(telegramChatIDEnv, "chat")
	t.Setenv(logFormatEnv, "json")

	cfg := LoadFile("")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "generic-key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	assert.Equal(t, "bot", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "chat", cfg.Notifications.Telegram.ChatID)
}

func TestProviderSpecificKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv(llmProviderEnv, "anthropic")
	t.Setenv(anthropicKeyEnv, "anthropic-key")
	t.Setenv(openAIAPIKeyEnv, "openai-key")

	cfg := LoadFile("")
	assert.Equal(t, "anthropic-key", cfg.LLM.APIKey)

	t.Setenv(llmProviderEnv, "openai")
	cfg = LoadFile("")
	assert.Equal(t, "openai-key", cfg.LLM.APIKey)
}

func TestUnknownTimezoneFallsBack(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "scheduler:\n  timezone: Mars/Olympus\n")
	cfg := LoadFile(path)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}
