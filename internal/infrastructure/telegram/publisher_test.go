package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDigest() domain.Digest {
	return domain.Digest{
		Categories: domain.Categorized{
			"news": {{Title: "Release", URL: "https://lab.example/r", Source: "Lab"}},
		},
		Highlights: []string{"Big release"},
	}
}

func TestPublishPostsForm(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
		texts []string
		chats []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		mu.Lock()
		paths = append(paths, r.URL.Path)
		texts = append(texts, r.PostForm.Get("text"))
		chats = append(chats, r.PostForm.Get("chat_id"))
		mu.Unlock()
		_, _ = io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer server.Close()

	p := NewPublisher(config.TelegramConfig{BotToken: "T0K", ChatID: "42"}, quietLogger())
	p.baseURL = server.URL
	p.client = server.Client()

	require.NoError(t, p.Publish(context.Background(), sampleDigest()))
	require.Len(t, texts, 1)
	assert.Equal(t, "/botT0K/sendMessage", paths[0])
	assert.Equal(t, "42", chats[0])
	assert.Contains(t, texts[0], "1. Big release")
	assert.Contains(t, texts[0], "- Release")
}

func TestPublishReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	}))
	defer server.Close()

	p := NewPublisher(config.TelegramConfig{BotToken: "T0K", ChatID: "42"}, quietLogger())
	p.baseURL = server.URL
	p.client = server.Client()

	err := p.Publish(context.Background(), sampleDigest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.NotContains(t, err.Error(), "T0K")
}

func TestPublishRequiresCredentials(t *testing.T) {
	t.Parallel()

	p := NewPublisher(config.TelegramConfig{BotToken: "only-token"}, nil)
	assert.False(t, p.Configured())
	assert.ErrorIs(t, p.Publish(context.Background(), sampleDigest()), ErrNotConfigured)
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, parts)

	long := strings.Repeat("x", 25)
	parts = splitMessage("head\n"+long, 10)
	assert.Equal(t, []string{"head", "xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, parts)

	for _, part := range splitMessage(strings.Repeat("长行\n", 100), 16) {
		assert.LessOrEqual(t, len([]rune(part)), 16)
	}
}
