package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const (
	apiBaseURL = "https://api.telegram.org"
	// Telegram rejects messages above 4096 UTF-16 units; stay below it.
	maxMessageRunes = 4000
)

// ErrNotConfigured is returned when the bot token or chat id is missing.
var ErrNotConfigured = errors.New("telegram publisher misconfigured")

// Publisher sends digests to a Telegram chat via the bot API.
type Publisher struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher registers bot token and chat identifier.
func NewPublisher(cfg config.TelegramConfig, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  apiBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   log,
	}
}

// Configured reports whether both credentials are present.
func (p *Publisher) Configured() bool {
	return p != nil && p.botToken != "" && p.chatID != ""
}

// Publish posts the plain-text digest, split into several messages when it
// exceeds the size limit.
func (p *Publisher) Publish(ctx context.Context, digest domain.Digest) error {
	if !p.Configured() || p.client == nil {
		return ErrNotConfigured
	}

	parts := splitMessage(digest.Text(), maxMessageRunes)
	for i, part := range parts {
		if err := p.send(ctx, part); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
	}

	p.logger.Info("digest published", "parts", len(parts), "items", digest.Categories.Total())
	return nil
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (p *Publisher) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(p.baseURL, "/"), p.botToken)
	form := url.Values{}
	form.Set("chat_id", p.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs and errors.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var body apiResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode != http.StatusOK || !body.OK {
		if body.Description != "" {
			return fmt.Errorf("telegram error: %s: %s", resp.Status, body.Description)
		}
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}

// splitMessage cuts text on line boundaries into parts of at most limit runes.
// A single line longer than limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current []rune
	)
	flush := func() {
		if s := strings.TrimRight(string(current), "\n"); s != "" {
			parts = append(parts, s)
		}
		current = current[:0]
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(current)+len(runes) > limit {
			flush()
		}
		current = append(current, runes...)
	}
	flush()
	return parts
}
