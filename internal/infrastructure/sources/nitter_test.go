package sources

import (
	"context"
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

func nitterFeed(items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>timeline</title>`)
	for i, title := range items {
		b.WriteString("<item><title>")
		b.WriteString(title)
		b.WriteString("</title><link>https://nitter.example/karpathy/status/")
		b.WriteString(strings.Repeat("1", i+1))
		b.WriteString("</link><pubDate>Tue, 09 Jan 2024 08:00:00 GMT</pubDate></item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

type nitterMirror struct {
	mu   sync.Mutex
	hits []string
}

func (m *nitterMirror) record(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits = append(m.hits, path)
}

func TestNitterCollectorFailsOverAndCleansPosts(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 300)
	mirror := &nitterMirror{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mirror.record(r.URL.Path)
		switch {
		case strings.HasPrefix(r.URL.Path, "/down/"):
			w.WriteHeader(http.StatusServiceUnavailable)
		case strings.HasPrefix(r.URL.Path, "/empty/"):
			_, _ = w.Write([]byte(nitterFeed()))
		default:
			_, _ = w.Write([]byte(nitterFeed(
				"RT @someone: not ours",
				"New model is out pic.twitter.com/abc123",
				long,
				"",
				"fourth",
				"beyond the per-account cap",
			)))
		}
	}))
	defer server.Close()

	c := NewNitterCollector(config.NitterConfig{
		Accounts:   []config.AccountConfig{{Username: "karpathy", Name: "Andrej"}},
		Instances:  []string{server.URL + "/down", server.URL + "/empty", server.URL + "/ok/"},
		PerAccount: 5,
	}, testFetcher(server), quietLogger())
	c.shuffle = func([]string) {}

	require.True(t, c.Enabled())
	records := c.Collect(context.Background())

	require.Len(t, records, 3)
	assert.Equal(t, "New model is out", records[0].Title)
	assert.Equal(t, "@Andrej", records[0].Source)
	assert.Equal(t, "Andrej", records[0].Author)
	assert.Equal(t, domain.CategorySocial, records[0].Category)
	assert.True(t, records[0].HasPublished())
	assert.Len(t, []rune(records[1].Title), maxPostChars)
	assert.Equal(t, "fourth", records[2].Title)

	assert.Equal(t, []string{"/down/karpathy/rss", "/empty/karpathy/rss", "/ok/karpathy/rss"}, mirror.hits)
}

func TestNitterCollectorStopsAtFirstWorkingInstance(t *testing.T) {
	t.Parallel()

	mirror := &nitterMirror{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mirror.record(r.URL.Path)
		_, _ = w.Write([]byte(nitterFeed("hello from " + r.URL.Path)))
	}))
	defer server.Close()

	c := NewNitterCollector(config.NitterConfig{
		Accounts:          []config.AccountConfig{{Username: "@OpenAI"}, {Username: "karpathy"}},
		Instances:         []string{server.URL + "/a", server.URL + "/b"},
		RequestsPerSecond: 1000,
	}, testFetcher(server), quietLogger())
	c.shuffle = func([]string) {}

	records := c.Collect(context.Background())
	require.Len(t, records, 2)
	assert.Equal(t, "@OpenAI", records[0].Source)
	assert.Equal(t, "@karpathy", records[1].Source)
	assert.Equal(t, []string{"/a/OpenAI/rss", "/a/karpathy/rss"}, mirror.hits)
}

func TestNitterCollectorAllInstancesDown(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewNitterCollector(config.NitterConfig{
		Accounts:  []config.AccountConfig{{Username: "karpathy"}},
		Instances: []string{server.URL},
	}, testFetcher(server), quietLogger())

	assert.Empty(t, c.Collect(context.Background()))
}

func TestCleanPost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Look at this", cleanPost("Look   at this pic.twitter.com/xyz"))
	assert.Equal(t, "a & b", cleanPost("a &amp; b"))
}
