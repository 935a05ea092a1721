package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		parsed   bool
		relevant bool
		title    string
		summary  string
	}{
		{
			name:     "plain object",
			raw:      `{"is_relevant": true, "title": "标题", "summary": "摘要"}`,
			parsed:   true,
			relevant: true,
			title:    "标题",
			summary:  "摘要",
		},
		{
			name:     "fenced with prose",
			raw:      "Here you go:\n```json\n{\"is_relevant\": false, \"title\": \"x\", \"summary\": \"\"}\n```",
			parsed:   true,
			relevant: false,
			title:    "x",
		},
		{
			name:     "missing key quote is repaired",
			raw:      `{"is_relevant": true, title": "修复", "summary": "ok"}`,
			parsed:   true,
			relevant: true,
			title:    "修复",
			summary:  "ok",
		},
		{
			name:   "unknown key",
			raw:    `{"is_relevant": true, "title": "t", "summary": "s", "score": 3}`,
			parsed: false,
		},
		{
			name:   "missing is_relevant",
			raw:    `{"title": "t", "summary": "s"}`,
			parsed: false,
		},
		{
			name:   "wrong type",
			raw:    `{"is_relevant": "yes", "title": "t", "summary": "s"}`,
			parsed: false,
		},
		{
			name:   "not json",
			raw:    "I cannot help with that.",
			parsed: false,
		},
		{
			name:   "empty",
			raw:    "",
			parsed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reply := parseItemReply(tt.raw)
			require.Equal(t, tt.parsed, reply.parsed(), "err: %v", reply.err)
			if !tt.parsed {
				assert.ErrorIs(t, reply.err, ErrMalformedResponse)
				assert.Equal(t, tt.raw, reply.raw)
				return
			}
			assert.Equal(t, tt.relevant, reply.fields.IsRelevant)
			assert.Equal(t, tt.title, reply.fields.Title)
			assert.Equal(t, tt.summary, reply.fields.Summary)
		})
	}
}

func TestParseHighlights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "array", raw: `["one", "two", " "]`, want: []string{"one", "two"}},
		{name: "fenced array", raw: "```json\n[\"a\", \"b\"]\n```", want: []string{"a", "b"}},
		{name: "wrapped array", raw: `{"highlights": ["x", "y"]}`, want: []string{"x", "y"}},
		{name: "numbered", raw: "Top news:\n1. First point\n2) Second point\n3、第三点", want: []string{"First point", "Second point", "第三点"}},
		{name: "bullets", raw: "- alpha\n* beta\n• gamma", want: []string{"alpha", "beta", "gamma"}},
		{name: "raw text", raw: "  Just one paragraph.  ", want: []string{"Just one paragraph."}},
		{name: "empty", raw: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseHighlights(tt.raw))
		})
	}
}

func TestRepairJSON(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a": 1, "b_c": 2}`, repairJSON(`{"a": 1, b_c": 2}`))
	assert.Equal(t, `{"a": "x, y"}`, repairJSON(`{"a": "x, y"}`))
	assert.Equal(t, `{"a": 1}`, repairJSON(`{a": 1}`))
}

func TestScriptRatio(t *testing.T) {
	t.Parallel()

	zh := lookupLanguage("zh")
	assert.InDelta(t, 1.0, zh.scriptRatio("全中文"), 1e-9)
	assert.InDelta(t, 0.0, zh.scriptRatio("all english"), 1e-9)
	assert.InDelta(t, 0.5, zh.scriptRatio("ab中文"), 1e-9)
	assert.InDelta(t, 1.0, zh.scriptRatio("123 !!"), 1e-9)

	assert.Equal(t, "ja", lookupLanguage("JA").code)
	assert.Equal(t, "zh", lookupLanguage("zh-CN").code)
	assert.Equal(t, "zh", lookupLanguage("klingon").code)
}

func TestTextHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
	assert.Equal(t, "short", truncateRunes("short", 10))

	assert.Equal(t, "abc", clampSummary("abc", 3))
	assert.Equal(t, "ab…", clampSummary("abcd", 3))
	assert.Equal(t, "中文…", clampSummary("中文字符", 3))

	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, "plain", stripCodeFence(" plain "))

	assert.Equal(t, "{x}", extractDelimited("pre {x} post", '{', '}'))
	assert.Equal(t, "no braces", extractDelimited("no braces", '{', '}'))
}

func TestRetryWithBackoff(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("again")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryWithBackoff(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retryWithBackoff(ctx, 5, time.Hour, func() error { return errors.New("never") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptsCarryLanguageAndContract(t *testing.T) {
	t.Parallel()

	p := itemPrompt(recordFixture("Title X"), "", lookupLanguage("zh"), 300)
	assert.True(t, p.JSON)
	assert.Contains(t, p.System, "Simplified Chinese")
	assert.Contains(t, p.System, "is_relevant")
	assert.True(t, strings.HasPrefix(p.User, "Title: Title X\n"))
	assert.Contains(t, p.User, "(no body)")

	h := highlightPrompt("digest", 3, lookupLanguage("en"))
	assert.False(t, h.JSON)
	assert.Contains(t, h.System, "JSON array of exactly 3 strings")
}
