package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintIsStable(t *testing.T) {
	t.Parallel()

	a := Record{URL: "https://example.org/a"}
	b := Record{URL: "https://example.org/a", Title: "different"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 12)
	assert.NotEqual(t, a.Fingerprint(), Fingerprint("https://example.org/b"))
	// md5("a") = 0cc175b9c0f1b6a831c399e269772661
	assert.Equal(t, "0cc175b9c0f1", Fingerprint("a"))
}

func TestBodyPrefersLongerContent(t *testing.T) {
	t.Parallel()

	r := Record{Summary: "short", Content: "a much longer body"}
	assert.Equal(t, "a much longer body", r.Body())

	r = Record{Summary: "summary wins", Content: "tiny"}
	assert.Equal(t, "summary wins", r.Body())
}

func TestLimitTags(t *testing.T) {
	t.Parallel()

	tags := []string{"a", "b", "c", "d", "e", "f", "g"}
	limited := LimitTags(tags)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, limited)

	limited[0] = "changed"
	assert.Equal(t, "a", tags[0])
}

func TestDigestDisplayName(t *testing.T) {
	t.Parallel()

	d := Digest{CategoryNames: map[string]string{CategoryPapers: "Papers"}}
	assert.Equal(t, "Papers", d.DisplayName(CategoryPapers))
	assert.Equal(t, CategorySocial, d.DisplayName(CategorySocial))
}

func TestDigestCategoryIDs(t *testing.T) {
	t.Parallel()

	d := Digest{
		Categories: Categorized{"social": {{}}, "news": {{}}, "alpha": {{}}, "papers": {{}}},
		Order:      []string{"news", "missing", "papers", "news"},
	}
	assert.Equal(t, []string{"news", "papers", "alpha", "social"}, d.CategoryIDs())
}

func TestDigestText(t *testing.T) {
	t.Parallel()

	d := Digest{
		Date: time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC),
		Categories: Categorized{
			CategoryPapers: {{
				Title:        "Scaling agents",
				URL:          "https://arxiv.org/abs/1",
				Source:       "arXiv",
				Summary:      "Agents scale.",
				Organization: "DeepMind",
				Published:    time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC),
			}},
			"news": {{Title: "Release", URL: "https://lab.example/r", Source: "Lab"}},
		},
		Order:         []string{"news", CategoryPapers},
		CategoryNames: map[string]string{"news": "Industry News"},
		Highlights:    []string{"First", "Second"},
	}

	want := `Daily Digest 2024-01-10 (2 items)

Highlights
1. First
2. Second

Industry News
- Release
  Lab
  https://lab.example/r

papers
- Scaling agents
  Agents scale.
  arXiv / DeepMind / 2024-01-09
  https://arxiv.org/abs/1`

	assert.Equal(t, want, d.Text())
	assert.False(t, d.Empty())
	assert.True(t, Digest{}.Empty())
}
