package enrichment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedResponse marks model output that does not follow the JSON contract.
var ErrMalformedResponse = errors.New("malformed model response")

// itemFields is the contract for a per-item answer.
type itemFields struct {
	IsRelevant bool
	Title      string
	Summary    string
}

// itemReply is either Parsed (fields set, err nil) or Malformed (raw kept, err set).
type itemReply struct {
	fields itemFields
	raw    string
	err    error
}

func (r itemReply) parsed() bool { return r.err == nil }

type wireItem struct {
	IsRelevant *bool   `json:"is_relevant"`
	Title      *string `json:"title"`
	Summary    *string `json:"summary"`
}

// parseItemReply decodes {"is_relevant": bool, "title": string, "summary": string}.
// Unknown keys, a missing is_relevant, or trailing data make the reply malformed.
func parseItemReply(raw string) itemReply {
	text := extractDelimited(stripCodeFence(raw), '{', '}')
	text = repairJSON(text)

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var wire wireItem
	if err := dec.Decode(&wire); err != nil {
		return itemReply{raw: raw, err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if dec.More() {
		return itemReply{raw: raw, err: fmt.Errorf("%w: trailing data", ErrMalformedResponse)}
	}
	if wire.IsRelevant == nil {
		return itemReply{raw: raw, err: fmt.Errorf("%w: is_relevant missing", ErrMalformedResponse)}
	}

	fields := itemFields{IsRelevant: *wire.IsRelevant}
	if wire.Title != nil {
		fields.Title = strings.TrimSpace(*wire.Title)
	}
	if wire.Summary != nil {
		fields.Summary = strings.TrimSpace(*wire.Summary)
	}
	return itemReply{fields: fields, raw: raw}
}

var (
	numberedLine = regexp.MustCompile(`^\s*\d+\s*[.)、．]\s*(.+)$`)
	bulletLine   = regexp.MustCompile(`^\s*[-*•·]\s+(.+)$`)
)

// parseHighlights reads a JSON array of strings (or an object wrapping one),
// then falls back to numbered lines, then bullet lines, then the whole text.
func parseHighlights(raw string) []string {
	text := stripCodeFence(raw)
	if text == "" {
		return nil
	}

	if items, ok := decodeStringArray(extractDelimited(text, '[', ']')); ok {
		return items
	}
	if items, ok := decodeWrappedArray(extractDelimited(text, '{', '}')); ok {
		return items
	}
	if items := matchLines(text, numberedLine); len(items) > 0 {
		return items
	}
	if items := matchLines(text, bulletLine); len(items) > 0 {
		return items
	}
	return []string{text}
}

func decodeStringArray(text string) ([]string, bool) {
	var items []string
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}
	items = compact(items)
	return items, len(items) > 0
}

func decodeWrappedArray(text string) ([]string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	for _, value := range obj {
		if items, ok := decodeStringArray(string(bytes.TrimSpace(value))); ok {
			return items, true
		}
	}
	return nil, false
}

func matchLines(text string, expr *regexp.Regexp) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := expr.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		}
	}
	return compact(items)
}

func compact(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// repairJSON adds the opening quote that models sometimes drop before a key,
// turning `, title":` into `, "title":`.
func repairJSON(s string) string {
	src := []rune(s)
	fixed := make([]rune, 0, len(src)+8)

	for i := 0; i < len(src); {
		ch := src[i]
		fixed = append(fixed, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(src) && (src[i] == ' ' || src[i] == '\n' || src[i] == '\t' || src[i] == '\r') {
			fixed = append(fixed, src[i])
			i++
		}
		if i >= len(src) || !isKeyStart(src[i]) {
			continue
		}

		keyStart := i
		for i < len(src) && (isKeyStart(src[i]) || src[i] == '_') {
			i++
		}
		if i+1 < len(src) && src[i] == '"' && src[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, src[keyStart:i]...)
	}

	return string(fixed)
}

func isKeyStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
