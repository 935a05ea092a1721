package enrichment

import (
	"fmt"
	"strings"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const (
	itemMaxTokens      = 600
	translateMaxTokens = 600
	highlightMaxTokens = 800
)

func itemPrompt(r domain.Record, body string, lang language, maxSummary int) ports.Prompt {
	system := fmt.Sprintf(`You are an editor of a daily AI and technology digest.
Decide whether the item is about AI, machine learning or closely related technology.
Translate the title into %[1]s and write a summary in %[1]s of at most %[2]d characters.
Reply with a single JSON object and nothing else, using exactly these keys:
{"is_relevant": true or false, "title": "translated title", "summary": "short summary"}
Do not open the summary with phrases like "this article describes".`, lang.name, maxSummary)

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Source: %s\n", r.Source)
	if body == "" {
		body = "(no body)"
	}
	fmt.Fprintf(&b, "Content:\n%s\n", body)

	return ports.Prompt{System: system, User: b.String(), JSON: true, MaxTokens: itemMaxTokens}
}

func translatePrompt(text string, lang language) ports.Prompt {
	system := fmt.Sprintf("Translate the user's text into %s. Reply with the translation only, without quotes or commentary.", lang.name)
	return ports.Prompt{System: system, User: text, MaxTokens: translateMaxTokens}
}

func highlightPrompt(digest string, count int, lang language) ports.Prompt {
	system := fmt.Sprintf(`You are an AI industry analyst writing the morning briefing.
From today's items pick the %[1]d most important developments, prioritising major releases, funding and breakthroughs.
Write each point in %[2]s as one or two sentences.
Reply with a JSON array of exactly %[1]d strings ordered by importance and nothing else.`, count, lang.name)

	return ports.Prompt{System: system, User: "Today's items:\n" + digest, MaxTokens: highlightMaxTokens}
}
