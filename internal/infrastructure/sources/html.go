package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p,br,div,li,ul,ol,h1,h2,h3,h4,h5,h6,tr,td,blockquote,pre"

// CleanHTML strips markup and collapses whitespace. Block elements become
// word boundaries so adjacent paragraphs do not run together.
func CleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	doc.Find("script,style,noscript").Remove()
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AfterHtml(" ")
	})
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
