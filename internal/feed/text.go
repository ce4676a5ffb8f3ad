package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText flattens an HTML show-notes fragment into collapsed text.
// Input that is not HTML is returned with whitespace collapsed.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.Contains(fragment, "<") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, div").AppendHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
