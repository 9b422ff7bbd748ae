package parsing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML converts ingested rich-text content to plain text. Record
// descriptions and chunk excerpts arrive from document ingestion and may
// carry markup; similarity scoring and embedding refresh compare plain text
// only. Input that is not HTML passes through with whitespace collapsed.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return collapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}

	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
