package testutil

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// ParseResponse reads and closes resp and parses its body.
func ParseResponse(t testing.TB, resp *http.Response) *goquery.Document {
	t.Helper()
	return ParseHTML(t, ReadBody(t, resp))
}

// MenuKeys lists the data-menu-key values rendered in the sidebar, in
// document order.
func MenuKeys(doc *goquery.Document) []string {
	return doc.Find("[data-sidebar] [data-menu-key]").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-menu-key", "")
	})
}
