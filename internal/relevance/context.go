package relevance

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxDescriptionRunes = 500
	maxContextRunes     = 1000
)

// PageContext is the text a page offers for scoring.
type PageContext struct {
	URL             string `json:"url" validate:"omitempty,url"`
	Title           string `json:"title"`
	Genre           string `json:"genre,omitempty"`
	Description     string `json:"description,omitempty"`
	Heading         string `json:"heading,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
}

// Text joins the non-empty parts with spaces, capped at 1000 runes.
func (p PageContext) Text() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Title, truncate(p.Description, maxDescriptionRunes), p.Heading, p.MetaDescription} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	return truncate(strings.Join(parts, " "), maxContextRunes)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// structuredData is the subset of a JSON-LD block we read.
type structuredData struct {
	Genre       any `json:"genre"`
	Description any `json:"description"`
}

// FromHTML extracts the page context from an HTML document.
func FromHTML(pageURL string, r io.Reader) (PageContext, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return PageContext{}, fmt.Errorf("parsing html: %w", err)
	}

	ctx := PageContext{
		URL:     pageURL,
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Heading: strings.TrimSpace(doc.Find("h1").First().Text()),
	}

	if meta, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		ctx.MetaDescription = strings.TrimSpace(meta)
	}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data structuredData
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			// malformed blocks are skipped
			return true
		}

		ctx.Genre = firstString(data.Genre)
		ctx.Description = firstString(data.Description)
		return ctx.Genre == "" && ctx.Description == ""
	})

	return ctx, nil
}

// firstString handles schema.org values that may be a string or a list.
func firstString(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
