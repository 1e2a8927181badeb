// Package markdown renders article bodies and sanitizes user-supplied text.
package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// raw HTML is allowed through and cleaned by ugc below
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)

	ugc   = newUGCPolicy()
	strip = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	return p
}

// ToHTML converts Markdown into sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return ugc.Sanitize(buf.String()), nil
}

// maxDecodePasses bounds how many layers of entity encoding PlainText unwraps.
const maxDecodePasses = 8

// PlainText removes every HTML tag from s and trims it. Entities are decoded
// and the result is stripped again until nothing changes, so encoded markup
// such as "&lt;script&gt;" cannot come back as a live tag. Input still
// changing after maxDecodePasses is returned in its escaped form.
func PlainText(s string) string {
	for i := 0; i < maxDecodePasses; i++ {
		clean := html.UnescapeString(strip.Sanitize(s))
		if clean == s {
			return strings.TrimSpace(clean)
		}
		s = clean
	}
	return strings.TrimSpace(strip.Sanitize(s))
}
