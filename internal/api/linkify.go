package api

import (
	"html"
	"strings"

	"mvdan.cc/xurls/v2"
)

// linkPattern matches URLs with a scheme, leaving out trailing punctuation
// and unbalanced closing brackets.
var linkPattern = xurls.Strict()

// Linkify HTML-escapes text and wraps URLs in anchors that open in a new tab.
func Linkify(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range linkPattern.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		url := html.EscapeString(text[loc[0]:loc[1]])
		b.WriteString(`<a target="_blank" href="`)
		b.WriteString(url)
		b.WriteString(`">`)
		b.WriteString(url)
		b.WriteString(`</a>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
