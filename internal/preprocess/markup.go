package preprocess

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags that documentation comments use for formatting. Anything else that
// looks like a tag (List<String>, a < b) is kept verbatim.
var markupTags = map[string]bool{
	"a": true, "b": true, "blockquote": true, "br": true, "code": true,
	"dd": true, "div": true, "dl": true, "dt": true, "em": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "i": true, "li": true, "ol": true, "p": true, "pre": true,
	"span": true, "strong": true, "sub": true, "sup": true, "table": true,
	"td": true, "th": true, "tr": true, "tt": true, "u": true, "ul": true,
}

// Block-level tags become line breaks so paragraphs stay separated.
var blockTags = map[string]bool{
	"blockquote": true, "br": true, "div": true, "dl": true, "dt": true,
	"dd": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hr": true, "li": true, "ol": true, "p": true, "pre": true,
	"table": true, "tr": true, "ul": true,
}

// StripMarkup removes documentation markup from comment text, skipping
// script and style content and decoding entities.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF on a well-formed stream; either way we are done
			return buf.String()
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			tag := string(name)

			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 {
				continue
			}
			if !markupTags[tag] {
				buf.WriteString(raw)
				continue
			}
			if blockTags[tag] {
				buf.WriteString("\n")
			}
		case html.CommentToken, html.DoctypeToken:
			// dropped
		}
	}
}
