package display

import (
	"strings"

	"golang.org/x/net/html"
)

// textOf converts entry markup to plain text. <br> becomes a newline and
// the class of the first element is returned alongside.
func textOf(markup string) (text, class string) {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	first := true
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String(), class
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
				continue
			}
			if first {
				first = false
				class = classAttr(z, hasAttr)
			}
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

func classAttr(z *html.Tokenizer, more bool) string {
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		if string(key) == "class" {
			return string(val)
		}
	}
	return ""
}
