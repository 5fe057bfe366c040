package printer

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/scriptconsole/internal/markup"
)

// template is the opening markup of a value level.
// An empty class renders a bare styled span.
type template struct {
	class  string
	prefix string
}

var bareTemplate = template{}

// templates maps every value level to its template. Structural levels
// (trace, group) are absent on purpose; see Level.Structural.
var templates = map[Level]template{
	LevelDebug:      {class: "debug", prefix: "(d) "},
	LevelError:      {class: "error", prefix: "(e) "},
	LevelInfo:       {class: "info", prefix: "(i) "},
	LevelLog:        {class: "log", prefix: " "},
	LevelWarn:       {class: "warn", prefix: "(w) "},
	LevelCountReset: {class: "warn", prefix: "(w) "},

	LevelAssert:  bareTemplate,
	LevelCount:   bareTemplate,
	LevelDir:     bareTemplate,
	LevelDirXML:  bareTemplate,
	LevelTable:   bareTemplate,
	LevelTimeEnd: bareTemplate,
	LevelTimeLog: bareTemplate,
}

// lookupTemplate returns the template for level and whether it was mapped.
func lookupTemplate(level Level) (template, bool) {
	t, ok := templates[level]
	if !ok {
		return bareTemplate, false
	}
	return t, true
}

// open renders the opening span with an already escaped style.
func (t template) open(style string) string {
	if t.class == "" {
		return fmt.Sprintf(`<span style="%s">`, style)
	}
	return fmt.Sprintf(`<span class="%s" style="%s">%s`, t.class, style, t.prefix)
}

// renderValues wraps escaped text in the level template.
func renderValues(t template, style, text string) string {
	return t.open(markup.Escape(style)) + markup.Escape(text) + "</span>"
}

func renderTrace(tr Trace) string {
	var b strings.Builder
	if tr.Label != "" {
		fmt.Fprintf(&b, "<span class='title'>%s</span><br>", markup.Escape(tr.Label))
	}
	b.WriteString("<span class='trace'>")
	for _, fn := range tr.Stack {
		fmt.Fprintf(&b, "-> %s<br>", markup.Escape(fn))
	}
	b.WriteString("</span>")
	return b.String()
}

func renderGroup(style, label string) string {
	return fmt.Sprintf("<span style='%s'>%s</span>", markup.Escape(style), markup.Escape(label))
}
