// Package display provides display surfaces for a console engine.
//
// A surface is told the index of every appended entry and pulls the
// entries it has not seen yet from its Source. It keeps its own position,
// so missed notifications only delay output.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/messagelog"
)

// Modes.
const (
	ModeText = "text" // Plain text, groups indented, clear as a divider
	ModeRaw  = "raw"  // One line per entry: index, kind and markup
)

const indentWidth = 2

// Source delivers entries from start on to the surface through its
// Messages method and returns how many it delivered.
type Source interface {
	SendMessages(start int) int
}

// Options configures a Terminal.
type Options struct {
	Mode   string
	Color  bool
	Width  int
	Logger *logging.Logger
}

// Terminal writes console entries to a terminal or any writer.
type Terminal struct {
	out    io.Writer
	mode   string
	color  bool
	width  int
	logger *logging.Logger

	mu     sync.Mutex
	source Source
	next   int
	depth  int
}

// NewTerminal creates a terminal surface writing to out.
func NewTerminal(out io.Writer, opts Options) *Terminal {
	if opts.Mode == "" {
		opts.Mode = ModeText
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Terminal{
		out:    out,
		mode:   opts.Mode,
		color:  opts.Color,
		width:  opts.Width,
		logger: opts.Logger.WithComponent("display"),
	}
}

// Attach binds the terminal to src and catches up on everything src
// already holds.
func (t *Terminal) Attach(src Source) {
	t.mu.Lock()
	t.source = src
	t.mu.Unlock()
	t.Sync()
}

// Next returns the index of the first entry not yet shown.
func (t *Terminal) Next() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next
}

// Sync pulls entries until the source has nothing new.
func (t *Terminal) Sync() {
	t.mu.Lock()
	src := t.source
	t.mu.Unlock()
	if src == nil {
		return
	}
	for src.SendMessages(t.Next()) > 0 {
	}
}

// MessageAppended pulls the new entry unless it was already shown.
func (t *Terminal) MessageAppended(index int) {
	if index < t.Next() {
		return
	}
	t.Sync()
}

// Messages renders a batch. Entries already shown are skipped.
func (t *Terminal) Messages(start int, kinds, data []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, kind := range kinds {
		index := start + i
		if index < t.next {
			continue
		}
		var markup string
		if i < len(data) {
			markup = data[i]
		}
		t.render(index, kind, markup)
		t.next = index + 1
	}
}

func (t *Terminal) render(index int, kind, markup string) {
	if t.mode == ModeRaw {
		fmt.Fprintf(t.out, "%d\t%s\t%s\n", index, kind, markup)
		return
	}

	switch kind {
	case messagelog.NameHTML:
		text, class := textOf(markup)
		text = strings.TrimRight(text, "\n")
		if class == "log" {
			text = strings.TrimPrefix(text, " ")
		}
		style, styled := classStyles[class]
		t.writeBlock(text, style, styled)

	case messagelog.NameGroup, messagelog.NameGroupCollapsed:
		label, _ := textOf(markup)
		marker := "▼ "
		if kind == messagelog.NameGroupCollapsed {
			marker = "▶ "
		}
		t.writeBlock(marker+label, groupStyle, true)
		t.depth++

	case messagelog.NameGroupEnd:
		if t.depth > 0 {
			t.depth--
		}

	case messagelog.NameClear:
		t.writeBlock(dividerText, dimStyle, true)

	default:
		t.logger.Warn("unknown entry kind", map[string]interface{}{
			"index": index,
			"kind":  kind,
		})
	}
}

// writeBlock wraps, styles and indents text at the current group depth.
func (t *Terminal) writeBlock(text string, style lipgloss.Style, styled bool) {
	pad := t.depth * indentWidth
	if t.width > pad {
		text = wordwrap.String(text, t.width-pad)
	}
	if t.color && styled {
		text = style.Render(text)
	}
	if pad > 0 {
		text = indent.String(text, uint(pad))
	}
	fmt.Fprintln(t.out, text)
}
