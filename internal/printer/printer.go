package printer

import (
	"strings"
	"sync"

	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/messagelog"
)

// Appender is the part of the message log the printer writes to.
type Appender interface {
	Append(entry messagelog.Entry) int
}

// TextFormatter renders log call arguments as one line of plain text.
type TextFormatter interface {
	FormatText(values []any) string
}

// Sink receives the plain text of every value print, independently of the
// message log.
type Sink interface {
	Output(level Level, text string)
}

// Printer renders print calls into message log entries.
// It owns the pending style slot consumed by the next styled print.
type Printer struct {
	log    Appender
	text   TextFormatter
	sink   Sink
	logger *logging.Logger

	mu    sync.Mutex
	style strings.Builder
}

// Option configures a Printer.
type Option func(*Printer)

// WithSink forwards rendered text to s.
func WithSink(s Sink) Option {
	return func(p *Printer) {
		p.sink = s
	}
}

// WithLogger sets the logger used to report unmapped levels.
func WithLogger(l *logging.Logger) Option {
	return func(p *Printer) {
		p.logger = l
	}
}

// New creates a Printer appending to log.
func New(log Appender, text TextFormatter, opts ...Option) *Printer {
	p := &Printer{log: log, text: text}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddStyle appends an inline style declaration to the pending style.
func (p *Printer) AddStyle(style string) {
	style = strings.TrimSpace(style)
	if style == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.style.WriteString(style)
	if !strings.HasSuffix(style, ";") {
		p.style.WriteByte(';')
	}
}

// PendingStyle returns the style the next styled print will use.
func (p *Printer) PendingStyle() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.style.String()
}

// takeStyle reads and clears the pending style.
func (p *Printer) takeStyle() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.style.String()
	p.style.Reset()
	return s
}

// Print renders one print call and returns the index of the appended entry.
// Trace payloads leave the pending style untouched.
func (p *Printer) Print(level Level, payload Payload) (int, error) {
	if err := check(level, payload); err != nil {
		return -1, err
	}

	switch pl := payload.(type) {
	case Trace:
		return p.log.Append(messagelog.HTML(renderTrace(pl))), nil

	case Group:
		style := p.takeStyle()
		entry := messagelog.BeginGroup(renderGroup(style, pl.Label), level == LevelGroupCollapsed)
		return p.log.Append(entry), nil

	default:
		text := p.text.FormatText(payload.(Values))
		if p.sink != nil {
			p.sink.Output(level, text)
		}
		tmpl, ok := lookupTemplate(level)
		if !ok {
			p.logger.Warn("unmapped log level", map[string]interface{}{
				"level": int(level),
			})
		}
		style := p.takeStyle()
		return p.log.Append(messagelog.HTML(renderValues(tmpl, style, text))), nil
	}
}

// BeginGroup opens a group with label.
func (p *Printer) BeginGroup(label string, collapsed bool) int {
	level := LevelGroup
	if collapsed {
		level = LevelGroupCollapsed
	}
	idx, _ := p.Print(level, Group{Label: label})
	return idx
}

// EndGroup closes the innermost group. Unbalanced calls still append.
func (p *Printer) EndGroup() int {
	return p.log.Append(messagelog.EndGroup())
}

// Clear appends a clear marker. The pending style is left as is.
func (p *Printer) Clear() int {
	return p.log.Append(messagelog.Clear())
}

// PrintHTML appends already rendered markup.
func (p *Printer) PrintHTML(markup string) int {
	return p.log.Append(messagelog.HTML(markup))
}
