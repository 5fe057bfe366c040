// Package console implements the console engine of one script session.
//
// An Engine owns the session's message log and the printer writing to it.
// Input is evaluated in an attached Realm and its completion is rendered
// into the log. A Display is notified of every append and pulls batches of
// entries it has not seen yet.
package console

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/markup"
	"github.com/vinayprograms/scriptconsole/internal/messagelog"
	"github.com/vinayprograms/scriptconsole/internal/printer"
	"github.com/vinayprograms/scriptconsole/internal/script"
)

const uncaughtPrefix = "Uncaught exception: "

const tracerName = "github.com/vinayprograms/scriptconsole/internal/console"

// Realm evaluates source text for the engine.
type Realm interface {
	EvaluateClassicScript(source string, origin script.Origin) script.Completion
}

// Formatter renders values and errors into markup, and log arguments into
// plain text.
type Formatter interface {
	FormatValue(v any) string
	FormatError(err error) string
	FormatText(values []any) string
}

// Display is the surface showing the message log.
type Display interface {
	// MessageAppended is called once per appended entry.
	MessageAppended(index int)
	// Messages delivers a batch starting at start. kinds[i] and data[i]
	// describe entry start+i.
	Messages(start int, kinds, data []string)
}

// Options configures an Engine.
type Options struct {
	Origin    string           // Origin name of evaluated input (default script.DefaultOrigin)
	MaxBatch  int              // Max entries per SendMessages batch, 0 for unlimited
	Formatter Formatter        // Value renderer (default markup.New())
	Logger    *logging.Logger  // Structured log (default discard)
	Tracer    trace.Tracer     // Evaluation spans (default global provider)
	Clock     func() time.Time // Time source for timers
	Stack     func() []string  // Frame names for Trace calls
}

// Engine is the console of one session.
type Engine struct {
	log       *messagelog.Log
	printer   *printer.Printer
	formatter Formatter
	logger    *logging.Logger
	tracer    trace.Tracer
	origin    string
	maxBatch  int

	binding *Binding
	stdout  *lineWriter
	stderr  *lineWriter

	mu      sync.RWMutex
	realm   Realm
	display Display
}

// New creates an engine bound to display. display may be nil and set later
// with SetDisplay. No realm is attached yet.
func New(display Display, opts Options) *Engine {
	if opts.Origin == "" {
		opts.Origin = script.DefaultOrigin
	}
	if opts.Formatter == nil {
		opts.Formatter = markup.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Stack == nil {
		origin := opts.Origin
		opts.Stack = func() []string { return callerStack(origin) }
	}

	e := &Engine{
		formatter: opts.Formatter,
		logger:    opts.Logger.WithComponent("console"),
		tracer:    opts.Tracer,
		origin:    opts.Origin,
		maxBatch:  opts.MaxBatch,
		display:   display,
	}
	e.log = messagelog.New(messagelog.NotifierFunc(e.notify))
	e.printer = printer.New(e.log, opts.Formatter,
		printer.WithSink(logSink{logger: e.logger.WithComponent("output")}),
		printer.WithLogger(e.logger),
	)
	e.binding = newBinding(e, opts.Clock, opts.Stack)
	e.stdout = newLineWriter(func(line string) {
		e.printer.Print(printer.LevelLog, printer.Values{line})
	})
	e.stderr = newLineWriter(func(line string) {
		e.logger.Warn("script stderr", map[string]interface{}{"line": line})
	})
	return e
}

// Binding returns the script-facing console API.
func (e *Engine) Binding() *Binding {
	return e.binding
}

// Stdout is the writer a realm should use for script output. Each line
// becomes a log entry.
func (e *Engine) Stdout() io.Writer {
	return e.stdout
}

// Stderr is the writer for interpreter diagnostics. Lines go to the
// structured log only.
func (e *Engine) Stderr() io.Writer {
	return e.stderr
}

// Attach binds the realm input is evaluated in.
func (e *Engine) Attach(r Realm) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.realm = r
}

// Detach unbinds the realm. Later Evaluate calls do nothing.
func (e *Engine) Detach() {
	e.Attach(nil)
}

// SetDisplay replaces the bound display. nil unbinds it.
func (e *Engine) SetDisplay(d Display) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.display = d
}

// Close detaches the realm and flushes pending script output.
func (e *Engine) Close() {
	e.stdout.Flush()
	e.stderr.Flush()
	e.Detach()
	e.logger.Debug("engine closed", map[string]interface{}{"messages": e.log.Len()})
}

func (e *Engine) currentRealm() Realm {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.realm
}

func (e *Engine) currentDisplay() Display {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.display
}

// notify runs after the log has released its lock.
func (e *Engine) notify(index int) {
	if d := e.currentDisplay(); d != nil {
		d.MessageAppended(index)
	}
}

// Evaluate runs source in the attached realm and appends at most one entry
// for its completion. Without a realm it does nothing.
func (e *Engine) Evaluate(ctx context.Context, source string) {
	realm := e.currentRealm()
	if realm == nil {
		return
	}

	_, span := e.startEvaluateSpan(ctx, source)
	completion := realm.EvaluateClassicScript(source, script.Origin{Name: e.origin})

	// Output printed by the script precedes its result.
	e.stdout.Flush()
	e.stderr.Flush()

	index := -1
	switch {
	case completion.Abrupt:
		index = e.printer.PrintHTML(uncaughtPrefix + e.renderThrown(completion.Value))
	case completion.HasValue:
		index = e.printer.PrintHTML(e.formatter.FormatValue(completion.Value))
	}
	e.endEvaluateSpan(span, completion, index)
}

func (e *Engine) renderThrown(v any) string {
	if err, ok := v.(error); ok {
		return e.formatter.FormatError(err)
	}
	return e.formatter.FormatValue(v)
}

// Print renders a log call. See printer.Printer.Print.
func (e *Engine) Print(level printer.Level, payload printer.Payload) (int, error) {
	return e.printer.Print(level, payload)
}

// ClearOutput appends a clear entry.
func (e *Engine) ClearOutput() int {
	return e.printer.Clear()
}

// BeginGroup opens a group.
func (e *Engine) BeginGroup(label string, collapsed bool) int {
	return e.printer.BeginGroup(label, collapsed)
}

// EndGroup closes the innermost group.
func (e *Engine) EndGroup() int {
	return e.printer.EndGroup()
}

// AddStyle sets style for the next styled print.
func (e *Engine) AddStyle(style string) {
	e.printer.AddStyle(style)
}

// Len returns the number of entries in the log.
func (e *Engine) Len() int {
	return e.log.Len()
}

// Messages returns the entries from start on, capped at the configured
// batch size. An out of range start gives empty slices.
func (e *Engine) Messages(start int) (int, []string, []string) {
	batch := e.log.Fetch(start, e.maxBatch)
	return batch.Start, batch.Kinds(), batch.Data()
}

// SendMessages delivers the entries from start on to the display and
// returns how many were sent. Nothing is delivered when there are none.
func (e *Engine) SendMessages(start int) int {
	d := e.currentDisplay()
	if d == nil {
		return 0
	}
	first, kinds, data := e.Messages(start)
	if len(kinds) == 0 {
		return 0
	}
	d.Messages(first, kinds, data)
	return len(kinds)
}
