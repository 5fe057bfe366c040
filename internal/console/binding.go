package console

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/vinayprograms/scriptconsole/internal/printer"
)

// PackageName is the import path scripts use for the console API.
const PackageName = "console"

const defaultLabel = "default"

// Binding is the console API exposed to scripts.
type Binding struct {
	e     *Engine
	now   func() time.Time
	stack func() []string

	mu       sync.Mutex
	counters map[string]int
	timers   map[string]time.Time
}

func newBinding(e *Engine, now func() time.Time, stack func() []string) *Binding {
	return &Binding{
		e:        e,
		now:      now,
		stack:    stack,
		counters: make(map[string]int),
		timers:   make(map[string]time.Time),
	}
}

// Symbols returns the binding's functions keyed by exported name, in the
// shape a realm module expects.
func (b *Binding) Symbols() map[string]reflect.Value {
	return map[string]reflect.Value{
		"Log":            reflect.ValueOf(b.Log),
		"Info":           reflect.ValueOf(b.Info),
		"Debug":          reflect.ValueOf(b.Debug),
		"Warn":           reflect.ValueOf(b.Warn),
		"Error":          reflect.ValueOf(b.Error),
		"Dir":            reflect.ValueOf(b.Dir),
		"Trace":          reflect.ValueOf(b.Trace),
		"Group":          reflect.ValueOf(b.Group),
		"GroupCollapsed": reflect.ValueOf(b.GroupCollapsed),
		"GroupEnd":       reflect.ValueOf(b.GroupEnd),
		"Clear":          reflect.ValueOf(b.Clear),
		"Count":          reflect.ValueOf(b.Count),
		"CountReset":     reflect.ValueOf(b.CountReset),
		"Assert":         reflect.ValueOf(b.Assert),
		"Time":           reflect.ValueOf(b.Time),
		"TimeLog":        reflect.ValueOf(b.TimeLog),
		"TimeEnd":        reflect.ValueOf(b.TimeEnd),
		"Style":          reflect.ValueOf(b.Style),
	}
}

// logger prints args at level, applying format specifiers when more than
// one argument is given. An empty call prints nothing.
func (b *Binding) logger(level printer.Level, args []any) {
	if len(args) == 0 {
		return
	}
	b.e.Print(level, printer.Values(b.formatArgs(args)))
}

func (b *Binding) Log(args ...any)   { b.logger(printer.LevelLog, args) }
func (b *Binding) Info(args ...any)  { b.logger(printer.LevelInfo, args) }
func (b *Binding) Debug(args ...any) { b.logger(printer.LevelDebug, args) }
func (b *Binding) Warn(args ...any)  { b.logger(printer.LevelWarn, args) }
func (b *Binding) Error(args ...any) { b.logger(printer.LevelError, args) }

// Dir prints a single value.
func (b *Binding) Dir(v any) {
	b.e.Print(printer.LevelDir, printer.Values{v})
}

// Trace prints an optional label followed by the current call stack.
func (b *Binding) Trace(args ...any) {
	var label string
	if len(args) > 0 {
		label = b.e.formatter.FormatText(b.substitute(args, nil))
	}
	b.e.Print(printer.LevelTrace, printer.Trace{Label: label, Stack: b.stack()})
}

// Group opens an expanded group labelled with args.
func (b *Binding) Group(args ...any) {
	b.e.BeginGroup(b.groupLabel(args), false)
}

// GroupCollapsed opens a collapsed group labelled with args.
func (b *Binding) GroupCollapsed(args ...any) {
	b.e.BeginGroup(b.groupLabel(args), true)
}

func (b *Binding) groupLabel(args []any) string {
	if len(args) == 0 {
		return "Group"
	}
	return b.label(args)
}

// GroupEnd closes the innermost group.
func (b *Binding) GroupEnd() {
	b.e.EndGroup()
}

// Clear asks the display to clear its view.
func (b *Binding) Clear() {
	b.e.ClearOutput()
}

// Style sets an inline style for the next styled print.
func (b *Binding) Style(css string) {
	b.e.AddStyle(css)
}

// Count increments and prints the counter for label.
func (b *Binding) Count(label ...string) {
	name := labelOf(label)

	b.mu.Lock()
	b.counters[name]++
	n := b.counters[name]
	b.mu.Unlock()

	b.logger(printer.LevelCount, []any{fmt.Sprintf("%s: %d", name, n)})
}

// CountReset sets the counter for label back to zero.
func (b *Binding) CountReset(label ...string) {
	name := labelOf(label)

	b.mu.Lock()
	_, ok := b.counters[name]
	if ok {
		b.counters[name] = 0
	}
	b.mu.Unlock()

	if !ok {
		b.logger(printer.LevelCountReset, []any{fmt.Sprintf("%q doesn't have a count", name)})
	}
}

// Assert prints args at error level when cond is false.
func (b *Binding) Assert(cond bool, args ...any) {
	if cond {
		return
	}
	const message = "Assertion failed"
	switch first, ok := firstString(args); {
	case len(args) == 0:
		args = []any{message}
	case ok:
		args = append([]any{message + ": " + first}, args[1:]...)
	default:
		args = append([]any{message + ":"}, args...)
	}
	b.logger(printer.LevelError, args)
}

func firstString(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}

// Time starts a timer named label.
func (b *Binding) Time(label ...string) {
	name := labelOf(label)

	b.mu.Lock()
	_, exists := b.timers[name]
	if !exists {
		b.timers[name] = b.now()
	}
	b.mu.Unlock()

	if exists {
		b.logger(printer.LevelWarn, []any{fmt.Sprintf("Timer '%s' already exists.", name)})
	}
}

// TimeLog prints the elapsed time of a running timer followed by args.
// A leading string argument names the timer.
func (b *Binding) TimeLog(args ...any) {
	var label string
	if first, ok := firstString(args); ok {
		label, args = first, args[1:]
	}
	label = orDefault(label)
	elapsed, ok := b.elapsed(label, false)
	if !ok {
		b.logger(printer.LevelWarn, []any{fmt.Sprintf("Timer '%s' does not exist.", label)})
		return
	}
	b.e.Print(printer.LevelTimeLog, printer.Values(append([]any{label + ": " + elapsed.String()}, args...)))
}

// TimeEnd prints the elapsed time of a timer and stops it.
func (b *Binding) TimeEnd(label ...string) {
	name := labelOf(label)
	elapsed, ok := b.elapsed(name, true)
	if !ok {
		b.logger(printer.LevelWarn, []any{fmt.Sprintf("Timer '%s' does not exist.", name)})
		return
	}
	b.e.Print(printer.LevelTimeEnd, printer.Values{name + ": " + elapsed.String()})
}

func (b *Binding) elapsed(label string, stop bool) (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, ok := b.timers[label]
	if !ok {
		return 0, false
	}
	if stop {
		delete(b.timers, label)
	}
	return b.now().Sub(start), true
}

// labelOf returns the first label given, or "default".
func labelOf(labels []string) string {
	if len(labels) == 0 {
		return defaultLabel
	}
	return orDefault(labels[0])
}

func orDefault(label string) string {
	if label == "" {
		return defaultLabel
	}
	return label
}
