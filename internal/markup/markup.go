// Package markup renders script values and errors into display markup.
package markup

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Span classes emitted by the generator.
const (
	ClassNull     = "null"
	ClassBoolean  = "boolean"
	ClassNumber   = "number"
	ClassString   = "string"
	ClassFunction = "function"
	ClassType     = "type"
	ClassErrName  = "error-name"
	ClassErrMsg   = "error-message"
)

const defaultMaxDepth = 4

// Escape escapes text for inclusion in markup.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Generator renders values. The zero value is not usable; use New.
type Generator struct {
	maxDepth int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxDepth limits how deep nested containers are expanded.
func WithMaxDepth(depth int) Option {
	return func(g *Generator) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FormatValue renders v as markup.
func (g *Generator) FormatValue(v any) string {
	if err, ok := v.(error); ok {
		return g.FormatError(err)
	}
	var b strings.Builder
	g.render(&b, reflect.ValueOf(v), 0, true)
	return b.String()
}

// FormatError renders an error with its type and message, followed by the
// messages of any errors it wraps.
func (g *Generator) FormatError(err error) string {
	if err == nil {
		return g.FormatValue(nil)
	}
	var b strings.Builder
	writeError(&b, err)

	seen := map[string]bool{err.Error(): true}
	for _, cause := range causes(err) {
		msg := cause.Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		b.WriteString("<br>&nbsp;&nbsp;caused by: ")
		writeError(&b, cause)
	}
	return b.String()
}

// FormatText renders values as plain text separated by spaces.
// Top-level strings are written verbatim.
func (g *Generator) FormatText(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, g.Text(v))
	}
	return strings.Join(parts, " ")
}

// Text renders a single value as plain text.
func (g *Generator) Text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	}
	var b strings.Builder
	g.render(&b, reflect.ValueOf(v), 0, false)
	return b.String()
}

func writeError(b *strings.Builder, err error) {
	span(b, ClassErrName, fmt.Sprintf("%T", err), true)
	b.WriteString(": ")
	span(b, ClassErrMsg, err.Error(), true)
}

// causes walks the wrap chain breadth first, including joined errors.
func causes(err error) []error {
	var out []error
	queue := unwrapAll(err)
	for len(queue) > 0 && len(out) < 16 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		out = append(out, next)
		queue = append(queue, unwrapAll(next)...)
	}
	return out
}

func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	if inner := errors.Unwrap(err); inner != nil {
		return []error{inner}
	}
	return nil
}

// span writes text, optionally wrapped in a classed span.
func span(b *strings.Builder, class, text string, styled bool) {
	if !styled {
		b.WriteString(text)
		return
	}
	b.WriteString(`<span class="`)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(Escape(text))
	b.WriteString("</span>")
}

// punct writes structural text, escaped when producing markup.
func punct(b *strings.Builder, text string, styled bool) {
	if styled {
		b.WriteString(Escape(text))
		return
	}
	b.WriteString(text)
}

func (g *Generator) render(b *strings.Builder, v reflect.Value, depth int, styled bool) {
	if !v.IsValid() {
		span(b, ClassNull, "nil", styled)
		return
	}

	if v.CanInterface() && v.Kind() != reflect.Interface && v.Kind() != reflect.Pointer {
		if err, ok := v.Interface().(error); ok && depth > 0 {
			if styled {
				writeError(b, err)
			} else {
				b.WriteString(err.Error())
			}
			return
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		span(b, ClassBoolean, strconv.FormatBool(v.Bool()), styled)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		span(b, ClassNumber, strconv.FormatInt(v.Int(), 10), styled)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		span(b, ClassNumber, strconv.FormatUint(v.Uint(), 10), styled)
	case reflect.Float32, reflect.Float64:
		span(b, ClassNumber, strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), styled)
	case reflect.Complex64, reflect.Complex128:
		span(b, ClassNumber, strconv.FormatComplex(v.Complex(), 'g', -1, v.Type().Bits()), styled)
	case reflect.String:
		if depth == 0 && !styled {
			b.WriteString(v.String())
			return
		}
		span(b, ClassString, strconv.Quote(v.String()), styled)
	case reflect.Interface:
		if v.IsNil() {
			span(b, ClassNull, "nil", styled)
			return
		}
		g.render(b, v.Elem(), depth, styled)
	case reflect.Pointer:
		if v.IsNil() {
			span(b, ClassNull, "nil", styled)
			return
		}
		if v.CanInterface() {
			if err, ok := v.Interface().(error); ok {
				if styled {
					writeError(b, err)
				} else {
					b.WriteString(err.Error())
				}
				return
			}
		}
		punct(b, "&", styled)
		if depth >= g.maxDepth {
			punct(b, "…", styled)
			return
		}
		g.render(b, v.Elem(), depth+1, styled)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			span(b, ClassNull, "nil", styled)
			return
		}
		g.renderList(b, v, depth, styled)
	case reflect.Map:
		if v.IsNil() {
			span(b, ClassNull, "nil", styled)
			return
		}
		g.renderMap(b, v, depth, styled)
	case reflect.Struct:
		g.renderStruct(b, v, depth, styled)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		span(b, ClassFunction, v.Type().String(), styled)
	default:
		span(b, ClassType, v.Type().String(), styled)
	}
}

func (g *Generator) renderList(b *strings.Builder, v reflect.Value, depth int, styled bool) {
	if depth >= g.maxDepth {
		punct(b, "[…]", styled)
		return
	}
	punct(b, "[", styled)
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			punct(b, ", ", styled)
		}
		g.render(b, v.Index(i), depth+1, styled)
	}
	punct(b, "]", styled)
}

func (g *Generator) renderMap(b *strings.Builder, v reflect.Value, depth int, styled bool) {
	if depth >= g.maxDepth {
		punct(b, "map[…]", styled)
		return
	}

	// Order keys by their plain rendering so output is deterministic.
	type pair struct {
		key   string
		value reflect.Value
		raw   reflect.Value
	}
	pairs := make([]pair, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb strings.Builder
		g.render(&kb, iter.Key(), depth+1, false)
		pairs = append(pairs, pair{key: kb.String(), value: iter.Value(), raw: iter.Key()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	punct(b, "map[", styled)
	for i, p := range pairs {
		if i > 0 {
			punct(b, ", ", styled)
		}
		g.render(b, p.raw, depth+1, styled)
		punct(b, ": ", styled)
		g.render(b, p.value, depth+1, styled)
	}
	punct(b, "]", styled)
}

func (g *Generator) renderStruct(b *strings.Builder, v reflect.Value, depth int, styled bool) {
	t := v.Type()
	name := t.String()
	if t.Name() == "" {
		name = "struct"
	}
	span(b, ClassType, name, styled)
	if depth >= g.maxDepth {
		punct(b, "{…}", styled)
		return
	}
	punct(b, "{", styled)
	for i := 0; i < v.NumField(); i++ {
		if i > 0 {
			punct(b, ", ", styled)
		}
		punct(b, t.Field(i).Name+": ", styled)
		g.render(b, v.Field(i), depth+1, styled)
	}
	punct(b, "}", styled)
}
