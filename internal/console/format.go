package console

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// formatArgs substitutes format specifiers in a leading string argument
// with the arguments that follow it. The result is the formatted string
// followed by any arguments no specifier consumed.
//
// Supported specifiers: %s (text), %d and %i (integer), %f (float),
// %o and %O (value), %c (style for the next print, not printed).
func (b *Binding) formatArgs(args []any) []any {
	return b.substitute(args, b.e.AddStyle)
}

// substitute applies the specifiers, passing %c arguments to style. A nil
// style drops them.
func (b *Binding) substitute(args []any, style func(string)) []any {
	if len(args) < 2 {
		return args
	}
	target, ok := args[0].(string)
	if !ok {
		return args
	}

	rest := args[1:]
	var out strings.Builder
	for i := 0; i < len(target); {
		if target[i] != '%' || i+1 >= len(target) || len(rest) == 0 {
			out.WriteByte(target[i])
			i++
			continue
		}

		switch target[i+1] {
		case 's', 'o', 'O':
			out.WriteString(b.text(rest[0]))
		case 'd', 'i':
			out.WriteString(formatInt(rest[0]))
		case 'f':
			out.WriteString(formatFloat(rest[0]))
		case 'c':
			if style != nil {
				style(b.text(rest[0]))
			}
		default:
			out.WriteByte(target[i])
			i++
			continue
		}
		rest = rest[1:]
		i += 2
	}

	return append([]any{out.String()}, rest...)
}

// label renders log arguments as one line of text.
func (b *Binding) label(args []any) string {
	return b.e.formatter.FormatText(b.formatArgs(args))
}

func (b *Binding) text(v any) string {
	return b.e.formatter.FormatText([]any{v})
}

func formatInt(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return truncate(rv.Float())
	case reflect.String:
		if n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64); err == nil {
			return truncate(f)
		}
	}
	return "NaN"
}

func truncate(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "NaN"
	}
	return strconv.FormatFloat(math.Trunc(f), 'f', -1, 64)
}

func formatFloat(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatFloat(float64(rv.Int()), 'f', -1, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatFloat(float64(rv.Uint()), 'f', -1, 64)
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); !math.IsNaN(f) && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case reflect.String:
		if f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return "NaN"
}
