// Package script provides the script realm consoles evaluate input in.
// Scripts are Go source interpreted by yaegi.
package script

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// DefaultOrigin names console input in completions and traces.
const DefaultOrigin = "(console)"

// DefaultPackages are the stdlib packages scripts may import when no
// allow-list is configured.
var DefaultPackages = []string{
	"bytes",
	"encoding/base64",
	"encoding/json",
	"errors",
	"fmt",
	"math",
	"regexp",
	"sort",
	"strconv",
	"strings",
	"time",
	"unicode",
}

// Origin describes where evaluated source came from.
type Origin struct {
	Name string
}

// Completion is the outcome of evaluating one unit of source.
// When Abrupt is set, Value is the thrown value (a panic value or a
// compile error). Otherwise Value holds the result if HasValue is set.
type Completion struct {
	Abrupt   bool
	Value    any
	HasValue bool
}

// Normal returns a completion for a successful evaluation.
func Normal(v any) Completion {
	return Completion{Value: v, HasValue: true}
}

// Empty returns a completion for an evaluation without a result.
func Empty() Completion {
	return Completion{}
}

// Throw returns an abrupt completion carrying v.
func Throw(v any) Completion {
	return Completion{Abrupt: true, Value: v, HasValue: true}
}

// Options configures a Realm.
type Options struct {
	Packages []string                            // Allowed stdlib import paths (default DefaultPackages)
	Modules  map[string]map[string]reflect.Value // Extra packages keyed by import path
	Prelude  []string                            // Source evaluated once at creation
	Stdout   io.Writer                           // Script stdout (default discard)
	Stderr   io.Writer                           // Interpreter diagnostics (default discard)
}

// Realm is one interpreter instance. Global declarations persist across
// evaluations, so a session can build on earlier input.
type Realm struct {
	mu     sync.Mutex
	interp *interp.Interpreter
}

// NewRealm creates a realm with the configured packages and modules.
// Every module is imported automatically under its package name.
func NewRealm(opts Options) (*Realm, error) {
	if len(opts.Packages) == 0 {
		opts.Packages = DefaultPackages
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	i := interp.New(interp.Options{
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})

	if err := i.Use(allowedSymbols(opts.Packages)); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}

	modules := interp.Exports{}
	paths := make([]string, 0, len(opts.Modules))
	for path, symbols := range opts.Modules {
		modules[path+"/"+packageName(path)] = symbols
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if len(modules) > 0 {
		if err := i.Use(modules); err != nil {
			return nil, fmt.Errorf("failed to load modules: %w", err)
		}
	}

	r := &Realm{interp: i}
	for _, path := range paths {
		if _, err := i.Eval(fmt.Sprintf("import %q", path)); err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", path, err)
		}
	}
	for _, src := range opts.Prelude {
		if _, err := i.Eval(src); err != nil {
			return nil, fmt.Errorf("prelude failed: %w", err)
		}
	}
	return r, nil
}

// EvaluateClassicScript runs source once against the realm's globals.
// Panics and compile errors come back as abrupt completions. The
// completion has a value only when the source ends in an expression.
func (r *Realm) EvaluateClassicScript(source string, origin Origin) Completion {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.interp.Eval(source)
	if err != nil {
		var p interp.Panic
		if errors.As(err, &p) {
			return Throw(unwrap(p.Value))
		}
		return Throw(&CompileError{Origin: origin.Name, Err: err})
	}

	kind, callee := lastExpr(source)
	switch kind {
	case exprValue:
	case exprCall:
		if r.noResults(res, callee) {
			return Empty()
		}
	default:
		return Empty()
	}
	if !res.IsValid() || !res.CanInterface() {
		return Empty()
	}
	return Normal(unwrap(res.Interface()))
}

// noResults reports whether a call produced no result. The interpreter
// evaluates such a call to the callee itself. When the callee is a plain
// name its declared results decide.
func (r *Realm) noResults(res reflect.Value, callee string) bool {
	if callee != "" {
		fn, err := r.interp.Eval(callee)
		if err == nil && fn.IsValid() && fn.Kind() == reflect.Func {
			return fn.Type().NumOut() == 0
		}
	}
	return res.IsValid() && res.Kind() == reflect.Func
}

// unwrap returns the value held by a reflect.Value the interpreter hands
// back in place of the script's own value.
func unwrap(v any) any {
	rv, ok := v.(reflect.Value)
	if !ok {
		return v
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}
	return rv.Interface()
}

// CompileError reports source that could not be parsed or type checked.
type CompileError struct {
	Origin string
	Err    error
}

func (e *CompileError) Error() string {
	if e.Origin == "" {
		return e.Err.Error()
	}
	return e.Origin + ": " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

// allowedSymbols filters the yaegi stdlib export table down to packages.
// Keys in the table are "importpath/pkgname".
func allowedSymbols(packages []string) interp.Exports {
	allowed := make(map[string]bool, len(packages))
	for _, p := range packages {
		allowed[p] = true
	}
	out := interp.Exports{}
	for key, symbols := range stdlib.Symbols {
		idx := strings.LastIndex(key, "/")
		if idx < 0 {
			continue
		}
		if allowed[key[:idx]] {
			out[key] = symbols
		}
	}
	return out
}

func packageName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
