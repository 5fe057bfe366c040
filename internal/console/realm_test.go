package console

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinayprograms/scriptconsole/internal/script"
)

func newScriptEngine(t *testing.T, opts script.Options) *Engine {
	t.Helper()
	e, _ := newTestEngine(Options{})
	_, err := e.NewRealm(opts)
	require.NoError(t, err)
	return e
}

func TestRealm_EvaluatesExpression(t *testing.T) {
	e := newScriptEngine(t, script.Options{})

	e.Evaluate(context.Background(), "2+2")

	require.Equal(t, 1, e.Len())
	assert.Equal(t, `<span class="number">4</span>`, data(e)[0])
}

func TestRealm_ConsoleAPIIsImported(t *testing.T) {
	e := newScriptEngine(t, script.Options{})

	e.Evaluate(context.Background(), `console.Log("hello", 1)`)

	require.Equal(t, 1, e.Len(), "%v", data(e))
	assert.Equal(t, `<span class="log" style=""> hello 1</span>`, data(e)[0])
}

func TestRealm_ConsoleCallsAppendOnlyTheirOwnEntries(t *testing.T) {
	e := newScriptEngine(t, script.Options{})
	ctx := context.Background()

	e.Evaluate(ctx, `console.Group("g")`)
	e.Evaluate(ctx, `console.Count()`)
	e.Evaluate(ctx, `console.GroupEnd()`)

	_, kinds, d := e.Messages(0)
	assert.Equal(t, []string{"group", "html", "groupEnd"}, kinds)
	assert.Equal(t, `<span style="">default: 1</span>`, d[1])
}

func TestRealm_NoValueAppendsNothing(t *testing.T) {
	e := newScriptEngine(t, script.Options{})
	ctx := context.Background()

	e.Evaluate(ctx, "var x = 1")
	e.Evaluate(ctx, "func f() {}")
	e.Evaluate(ctx, "f()")
	e.Evaluate(ctx, "for i := 0; i < 3; i++ {\n\tx += i\n}")

	assert.Zero(t, e.Len(), "%v", data(e))

	e.Evaluate(ctx, "x")
	require.Equal(t, 1, e.Len())
	assert.Equal(t, `<span class="number">4</span>`, data(e)[0])
}

func TestRealm_ThrownStringIsRendered(t *testing.T) {
	e := newScriptEngine(t, script.Options{})

	e.Evaluate(context.Background(), `panic("boom")`)

	require.Equal(t, 1, e.Len())
	assert.Equal(t, uncaughtPrefix+`<span class="string">&#34;boom&#34;</span>`, data(e)[0])
}

func TestRealm_TraceStopsAtScriptBoundary(t *testing.T) {
	e := newScriptEngine(t, script.Options{})
	ctx := context.Background()

	e.Evaluate(ctx, `func inner() { console.Trace("here") }`)
	e.Evaluate(ctx, `inner()`)

	require.Equal(t, 1, e.Len(), "%v", data(e))
	assert.Equal(t,
		"<span class='title'>here</span><br><span class='trace'>-> (console)<br></span>",
		data(e)[0])
}

func TestRealm_ThrownErrorIsRendered(t *testing.T) {
	e := newScriptEngine(t, script.Options{Prelude: []string{`import "errors"`}})

	e.Evaluate(context.Background(), `panic(errors.New("x"))`)

	require.Equal(t, 1, e.Len(), "%v", data(e))
	assert.True(t, strings.HasPrefix(data(e)[0], uncaughtPrefix), data(e)[0])
	assert.Contains(t, data(e)[0], `<span class="error-message">x</span>`)
}

func TestRealm_CompileErrorIsRendered(t *testing.T) {
	e := newScriptEngine(t, script.Options{})

	e.Evaluate(context.Background(), "2 +")

	require.Equal(t, 1, e.Len())
	assert.True(t, strings.HasPrefix(data(e)[0], uncaughtPrefix), data(e)[0])
}

func TestRealm_StdoutBecomesLogEntries(t *testing.T) {
	e := newScriptEngine(t, script.Options{Prelude: []string{`import "fmt"`}})

	e.Evaluate(context.Background(), `fmt.Print("one\ntwo")`)

	d := data(e)
	require.Len(t, d, 3)
	assert.Equal(t, `<span class="log" style=""> one</span>`, d[0])
	assert.Equal(t, `<span class="log" style=""> two</span>`, d[1])
	// fmt.Print returns the byte count.
	assert.Equal(t, `<span class="number">7</span>`, d[2])
}

func TestRealm_ExtraModulesAreKept(t *testing.T) {
	e, _ := newTestEngine(Options{})
	modules := map[string]map[string]reflect.Value{
		"greet": {"Name": reflect.ValueOf(func() string { return "ada" })},
	}

	_, err := e.NewRealm(script.Options{Modules: modules})
	require.NoError(t, err)
	assert.Len(t, modules, 1)

	e.Evaluate(context.Background(), `greet.Name()`)

	require.Equal(t, 1, e.Len())
	assert.Equal(t, `<span class="string">&#34;ada&#34;</span>`, data(e)[0])
}

func TestRealm_BadPreludeIsReported(t *testing.T) {
	e, _ := newTestEngine(Options{})

	_, err := e.NewRealm(script.Options{Prelude: []string{"not go"}})

	assert.Error(t, err)
	e.Evaluate(context.Background(), "1")
	assert.Zero(t, e.Len())
}
