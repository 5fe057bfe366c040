package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/markup"
	"github.com/vinayprograms/scriptconsole/internal/printer"
	"github.com/vinayprograms/scriptconsole/internal/script"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRealm struct {
	completion script.Completion
	run        func()
	sources    []string
	origins    []script.Origin
}

func (r *fakeRealm) EvaluateClassicScript(source string, origin script.Origin) script.Completion {
	r.sources = append(r.sources, source)
	r.origins = append(r.origins, origin)
	if r.run != nil {
		r.run()
	}
	return r.completion
}

type delivered struct {
	start int
	kinds []string
	data  []string
}

type recordingDisplay struct {
	mu       sync.Mutex
	appended []int
	batches  []delivered
}

func (d *recordingDisplay) MessageAppended(index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.appended = append(d.appended, index)
}

func (d *recordingDisplay) Messages(start int, kinds, data []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, delivered{start, kinds, data})
}

func newTestEngine(opts Options) (*Engine, *recordingDisplay) {
	d := &recordingDisplay{}
	return New(d, opts), d
}

func data(e *Engine) []string {
	_, _, d := e.Messages(0)
	return d
}

func TestEvaluate_WithoutRealmDoesNothing(t *testing.T) {
	e, d := newTestEngine(Options{})

	e.Evaluate(context.Background(), "2+2")

	assert.Zero(t, e.Len())
	assert.Empty(t, d.appended)
}

func TestEvaluate_ValueAppendsOneEntry(t *testing.T) {
	e, d := newTestEngine(Options{})
	realm := &fakeRealm{completion: script.Normal(4)}
	e.Attach(realm)

	e.Evaluate(context.Background(), "2+2")

	require.Equal(t, 1, e.Len())
	assert.Equal(t, `<span class="number">4</span>`, data(e)[0])
	assert.NotContains(t, data(e)[0], uncaughtPrefix)
	assert.Equal(t, []int{0}, d.appended)
	assert.Equal(t, []string{"2+2"}, realm.sources)
	assert.Equal(t, script.DefaultOrigin, realm.origins[0].Name)
}

func TestEvaluate_ThrownErrorIsPrefixed(t *testing.T) {
	e, _ := newTestEngine(Options{})
	thrown := errors.New("x")
	e.Attach(&fakeRealm{completion: script.Throw(thrown)})

	e.Evaluate(context.Background(), `panic(errors.New("x"))`)

	require.Equal(t, 1, e.Len())
	assert.Equal(t, uncaughtPrefix+markup.New().FormatError(thrown), data(e)[0])
}

func TestEvaluate_ThrownNonErrorUsesValueRendering(t *testing.T) {
	e, _ := newTestEngine(Options{})
	e.Attach(&fakeRealm{completion: script.Throw("boom")})

	e.Evaluate(context.Background(), `panic("boom")`)

	require.Equal(t, 1, e.Len())
	assert.Equal(t, uncaughtPrefix+`<span class="string">&#34;boom&#34;</span>`, data(e)[0])
}

func TestEvaluate_NoValueAppendsNothing(t *testing.T) {
	e, d := newTestEngine(Options{})
	e.Attach(&fakeRealm{completion: script.Empty()})

	e.Evaluate(context.Background(), "var x = 1")

	assert.Zero(t, e.Len())
	assert.Empty(t, d.appended)
}

func TestEvaluate_OutputPrecedesResult(t *testing.T) {
	e, _ := newTestEngine(Options{})
	e.Attach(&fakeRealm{
		completion: script.Normal(true),
		run: func() {
			e.Binding().Log("logged")
			e.Stdout().Write([]byte("line\npartial"))
		},
	})

	e.Evaluate(context.Background(), "f()")

	assert.Equal(t, []string{
		`<span class="log" style=""> logged</span>`,
		`<span class="log" style=""> line</span>`,
		`<span class="log" style=""> partial</span>`,
		`<span class="boolean">true</span>`,
	}, data(e))
}

func TestEvaluate_StderrStaysOutOfTheLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOptions(logging.Options{Format: logging.FormatJSON, Output: &buf})
	e, _ := newTestEngine(Options{Logger: logger})
	e.Attach(&fakeRealm{
		completion: script.Empty(),
		run: func() {
			e.Stderr().Write([]byte("diagnostic\n"))
		},
	})

	e.Evaluate(context.Background(), "f()")

	assert.Zero(t, e.Len())
	assert.Contains(t, buf.String(), "diagnostic")
}

func TestEvaluate_DetachStopsEvaluation(t *testing.T) {
	e, _ := newTestEngine(Options{})
	realm := &fakeRealm{completion: script.Normal(1)}
	e.Attach(realm)
	e.Evaluate(context.Background(), "1")

	e.Detach()
	e.Evaluate(context.Background(), "1")

	assert.Equal(t, 1, e.Len())
	assert.Len(t, realm.sources, 1)
}

func TestEvaluate_CustomOrigin(t *testing.T) {
	e, _ := newTestEngine(Options{Origin: "startup.go"})
	realm := &fakeRealm{}
	e.Attach(realm)

	e.Evaluate(context.Background(), "x")

	assert.Equal(t, "startup.go", realm.origins[0].Name)
}

func TestEvaluate_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	e, _ := newTestEngine(Options{Tracer: tp.Tracer("test")})
	e.Attach(&fakeRealm{completion: script.Throw(errors.New("x"))})

	e.Evaluate(context.Background(), "boom()")

	spans := rec.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "console.evaluate", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.True(t, attrs["console.abrupt"].AsBool())
	assert.Equal(t, int64(len("boom()")), attrs["console.source.bytes"].AsInt64())
	assert.Equal(t, int64(0), attrs["console.message.index"].AsInt64())
}

func TestEngine_NotifiesEveryAppendInOrder(t *testing.T) {
	e, d := newTestEngine(Options{})

	e.Print(printer.LevelLog, printer.Values{"a"})
	e.BeginGroup("g", false)
	e.Print(printer.LevelInfo, printer.Values{"b"})
	e.EndGroup()
	e.ClearOutput()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, d.appended)

	start, kinds, _ := e.Messages(0)
	assert.Zero(t, start)
	assert.Equal(t, []string{"html", "group", "html", "groupEnd", "clear"}, kinds)
}

func TestEngine_NotificationCanPullTheNewEntry(t *testing.T) {
	e := New(nil, Options{})
	var pulled []string
	e.SetDisplay(notifyFunc(func(index int) {
		_, _, d := e.Messages(index)
		pulled = append(pulled, d...)
	}))

	e.Print(printer.LevelLog, printer.Values{"x"})

	assert.Equal(t, []string{`<span class="log" style=""> x</span>`}, pulled)
}

type notifyFunc func(int)

func (f notifyFunc) MessageAppended(index int)        { f(index) }
func (f notifyFunc) Messages(int, []string, []string) {}

func TestEngine_MessagesOutOfRangeIsEmpty(t *testing.T) {
	e, _ := newTestEngine(Options{})

	for _, start := range []int{0, 5, -1} {
		_, kinds, d := e.Messages(start)
		assert.Empty(t, kinds)
		assert.Empty(t, d)
	}

	e.ClearOutput()
	_, kinds, _ := e.Messages(1)
	assert.Empty(t, kinds)
}

func TestEngine_MessagesDataEmptyForClearAndGroupEnd(t *testing.T) {
	e, _ := newTestEngine(Options{})
	e.ClearOutput()
	e.EndGroup()

	_, _, d := e.Messages(0)
	assert.Equal(t, []string{"", ""}, d)
}

func TestEngine_SendMessagesSkipsEmptyBatches(t *testing.T) {
	e, d := newTestEngine(Options{})

	assert.Zero(t, e.SendMessages(0))
	assert.Empty(t, d.batches)

	e.Print(printer.LevelLog, printer.Values{"a"})
	e.Print(printer.LevelLog, printer.Values{"b"})

	assert.Equal(t, 1, e.SendMessages(1))
	require.Len(t, d.batches, 1)
	assert.Equal(t, 1, d.batches[0].start)
	assert.Equal(t, []string{"html"}, d.batches[0].kinds)
	assert.Equal(t, []string{`<span class="log" style=""> b</span>`}, d.batches[0].data)
}

func TestEngine_SendMessagesHonoursMaxBatch(t *testing.T) {
	e, d := newTestEngine(Options{MaxBatch: 2})
	for i := 0; i < 5; i++ {
		e.Print(printer.LevelLog, printer.Values{i})
	}

	next := 0
	for {
		n := e.SendMessages(next)
		if n == 0 {
			break
		}
		next += n
	}

	assert.Equal(t, 5, next)
	require.Len(t, d.batches, 3)
	var all []string
	for i, b := range d.batches {
		assert.Equal(t, i*2, b.start)
		assert.LessOrEqual(t, len(b.kinds), 2)
		all = append(all, b.data...)
	}
	assert.Len(t, all, 5)
	assert.Contains(t, all[4], "> 4<")
}

func TestEngine_SendMessagesWithoutDisplay(t *testing.T) {
	e := New(nil, Options{})
	e.ClearOutput()
	assert.Zero(t, e.SendMessages(0))
}

func TestEngine_StyleIsOneShot(t *testing.T) {
	e, _ := newTestEngine(Options{})
	e.AddStyle("color: red")

	e.BeginGroup("g", false)
	e.Print(printer.LevelLog, printer.Values{"x"})

	d := data(e)
	assert.Equal(t, "<span style='color: red;'>g</span>", d[0])
	assert.Equal(t, `<span class="log" style=""> x</span>`, d[1])
}

func TestEngine_OutputIsMirroredToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOptions(logging.Options{Level: logging.LevelDebug, Format: logging.FormatJSON, Output: &buf})
	e, _ := newTestEngine(Options{Logger: logger})

	e.Print(printer.LevelWarn, printer.Values{"low disk"})

	var found map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		if m["msg"] == "console output" {
			found = m
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "WARN", found["level"])
	assert.Equal(t, "low disk", found["text"])
	assert.Equal(t, "console.output", found["logger"])
}

func TestEngine_CloseFlushesAndDetaches(t *testing.T) {
	e, _ := newTestEngine(Options{})
	realm := &fakeRealm{completion: script.Normal(1)}
	e.Attach(realm)
	e.Stdout().Write([]byte("tail"))

	e.Close()
	e.Evaluate(context.Background(), "1")

	assert.Equal(t, []string{`<span class="log" style=""> tail</span>`}, data(e))
	assert.Empty(t, realm.sources)
}
