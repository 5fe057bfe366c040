package console

import (
	"bytes"
	"strings"
	"sync"
)

// lineWriter turns a script's output stream into one emit call per line.
type lineWriter struct {
	emit func(line string)

	mu  sync.Mutex
	buf bytes.Buffer
}

func newLineWriter(emit func(line string)) *lineWriter {
	return &lineWriter{emit: emit}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	data := p

	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			w.buf.Write(data)
			break
		}

		w.buf.Write(data[:idx])
		w.emitLine()
		data = data[idx+1:]
	}

	return total, nil
}

// Flush emits a trailing partial line, if any.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() == 0 {
		return
	}
	w.emitLine()
}

func (w *lineWriter) emitLine() {
	line := strings.TrimSuffix(w.buf.String(), "\r")
	w.buf.Reset()
	w.emit(line)
}
