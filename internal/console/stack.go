package console

import (
	"runtime"
	"strings"
)

// Interpreted calls nest deeply on the Go stack.
const maxFrames = 512

// hiddenFrames are dropped from Trace output.
var hiddenFrames = []string{
	"runtime.",
	"reflect.",
	"github.com/traefik/yaegi/",
	"github.com/vinayprograms/scriptconsole/internal/console.",
}

// realmFrame prefixes the frame where the host entered the interpreter.
const realmFrame = "github.com/vinayprograms/scriptconsole/internal/script.(*Realm)."

// callerStack returns the function names of the Go frames above the
// console package, innermost first. Interpreted script frames are not
// visible on the Go stack, so a call made from a script ends at the realm
// boundary, reported as origin. Frames of the embedding host are never
// included in that case.
func callerStack(origin string) []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var names []string
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, realmFrame) {
			return append(names, origin)
		}
		if frame.Function != "" && !hidden(frame.Function) {
			names = append(names, shortName(frame.Function))
		}
		if !more {
			break
		}
	}
	return names
}

func hidden(fn string) bool {
	for _, prefix := range hiddenFrames {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}

// shortName strips the import path, keeping "pkg.Func".
func shortName(fn string) string {
	if idx := strings.LastIndex(fn, "/"); idx >= 0 {
		return fn[idx+1:]
	}
	return fn
}
