package printer

import (
	"errors"
	"fmt"
)

// ErrPayloadMismatch is returned when a payload does not fit its level.
var ErrPayloadMismatch = errors.New("payload does not match log level")

// Payload is the argument of a print call. It is one of Values, Trace or
// Group; the level decides which one is expected.
type Payload interface {
	payload()
}

// Values carries the arguments of an ordinary log call.
type Values []any

// Trace carries a trace label and the names of the stack frames.
type Trace struct {
	Label string
	Stack []string
}

// Group carries the label of a group being opened.
type Group struct {
	Label string
}

func (Values) payload() {}
func (Trace) payload()  {}
func (Group) payload()  {}

// check verifies that p is the payload shape level expects.
func check(level Level, p Payload) error {
	var ok bool
	switch level {
	case LevelTrace:
		_, ok = p.(Trace)
	case LevelGroup, LevelGroupCollapsed:
		_, ok = p.(Group)
	default:
		_, ok = p.(Values)
	}
	if !ok {
		return fmt.Errorf("%w: %s with %T", ErrPayloadMismatch, level, p)
	}
	return nil
}
