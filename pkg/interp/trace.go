package interp

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// EventKind identifies a trace event.
type EventKind int

// Trace event kinds.
const (
	EventAssign EventKind = iota
	EventLoopEnter
	EventIteration
	EventLoopExit
	EventPrint
)

func (k EventKind) String() string {
	switch k {
	case EventAssign:
		return "assign"
	case EventLoopEnter:
		return "loop"
	case EventIteration:
		return "iter"
	case EventLoopExit:
		return "end"
	case EventPrint:
		return "print"
	default:
		return "?"
	}
}

// Event describes one step of execution.
type Event struct {
	Kind  EventKind
	Pos   token.Position
	Depth int      // loop nesting depth, 0 at top level
	Name  string   // assigned variable (EventAssign)
	Value *big.Int // assigned value, loop bound, or iteration number (1-based)
	Text  string   // rendered line (EventPrint)
}

// Tracer receives execution events. Event values must not be retained past
// the call.
type Tracer interface {
	Trace(ev Event)
}

// TracerFunc adapts a function to a Tracer.
type TracerFunc func(ev Event)

// Trace calls f(ev).
func (f TracerFunc) Trace(ev Event) { f(ev) }

// NewWriterTracer returns a Tracer that writes one indented line per event.
func NewWriterTracer(w io.Writer) Tracer {
	return TracerFunc(func(ev Event) {
		indent := strings.Repeat("  ", ev.Depth)
		switch ev.Kind {
		case EventAssign:
			fmt.Fprintf(w, "%s%s %s %s := %s\n", indent, ev.Pos, ev.Kind, ev.Name, ev.Value)
		case EventLoopEnter:
			fmt.Fprintf(w, "%s%s %s x%s\n", indent, ev.Pos, ev.Kind, ev.Value)
		case EventIteration:
			fmt.Fprintf(w, "%s%s %s %s\n", indent, ev.Pos, ev.Kind, ev.Value)
		case EventLoopExit:
			fmt.Fprintf(w, "%s%s %s\n", indent, ev.Pos, ev.Kind)
		case EventPrint:
			fmt.Fprintf(w, "%s%s %s %s\n", indent, ev.Pos, ev.Kind, token.Quote(ev.Text))
		}
	})
}
