package interp

import (
	"fmt"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// ErrorKind classifies evaluation errors.
type ErrorKind int

const (
	// Overflow means a value does not fit the configured fixed width.
	Overflow ErrorKind = iota + 1
	// InvalidBinding means an initial binding was rejected.
	InvalidBinding
)

func (k ErrorKind) String() string {
	switch k {
	case Overflow:
		return "overflow"
	case InvalidBinding:
		return "invalid binding"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// EvalError is returned when a program cannot be evaluated.
type EvalError struct {
	Kind    ErrorKind
	Pos     token.Position // zero for binding errors
	Name    string         // variable involved, if any
	Message string
}

func (e *EvalError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("eval error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Detail())
	}
	return "eval error: " + e.Detail()
}

// Detail returns the message without position information.
func (e *EvalError) Detail() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Position returns the location of the failing statement or expression.
func (e *EvalError) Position() token.Position { return e.Pos }

// Common error messages
const (
	ErrNegativeBinding  = "value %s is negative"
	ErrNilBinding       = "value is nil"
	ErrBadName          = "not a valid identifier"
	ErrDuplicateBinding = "bound more than once (names are case-insensitive)"
	ErrTooWide          = "value %s exceeds %d bits"
)
