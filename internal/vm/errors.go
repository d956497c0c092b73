package vm

import (
	"errors"
	"fmt"

	"github.com/kolkov/squawk/internal/compiler"
	"github.com/kolkov/squawk/internal/types"
)

// Machine-level error kinds. Every failure returned by Step or Run is an
// *Error wrapping one of these (or a value-level kind re-exported below).
var (
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrInvalidJumpTarget = compiler.ErrInvalidJumpTarget
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrStepLimit         = errors.New("step limit exceeded")
)

// Value-level error kinds, re-exported for callers of this package.
var (
	ErrTypeMismatch         = types.ErrTypeMismatch
	ErrDivisionByZero       = types.ErrDivisionByZero
	ErrUnsupportedOperation = types.ErrUnsupportedOperation
)

// Error is a fatal run failure together with the instruction that caused it.
type Error struct {
	IP  int
	Op  compiler.Opcode
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("at %04d (%s): %v", e.IP, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
