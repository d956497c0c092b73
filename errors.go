package squawk

import (
	"errors"
	"fmt"

	"github.com/kolkov/squawk/internal/compiler"
	"github.com/kolkov/squawk/internal/vm"
)

// Run failure kinds, matched with errors.Is against a *RuntimeError.
var (
	ErrStackUnderflow       = vm.ErrStackUnderflow
	ErrUndefinedVariable    = vm.ErrUndefinedVariable
	ErrTypeMismatch         = vm.ErrTypeMismatch
	ErrDivisionByZero       = vm.ErrDivisionByZero
	ErrUnsupportedOperation = vm.ErrUnsupportedOperation
	ErrInvalidJumpTarget    = vm.ErrInvalidJumpTarget
	ErrInvalidPattern       = vm.ErrInvalidPattern
	ErrStepLimit            = vm.ErrStepLimit
)

// kindNames maps run failure kinds to the names reported in RuntimeError.Kind.
var kindNames = []struct {
	err  error
	name string
}{
	{ErrStackUnderflow, "StackUnderflow"},
	{ErrUndefinedVariable, "UndefinedVariable"},
	{ErrTypeMismatch, "TypeMismatch"},
	{ErrDivisionByZero, "DivisionByZero"},
	{ErrUnsupportedOperation, "UnsupportedOperation"},
	{ErrInvalidJumpTarget, "InvalidJumpTarget"},
	{ErrInvalidPattern, "InvalidPattern"},
	{ErrStepLimit, "StepLimitExceeded"},
	{compiler.ErrInvalidOpcode, "InvalidInstruction"},
	{compiler.ErrInvalidOperand, "InvalidInstruction"},
}

// ParseError represents a syntax error in an instruction listing.
type ParseError struct {
	Line    int    // 1-based line number, 0 if not tied to a line
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// LoadError represents a program image that could not be decoded or
// failed validation.
type LoadError struct {
	Message string // Error description
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error: %s", e.Message)
}

// RuntimeError represents a fatal error during execution.
type RuntimeError struct {
	IP      int    // Instruction pointer at the point of failure
	Op      string // Mnemonic of the failing instruction
	Kind    string // Failure kind, e.g. "DivisionByZero"; "IO" for read and write failures
	Message string // Error description
	RunID   string // Identifier of the run in log output

	err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %04d (%s): %s", e.IP, e.Op, e.Message)
}

// Unwrap returns the underlying failure, so errors.Is matches the
// package's Err* kinds.
func (e *RuntimeError) Unwrap() error {
	return e.err
}

// newParseError converts an assembler error to the public type.
func newParseError(err error) *ParseError {
	var el compiler.ErrorList
	if errors.As(err, &el) && len(el) > 0 {
		return &ParseError{
			Line:    el[0].Line,
			Column:  el[0].Column,
			Message: el[0].Message,
		}
	}
	var ae *compiler.AsmError
	if errors.As(err, &ae) {
		return &ParseError{Line: ae.Line, Column: ae.Column, Message: ae.Message}
	}
	return &ParseError{Message: err.Error()}
}

// newRuntimeError converts a VM failure to the public type.
func newRuntimeError(err error, runID string) error {
	var vmErr *vm.Error
	if !errors.As(err, &vmErr) {
		return err
	}
	kind := "IO"
	for _, k := range kindNames {
		if errors.Is(vmErr.Err, k.err) {
			kind = k.name
			break
		}
	}
	return &RuntimeError{
		IP:      vmErr.IP,
		Op:      vmErr.Op.String(),
		Kind:    kind,
		Message: vmErr.Err.Error(),
		RunID:   runID,
		err:     vmErr.Err,
	}
}

// IsRuntimeError reports whether err is a RuntimeError and returns its kind.
func IsRuntimeError(err error) (string, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}
