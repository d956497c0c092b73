package types

import (
	"errors"
	"fmt"
)

// Value-level error kinds. Operators wrap these with a description of the
// operands, so callers match with errors.Is.
var (
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// mismatch reports a binary operator applied to an unsupported pairing.
func mismatch(op string, a, b Value) error {
	return fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, a.kind, op, b.kind)
}

// unaryMismatch reports a unary operator applied to an unsupported variant.
func unaryMismatch(op string, v Value) error {
	return fmt.Errorf("%w: %s%s", ErrTypeMismatch, op, v.kind)
}
