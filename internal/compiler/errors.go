package compiler

import "fmt"

// AsmError represents a syntax error in an instruction listing.
type AsmError struct {
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Human-readable error message
}

// Error returns a formatted error message with position information.
func (e *AsmError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// ErrorList is a list of listing errors.
type ErrorList []*AsmError

// Error returns a combined error message for all errors.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
	}
}

// Err returns an error if there are any errors, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func errorf(line, col int, format string, args ...any) *AsmError {
	return &AsmError{
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}
