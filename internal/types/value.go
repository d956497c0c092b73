// Package types defines runtime value types for squawk.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultFloatFormat is the format used to render non-integral floats.
const DefaultFloatFormat = "%.6g"

// Kind represents the variant of a Value.
type Kind uint8

const (
	KindInteger Kind = iota // Signed 64-bit integer
	KindFloat               // 64-bit IEEE float
	KindString              // UTF-8 text
	KindEre                 // Extended regular expression literal
	KindBoolean             // true or false
	KindList                // Ordered heterogeneous sequence
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindEre:
		return "ere"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value represents a squawk runtime value.
// It is a closed tagged union: exactly one variant is active and the
// zero Value is Integer 0. Values are passed by value; list payloads are
// never mutated in place, so sharing the backing slice is safe.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string // String text or Ere pattern
	b    bool
	list []Value
}

// Constructors

// Int creates an Integer value.
func Int(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Float creates a Float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Str creates a String value.
func Str(s string) Value {
	return Value{kind: KindString, s: s}
}

// Ere creates a regex literal value holding the raw pattern text.
func Ere(pattern string) Value {
	return Value{kind: KindEre, s: pattern}
}

// Bool creates a Boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// List creates a List value. The elements are copied.
func List(elems ...Value) Value {
	l := make([]Value, len(elems))
	copy(l, elems)
	return Value{kind: KindList, list: l}
}

// Accessors

// Kind returns the value's variant.
func (v Value) Kind() Kind {
	return v.kind
}

// AsInt returns the Integer payload (0 for other kinds).
func (v Value) AsInt() int64 {
	return v.i
}

// AsFloat returns the Float payload (0 for other kinds).
func (v Value) AsFloat() float64 {
	return v.f
}

// AsStr returns the String text or Ere pattern ("" for other kinds).
func (v Value) AsStr() string {
	return v.s
}

// AsBool returns the Boolean payload (false for other kinds).
func (v Value) AsBool() bool {
	return v.b
}

// AsList returns a copy of the List elements (nil for other kinds).
func (v Value) AsList() []Value {
	if v.kind != KindList {
		return nil
	}
	l := make([]Value, len(v.list))
	copy(l, v.list)
	return l
}

// Len returns the number of elements of a List, 0 otherwise.
func (v Value) Len() int {
	return len(v.list)
}

// Truthiness

// Truthy reports whether the value counts as true in a conditional jump.
// Integers and floats are true when strictly positive, strings and regex
// literals when non-empty. Lists have no truth value.
func (v Value) Truthy() (bool, error) {
	switch v.kind {
	case KindInteger:
		return v.i > 0, nil
	case KindFloat:
		return v.f > 0, nil
	case KindString, KindEre:
		return v.s != "", nil
	case KindBoolean:
		return v.b, nil
	case KindList:
		return false, fmt.Errorf("%w: truthiness of %s", ErrUnsupportedOperation, v.kind)
	default:
		return false, fmt.Errorf("%w: truthiness of %s", ErrUnsupportedOperation, v.kind)
	}
}

// Formatting

// Text returns the canonical textual representation used by print and
// string concatenation. floatFormat is applied to non-integral floats;
// an empty format means DefaultFloatFormat.
func (v Value) Text(floatFormat string) string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f, floatFormat)
	case KindString, KindEre:
		return v.s
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Text(floatFormat))
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return ""
	}
}

// String returns a debug representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%s)", strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		return fmt.Sprintf("String(%q)", v.s)
	case KindEre:
		return fmt.Sprintf("Ere(/%s/)", v.s)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%t)", v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "List(" + strings.Join(parts, ", ") + ")"
	default:
		return "Invalid()"
	}
}

// Identical reports whether a and b have the same variant and payload.
// It is a structural test for hosts and tests, not the language's ==.
func Identical(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInteger:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case KindString, KindEre:
		return a.s == b.s
	case KindBoolean:
		return a.b == b.b
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Identical(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FormatFloat formats a float using the given printf-style format.
// Integral values that fit in int64 print without a fractional part.
func FormatFloat(f float64, format string) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64:
		return strconv.FormatInt(int64(f), 10)
	case format == "" || format == DefaultFloatFormat:
		// Common case - use faster formatting
		return strconv.FormatFloat(f, 'g', 6, 64)
	default:
		return fmt.Sprintf(format, f)
	}
}
