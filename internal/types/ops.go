package types

import (
	"fmt"
	"math"
)

// Binary arithmetic dispatches on the left operand. Integer op Float
// truncates the right operand to an Integer first; Float op Integer widens
// it. The asymmetry is part of the language contract.

// Add adds, concatenates strings, or concatenates lists.
// floatFormat renders a Float appended to a String.
func Add(a, b Value, floatFormat string) (Value, error) {
	switch a.kind {
	case KindInteger:
		switch b.kind {
		case KindInteger:
			return Int(a.i + b.i), nil
		case KindFloat:
			n, err := truncate(b.f)
			if err != nil {
				return Value{}, err
			}
			return Int(a.i + n), nil
		}
	case KindFloat:
		switch b.kind {
		case KindInteger:
			return Float(a.f + float64(b.i)), nil
		case KindFloat:
			return Float(a.f + b.f), nil
		}
	case KindString:
		switch b.kind {
		case KindString, KindInteger, KindFloat:
			return Str(a.s + b.Text(floatFormat)), nil
		}
	case KindList:
		if b.kind == KindList {
			l := make([]Value, 0, len(a.list)+len(b.list))
			l = append(l, a.list...)
			l = append(l, b.list...)
			return Value{kind: KindList, list: l}, nil
		}
	case KindEre, KindBoolean:
		// No addition is defined on these variants.
	}
	return Value{}, mismatch("+", a, b)
}

// Sub subtracts b from a.
func Sub(a, b Value) (Value, error) {
	return numeric("-", a, b,
		func(x, y int64) (int64, error) { return x - y, nil },
		func(x, y float64) (float64, error) { return x - y, nil })
}

// Mul multiplies a by b.
func Mul(a, b Value) (Value, error) {
	return numeric("*", a, b,
		func(x, y int64) (int64, error) { return x * y, nil },
		func(x, y float64) (float64, error) { return x * y, nil })
}

// Div divides a by b. Integer division truncates toward zero.
func Div(a, b Value) (Value, error) {
	return numeric("/", a, b,
		func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			return x / y, nil
		},
		func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			return x / y, nil
		})
}

// Mod returns the remainder of a divided by b. It is defined only for two
// integers; the result takes the sign of the dividend.
func Mod(a, b Value) (Value, error) {
	if a.kind != KindInteger || b.kind != KindInteger {
		return Value{}, mismatch("%", a, b)
	}
	if b.i == 0 {
		return Value{}, fmt.Errorf("%w: %d %% 0", ErrDivisionByZero, a.i)
	}
	return Int(a.i % b.i), nil
}

// numeric applies the shared Integer/Float coercion matrix.
func numeric(op string, a, b Value,
	ints func(x, y int64) (int64, error),
	floats func(x, y float64) (float64, error),
) (Value, error) {
	switch a.kind {
	case KindInteger:
		switch b.kind {
		case KindInteger:
			n, err := ints(a.i, b.i)
			if err != nil {
				return Value{}, fmt.Errorf("%w: %d %s %d", err, a.i, op, b.i)
			}
			return Int(n), nil
		case KindFloat:
			y, err := truncate(b.f)
			if err != nil {
				return Value{}, err
			}
			n, err := ints(a.i, y)
			if err != nil {
				return Value{}, fmt.Errorf("%w: %d %s %d", err, a.i, op, y)
			}
			return Int(n), nil
		}
	case KindFloat:
		switch b.kind {
		case KindInteger:
			f, err := floats(a.f, float64(b.i))
			if err != nil {
				return Value{}, fmt.Errorf("%w: %v %s %d", err, a.f, op, b.i)
			}
			return Float(f), nil
		case KindFloat:
			f, err := floats(a.f, b.f)
			if err != nil {
				return Value{}, fmt.Errorf("%w: %v %s %v", err, a.f, op, b.f)
			}
			return Float(f), nil
		}
	case KindString, KindEre, KindBoolean, KindList:
		// Only the four numeric pairings are defined.
	}
	return Value{}, mismatch(op, a, b)
}

// truncate converts a float to an integer, rounding toward zero.
func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v does not truncate to an integer", ErrUnsupportedOperation, f)
	}
	return int64(f), nil
}

// Comparison

// Equal compares two numeric values. Integer and Float compare with the
// Integer widened to Float. Any other pairing is a TypeMismatch.
func Equal(a, b Value) (Value, error) {
	c, ok, err := compare("==", a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(ok && c == 0), nil
}

// NotEqual is the negation of Equal.
func NotEqual(a, b Value) (Value, error) {
	c, ok, err := compare("!=", a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(!ok || c != 0), nil
}

// Less reports a < b.
func Less(a, b Value) (Value, error) {
	c, ok, err := compare("<", a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(ok && c < 0), nil
}

// LessEqual reports a <= b.
func LessEqual(a, b Value) (Value, error) {
	c, ok, err := compare("<=", a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(ok && c <= 0), nil
}

// Greater reports a > b.
func Greater(a, b Value) (Value, error) {
	c, ok, err := compare(">", a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(ok && c > 0), nil
}

// GreaterEqual reports a >= b.
func GreaterEqual(a, b Value) (Value, error) {
	c, ok, err := compare(">=", a, b)
	if err != nil {
		return Value{}, err
	}
	return Bool(ok && c >= 0), nil
}

// Compare orders two numeric values, returning -1, 0 or 1.
// ok is false when either operand is NaN.
func Compare(a, b Value) (c int, ok bool, err error) {
	return compare("<=>", a, b)
}

func compare(op string, a, b Value) (int, bool, error) {
	switch a.kind {
	case KindInteger:
		switch b.kind {
		case KindInteger:
			switch {
			case a.i < b.i:
				return -1, true, nil
			case a.i > b.i:
				return 1, true, nil
			default:
				return 0, true, nil
			}
		case KindFloat:
			c, ok := compareFloats(float64(a.i), b.f)
			return c, ok, nil
		}
	case KindFloat:
		switch b.kind {
		case KindInteger:
			c, ok := compareFloats(a.f, float64(b.i))
			return c, ok, nil
		case KindFloat:
			c, ok := compareFloats(a.f, b.f)
			return c, ok, nil
		}
	case KindString, KindEre, KindBoolean, KindList:
		// Comparison is numeric only.
	}
	return 0, false, mismatch(op, a, b)
}

func compareFloats(x, y float64) (int, bool) {
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	case x == y:
		return 0, true
	default: // NaN
		return 0, false
	}
}

// Unary operators

// Negate returns -v for numeric values.
func Negate(v Value) (Value, error) {
	switch v.kind {
	case KindInteger:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	case KindString, KindEre, KindBoolean, KindList:
		return Value{}, unaryMismatch("-", v)
	default:
		return Value{}, unaryMismatch("-", v)
	}
}

// Not returns the Boolean negation of v's truthiness.
func Not(v Value) (Value, error) {
	t, err := v.Truthy()
	if err != nil {
		return Value{}, err
	}
	return Bool(!t), nil
}
