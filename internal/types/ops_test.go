package types

import (
	"errors"
	"math"
	"testing"
)

type binaryOp func(a, b Value) (Value, error)

func add(a, b Value) (Value, error) { return Add(a, b, DefaultFloatFormat) }

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   binaryOp
		a, b Value
		want Value
	}{
		{"int+int", add, Int(2), Int(3), Int(5)},
		{"int+float truncates right", add, Int(3), Float(2.5), Int(5)},
		{"int+negative float truncates toward zero", add, Int(3), Float(-2.9), Int(1)},
		{"float+int widens right", add, Float(2.5), Int(3), Float(5.5)},
		{"float+float", add, Float(0.25), Float(0.5), Float(0.75)},
		{"str+str", add, Str("a"), Str("b"), Str("ab")},
		{"str+int", add, Str("a"), Int(1), Str("a1")},
		{"str+float", add, Str("x="), Float(2.5), Str("x=2.5")},
		{"str+integral float", add, Str("x="), Float(2), Str("x=2")},
		{"list+list", add, List(Int(1)), List(Str("a"), Int(2)), List(Int(1), Str("a"), Int(2))},

		{"int-int", Sub, Int(2), Int(5), Int(-3)},
		{"int-float", Sub, Int(10), Float(2.9), Int(8)},
		{"float-int", Sub, Float(10), Int(3), Float(7)},
		{"float-float", Sub, Float(1.5), Float(0.5), Float(1)},

		{"int*int", Mul, Int(6), Int(7), Int(42)},
		{"int*float", Mul, Int(6), Float(1.9), Int(6)},
		{"float*int", Mul, Float(1.5), Int(4), Float(6)},
		{"float*float", Mul, Float(1.5), Float(1.5), Float(2.25)},

		{"int/int truncates", Div, Int(7), Int(2), Int(3)},
		{"negative int/int truncates toward zero", Div, Int(-7), Int(2), Int(-3)},
		{"int/float", Div, Int(7), Float(2.5), Int(3)},
		{"float/int", Div, Float(7), Int(2), Float(3.5)},
		{"float/float", Div, Float(1), Float(4), Float(0.25)},

		{"int%int", Mod, Int(7), Int(3), Int(1)},
		{"negative dividend keeps sign", Mod, Int(-7), Int(3), Int(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Identical(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddIntegerProperty(t *testing.T) {
	samples := []int64{0, 1, -1, 42, -1000, math.MaxInt32, math.MinInt32}
	for _, a := range samples {
		for _, b := range samples {
			got, err := Add(Int(a), Int(b), "")
			if err != nil {
				t.Fatalf("Add(%d, %d): %v", a, b, err)
			}
			if !Identical(got, Int(a+b)) {
				t.Errorf("Add(%d, %d) = %v, want Integer(%d)", a, b, got, a+b)
			}
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		name string
		op   binaryOp
		a, b Value
		want error
	}{
		{"int+str", add, Int(1), Str("a"), ErrTypeMismatch},
		{"float+str", add, Float(1), Str("a"), ErrTypeMismatch},
		{"str+bool", add, Str("a"), Bool(true), ErrTypeMismatch},
		{"str+list", add, Str("a"), List(), ErrTypeMismatch},
		{"list+int", add, List(), Int(1), ErrTypeMismatch},
		{"bool+bool", add, Bool(true), Bool(true), ErrTypeMismatch},
		{"ere+str", add, Ere("a"), Str("b"), ErrTypeMismatch},
		{"int+NaN", add, Int(1), Float(math.NaN()), ErrUnsupportedOperation},

		{"str-str", Sub, Str("a"), Str("b"), ErrTypeMismatch},
		{"list-list", Sub, List(), List(), ErrTypeMismatch},
		{"str*int", Mul, Str("a"), Int(3), ErrTypeMismatch},
		{"bool*int", Mul, Bool(true), Int(3), ErrTypeMismatch},

		{"int/0", Div, Int(1), Int(0), ErrDivisionByZero},
		{"int/0.5 truncates to zero", Div, Int(1), Float(0.5), ErrDivisionByZero},
		{"float/0", Div, Float(1), Float(0), ErrDivisionByZero},
		{"float/int 0", Div, Float(1), Int(0), ErrDivisionByZero},
		{"str/int", Div, Str("6"), Int(2), ErrTypeMismatch},

		{"int%0", Mod, Int(5), Int(0), ErrDivisionByZero},
		{"float%int", Mod, Float(5), Int(2), ErrTypeMismatch},
		{"int%float", Mod, Int(5), Float(2), ErrTypeMismatch},
		{"str%int", Mod, Str("5"), Int(2), ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.op(tt.a, tt.b)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComparison(t *testing.T) {
	tests := []struct {
		name string
		op   binaryOp
		a, b Value
		want bool
	}{
		{"int==int", Equal, Int(3), Int(3), true},
		{"int==int false", Equal, Int(3), Int(4), false},
		{"int==float widened", Equal, Int(3), Float(3), true},
		{"int==float no truncation", Equal, Int(3), Float(3.5), false},
		{"float==int", Equal, Float(2.5), Int(2), false},
		{"float==float", Equal, Float(2.5), Float(2.5), true},
		{"NaN==NaN", Equal, Float(math.NaN()), Float(math.NaN()), false},

		{"int!=int", NotEqual, Int(3), Int(4), true},
		{"float!=int", NotEqual, Float(3), Int(3), false},
		{"NaN!=NaN", NotEqual, Float(math.NaN()), Float(math.NaN()), true},

		{"int<int", Less, Int(1), Int(2), true},
		{"int<float", Less, Int(2), Float(2.5), true},
		{"float<int", Less, Float(2.5), Int(2), false},
		{"NaN<int", Less, Float(math.NaN()), Int(2), false},
		{"int<=int", LessEqual, Int(2), Int(2), true},
		{"int>int", Greater, Int(3), Int(2), true},
		{"float>float", Greater, Float(1), Float(2), false},
		{"int>=float", GreaterEqual, Int(2), Float(2), true},
		{"NaN>=NaN", GreaterEqual, Float(math.NaN()), Float(math.NaN()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Identical(got, Bool(tt.want)) {
				t.Errorf("got %v, want Boolean(%v)", got, tt.want)
			}
		})
	}
}

func TestComparisonErrors(t *testing.T) {
	ops := map[string]binaryOp{
		"==": Equal, "!=": NotEqual,
		"<": Less, "<=": LessEqual,
		">": Greater, ">=": GreaterEqual,
	}
	pairs := []struct {
		name string
		a, b Value
	}{
		{"str-str", Str("a"), Str("a")},
		{"int-str", Int(1), Str("1")},
		{"bool-bool", Bool(true), Bool(true)},
		{"float-bool", Float(1), Bool(true)},
		{"list-list", List(), List()},
		{"ere-ere", Ere("a"), Ere("a")},
	}

	for opName, op := range ops {
		for _, p := range pairs {
			t.Run(opName+"_"+p.name, func(t *testing.T) {
				_, err := op(p.a, p.b)
				if !errors.Is(err, ErrTypeMismatch) {
					t.Errorf("error = %v, want ErrTypeMismatch", err)
				}
			})
		}
	}
}

func TestCompare(t *testing.T) {
	c, ok, err := Compare(Int(1), Float(0.5))
	if err != nil || !ok || c != 1 {
		t.Errorf("Compare(1, 0.5) = (%d, %v, %v), want (1, true, nil)", c, ok, err)
	}
	_, ok, err = Compare(Float(math.NaN()), Int(0))
	if err != nil || ok {
		t.Errorf("Compare(NaN, 0) = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestUnary(t *testing.T) {
	got, err := Negate(Int(5))
	if err != nil || !Identical(got, Int(-5)) {
		t.Errorf("Negate(Int(5)) = %v, %v", got, err)
	}
	got, err = Negate(Float(2.5))
	if err != nil || !Identical(got, Float(-2.5)) {
		t.Errorf("Negate(Float(2.5)) = %v, %v", got, err)
	}
	if _, err := Negate(Str("a")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Negate(Str) error = %v, want ErrTypeMismatch", err)
	}

	got, err = Not(Str(""))
	if err != nil || !Identical(got, Bool(true)) {
		t.Errorf("Not(Str(\"\")) = %v, %v", got, err)
	}
	if _, err := Not(List()); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Not(List) error = %v, want ErrUnsupportedOperation", err)
	}
}
