package types

import (
	"errors"
	"math"
	"testing"
)

func TestValueConstructors(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"zero value", Value{}, KindInteger},
		{"Int(42)", Int(42), KindInteger},
		{"Float(-3.14)", Float(-3.14), KindFloat},
		{"Str empty", Str(""), KindString},
		{"Ere", Ere("a+"), KindEre},
		{"Bool", Bool(true), KindBoolean},
		{"List", List(Int(1), Str("a")), KindList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.v.Kind(), tt.kind)
			}
		})
	}
}

func TestListCopiesElements(t *testing.T) {
	elems := []Value{Int(1), Int(2)}
	l := List(elems...)
	elems[0] = Int(99)
	if got := l.AsList()[0].AsInt(); got != 1 {
		t.Errorf("List element changed through caller slice: got %d", got)
	}

	out := l.AsList()
	out[1] = Int(99)
	if got := l.AsList()[1].AsInt(); got != 2 {
		t.Errorf("List element changed through AsList result: got %d", got)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"Int(0)", Int(0), false},
		{"Int(1)", Int(1), true},
		{"Int(-1)", Int(-1), false},
		{"Float(0)", Float(0), false},
		{"Float(0.5)", Float(0.5), true},
		{"Float(-0.5)", Float(-0.5), false},
		{"Str empty", Str(""), false},
		{"Str x", Str("x"), true},
		{"Ere empty", Ere(""), false},
		{"Ere a", Ere("a"), true},
		{"Bool false", Bool(false), false},
		{"Bool true", Bool(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Truthy()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Truthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruthyList(t *testing.T) {
	_, err := List(Int(1)).Truthy()
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Truthy(List) error = %v, want ErrUnsupportedOperation", err)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(5), "5"},
		{Int(-12), "-12"},
		{Float(5.5), "5.5"},
		{Float(5), "5"},
		{Float(0.1), "0.1"},
		{Float(1.0 / 3), "0.333333"},
		{Float(math.NaN()), "nan"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.Inf(-1)), "-inf"},
		{Str("hello"), "hello"},
		{Str(`a\nb`), `a\nb`},
		{Ere("^a+$"), "^a+$"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{List(), "[]"},
		{List(Int(1), Str("a"), Float(2.5), List(Bool(true))), "[1, a, 2.5, [true]]"},
	}

	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			if got := tt.v.Text(""); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFloatFormat(t *testing.T) {
	if got := Float(3.14159).Text("%.2f"); got != "3.14" {
		t.Errorf("Text(%%.2f) = %q, want %q", got, "3.14")
	}
	if got := Float(3).Text("%.2f"); got != "3" {
		t.Errorf("integral float Text(%%.2f) = %q, want %q", got, "3")
	}
}

func TestIdentical(t *testing.T) {
	if !Identical(List(Int(1), Str("a")), List(Int(1), Str("a"))) {
		t.Error("equal lists should be identical")
	}
	if Identical(Int(1), Float(1)) {
		t.Error("Int(1) and Float(1) should not be identical")
	}
	if !Identical(Float(math.NaN()), Float(math.NaN())) {
		t.Error("NaN should be identical to NaN")
	}
	if Identical(Str("a"), Ere("a")) {
		t.Error("String and Ere should not be identical")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInteger, "integer"},
		{KindFloat, "float"},
		{KindString, "string"},
		{KindEre, "ere"},
		{KindBoolean, "boolean"},
		{KindList, "list"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
