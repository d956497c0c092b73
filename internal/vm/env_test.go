package vm

import (
	"errors"
	"slices"
	"testing"

	"github.com/kolkov/squawk/internal/types"
)

func TestEnv(t *testing.T) {
	env := NewEnv()

	if _, err := env.Load("x"); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("Load(x) on empty env = %v, want ErrUndefinedVariable", err)
	}

	env.Store("x", types.Int(1))
	env.Store("b", types.Str("s"))
	env.Store("x", types.Float(2.5))

	v, err := env.Load("x")
	if err != nil {
		t.Fatalf("Load(x) error: %v", err)
	}
	if !types.Identical(v, types.Float(2.5)) {
		t.Errorf("Load(x) = %v, want Float(2.5)", v)
	}
	if env.Len() != 2 {
		t.Errorf("Len() = %d, want 2", env.Len())
	}
	if names := env.Names(); !slices.Equal(names, []string{"b", "x"}) {
		t.Errorf("Names() = %v, want [b x]", names)
	}

	snap := env.Snapshot()
	env.Store("y", types.Bool(true))
	if _, ok := snap["y"]; ok {
		t.Error("Snapshot shares storage with the environment")
	}

	env.Clear()
	if env.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", env.Len())
	}
}

func TestEnvUndefinedMessage(t *testing.T) {
	_, err := NewEnv().Load("total")
	if err == nil || err.Error() != "undefined variable: total" {
		t.Errorf("error = %v, want %q", err, "undefined variable: total")
	}
}
