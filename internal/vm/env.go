package vm

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kolkov/squawk/internal/types"
)

// Env is the flat variable store of one VM run.
type Env struct {
	vars map[string]types.Value
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]types.Value)}
}

// Load returns the value bound to name.
func (e *Env) Load(name string) (types.Value, error) {
	v, ok := e.vars[name]
	if !ok {
		return types.Value{}, fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
	}
	return v, nil
}

// Store binds v to name, replacing any previous binding.
func (e *Env) Store(name string, v types.Value) {
	e.vars[name] = v
}

// Len returns the number of bound names.
func (e *Env) Len() int {
	return len(e.vars)
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// Clear removes every binding.
func (e *Env) Clear() {
	clear(e.vars)
}

// Snapshot returns a copy of the current bindings.
func (e *Env) Snapshot() map[string]types.Value {
	return maps.Clone(e.vars)
}
