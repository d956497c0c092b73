package squawk

import "github.com/kolkov/squawk/internal/types"

// Value is a runtime value: exactly one of Integer, Float, String, Ere,
// Boolean or List.
type Value = types.Value

// Kind identifies the variant of a Value.
type Kind = types.Kind

// Value kinds.
const (
	KindInteger = types.KindInteger
	KindFloat   = types.KindFloat
	KindString  = types.KindString
	KindEre     = types.KindEre
	KindBoolean = types.KindBoolean
	KindList    = types.KindList
)

// Value constructors.
var (
	Int   = types.Int
	Float = types.Float
	Str   = types.Str
	Ere   = types.Ere
	Bool  = types.Bool
	List  = types.List
)
