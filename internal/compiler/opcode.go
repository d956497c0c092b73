// Package compiler defines the squawk instruction set and the program
// container the VM executes, together with its textual listing and binary
// image forms.
package compiler

import "fmt"

// Opcode represents a virtual machine instruction.
type Opcode int32

const (
	// Nop does nothing.
	Nop Opcode = iota

	// Stack operations
	LoadConstant // Push constant: LoadConstant value
	Dup          // Duplicate top of stack
	Pop          // Discard top of stack
	BuildList    // Pop N values into a list: BuildList count

	// Variable access
	LoadVariable  // Push variable: LoadVariable name
	StoreVariable // Pop into variable: StoreVariable name

	// Arithmetic operators
	Add      // a + b
	Subtract // a - b
	Multiply // a * b
	Divide   // a / b
	Modulo   // a % b

	// Comparison operators
	Equal        // a == b
	NotEqual     // a != b
	Less         // a < b
	LessEqual    // a <= b
	Greater      // a > b
	GreaterEqual // a >= b

	// Unary operators
	Negate // -a
	Not    // !a

	// Control flow
	Jump        // Unconditional jump: Jump target
	JumpIfTrue  // Jump if truthy: JumpIfTrue target
	JumpIfFalse // Jump if falsy: JumpIfFalse target

	// Regex
	MatchEre // Match current input line: MatchEre pattern

	// I/O operations
	Print    // Print top of stack and a line terminator
	Printf   // Formatted print: Printf count (format pushed before the arguments)
	ReadLine // Read next input line: pushes line and true, or false at end of input

	// Halt stops execution
	Halt

	numOpcodes // sentinel, keep last
)

// OperandKind describes which operand field an opcode uses.
type OperandKind uint8

const (
	OperandNone    OperandKind = iota
	OperandValue               // Instruction.Value
	OperandName                // Instruction.Name
	OperandTarget              // Instruction.Arg as absolute instruction index
	OperandCount               // Instruction.Arg as a value count
	OperandPattern             // Instruction.Pattern
)

var opcodeNames = [...]string{
	Nop:           "Nop",
	LoadConstant:  "LoadConstant",
	Dup:           "Dup",
	Pop:           "Pop",
	BuildList:     "BuildList",
	LoadVariable:  "LoadVariable",
	StoreVariable: "StoreVariable",
	Add:           "Add",
	Subtract:      "Subtract",
	Multiply:      "Multiply",
	Divide:        "Divide",
	Modulo:        "Modulo",
	Equal:         "Equal",
	NotEqual:      "NotEqual",
	Less:          "Less",
	LessEqual:     "LessEqual",
	Greater:       "Greater",
	GreaterEqual:  "GreaterEqual",
	Negate:        "Negate",
	Not:           "Not",
	Jump:          "Jump",
	JumpIfTrue:    "JumpIfTrue",
	JumpIfFalse:   "JumpIfFalse",
	MatchEre:      "MatchEre",
	Print:         "Print",
	Printf:        "Printf",
	ReadLine:      "ReadLine",
	Halt:          "Halt",
}

// opcodesByName is the reverse of opcodeNames, used by the assembler.
var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = Opcode(op)
	}
	return m
}()

// String returns a human-readable name for the opcode.
func (op Opcode) String() string {
	if op.Valid() {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int32(op))
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op >= 0 && op < numOpcodes
}

// Operand returns the kind of operand the opcode carries.
func (op Opcode) Operand() OperandKind {
	switch op {
	case LoadConstant:
		return OperandValue
	case LoadVariable, StoreVariable:
		return OperandName
	case Jump, JumpIfTrue, JumpIfFalse:
		return OperandTarget
	case BuildList, Printf:
		return OperandCount
	case MatchEre:
		return OperandPattern
	default:
		return OperandNone
	}
}

// IsJump reports whether the opcode sets the instruction pointer.
func (op Opcode) IsJump() bool {
	return op.Operand() == OperandTarget
}

// LookupOpcode returns the opcode with the given mnemonic.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}
