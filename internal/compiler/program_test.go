package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/kolkov/squawk/internal/types"
)

func TestOpcodeString(t *testing.T) {
	for op := Nop; op < numOpcodes; op++ {
		name := op.String()
		if name == "" || strings.HasPrefix(name, "Opcode(") {
			t.Errorf("opcode %d has no name", op)
		}
		back, ok := LookupOpcode(name)
		if !ok || back != op {
			t.Errorf("LookupOpcode(%q) = %v, %v; want %v", name, back, ok, op)
		}
	}
	if got := Opcode(-1).String(); got != "Opcode(-1)" {
		t.Errorf("Opcode(-1).String() = %q", got)
	}
}

func TestOpcodeOperand(t *testing.T) {
	tests := []struct {
		op   Opcode
		want OperandKind
	}{
		{LoadConstant, OperandValue},
		{LoadVariable, OperandName},
		{StoreVariable, OperandName},
		{Jump, OperandTarget},
		{JumpIfTrue, OperandTarget},
		{JumpIfFalse, OperandTarget},
		{Printf, OperandCount},
		{BuildList, OperandCount},
		{MatchEre, OperandPattern},
		{Add, OperandNone},
		{Print, OperandNone},
		{ReadLine, OperandNone},
		{Halt, OperandNone},
	}

	for _, tt := range tests {
		if got := tt.op.Operand(); got != tt.want {
			t.Errorf("%s.Operand() = %d, want %d", tt.op, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		prog *Program
		want error
	}{
		{"empty", NewProgram(), nil},
		{"valid jump", NewProgram(NewJump(Jump, 1), NewOp(Halt)), nil},
		{"jump past end", NewProgram(NewJump(Jump, 2), NewOp(Halt)), ErrInvalidJumpTarget},
		{"negative jump", NewProgram(NewJump(JumpIfTrue, -1)), ErrInvalidJumpTarget},
		{"jump to len", NewProgram(NewJump(JumpIfFalse, 1)), ErrInvalidJumpTarget},
		{"negative count", NewProgram(NewPrintf(-1)), ErrInvalidOperand},
		{"empty name", NewProgram(NewLoad("")), ErrInvalidOperand},
		{"unknown opcode", NewProgram(Instruction{Op: Opcode(1000)}), ErrInvalidOpcode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prog.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewProgramCopies(t *testing.T) {
	code := []Instruction{NewOp(Halt)}
	prog := NewProgram(code...)
	code[0] = NewOp(Print)
	if prog.Instructions[0].Op != Halt {
		t.Error("NewProgram shares the caller's slice")
	}
}

func TestDisassemble(t *testing.T) {
	prog := NewProgram(
		NewConst(types.Int(2)),
		NewConst(types.Str("x")),
		NewOp(Add),
		NewJump(JumpIfTrue, 0),
		NewOp(Halt),
	)
	want := `0000: LoadConstant int 2
0001: LoadConstant str "x"
0002: Add
0003: JumpIfTrue 0 # -> 0000
0004: Halt
`
	if got := prog.Disassemble(); got != want {
		t.Errorf("Disassemble() =\n%s\nwant:\n%s", got, want)
	}
}
