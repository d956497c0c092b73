package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kolkov/squawk/internal/types"
)

// Validation errors.
var (
	ErrInvalidJumpTarget = errors.New("invalid jump target")
	ErrInvalidOpcode     = errors.New("invalid opcode")
	ErrInvalidOperand    = errors.New("invalid operand")
)

// Instruction is one unit of executable data. Only the operand field named
// by Op.Operand() is meaningful.
type Instruction struct {
	Op      Opcode
	Value   types.Value // LoadConstant
	Name    string      // LoadVariable, StoreVariable
	Arg     int         // Jump target or value count
	Pattern string      // MatchEre
}

// NewOp returns an instruction without operands.
func NewOp(op Opcode) Instruction {
	return Instruction{Op: op}
}

// NewConst returns a LoadConstant instruction.
func NewConst(v types.Value) Instruction {
	return Instruction{Op: LoadConstant, Value: v}
}

// NewLoad returns a LoadVariable instruction.
func NewLoad(name string) Instruction {
	return Instruction{Op: LoadVariable, Name: name}
}

// NewStore returns a StoreVariable instruction.
func NewStore(name string) Instruction {
	return Instruction{Op: StoreVariable, Name: name}
}

// NewJump returns a Jump, JumpIfTrue or JumpIfFalse instruction.
func NewJump(op Opcode, target int) Instruction {
	return Instruction{Op: op, Arg: target}
}

// NewPrintf returns a Printf instruction consuming n arguments plus the format.
func NewPrintf(n int) Instruction {
	return Instruction{Op: Printf, Arg: n}
}

// NewBuildList returns a BuildList instruction collecting n values.
func NewBuildList(n int) Instruction {
	return Instruction{Op: BuildList, Arg: n}
}

// NewMatch returns a MatchEre instruction.
func NewMatch(pattern string) Instruction {
	return Instruction{Op: MatchEre, Pattern: pattern}
}

// String returns the instruction in listing syntax.
func (in Instruction) String() string {
	switch in.Op.Operand() {
	case OperandValue:
		return in.Op.String() + " " + formatValue(in.Value)
	case OperandName:
		return in.Op.String() + " " + formatName(in.Name)
	case OperandTarget, OperandCount:
		return in.Op.String() + " " + strconv.Itoa(in.Arg)
	case OperandPattern:
		return in.Op.String() + " " + strconv.Quote(in.Pattern)
	default:
		return in.Op.String()
	}
}

// Program is an ordered instruction sequence with absolute jump targets.
// It is not modified by execution and may be shared between VMs.
type Program struct {
	Instructions []Instruction
}

// NewProgram returns a program holding a copy of instrs.
func NewProgram(instrs ...Instruction) *Program {
	code := make([]Instruction, len(instrs))
	copy(code, instrs)
	return &Program{Instructions: code}
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Validate checks opcodes and operands ahead of execution. Jump targets must
// be indexes into the instruction sequence.
func (p *Program) Validate() error {
	n := len(p.Instructions)
	for i, in := range p.Instructions {
		if !in.Op.Valid() {
			return fmt.Errorf("instruction %d: %w: %d", i, ErrInvalidOpcode, int32(in.Op))
		}
		switch in.Op.Operand() {
		case OperandTarget:
			if in.Arg < 0 || in.Arg >= n {
				return fmt.Errorf("instruction %d (%s): %w: %d not in [0, %d)", i, in.Op, ErrInvalidJumpTarget, in.Arg, n)
			}
		case OperandCount:
			if in.Arg < 0 {
				return fmt.Errorf("instruction %d (%s): %w: negative count %d", i, in.Op, ErrInvalidOperand, in.Arg)
			}
		case OperandName:
			if in.Name == "" {
				return fmt.Errorf("instruction %d (%s): %w: empty variable name", i, in.Op, ErrInvalidOperand)
			}
		}
	}
	return nil
}

// Disassemble returns a human-readable listing of the program. Each line is
// prefixed with its instruction index; the output is accepted by Assemble.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, in := range p.Instructions {
		fmt.Fprintf(&sb, "%04d: %s", i, in)
		if in.Op.IsJump() {
			fmt.Fprintf(&sb, " # -> %04d", in.Arg)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatValue renders a constant in listing syntax.
func formatValue(v types.Value) string {
	switch v.Kind() {
	case types.KindInteger:
		return "int " + strconv.FormatInt(v.AsInt(), 10)
	case types.KindFloat:
		return "float " + strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case types.KindString:
		return "str " + strconv.Quote(v.AsStr())
	case types.KindEre:
		return "ere " + strconv.Quote(v.AsStr())
	case types.KindBoolean:
		return "bool " + strconv.FormatBool(v.AsBool())
	case types.KindList:
		elems := v.AsList()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = formatValue(e)
		}
		return "list [" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}

// formatName quotes a variable name unless it is a plain word.
func formatName(name string) string {
	if isPlainWord(name) {
		return name
	}
	return strconv.Quote(name)
}

func isPlainWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if isDelimiter(s[i]) || s[i] == '#' {
			return false
		}
	}
	return true
}
