// Package vm implements the squawk stack machine: an instruction pointer,
// an operand stack and a flat variable environment driven by a
// fetch/execute loop.
package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/kolkov/squawk/internal/compiler"
	"github.com/kolkov/squawk/internal/runtime"
	"github.com/kolkov/squawk/internal/types"
)

// DefaultStackSize is the initial stack capacity.
const DefaultStackSize = 256

var log = commonlog.GetLogger("squawk.vm")

// Matcher matches an extended regular expression against a subject.
type Matcher interface {
	Match(pattern, subject string) (bool, error)
}

// LineSource supplies input lines to ReadLine. It returns io.EOF once the
// input is exhausted.
type LineSource interface {
	ReadLine() (string, error)
}

// namedSource is a LineSource that knows where it is reading.
type namedSource interface {
	Filename() string
	LineNum() int
}

// VMConfig holds VM configuration options.
type VMConfig struct {
	// Output receives Print and Printf text. Defaults to os.Stdout.
	Output io.Writer

	// Input feeds ReadLine. A nil Input behaves as an empty one.
	Input LineSource

	// Matcher serves MatchEre. Defaults to a RegexCache honoring POSIXRegex.
	Matcher Matcher

	// POSIXRegex enables POSIX leftmost-longest matching for the default
	// matcher.
	POSIXRegex bool

	// LineTerminator is written after every Print. Defaults to "\n".
	LineTerminator string

	// FloatFormat formats non-integral floats. Defaults to "%.6g".
	FloatFormat string

	// MaxSteps bounds the number of executed instructions (0 = unlimited).
	MaxSteps int

	// Trace logs every executed instruction at debug level.
	Trace bool

	// Vars seeds the environment before the first instruction runs.
	Vars map[string]types.Value
}

// DefaultVMConfig returns the default configuration (POSIX compliant).
func DefaultVMConfig() VMConfig {
	return VMConfig{
		POSIXRegex:     true,
		LineTerminator: "\n",
		FloatFormat:    types.DefaultFloatFormat,
	}
}

// VM executes one program. It is not safe for concurrent use; run
// independent programs on independent VMs.
type VM struct {
	program *compiler.Program

	stack []types.Value
	env   *Env
	ip    int

	// Terminal state
	halted bool
	err    error
	steps  int

	// Current input line, the subject of MatchEre
	line string

	output      io.Writer
	input       LineSource
	matcher     Matcher
	terminator  string
	floatFormat string
	maxSteps    int
	trace       bool

	id uuid.UUID
}

// New creates a new VM for the given program with default POSIX config.
func New(prog *compiler.Program) *VM {
	return NewWithConfig(prog, DefaultVMConfig())
}

// NewWithConfig creates a new VM with the specified configuration.
func NewWithConfig(prog *compiler.Program, config VMConfig) *VM {
	if prog == nil {
		prog = compiler.NewProgram()
	}
	vm := &VM{
		program:     prog,
		stack:       make([]types.Value, 0, DefaultStackSize),
		env:         NewEnv(),
		output:      config.Output,
		input:       config.Input,
		matcher:     config.Matcher,
		terminator:  config.LineTerminator,
		floatFormat: config.FloatFormat,
		maxSteps:    config.MaxSteps,
		trace:       config.Trace,
		id:          uuid.New(),
	}
	if vm.output == nil {
		vm.output = os.Stdout
	}
	if vm.matcher == nil {
		vm.matcher = newMatcher(config.POSIXRegex)
	}
	if vm.terminator == "" {
		vm.terminator = "\n"
	}
	if vm.floatFormat == "" {
		vm.floatFormat = types.DefaultFloatFormat
	}
	for name, v := range config.Vars {
		vm.env.Store(name, v)
	}
	return vm
}

// newMatcher returns the default coregex-backed matcher.
func newMatcher(posix bool) Matcher {
	return runtime.NewRegexCacheWithConfig(runtime.DefaultCacheSize, runtime.RegexConfig{POSIX: posix})
}

// ID identifies this VM in log output.
func (vm *VM) ID() uuid.UUID {
	return vm.id
}

// IP returns the instruction pointer.
func (vm *VM) IP() int {
	return vm.ip
}

// Halted reports whether the VM reached a terminal state.
func (vm *VM) Halted() bool {
	return vm.halted
}

// Err returns the error that terminated the VM, if any.
func (vm *VM) Err() error {
	return vm.err
}

// Steps returns the number of instructions executed since the last Reset.
func (vm *VM) Steps() int {
	return vm.steps
}

// Env returns the VM's environment.
func (vm *VM) Env() *Env {
	return vm.env
}

// Stack returns a copy of the operand stack, bottom first.
func (vm *VM) Stack() []types.Value {
	return append([]types.Value(nil), vm.stack...)
}

// SetVar binds a variable before (or between) runs.
func (vm *VM) SetVar(name string, v types.Value) {
	vm.env.Store(name, v)
}

// Reset returns the VM to its initial state. The environment is kept.
func (vm *VM) Reset() {
	vm.stack = vm.stack[:0]
	vm.ip = 0
	vm.halted = false
	vm.err = nil
	vm.steps = 0
	vm.line = ""
}

// -----------------------------------------------------------------------------
// Stack Operations
// -----------------------------------------------------------------------------

// push pushes a value onto the stack.
func (vm *VM) push(v types.Value) {
	vm.stack = append(vm.stack, v)
}

// pop removes and returns the top value from the stack.
func (vm *VM) pop() (types.Value, error) {
	n := len(vm.stack)
	if n == 0 {
		return types.Value{}, ErrStackUnderflow
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

// popN removes the top n values and returns them in push order.
func (vm *VM) popN(n int) ([]types.Value, error) {
	if n > len(vm.stack) {
		return nil, fmt.Errorf("%w: need %d values, have %d", ErrStackUnderflow, n, len(vm.stack))
	}
	start := len(vm.stack) - n
	vals := append([]types.Value(nil), vm.stack[start:]...)
	vm.stack = vm.stack[:start]
	return vals, nil
}

// popBinary pops the right operand and then the left one.
func (vm *VM) popBinary() (left, right types.Value, err error) {
	if right, err = vm.pop(); err != nil {
		return
	}
	left, err = vm.pop()
	return
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

// Run executes instructions until Halt, the end of the program, or an
// error. A VM that already terminated returns its terminal error again.
func (vm *VM) Run() error {
	if vm.halted {
		return vm.err
	}
	log.Infof("run %s: %d instructions", vm.id, vm.program.Len())
	for !vm.halted {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	log.Infof("run %s: stopped after %d steps", vm.id, vm.steps)
	return nil
}

// Step executes exactly one instruction. It returns the terminal error
// when the VM has already stopped because of one.
func (vm *VM) Step() error {
	if vm.halted {
		return vm.err
	}
	if vm.ip < 0 || vm.ip >= vm.program.Len() {
		vm.halted = true
		return nil
	}

	in := vm.program.Instructions[vm.ip]
	if vm.maxSteps > 0 && vm.steps >= vm.maxSteps {
		return vm.fail(in.Op, fmt.Errorf("%w: %d", ErrStepLimit, vm.maxSteps))
	}
	vm.steps++

	if vm.trace && log.AllowLevel(commonlog.Debug) {
		log.Debugf("run %s: %04d %-24s stack=%d", vm.id, vm.ip, in, len(vm.stack))
	}

	next, err := vm.execute(in)
	if err != nil {
		return vm.fail(in.Op, err)
	}
	vm.ip = next
	return nil
}

// fail moves the VM into its terminal state with err.
func (vm *VM) fail(op compiler.Opcode, err error) error {
	rerr := &Error{IP: vm.ip, Op: op, Err: err}
	vm.halted = true
	vm.err = rerr
	log.Errorf("run %s: %s", vm.id, rerr)
	return rerr
}

// execute runs a single instruction and returns the next instruction
// pointer.
func (vm *VM) execute(in compiler.Instruction) (int, error) {
	next := vm.ip + 1

	switch in.Op {
	case compiler.Nop:
		// Do nothing

	case compiler.LoadConstant:
		vm.push(in.Value)

	case compiler.Dup:
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		vm.push(v)
		vm.push(v)

	case compiler.Pop:
		if _, err := vm.pop(); err != nil {
			return 0, err
		}

	case compiler.BuildList:
		if in.Arg < 0 {
			return 0, fmt.Errorf("%w: negative list length %d", compiler.ErrInvalidOperand, in.Arg)
		}
		elems, err := vm.popN(in.Arg)
		if err != nil {
			return 0, err
		}
		vm.push(types.List(elems...))

	case compiler.LoadVariable:
		v, err := vm.env.Load(in.Name)
		if err != nil {
			return 0, err
		}
		vm.push(v)

	case compiler.StoreVariable:
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		vm.env.Store(in.Name, v)

	case compiler.Add, compiler.Subtract, compiler.Multiply, compiler.Divide, compiler.Modulo,
		compiler.Equal, compiler.NotEqual, compiler.Less, compiler.LessEqual,
		compiler.Greater, compiler.GreaterEqual:
		left, right, err := vm.popBinary()
		if err != nil {
			return 0, err
		}
		result, err := vm.binary(in.Op, left, right)
		if err != nil {
			return 0, err
		}
		vm.push(result)

	case compiler.Negate, compiler.Not:
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		var result types.Value
		if in.Op == compiler.Negate {
			result, err = types.Negate(v)
		} else {
			result, err = types.Not(v)
		}
		if err != nil {
			return 0, err
		}
		vm.push(result)

	case compiler.Jump:
		return vm.jumpTarget(in.Arg)

	case compiler.JumpIfTrue, compiler.JumpIfFalse:
		cond, err := vm.pop()
		if err != nil {
			return 0, err
		}
		truthy, err := cond.Truthy()
		if err != nil {
			return 0, err
		}
		if truthy == (in.Op == compiler.JumpIfTrue) {
			return vm.jumpTarget(in.Arg)
		}

	case compiler.MatchEre:
		matched, err := vm.matcher.Match(in.Pattern, vm.line)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		vm.push(types.Bool(matched))

	case compiler.Print:
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		if _, err := io.WriteString(vm.output, v.Text(vm.floatFormat)+vm.terminator); err != nil {
			return 0, fmt.Errorf("write output: %w", err)
		}

	case compiler.Printf:
		if in.Arg < 0 {
			return 0, fmt.Errorf("%w: negative argument count %d", compiler.ErrInvalidOperand, in.Arg)
		}
		vals, err := vm.popN(in.Arg + 1)
		if err != nil {
			return 0, err
		}
		text, err := sprintf(vals[0].Text(vm.floatFormat), vals[1:], vm.floatFormat)
		if err != nil {
			return 0, err
		}
		if _, err := io.WriteString(vm.output, text); err != nil {
			return 0, fmt.Errorf("write output: %w", err)
		}

	case compiler.ReadLine:
		if err := vm.readLine(); err != nil {
			return 0, err
		}

	case compiler.Halt:
		vm.halted = true
		return vm.ip, nil

	default:
		return 0, fmt.Errorf("%w: %s", compiler.ErrInvalidOpcode, in.Op)
	}

	return next, nil
}

// binary applies a binary operator through the value model.
func (vm *VM) binary(op compiler.Opcode, left, right types.Value) (types.Value, error) {
	switch op {
	case compiler.Add:
		return types.Add(left, right, vm.floatFormat)
	case compiler.Subtract:
		return types.Sub(left, right)
	case compiler.Multiply:
		return types.Mul(left, right)
	case compiler.Divide:
		return types.Div(left, right)
	case compiler.Modulo:
		return types.Mod(left, right)
	case compiler.Equal:
		return types.Equal(left, right)
	case compiler.NotEqual:
		return types.NotEqual(left, right)
	case compiler.Less:
		return types.Less(left, right)
	case compiler.LessEqual:
		return types.LessEqual(left, right)
	case compiler.Greater:
		return types.Greater(left, right)
	case compiler.GreaterEqual:
		return types.GreaterEqual(left, right)
	default:
		return types.Value{}, fmt.Errorf("%w: %s is not a binary operator", compiler.ErrInvalidOpcode, op)
	}
}

// jumpTarget checks a jump operand against the program bounds.
func (vm *VM) jumpTarget(target int) (int, error) {
	if target < 0 || target >= vm.program.Len() {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidJumpTarget, target, vm.program.Len())
	}
	return target, nil
}

// readLine pushes String(line), Boolean(true) for the next input line, or
// just Boolean(false) at end of input.
func (vm *VM) readLine() error {
	if vm.input == nil {
		vm.push(types.Bool(false))
		return nil
	}
	line, err := vm.input.ReadLine()
	if errors.Is(err, io.EOF) {
		vm.push(types.Bool(false))
		return nil
	}
	if err != nil {
		if ns, ok := vm.input.(namedSource); ok && ns.Filename() != "" {
			return fmt.Errorf("read input %s after line %d: %w", ns.Filename(), ns.LineNum(), err)
		}
		return fmt.Errorf("read input: %w", err)
	}
	vm.line = line
	vm.push(types.Str(line))
	vm.push(types.Bool(true))
	return nil
}
