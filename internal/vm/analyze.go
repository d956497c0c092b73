package vm

import (
	"slices"

	"github.com/kolkov/squawk/internal/compiler"
)

// ParallelSafety represents the parallelization safety level of a program.
type ParallelSafety int

const (
	// ParallelUnsafe indicates running one VM per input would change the
	// program's output.
	ParallelUnsafe ParallelSafety = iota

	// ParallelStateless indicates every input line is handled independently,
	// so each input can run on its own VM.
	ParallelStateless
)

// String returns a human-readable description of the safety level.
func (s ParallelSafety) String() string {
	switch s {
	case ParallelUnsafe:
		return "unsafe"
	case ParallelStateless:
		return "stateless"
	default:
		return "unknown"
	}
}

// UnsafeReason explains why a program cannot be parallelized.
type UnsafeReason int

const (
	ReasonNone UnsafeReason = iota
	ReasonNoInput
	ReasonInputOutsideLoop
	ReasonOutputOutsideLoop
	ReasonHaltInLoop
	ReasonExitInLoop
	ReasonCarriedState
)

// String returns a human-readable explanation.
func (r UnsafeReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoInput:
		return "never reads input"
	case ReasonInputOutsideLoop:
		return "reads input outside a loop"
	case ReasonOutputOutsideLoop:
		return "prints outside the input loop"
	case ReasonHaltInLoop:
		return "halts inside the input loop (stops before later inputs)"
	case ReasonExitInLoop:
		return "leaves the input loop before end of input"
	case ReasonCarriedState:
		return "carries variables from one line to the next"
	default:
		return "unknown reason"
	}
}

// ParallelAnalysis contains the results of parallel safety analysis.
type ParallelAnalysis struct {
	Safety        ParallelSafety
	UnsafeReasons []UnsafeReason

	// CarriedVars lists variables read in a loop before they are written
	// in the same iteration, sorted.
	CarriedVars []string
}

// CanParallelize returns true if the program can be parallelized.
func (a *ParallelAnalysis) CanParallelize() bool {
	return a.Safety != ParallelUnsafe
}

// loop is the instruction range [start, end] closed by a backward jump.
type loop struct {
	start, end int
}

func (l loop) contains(i int) bool {
	return i >= l.start && i <= l.end
}

// AnalyzeParallelSafety analyzes a program for per-input parallel execution.
// A program qualifies when all of its input handling and output happens
// inside loops that read input, those loops run until end of input, and no
// state flows between iterations.
func AnalyzeParallelSafety(prog *compiler.Program) *ParallelAnalysis {
	analysis := &ParallelAnalysis{Safety: ParallelStateless}
	code := prog.Instructions

	loops := findLoops(code)
	var inputLoops []loop
	for _, l := range loops {
		if slices.ContainsFunc(code[l.start:l.end+1], func(in compiler.Instruction) bool {
			return in.Op == compiler.ReadLine
		}) {
			inputLoops = append(inputLoops, l)
		}
	}
	inInputLoop := func(i int) bool {
		return slices.ContainsFunc(inputLoops, func(l loop) bool { return l.contains(i) })
	}

	reasons := make(map[UnsafeReason]bool)
	readsInput := false
	for i, in := range code {
		switch in.Op {
		case compiler.ReadLine:
			readsInput = true
			if !inInputLoop(i) {
				reasons[ReasonInputOutsideLoop] = true
			}
		case compiler.Print, compiler.Printf:
			if !inInputLoop(i) {
				reasons[ReasonOutputOutsideLoop] = true
			}
		case compiler.Halt:
			if inInputLoop(i) {
				reasons[ReasonHaltInLoop] = true
			}
		}
		if exitsInputLoop(code, inputLoops, i) {
			reasons[ReasonExitInLoop] = true
		}
	}
	if !readsInput {
		reasons[ReasonNoInput] = true
	}

	carried := make(map[string]bool)
	for _, l := range inputLoops {
		for name := range analyzeLoopVars(code, l) {
			carried[name] = true
		}
	}
	if len(carried) > 0 {
		reasons[ReasonCarriedState] = true
		for name := range carried {
			analysis.CarriedVars = append(analysis.CarriedVars, name)
		}
		slices.Sort(analysis.CarriedVars)
	}

	for r := ReasonNoInput; r <= ReasonCarriedState; r++ {
		if reasons[r] {
			analysis.UnsafeReasons = append(analysis.UnsafeReasons, r)
		}
	}
	if len(analysis.UnsafeReasons) > 0 {
		analysis.Safety = ParallelUnsafe
	}
	return analysis
}

// exitsInputLoop reports whether the jump at i leaves an input loop
// containing it by jumping past the loop's end. The JumpIfFalse that
// consumes ReadLine's end-of-input flag is the loop's normal exit.
func exitsInputLoop(code []compiler.Instruction, inputLoops []loop, i int) bool {
	in := code[i]
	if !in.Op.IsJump() {
		return false
	}
	if in.Op == compiler.JumpIfFalse && i > 0 && code[i-1].Op == compiler.ReadLine {
		return false
	}
	return slices.ContainsFunc(inputLoops, func(l loop) bool {
		return l.contains(i) && in.Arg > l.end
	})
}

// findLoops returns the range of every backward jump.
func findLoops(code []compiler.Instruction) []loop {
	var loops []loop
	for i, in := range code {
		if in.Op.IsJump() && in.Arg >= 0 && in.Arg <= i {
			loops = append(loops, loop{start: in.Arg, end: i})
		}
	}
	return loops
}

// analyzeLoopVars returns the variables loaded in l before any store in the
// same straight-line pass, that are also stored later in the loop. Such a
// load observes the previous iteration's value.
func analyzeLoopVars(code []compiler.Instruction, l loop) map[string]bool {
	stored := make(map[string]bool)
	loadedFirst := make(map[string]bool)
	for i := l.start; i <= l.end; i++ {
		in := code[i]
		switch in.Op {
		case compiler.LoadVariable:
			if !stored[in.Name] {
				loadedFirst[in.Name] = true
			}
		case compiler.StoreVariable:
			stored[in.Name] = true
		}
	}
	carried := make(map[string]bool)
	for name := range loadedFirst {
		if stored[name] {
			carried[name] = true
		}
	}
	return carried
}
