// Package squawk runs programs for a small stack-based virtual machine
// that executes compiled AWK-like expression code.
//
// Programs are ordered instruction sequences with absolute jump targets.
// They are written as text listings, one instruction per line, or stored
// as binary images. Values are dynamically typed: Integer, Float, String,
// Ere (a regular expression literal), Boolean and List.
//
// # Quick Start
//
// For simple one-off execution:
//
//	output, err := squawk.Run(`LoadConstant str "a"
//	LoadConstant int 1
//	Add
//	Print`, nil, nil)
//	// output: "a1\n"
//
// With configuration:
//
//	output, err := squawk.Run(listing, input, &squawk.Config{
//	    Variables: map[string]string{"threshold": "100"},
//	    MaxSteps:  1_000_000,
//	})
//
// # Assembled Programs
//
// For repeated execution of the same program:
//
//	prog, err := squawk.Assemble(listing)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, file := range files {
//	    output, err := prog.Run(file, nil)
//	    // ...
//	}
//
// [Program.Image] and [Load] convert between programs and their binary
// image form; [Program.Disassemble] produces a listing.
//
// # Input
//
// ReadLine pulls the next input line. On success it pushes the line and
// then Boolean(true); at end of input it pushes only Boolean(false), so a
// program loops with JumpIfFalse. MatchEre matches against the last line
// read.
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [ParseError]: syntax errors in a listing
//   - [LoadError]: malformed or invalid program images
//   - [RuntimeError]: fatal errors during execution, matched against
//     [ErrDivisionByZero] and the other Err kinds with errors.Is
//
// # Thread Safety
//
// [Program] objects are safe for concurrent use.
// Each call to [Program.Run] creates an independent execution context.
package squawk
