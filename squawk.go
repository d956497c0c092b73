package squawk

import (
	"io"

	"github.com/kolkov/squawk/internal/compiler"
)

// Version is the squawk version string.
const Version = "0.1.0"

// Run executes an instruction listing with the given input.
// This is a convenience function for one-off execution.
// For repeated execution of the same program, use Assemble followed by Program.Run.
//
// Parameters:
//   - listing: instruction listing, one instruction per line
//   - input: input lines for ReadLine (can be nil for programs without input)
//   - config: execution configuration (can be nil for defaults)
//
// Returns the program output as a string, or an error if assembly or
// execution fails.
//
// Example:
//
//	output, err := squawk.Run("LoadConstant int 2\nLoadConstant int 3\nAdd\nPrint", nil, nil)
//	// output: "5\n"
func Run(listing string, input io.Reader, config *Config) (string, error) {
	prog, err := Assemble(listing)
	if err != nil {
		return "", err
	}
	return prog.Run(input, config)
}

// Assemble parses and validates an instruction listing.
// The returned Program can be executed multiple times with different inputs.
//
// Example:
//
//	prog, err := squawk.Assemble(`ReadLine
//	JumpIfFalse 4
//	Print
//	Jump 0
//	Halt`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	output1, _ := prog.Run(file1, nil)
//	output2, _ := prog.Run(file2, nil)
func Assemble(listing string) (*Program, error) {
	compiled, err := compiler.Assemble(listing)
	if err != nil {
		return nil, newParseError(err)
	}
	return &Program{
		compiled: compiled,
		source:   listing,
	}, nil
}

// Load decodes a program image produced by Program.Image.
func Load(image []byte) (*Program, error) {
	compiled, err := compiler.UnmarshalProgram(image)
	if err != nil {
		return nil, &LoadError{Message: err.Error()}
	}
	return &Program{compiled: compiled}, nil
}

// IsImage reports whether data starts like a program image rather than a
// listing.
func IsImage(data []byte) bool {
	return compiler.IsImage(data)
}

// Exec is a simplified interface for running an instruction listing.
// It reads from input, writes to output, and returns any error.
//
// Example:
//
//	err := squawk.Exec(listing, os.Stdin, os.Stdout, nil)
func Exec(listing string, input io.Reader, output io.Writer, config *Config) error {
	prog, err := Assemble(listing)
	if err != nil {
		return err
	}

	var c Config
	if config != nil {
		c = *config
	}
	c.Output = output

	_, err = prog.Run(input, &c)
	return err
}

// MustAssemble is like Assemble but panics if the listing is invalid.
// It simplifies initialization of global program variables.
func MustAssemble(listing string) *Program {
	prog, err := Assemble(listing)
	if err != nil {
		panic(err)
	}
	return prog
}
