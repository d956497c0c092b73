package squawk

import (
	"bytes"
	"context"
	"io"

	"github.com/tliron/commonlog"

	"github.com/kolkov/squawk/internal/compiler"
	"github.com/kolkov/squawk/internal/runtime"
	"github.com/kolkov/squawk/internal/vm"
)

var log = commonlog.GetLogger("squawk")

// Program represents a validated instruction sequence ready for execution.
// It is safe for concurrent use; each call to Run creates an
// independent execution context.
type Program struct {
	compiled *compiler.Program
	source   string // Original listing, empty for loaded images
}

// Result is the observable outcome of one run.
type Result struct {
	// Output is the captured output. It is empty when Config.Output is set.
	Output string

	// Vars is the final environment.
	Vars map[string]Value

	// Steps is the number of executed instructions.
	Steps int
}

// ParallelAnalysis reports whether RunFiles can process each input file on
// its own VM without changing the output.
type ParallelAnalysis struct {
	CanParallelize bool
	Safety         string
	Reasons        []string
	CarriedVars    []string
}

// Run executes the program with the given input and configuration.
// Returns the output as a string, or an error if execution fails.
//
// If config is nil, default configuration is used.
// If config.Output is set, output is written there and the returned
// string will be empty. Output produced before a runtime error is
// returned together with the error.
func (p *Program) Run(input io.Reader, config *Config) (string, error) {
	res, err := p.Execute(input, config)
	return res.Output, err
}

// Execute is like Run but also returns the final environment and the
// number of executed instructions. The Result is never nil.
func (p *Program) Execute(input io.Reader, config *Config) (*Result, error) {
	c := configOrDefault(config)

	var src vm.LineSource
	if input != nil {
		src = runtime.NewLineReader(input)
	}
	return p.execute(src, c)
}

// RunFiles executes the program over the named input files ("-" is
// standard input; no names means standard input). With Config.Parallel
// above 1 and a program that handles every line independently, each file
// runs on its own VM concurrently and outputs are written in file order.
// Otherwise the files are read as one continuous input.
func (p *Program) RunFiles(ctx context.Context, names []string, config *Config) (string, error) {
	c := configOrDefault(config)

	if c.Parallel > 1 && len(names) > 1 {
		analysis := p.Analyze()
		if analysis.CanParallelize {
			return p.runParallel(ctx, names, c)
		}
		log.Noticef("running sequentially: %v", analysis.Reasons)
	}

	lr := runtime.OpenFiles(names)
	defer lr.Close()
	res, err := p.execute(lr, c)
	return res.Output, err
}

// execute runs the program on a fresh VM.
func (p *Program) execute(input vm.LineSource, c *Config) (*Result, error) {
	var outputBuf *bytes.Buffer
	vmConfig := p.vmConfig(c)
	vmConfig.Input = input
	if c.Output == nil {
		outputBuf = &bytes.Buffer{}
		vmConfig.Output = outputBuf
	}

	v := vm.NewWithConfig(p.compiled, vmConfig)
	err := v.Run()

	res := &Result{
		Vars:  v.Env().Snapshot(),
		Steps: v.Steps(),
	}
	if outputBuf != nil {
		res.Output = outputBuf.String()
	}
	if err != nil {
		return res, newRuntimeError(err, v.ID().String())
	}
	return res, nil
}

// runParallel runs one VM per input file.
func (p *Program) runParallel(ctx context.Context, names []string, c *Config) (string, error) {
	inputs := make([]vm.LineSource, len(names))
	for i, name := range names {
		lr := runtime.OpenFiles([]string{name})
		defer lr.Close()
		inputs[i] = lr
	}

	output := c.Output
	var outputBuf *bytes.Buffer
	if output == nil {
		outputBuf = &bytes.Buffer{}
		output = outputBuf
	}

	pe := vm.NewParallelExecutor(p.compiled, p.vmConfig(c), vm.ParallelConfig{NumWorkers: c.Parallel})
	results, err := pe.Run(ctx, inputs, output)

	var out string
	if outputBuf != nil {
		out = outputBuf.String()
	}
	if err != nil {
		runID := ""
		for _, r := range results {
			if r.Err == err {
				runID = r.RunID.String()
				break
			}
		}
		return out, newRuntimeError(err, runID)
	}
	return out, nil
}

// vmConfig translates a Config into VM options.
func (p *Program) vmConfig(c *Config) vm.VMConfig {
	return vm.VMConfig{
		POSIXRegex:     c.posixRegex(),
		Matcher:        sharedMatcher(c.posixRegex()),
		LineTerminator: c.LineTerminator,
		FloatFormat:    c.FloatFormat,
		MaxSteps:       c.MaxSteps,
		Trace:          c.Trace,
		Vars:           c.variables(),
	}
}

// Analyze reports whether the program can run one VM per input file.
func (p *Program) Analyze() *ParallelAnalysis {
	a := vm.AnalyzeParallelSafety(p.compiled)
	reasons := make([]string, len(a.UnsafeReasons))
	for i, r := range a.UnsafeReasons {
		reasons[i] = r.String()
	}
	return &ParallelAnalysis{
		CanParallelize: a.CanParallelize(),
		Safety:         a.Safety.String(),
		Reasons:        reasons,
		CarriedVars:    a.CarriedVars,
	}
}

// Disassemble returns the program as an instruction listing. Assemble
// accepts the result.
func (p *Program) Disassemble() string {
	return p.compiled.Disassemble()
}

// Image encodes the program in the binary image format read by Load.
func (p *Program) Image() ([]byte, error) {
	return compiler.MarshalProgram(p.compiled)
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return p.compiled.Len()
}

// Source returns the original listing, or "" for a loaded image.
func (p *Program) Source() string {
	return p.source
}

// configOrDefault returns a defaulted copy of config.
func configOrDefault(config *Config) *Config {
	var c Config
	if config != nil {
		c = *config
	}
	c.applyDefaults()
	return &c
}

// Shared regex caches, one per matching mode. Compiled patterns are reused
// across runs and programs.
var (
	posixCache    = runtime.NewRegexCacheWithConfig(runtime.DefaultCacheSize, runtime.RegexConfig{POSIX: true})
	leftmostCache = runtime.NewRegexCacheWithConfig(runtime.DefaultCacheSize, runtime.RegexConfig{POSIX: false})
)

func sharedMatcher(posix bool) vm.Matcher {
	if posix {
		return posixCache
	}
	return leftmostCache
}
