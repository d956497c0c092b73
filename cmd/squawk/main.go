// squawk - stack VM for AWK-like expression code
//
// Runs instruction listings and program images over input files.
// Uses manual argument parsing so flags may be glued to their values
// (-S1000, -j4, -vname=value).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/kolkov/squawk"
)

// version is set at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: squawk [-c config] [-v var=value] [options] program [file ...]"
	longUsage  = `Program:
  program           instruction listing or program image file

Arguments:
  -c file           load configuration from file (default: ./squawk.toml if present)
  -v var=value      variable assignment (multiple allowed)
  -o file           write the program image to file and exit

Execution options:
  -S, --max-steps N stop after N executed instructions (default: unlimited)
  --posix           use POSIX leftmost-longest regex matching (default)
  --no-posix        use faster leftmost-first regex matching (Perl-like)
  -j N              use N parallel workers, one input file each
                    (default: 1 = sequential; only for suitable programs)

Debugging arguments:
  -da               print the instruction listing to stderr and exit
  -dp               print parallel safety analysis to stderr and exit
  --trace           log every executed instruction (implies -V -V)
  -V, --verbose     increase log verbosity (repeatable)
  --log file        write log output to file instead of stderr

Other:
  -h, --help        show this help message
  -version          show squawk version and exit
`
)

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func main() {
	var configPath string
	var vars []string
	var imagePath string
	var logPath string
	var posixRegex *bool
	maxSteps := -1
	parallelWorkers := 0
	verbosity := 0
	trace := false
	debugAsm := false
	debugParallel := false

	needArg := func(i int, flag string) string {
		if i+1 >= len(os.Args) {
			errorExitf("flag needs an argument: %s", flag)
		}
		return os.Args[i+1]
	}
	parseSteps := func(s string) int {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			errorExitf("invalid step limit: %s", s)
		}
		return n
	}
	parseWorkers := func(s string) int {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			errorExitf("invalid number of workers: %s", s)
		}
		return n
	}

	var i int
	for i = 1; i < len(os.Args); i++ {
		// Stop on explicit end of args or first arg not prefixed with "-"
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-c":
			configPath = needArg(i, arg)
			i++
		case "-v":
			vars = append(vars, needArg(i, arg))
			i++
		case "-o":
			imagePath = needArg(i, arg)
			i++
		case "-S", "--max-steps":
			maxSteps = parseSteps(needArg(i, arg))
			i++
		case "-j":
			parallelWorkers = parseWorkers(needArg(i, arg))
			i++
		case "--log":
			logPath = needArg(i, arg)
			i++
		case "-V", "--verbose":
			verbosity++
		case "--trace":
			trace = true
		case "-da":
			debugAsm = true
		case "-dp":
			debugParallel = true
		case "--posix":
			t := true
			posixRegex = &t
		case "--no-posix":
			f := false
			posixRegex = &f
		case "-h", "--help":
			fmt.Printf("squawk %s - stack VM for AWK-like expression code\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "-version", "--version":
			fmt.Printf("squawk version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			fmt.Println("  regex:  coregex")
			os.Exit(0)
		default:
			// Handle flags with no space: -cfile, -vvar=val, -S100, -j4
			switch {
			case strings.HasPrefix(arg, "-c"):
				configPath = arg[2:]
			case strings.HasPrefix(arg, "-v"):
				vars = append(vars, arg[2:])
			case strings.HasPrefix(arg, "-o"):
				imagePath = arg[2:]
			case strings.HasPrefix(arg, "-S"):
				maxSteps = parseSteps(arg[2:])
			case strings.HasPrefix(arg, "-j"):
				parallelWorkers = parseWorkers(arg[2:])
			default:
				errorExitf("flag provided but not defined: %s", arg)
			}
		}
	}

	// Remaining args are the program and input files
	args := os.Args[i:]
	if len(args) == 0 {
		errorExitf("%s", shortUsage)
	}
	programFile, inputFiles := args[0], args[1:]

	config := loadConfig(configPath)

	// Flags override the configuration file
	if maxSteps >= 0 {
		config.MaxSteps = maxSteps
	}
	if parallelWorkers > 0 {
		config.Parallel = parallelWorkers
	}
	if posixRegex != nil {
		config.POSIXRegex = posixRegex
	}
	if trace {
		config.Trace = true
	}
	if logPath != "" {
		config.Log.File = logPath
	}
	config.Log.Verbosity += verbosity
	if config.Trace && config.Log.Verbosity < 2 {
		config.Log.Verbosity = 2
	}
	for _, v := range vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			errorExitf("invalid variable assignment: %s (expected var=value)", v)
		}
		if config.Variables == nil {
			config.Variables = make(map[string]string)
		}
		config.Variables[name] = value
	}

	configureLogging(config.Log)

	prog := loadProgram(programFile)

	// Debug output modes
	if debugAsm {
		fmt.Fprint(os.Stderr, prog.Disassemble())
		os.Exit(0)
	}
	if debugParallel {
		analysis := prog.Analyze()
		fmt.Fprintln(os.Stderr, "=== Parallel Safety Analysis ===")
		fmt.Fprintf(os.Stderr, "Can parallelize: %v\n", analysis.CanParallelize)
		fmt.Fprintf(os.Stderr, "Safety level: %v\n", analysis.Safety)
		for _, r := range analysis.Reasons {
			fmt.Fprintf(os.Stderr, "Reason: %s\n", r)
		}
		if len(analysis.CarriedVars) > 0 {
			fmt.Fprintf(os.Stderr, "Carried vars: %v\n", analysis.CarriedVars)
		}
		os.Exit(0)
	}
	if imagePath != "" {
		data, err := prog.Image()
		if err != nil {
			errorExit(err)
		}
		if err := os.WriteFile(imagePath, data, 0o644); err != nil {
			errorExitf("cannot write image %s: %v", imagePath, err)
		}
		os.Exit(0)
	}

	// Buffered output for performance
	stdout := bufio.NewWriter(os.Stdout)
	config.Output = stdout

	_, err := prog.RunFiles(context.Background(), inputFiles, config)
	if flushErr := stdout.Flush(); err == nil && flushErr != nil {
		err = flushErr
	}
	if err != nil {
		errorExit(err)
	}
}

// loadConfig reads the configuration file named by -c, or squawk.toml in
// the working directory when it exists.
func loadConfig(path string) *squawk.Config {
	explicit := path != ""
	if !explicit {
		path = squawk.ConfigFileName
	}
	config, err := squawk.LoadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &squawk.Config{}
		}
		errorExit(err)
	}
	return config
}

// loadProgram reads a listing or program image from path.
func loadProgram(path string) *squawk.Program {
	data, err := os.ReadFile(path)
	if err != nil {
		errorExitf("cannot read program file %s: %v", path, err)
	}
	var prog *squawk.Program
	if squawk.IsImage(data) {
		prog, err = squawk.Load(data)
	} else {
		prog, err = squawk.Assemble(string(data))
	}
	if err != nil {
		errorExitf("%s: %v", path, err)
	}
	return prog
}

func configureLogging(c squawk.LogConfig) {
	var path *string
	if c.File != "" {
		path = &c.File
	}
	commonlog.Configure(c.Verbosity, path)
}

// errorExitf prints formatted error message and exits with code 1
func errorExitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "squawk: "+format+"\n", args...)
	os.Exit(1)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "squawk: %v\n", err)
	os.Exit(1)
}
