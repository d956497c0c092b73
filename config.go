package squawk

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/kolkov/squawk/internal/types"
)

// ConfigFileName is the configuration file the command-line tool looks for
// in the working directory.
const ConfigFileName = "squawk.toml"

// Config holds configuration options for program execution. It can be
// loaded from a TOML file with LoadConfig.
type Config struct {
	// Output is the writer for Print and Printf.
	// If nil, output is captured and returned from Run.
	Output io.Writer `toml:"-"`

	// Variables contains pre-defined variables, bound before the first
	// instruction runs. Values that parse as integers become Integer,
	// then Float, otherwise String.
	// Example: map[string]string{"threshold": "100", "prefix": "LOG:"}
	Variables map[string]string `toml:"variables"`

	// LineTerminator is appended after each Print (default: "\n").
	LineTerminator string `toml:"line-terminator"`

	// FloatFormat is the printf-style format for non-integral floats
	// (default: "%.6g").
	FloatFormat string `toml:"float-format"`

	// POSIXRegex enables POSIX leftmost-longest regex matching.
	// When true (default), uses POSIX ERE semantics (slower but compliant).
	// When false, uses leftmost-first matching (faster, Perl-like).
	POSIXRegex *bool `toml:"posix-regex"`

	// MaxSteps bounds the number of executed instructions per run
	// (default: 0, unlimited).
	MaxSteps int `toml:"max-steps"`

	// Trace logs every executed instruction at debug level.
	Trace bool `toml:"trace"`

	// Parallel is the number of workers RunFiles may use to process
	// input files independently (default: 1 = sequential).
	Parallel int `toml:"parallel"`

	// Log configures logging for the command-line tool.
	Log LogConfig `toml:"log"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Verbosity is passed to commonlog.Configure; higher values log more.
	Verbosity int `toml:"verbosity"`

	// File receives log output instead of stderr when set.
	File string `toml:"file"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	return &c, nil
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.LineTerminator == "" {
		c.LineTerminator = "\n"
	}
	if c.FloatFormat == "" {
		c.FloatFormat = types.DefaultFloatFormat
	}
	if c.Parallel < 1 {
		c.Parallel = 1
	}
}

// posixRegex returns the effective POSIX regex setting.
func (c *Config) posixRegex() bool {
	if c.POSIXRegex != nil {
		return *c.POSIXRegex
	}
	return true
}

// variables converts the configured variables to values.
func (c *Config) variables() map[string]Value {
	if len(c.Variables) == 0 {
		return nil
	}
	vars := make(map[string]Value, len(c.Variables))
	for name, text := range c.Variables {
		vars[name] = inferValue(text)
	}
	return vars
}

// inferValue types a command-line or config string.
func inferValue(text string) Value {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return types.Int(i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return types.Float(f)
	}
	return types.Str(text)
}
