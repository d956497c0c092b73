package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kolkov/squawk/internal/types"
)

// sprintf implements Printf with AWK-compatible formatting. Missing
// arguments format as zero or the empty string.
func sprintf(format string, args []types.Value, floatFormat string) (string, error) {
	var result strings.Builder
	argIdx := 0

	// Helper to get next value
	nextArg := func() (types.Value, bool) {
		if argIdx < len(args) {
			v := args[argIdx]
			argIdx++
			return v, true
		}
		return types.Value{}, false
	}
	nextNum := func() (float64, error) {
		v, ok := nextArg()
		if !ok {
			return 0, nil
		}
		return toNum(v)
	}
	nextInt := func() (int64, error) {
		v, ok := nextArg()
		if !ok {
			return 0, nil
		}
		return toInt(v)
	}

	i := 0
	for i < len(format) {
		if format[i] != '%' {
			result.WriteByte(format[i])
			i++
			continue
		}

		// Found a % - parse format specifier
		i++
		if i >= len(format) {
			result.WriteByte('%')
			break
		}

		// Handle %%
		if format[i] == '%' {
			result.WriteByte('%')
			i++
			continue
		}

		// Parse flags: -+ #0
		var flags strings.Builder
		for i < len(format) && strings.IndexByte("-+ #0", format[i]) >= 0 {
			flags.WriteByte(format[i])
			i++
		}

		// Parse width (may be * for dynamic)
		var width string
		if i < len(format) && format[i] == '*' {
			w, err := nextInt()
			if err != nil {
				return "", err
			}
			if w < 0 {
				flags.WriteByte('-')
				w = -w
			}
			width = strconv.FormatInt(w, 10)
			i++
		} else {
			start := i
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				i++
			}
			width = format[start:i]
		}

		// Parse precision
		var precision string
		if i < len(format) && format[i] == '.' {
			precision = "."
			i++
			if i < len(format) && format[i] == '*' {
				p, err := nextInt()
				if err != nil {
					return "", err
				}
				if p < 0 {
					precision = "" // negative precision is ignored
				} else {
					precision += strconv.FormatInt(p, 10)
				}
				i++
			} else {
				start := i
				for i < len(format) && format[i] >= '0' && format[i] <= '9' {
					i++
				}
				precision += format[start:i]
			}
		}

		if i >= len(format) {
			result.WriteString("%" + flags.String() + width + precision)
			break
		}

		specifier := format[i]
		i++
		spec := "%" + flags.String() + width + precision

		switch specifier {
		case 'd', 'i':
			n, err := nextInt()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&result, spec+"d", n)
		case 'o', 'x', 'X':
			n, err := nextInt()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&result, spec+string(specifier), uint64(n))
		case 'u':
			n, err := nextInt()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&result, spec+"d", uint64(n))
		case 'c':
			v, ok := nextArg()
			if !ok {
				break
			}
			switch v.Kind() {
			case types.KindInteger, types.KindFloat, types.KindBoolean:
				n, err := toInt(v)
				if err != nil {
					return "", err
				}
				if n >= 0 && n <= utf8.MaxRune {
					fmt.Fprintf(&result, spec+"c", rune(n))
				}
			case types.KindList:
				return "", fmt.Errorf("%w: %%c of %s", types.ErrTypeMismatch, v.Kind())
			default:
				s := v.Text(floatFormat)
				if s != "" {
					r, _ := utf8.DecodeRuneInString(s)
					fmt.Fprintf(&result, spec+"c", r)
				}
			}
		case 's':
			var s string
			if v, ok := nextArg(); ok {
				s = v.Text(floatFormat)
			}
			fmt.Fprintf(&result, spec+"s", s)
		case 'e', 'E', 'f', 'F', 'g', 'G':
			f, err := nextNum()
			if err != nil {
				return "", err
			}
			verb := specifier
			if verb == 'F' {
				verb = 'f'
			}
			fmt.Fprintf(&result, spec+string(verb), f)
		default:
			result.WriteByte('%')
			result.WriteByte(specifier)
		}
	}

	return result.String(), nil
}

// toNum converts a printf argument to a number. Strings convert by their
// leading numeric prefix, as in AWK.
func toNum(v types.Value) (float64, error) {
	switch v.Kind() {
	case types.KindInteger:
		return float64(v.AsInt()), nil
	case types.KindFloat:
		return v.AsFloat(), nil
	case types.KindString, types.KindEre:
		return strToNum(v.AsStr()), nil
	case types.KindBoolean:
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: numeric format of %s", types.ErrTypeMismatch, v.Kind())
	}
}

// toInt converts a printf argument to an integer, truncating toward zero.
// NaN and infinities convert to 0 and the int64 bounds.
func toInt(v types.Value) (int64, error) {
	if v.Kind() == types.KindInteger {
		return v.AsInt(), nil
	}
	f, err := toNum(v)
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(f):
		return 0, nil
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	default:
		return int64(f), nil
	}
}

// strToNum parses the longest numeric prefix of s after leading blanks.
func strToNum(s string) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	// Exponent only counts when followed by digits
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	// Out-of-range prefixes still yield ±Inf
	f, _ := strconv.ParseFloat(s[start:i], 64)
	return f
}
