package compiler

import (
	"strconv"
	"strings"

	"github.com/kolkov/squawk/internal/types"
)

// Assemble parses an instruction listing into a validated Program.
//
// The listing has one instruction per line: an optional "NNNN:" index
// prefix, a mnemonic, and at most one operand. Text after '#' is a comment.
// Constants are written with a type word:
//
//	LoadConstant int 5
//	LoadConstant float 2.5
//	LoadConstant str "a\tb"
//	LoadConstant ere "^[0-9]+$"
//	LoadConstant bool true
//	LoadConstant list [int 1, str "x", list []]
//
// Jump targets are absolute instruction indexes; there are no labels.
func Assemble(src string) (*Program, error) {
	var errs ErrorList
	var code []Instruction

	for i, text := range strings.Split(src, "\n") {
		p := &asmParser{s: lineScanner{src: strings.TrimRight(text, "\r"), line: i + 1}}
		in, ok, err := p.parseLine(len(code))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			code = append(code, in)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	prog := &Program{Instructions: code}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

// MustAssemble is like Assemble but panics on error.
func MustAssemble(src string) *Program {
	prog, err := Assemble(src)
	if err != nil {
		panic(err)
	}
	return prog
}

// Tokens

type tokKind uint8

const (
	tokEOL    tokKind = iota
	tokAtom           // run of non-delimiter bytes
	tokString         // double-quoted Go string literal, already unquoted
	tokLBrack         // [
	tokRBrack         // ]
	tokComma          // ,
)

func (k tokKind) String() string {
	switch k {
	case tokEOL:
		return "end of line"
	case tokAtom:
		return "word"
	case tokString:
		return "string"
	case tokLBrack:
		return "'['"
	case tokRBrack:
		return "']'"
	case tokComma:
		return "','"
	default:
		return "unknown"
	}
}

type token struct {
	kind tokKind
	text string
	col  int
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '[', ']', ',', '"':
		return true
	}
	return false
}

// lineScanner splits a single listing line into tokens.
type lineScanner struct {
	src  string
	pos  int
	line int
}

func (s *lineScanner) next() (token, *AsmError) {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
	if s.pos >= len(s.src) || s.src[s.pos] == '#' {
		s.pos = len(s.src)
		return token{kind: tokEOL, col: s.pos + 1}, nil
	}

	start := s.pos
	col := start + 1
	switch s.src[s.pos] {
	case '[':
		s.pos++
		return token{kind: tokLBrack, text: "[", col: col}, nil
	case ']':
		s.pos++
		return token{kind: tokRBrack, text: "]", col: col}, nil
	case ',':
		s.pos++
		return token{kind: tokComma, text: ",", col: col}, nil
	case '"':
		s.pos++
		for s.pos < len(s.src) && s.src[s.pos] != '"' {
			if s.src[s.pos] == '\\' {
				s.pos++
			}
			s.pos++
		}
		if s.pos >= len(s.src) {
			return token{}, errorf(s.line, col, "unterminated string")
		}
		s.pos++
		text, err := strconv.Unquote(s.src[start:s.pos])
		if err != nil {
			return token{}, errorf(s.line, col, "invalid string %s: %v", s.src[start:s.pos], err)
		}
		return token{kind: tokString, text: text, col: col}, nil
	}

	for s.pos < len(s.src) && !isDelimiter(s.src[s.pos]) && s.src[s.pos] != '#' {
		s.pos++
	}
	return token{kind: tokAtom, text: s.src[start:s.pos], col: col}, nil
}

// asmParser parses one line of a listing.
type asmParser struct {
	s   lineScanner
	tok token
}

func (p *asmParser) advance() *AsmError {
	tok, err := p.s.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *asmParser) expected(want string) *AsmError {
	got := p.tok.kind.String()
	if p.tok.kind == tokAtom {
		got = strconv.Quote(p.tok.text)
	}
	return errorf(p.s.line, p.tok.col, "expected %s, got %s", want, got)
}

// parseLine parses the line as the instruction at index. ok is false for
// blank and comment-only lines.
func (p *asmParser) parseLine(index int) (Instruction, bool, *AsmError) {
	if err := p.advance(); err != nil {
		return Instruction{}, false, err
	}
	if p.tok.kind == tokEOL {
		return Instruction{}, false, nil
	}

	// Optional "NNNN:" index prefix, as written by Disassemble.
	if p.tok.kind == tokAtom && strings.HasSuffix(p.tok.text, ":") {
		n, err := strconv.Atoi(strings.TrimSuffix(p.tok.text, ":"))
		if err != nil {
			return Instruction{}, false, errorf(p.s.line, p.tok.col, "invalid index prefix %q", p.tok.text)
		}
		if n != index {
			return Instruction{}, false, errorf(p.s.line, p.tok.col, "index %d does not match position %d", n, index)
		}
		if err := p.advance(); err != nil {
			return Instruction{}, false, err
		}
	}

	if p.tok.kind != tokAtom {
		return Instruction{}, false, p.expected("mnemonic")
	}
	op, ok := LookupOpcode(p.tok.text)
	if !ok {
		return Instruction{}, false, errorf(p.s.line, p.tok.col, "unknown mnemonic %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return Instruction{}, false, err
	}

	in := Instruction{Op: op}
	switch op.Operand() {
	case OperandValue:
		v, err := p.parseValue()
		if err != nil {
			return Instruction{}, false, err
		}
		in.Value = v
	case OperandName:
		if p.tok.kind != tokAtom && p.tok.kind != tokString {
			return Instruction{}, false, p.expected("variable name")
		}
		in.Name = p.tok.text
		if err := p.advance(); err != nil {
			return Instruction{}, false, err
		}
	case OperandTarget, OperandCount:
		n, err := p.parseInt()
		if err != nil {
			return Instruction{}, false, err
		}
		in.Arg = n
	case OperandPattern:
		if p.tok.kind != tokString {
			return Instruction{}, false, p.expected("quoted pattern")
		}
		in.Pattern = p.tok.text
		if err := p.advance(); err != nil {
			return Instruction{}, false, err
		}
	}

	if p.tok.kind != tokEOL {
		return Instruction{}, false, p.expected("end of line")
	}
	return in, true, nil
}

func (p *asmParser) parseInt() (int, *AsmError) {
	if p.tok.kind != tokAtom {
		return 0, p.expected("integer")
	}
	n, err := strconv.Atoi(p.tok.text)
	if err != nil {
		return 0, errorf(p.s.line, p.tok.col, "invalid integer %q", p.tok.text)
	}
	return n, p.advance()
}

// parseValue parses "type literal" starting at the current token.
func (p *asmParser) parseValue() (types.Value, *AsmError) {
	if p.tok.kind != tokAtom {
		return types.Value{}, p.expected("constant type")
	}
	typ, col := p.tok.text, p.tok.col
	if err := p.advance(); err != nil {
		return types.Value{}, err
	}

	switch typ {
	case "int":
		if p.tok.kind != tokAtom {
			return types.Value{}, p.expected("integer literal")
		}
		n, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return types.Value{}, errorf(p.s.line, p.tok.col, "invalid integer literal %q", p.tok.text)
		}
		return types.Int(n), p.advance()
	case "float":
		if p.tok.kind != tokAtom {
			return types.Value{}, p.expected("float literal")
		}
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil && !isRangeError(err) {
			return types.Value{}, errorf(p.s.line, p.tok.col, "invalid float literal %q", p.tok.text)
		}
		return types.Float(f), p.advance()
	case "str", "ere":
		if p.tok.kind != tokString {
			return types.Value{}, p.expected("quoted string")
		}
		s := p.tok.text
		if err := p.advance(); err != nil {
			return types.Value{}, err
		}
		if typ == "ere" {
			return types.Ere(s), nil
		}
		return types.Str(s), nil
	case "bool":
		if p.tok.kind != tokAtom {
			return types.Value{}, p.expected("true or false")
		}
		b, err := strconv.ParseBool(p.tok.text)
		if err != nil || (p.tok.text != "true" && p.tok.text != "false") {
			return types.Value{}, errorf(p.s.line, p.tok.col, "invalid boolean literal %q", p.tok.text)
		}
		return types.Bool(b), p.advance()
	case "list":
		return p.parseList()
	default:
		return types.Value{}, errorf(p.s.line, col, "unknown constant type %q", typ)
	}
}

func (p *asmParser) parseList() (types.Value, *AsmError) {
	if p.tok.kind != tokLBrack {
		return types.Value{}, p.expected("'['")
	}
	if err := p.advance(); err != nil {
		return types.Value{}, err
	}

	var elems []types.Value
	if p.tok.kind == tokRBrack {
		return types.List(), p.advance()
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return types.Value{}, err
		}
		elems = append(elems, v)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return types.Value{}, err
			}
		case tokRBrack:
			return types.List(elems...), p.advance()
		default:
			return types.Value{}, p.expected("',' or ']'")
		}
	}
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
