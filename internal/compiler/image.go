package compiler

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/kolkov/squawk/internal/types"
)

// ImageMagic prefixes every program image.
const ImageMagic = "SQK\x00"

// ImageVersion is the current image format version.
const ImageVersion = 1

// ErrBadImage is returned for data that is not a decodable program image.
var ErrBadImage = errors.New("bad program image")

// image is the CBOR document following the magic bytes.
type image struct {
	Version      uint         `cbor:"1,keyasint"`
	Instructions []imageInstr `cbor:"2,keyasint"`
}

type imageInstr struct {
	Op      Opcode      `cbor:"1,keyasint"`
	Value   *imageValue `cbor:"2,keyasint,omitempty"`
	Name    string      `cbor:"3,keyasint,omitempty"`
	Arg     int         `cbor:"4,keyasint,omitempty"`
	Pattern string      `cbor:"5,keyasint,omitempty"`
}

type imageValue struct {
	Kind types.Kind   `cbor:"1,keyasint"`
	I    int64        `cbor:"2,keyasint,omitempty"`
	F    float64      `cbor:"3,keyasint,omitempty"`
	S    string       `cbor:"4,keyasint,omitempty"`
	B    bool         `cbor:"5,keyasint,omitempty"`
	L    []imageValue `cbor:"6,keyasint,omitempty"`
}

// cborEncMode uses canonical encoding so equal programs produce identical images.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("compiler: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ImageMagic))
}

// MarshalProgram serializes a program to image bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	img := image{
		Version:      ImageVersion,
		Instructions: make([]imageInstr, len(p.Instructions)),
	}
	for i, in := range p.Instructions {
		ii := imageInstr{Op: in.Op}
		switch in.Op.Operand() {
		case OperandValue:
			v := encodeValue(in.Value)
			ii.Value = &v
		case OperandName:
			ii.Name = in.Name
		case OperandTarget, OperandCount:
			ii.Arg = in.Arg
		case OperandPattern:
			ii.Pattern = in.Pattern
		}
		img.Instructions[i] = ii
	}

	body, err := cborEncMode.Marshal(&img)
	if err != nil {
		return nil, fmt.Errorf("compiler: marshal image: %w", err)
	}
	return append([]byte(ImageMagic), body...), nil
}

// UnmarshalProgram decodes and validates a program image.
func UnmarshalProgram(data []byte) (*Program, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("%w: missing magic", ErrBadImage)
	}
	var img image
	if err := cbor.Unmarshal(data[len(ImageMagic):], &img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadImage, img.Version)
	}

	code := make([]Instruction, len(img.Instructions))
	for i, ii := range img.Instructions {
		in := Instruction{Op: ii.Op, Name: ii.Name, Arg: ii.Arg, Pattern: ii.Pattern}
		if ii.Op == LoadConstant {
			if ii.Value == nil {
				return nil, fmt.Errorf("%w: instruction %d: missing constant", ErrBadImage, i)
			}
			v, err := decodeValue(*ii.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: instruction %d: %v", ErrBadImage, i, err)
			}
			in.Value = v
		}
		code[i] = in
	}

	prog := &Program{Instructions: code}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

func encodeValue(v types.Value) imageValue {
	iv := imageValue{Kind: v.Kind()}
	switch v.Kind() {
	case types.KindInteger:
		iv.I = v.AsInt()
	case types.KindFloat:
		iv.F = v.AsFloat()
	case types.KindString, types.KindEre:
		iv.S = v.AsStr()
	case types.KindBoolean:
		iv.B = v.AsBool()
	case types.KindList:
		elems := v.AsList()
		iv.L = make([]imageValue, len(elems))
		for i, e := range elems {
			iv.L[i] = encodeValue(e)
		}
	}
	return iv
}

func decodeValue(iv imageValue) (types.Value, error) {
	switch iv.Kind {
	case types.KindInteger:
		return types.Int(iv.I), nil
	case types.KindFloat:
		return types.Float(iv.F), nil
	case types.KindString:
		return types.Str(iv.S), nil
	case types.KindEre:
		return types.Ere(iv.S), nil
	case types.KindBoolean:
		return types.Bool(iv.B), nil
	case types.KindList:
		elems := make([]types.Value, len(iv.L))
		for i, e := range iv.L {
			v, err := decodeValue(e)
			if err != nil {
				return types.Value{}, err
			}
			elems[i] = v
		}
		return types.List(elems...), nil
	default:
		return types.Value{}, fmt.Errorf("unknown value kind %d", iv.Kind)
	}
}
