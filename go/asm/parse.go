package asm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
)

// WarnFunc receives non-fatal diagnostics.
type WarnFunc func(pos thx.Pos, format string, args ...interface{})

type UnitKind int

const (
	UnitNone UnitKind = iota
	UnitLabel
	UnitIns
)

// Unit is the result of parsing one source line.
type Unit struct {
	Kind  UnitKind
	Label string
	Ins   thx.Instruction
}

// raw emits three literal bytes; used for opcodes outside the table
const rawDirective = ".raw"

var labelRe = regexp.MustCompile(`^(\w+):$`)

func splitOperands(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ParseLine parses one line of assembly.
//
// Example input:
//
//	mov 0x12, r0 ; comment
func ParseLine(line, file string, lineNum int, warn WarnFunc) (Unit, error) {
	pos := thx.Pos{File: file, Line: lineNum}
	if warn == nil {
		warn = func(thx.Pos, string, ...interface{}) {}
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Unit{}, nil
	}
	if m := labelRe.FindStringSubmatch(line); m != nil {
		return Unit{Kind: UnitLabel, Label: m[1]}, nil
	}
	parts := splitOperands(line)
	name := strings.ToLower(parts[0])
	args := parts[1:]
	if name == rawDirective {
		return parseRaw(args, pos)
	}
	op, ok := thx.LookupName(name)
	if !ok {
		return Unit{}, errorf(pos, ErrUnknownOpcode, "%s", name)
	}
	if len(args) != op.Arity {
		return Unit{}, errorf(pos, ErrArityMismatch, "%s (expected %d, got %d)", name, op.Arity, len(args))
	}
	ins := thx.Instruction{Op: op.Code, Pos: pos}
	vals := []*byte{&ins.Arg1, &ins.Arg2}
	for i, arg := range args {
		var err error
		switch op.Args[i] {
		case thx.A_REG:
			*vals[i], err = parseRegister(arg, pos, warn)
		case thx.A_CONST:
			*vals[i], err = parseConstant(arg, pos)
		case thx.A_LABEL:
			var label string
			*vals[i], label, err = parseJumpTarget(arg, pos, warn)
			ins.Label = label
		}
		if err != nil {
			return Unit{}, err
		}
	}
	return Unit{Kind: UnitIns, Ins: ins}, nil
}

func parseRaw(args []string, pos thx.Pos) (Unit, error) {
	if len(args) != thx.InsSize {
		return Unit{}, errorf(pos, ErrArityMismatch, "%s (expected %d, got %d)", rawDirective, thx.InsSize, len(args))
	}
	var b [thx.InsSize]byte
	for i, arg := range args {
		v, err := parseHex(arg)
		if err != nil || v < 0 || v > math.MaxUint8 {
			return Unit{}, errorf(pos, ErrInvalidConstant, "%s is not a byte", arg)
		}
		b[i] = byte(v)
	}
	ins := thx.Decode(b[:])
	ins.Pos = pos
	return Unit{Kind: UnitIns, Ins: ins}, nil
}

func parseRegister(arg string, pos thx.Pos, warn WarnFunc) (byte, error) {
	if len(arg) < 2 || arg[0] != 'r' {
		return 0, errorf(pos, ErrInvalidRegister, "got %s", arg)
	}
	num, err := strconv.ParseUint(arg[1:], 10, 8)
	if err != nil {
		return 0, errorf(pos, ErrInvalidRegister, "got %s", arg)
	}
	if num >= thx.NumRegs {
		warn(pos, "register number too high: %s", arg)
	}
	return byte(num), nil
}

// parseHex reads a base 16 literal with optional sign and 0x prefix.
func parseHex(arg string) (int64, error) {
	s := arg
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

// parseConstant accepts anything that fits a byte, signed or unsigned.
// Negative values are stored as two's complement.
func parseConstant(arg string, pos thx.Pos) (byte, error) {
	v, err := parseHex(arg)
	if err != nil {
		return 0, errorf(pos, ErrInvalidConstant, "%s", arg)
	}
	if v < math.MinInt8 || v > math.MaxUint8 {
		return 0, errorf(pos, ErrInvalidConstant, "%s does not fit in a byte", arg)
	}
	return byte(v), nil
}

// parseJumpTarget returns either a literal relative offset or a label name
// to be resolved later.
func parseJumpTarget(arg string, pos thx.Pos, warn WarnFunc) (byte, string, error) {
	v, err := strconv.ParseInt(arg, 0, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, "", errorf(pos, ErrLabelOutOfRange, "%s", arg)
		}
		return 0, arg, nil
	}
	if v%thx.InsSize != 0 {
		warn(pos, "numeric label %s is not a multiple of %d", arg, thx.InsSize)
	}
	if v < math.MinInt8 || v > math.MaxUint8 {
		return 0, "", errorf(pos, ErrLabelOutOfRange, "%s does not fit in a byte", arg)
	}
	if v > math.MaxInt8 {
		warn(pos, "numeric label %s will jump backwards by %d", arg, -int(int8(v)))
	}
	return byte(v), "", nil
}
