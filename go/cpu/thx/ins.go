package thx

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Pos is a source location, used for diagnostics only.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Instruction is one assembled unit. Operands are kept in encoded form, so a
// negative constant or jump offset is stored as its two's complement byte.
type Instruction struct {
	Op   byte
	Arg1 byte
	Arg2 byte

	// Label is the symbolic jump target, if any. It must be resolved
	// before the instruction can be encoded.
	Label    string
	Resolved bool

	Pos Pos
}

// Pending reports whether the instruction still waits on a label.
func (i *Instruction) Pending() bool {
	return i.Label != "" && !i.Resolved
}

// Resolve stores a relative jump offset into arg1.
func (i *Instruction) Resolve(offset int) error {
	if offset < math.MinInt8 || offset > math.MaxInt8 {
		return errors.Wrapf(ErrLabelOutOfRange, "offset %d to %s", offset, i.Label)
	}
	i.Arg1 = byte(int8(offset))
	i.Resolved = true
	return nil
}

// Offset returns arg1 as a signed relative jump offset.
func (i *Instruction) Offset() int {
	return int(int8(i.Arg1))
}

func (i *Instruction) Encode() ([]byte, error) {
	if i.Pending() {
		return nil, errors.Wrapf(ErrUnresolvedLabel, "%s at %s", i.Label, i.Pos)
	}
	return []byte{i.Op, i.Arg1, i.Arg2}, nil
}

// Decode reads one instruction from the first InsSize bytes of b.
// Unknown opcodes are kept as-is.
func Decode(b []byte) Instruction {
	var tmp [InsSize]byte
	copy(tmp[:], b)
	return Instruction{Op: tmp[0], Arg1: tmp[1], Arg2: tmp[2]}
}

func EncodeProgram(ins []Instruction) ([]byte, error) {
	out := make([]byte, 0, len(ins)*InsSize)
	for n := range ins {
		b, err := ins[n].Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func formatArg(val byte, typ ArgType, label string) string {
	switch typ {
	case A_REG:
		return fmt.Sprintf("r%d", val)
	case A_CONST:
		return fmt.Sprintf("%#x", val)
	case A_LABEL:
		if label != "" {
			return label
		}
		return fmt.Sprintf("%d", int8(val))
	}
	return ""
}

func (i *Instruction) Mnemonic() string {
	if o, ok := LookupCode(i.Op); ok {
		return o.Name
	}
	return ".raw"
}

func (i *Instruction) OpStr() string {
	o, ok := LookupCode(i.Op)
	if !ok {
		return fmt.Sprintf("%#x, %#x, %#x", i.Op, i.Arg1, i.Arg2)
	}
	var args []string
	for n, val := range []byte{i.Arg1, i.Arg2} {
		if s := formatArg(val, o.Args[n], i.Label); s != "" && n < o.Arity {
			args = append(args, s)
		}
	}
	return strings.Join(args, ", ")
}

// Canonical reports whether the opcode is known and every operand slot it
// does not use is zero, so that String reassembles to the same bytes.
func (i *Instruction) Canonical() bool {
	o, ok := LookupCode(i.Op)
	if !ok {
		return false
	}
	return (o.Arity > 0 || i.Arg1 == 0) && (o.Arity > 1 || i.Arg2 == 0)
}

// Asm renders the instruction as source that encodes to exactly its bytes.
func (i *Instruction) Asm() string {
	if i.Canonical() {
		return i.String()
	}
	raw := fmt.Sprintf(".raw %#x, %#x, %#x", i.Op, i.Arg1, i.Arg2)
	if _, ok := LookupCode(i.Op); ok {
		raw += " ; " + i.String()
	}
	return raw
}

func (i *Instruction) String() string {
	if s := i.OpStr(); s != "" {
		return i.Mnemonic() + " " + s
	}
	return i.Mnemonic()
}
