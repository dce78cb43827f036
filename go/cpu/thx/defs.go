package thx

import "strings"

// THX-1138 gift card program machine.
// Every instruction is 3 bytes: opcode, arg1, arg2.
const (
	InsSize     = 3
	NumRegs     = 16
	ProgramSize = 256
)

const (
	OP_NOP     = 0x00
	OP_GETCH   = 0x01
	OP_PUTCH   = 0x02
	OP_MOVCURS = 0x03
	OP_MOV     = 0x04
	OP_XOR     = 0x05
	OP_ADD     = 0x06
	OP_DISP    = 0x07
	OP_END     = 0x08
	OP_JMP     = 0x09
	OP_JZ      = 0x10
)

// Operand kinds
type ArgType int

const (
	A_NONE ArgType = iota
	A_REG
	A_CONST
	A_LABEL
)

func (a ArgType) String() string {
	switch a {
	case A_NONE:
		return "none"
	case A_REG:
		return "register"
	case A_CONST:
		return "constant"
	case A_LABEL:
		return "label"
	}
	return "invalid"
}

// Op is one row of the instruction set table.
type Op struct {
	Name  string
	Code  byte
	Args  [2]ArgType
	Arity int
}

func op(name string, code byte, a1, a2 ArgType) Op {
	arity := 0
	for _, a := range []ArgType{a1, a2} {
		if a != A_NONE {
			arity++
		}
	}
	return Op{Name: name, Code: code, Args: [2]ArgType{a1, a2}, Arity: arity}
}

// opcode order
var opTable = []Op{
	op("nop", OP_NOP, A_NONE, A_NONE),
	op("getch", OP_GETCH, A_REG, A_NONE),
	op("putch", OP_PUTCH, A_REG, A_NONE),
	op("movcurs", OP_MOVCURS, A_CONST, A_NONE),
	op("mov", OP_MOV, A_CONST, A_REG),
	op("xor", OP_XOR, A_REG, A_REG),
	op("add", OP_ADD, A_REG, A_REG),
	op("disp", OP_DISP, A_NONE, A_NONE),
	op("end", OP_END, A_NONE, A_NONE),
	op("jmp", OP_JMP, A_LABEL, A_NONE),
	op("jz", OP_JZ, A_LABEL, A_NONE),
}

var (
	opByName = make(map[string]Op, len(opTable))
	opByCode = make(map[byte]Op, len(opTable))
)

func init() {
	for _, o := range opTable {
		opByName[o.Name] = o
		opByCode[o.Code] = o
	}
}

// LookupName finds an opcode by mnemonic, ignoring case.
func LookupName(name string) (Op, bool) {
	o, ok := opByName[strings.ToLower(name)]
	return o, ok
}

// LookupCode finds an opcode by its encoded byte.
func LookupCode(code byte) (Op, bool) {
	o, ok := opByCode[code]
	return o, ok
}

// Ops returns a copy of the instruction set table in opcode order.
func Ops() []Op {
	out := make([]Op, len(opTable))
	copy(out, opTable)
	return out
}

// IsJump reports whether the first operand is a relative jump offset.
func (o Op) IsJump() bool {
	return o.Args[0] == A_LABEL
}
