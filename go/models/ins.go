package models

// Ins is one decoded instruction at a known address, as a linear sweep
// disassembler produces it.
type Ins interface {
	Addr() uint64
	Bytes() []byte
	Mnemonic() string
	OpStr() string
	// String is the mnemonic and operands as one line of assembly.
	String() string
}
