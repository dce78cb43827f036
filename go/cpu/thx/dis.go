package thx

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/NYUAppSec/appsec-hw1/go/models"
)

type ins struct {
	Instruction
	addr  uint64
	bytes []byte
}

func (i *ins) Addr() uint64 {
	return i.addr
}

func (i *ins) Bytes() []byte {
	return i.bytes
}

type insReader struct {
	*bytes.Reader
	addr uint64
}

func (r *insReader) tell() int64 {
	return r.Size() - int64(r.Len())
}

// ins reads out exactly one instruction
func (r *insReader) ins() (*ins, error) {
	start := r.tell()
	p := make([]byte, InsSize)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, err
	}
	return &ins{
		Instruction: Decode(p),
		addr:        r.addr + uint64(start),
		bytes:       p,
	}, nil
}

type Dis struct{}

// Dis decodes every whole instruction in mem. A trailing partial
// instruction is ignored.
func (d *Dis) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	reader := &insReader{
		addr:   addr,
		Reader: bytes.NewReader(mem),
	}
	var ret []models.Ins
	for {
		ins, err := reader.ins()
		if err != nil {
			break
		}
		ret = append(ret, ins)
	}
	return ret, nil
}

// Line is one instruction of a Listing.
type Line struct {
	Offset int
	Bytes  []byte
	// Label defined right before this instruction, if any.
	Label string
	Ins   Instruction
}

func (l Line) String() string {
	return fmt.Sprintf("%02x:    %02x %02x %02x    %s", l.Offset, l.Bytes[0], l.Bytes[1], l.Bytes[2], l.Ins.String())
}

// Listing is a disassembled program with synthesized jump labels.
type Listing struct {
	// Image is the decoded byte stream after trimming trailing padding and
	// rounding up to a whole instruction.
	Image []byte
	// Trimmed counts input bytes of trailing padding left out of Image.
	Trimmed int

	ins    []Instruction
	labels map[int]string
}

func LabelName(index int) string {
	return fmt.Sprintf("L%d", index)
}

// Disassemble decodes an arbitrary byte sequence. It never fails: unknown
// opcodes decode structurally and a truncated last instruction is padded
// with zero bytes.
func Disassemble(b []byte) *Listing {
	image := append([]byte{}, bytes.TrimRight(b, "\x00")...)
	if rem := len(image) % InsSize; rem != 0 {
		image = append(image, make([]byte, InsSize-rem)...)
	}
	l := &Listing{Image: image, labels: make(map[int]string)}
	if len(b) > len(image) {
		l.Trimmed = len(b) - len(image)
	}
	l.ins = make([]Instruction, 0, len(image)/InsSize)
	for off := 0; off < len(image); off += InsSize {
		l.ins = append(l.ins, Decode(image[off:off+InsSize]))
	}
	// relative targets only get a name when they land on an instruction
	for i := range l.ins {
		o, ok := LookupCode(l.ins[i].Op)
		if !ok || !o.IsJump() {
			continue
		}
		target := (i+1)*InsSize + l.ins[i].Offset()
		if target < 0 || target%InsSize != 0 || target/InsSize >= len(l.ins) {
			continue
		}
		idx := target / InsSize
		name := LabelName(idx)
		l.labels[idx] = name
		l.ins[i].Label = name
		l.ins[i].Resolved = true
	}
	return l
}

func (l *Listing) Len() int {
	return len(l.ins)
}

// Labels maps instruction index to synthesized label name.
func (l *Listing) Labels() map[int]string {
	out := make(map[int]string, len(l.labels))
	for k, v := range l.labels {
		out[k] = v
	}
	return out
}

// Lines iterates the listing in program order. Each call starts over.
func (l *Listing) Lines() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for i := range l.ins {
			off := i * InsSize
			line := Line{
				Offset: off,
				Bytes:  l.Image[off : off+InsSize],
				Label:  l.labels[i],
				Ins:    l.ins[i],
			}
			if !yield(line) {
				return
			}
		}
	}
}

func (l *Listing) String() string {
	var out []string
	for line := range l.Lines() {
		if line.Label != "" {
			out = append(out, fmt.Sprintf("   %s:", line.Label))
		}
		out = append(out, line.String())
	}
	return strings.Join(out, "\n")
}

// Source renders the listing as assembly that reassembles to Image.
func (l *Listing) Source() string {
	var sb strings.Builder
	for line := range l.Lines() {
		if line.Label != "" {
			fmt.Fprintf(&sb, "%s:\n", line.Label)
		}
		fmt.Fprintf(&sb, "    %s\n", line.Ins.Asm())
	}
	return sb.String()
}
