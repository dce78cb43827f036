package asm

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/models"
)

func testConfig() (*models.Config, *bytes.Buffer) {
	var buf bytes.Buffer
	return (&models.Config{Output: &buf}).Init(), &buf
}

func mustAssemble(t *testing.T, src string) (*Program, string) {
	cfg, buf := testConfig()
	p, err := Assemble([]byte(src), "test.s", cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p, buf.String()
}

func TestAssembleSelfJump(t *testing.T) {
	p, _ := mustAssemble(t, "START:\njmp START\n")
	if hex.EncodeToString(p.Image) != "09fd00" {
		t.Fatalf("got % x, want 09 fd 00", p.Image)
	}
}

// animates the gift card message by rotating each letter
const rotateSrc = `
; rot1 the message in place
    mov 0x1, r1      ; increment
    mov 0x0, r2
LOOP:
    getch r0
    xor r3, r3
    add r3, r0
    xor r3, r2       ; sets zf at NUL
    jz DONE
    add r0, r1
    putch r0
    movcurs 0x1
    jmp LOOP
DONE:
    disp
    end
`

func TestAssembleForwardAndBackward(t *testing.T) {
	p, warnings := mustAssemble(t, rotateSrc)
	if warnings != "" {
		t.Errorf("unexpected warnings: %s", warnings)
	}
	if len(p.Ins) != 13 || len(p.Image) != 13*thx.InsSize {
		t.Fatalf("got %d instructions, %d bytes", len(p.Ins), len(p.Image))
	}
	if p.Labels["LOOP"] != 6 || p.Labels["DONE"] != 33 {
		t.Fatalf("bad label table %v", p.Labels)
	}
	// jz DONE is instruction 6: 33 - 7*3 = 12
	if !bytes.Equal(p.Image[18:21], []byte{0x10, 12, 0}) {
		t.Errorf("jz encoded as % x", p.Image[18:21])
	}
	// jmp LOOP is instruction 10: 6 - 11*3 = -27
	if !bytes.Equal(p.Image[30:33], []byte{0x09, 0xe5, 0}) {
		t.Errorf("jmp encoded as % x", p.Image[30:33])
	}
	if !bytes.Equal(p.Image[:3], []byte{0x04, 0x01, 0x01}) {
		t.Errorf("mov encoded as % x", p.Image[:3])
	}
}

func TestAssembleLengthWithoutLabels(t *testing.T) {
	src := "nop\ngetch r1\nputch r2\nmovcurs -1\nmov 41, r3\nxor r1, r2\nadd r4, r5\ndisp\nend\njmp 3\njz -6\n"
	p, _ := mustAssemble(t, src)
	if len(p.Image) != 3*11 {
		t.Fatalf("got %d bytes for 11 instructions", len(p.Image))
	}
	want := "000000" + "010100" + "020200" + "03ff00" + "044103" + "050102" + "060405" +
		"070000" + "080000" + "090300" + "10fa00"
	if got := hex.EncodeToString(p.Image); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		src  string
		err  error
		line int
	}{
		{"mov r0", ErrArityMismatch, 1},
		{"nop\nend r1", ErrArityMismatch, 2},
		{"jmp NOWHERE", ErrUndefinedLabel, 1},
		{"frob r1", ErrUnknownOpcode, 1},
		{"getch 1", ErrInvalidRegister, 1},
		{"getch rx", ErrInvalidRegister, 1},
		{"getch r256", ErrInvalidRegister, 1},
		{"movcurs zz", ErrInvalidConstant, 1},
		{"movcurs 100", ErrInvalidConstant, 1},
		{"movcurs -81", ErrInvalidConstant, 1},
		{"A:\nnop\nA:\n", ErrDuplicateLabel, 3},
		{"jmp 300", ErrLabelOutOfRange, 1},
		{"jmp 99999999999999999999", ErrLabelOutOfRange, 1},
		{".raw 1, 2", ErrArityMismatch, 1},
		{".raw 1, 2, 100", ErrInvalidConstant, 1},
	}
	for _, test := range tests {
		cfg, _ := testConfig()
		p, err := Assemble([]byte(test.src), "bad.s", cfg)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: expected %v, got %v", test.src, test.err, err)
			continue
		}
		if p != nil {
			t.Errorf("%q: partial output on error", test.src)
		}
		var se *SourceError
		if !errors.As(err, &se) {
			t.Errorf("%q: error has no source position", test.src)
		} else if se.Pos.File != "bad.s" || se.Pos.Line != test.line {
			t.Errorf("%q: error at %s, want line %d", test.src, se.Pos, test.line)
		}
	}
}

func TestArityMessage(t *testing.T) {
	_, err := Assemble([]byte("\n\nmov r0"), "prog.s", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"prog.s:3", "expected 2", "got 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("%q missing %q", msg, want)
		}
	}
}

func TestLabelOutOfRange(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("jmp FAR\n")
	for i := 0; i < 43; i++ {
		sb.WriteString("nop\n")
	}
	sb.WriteString("FAR:\nend\n")
	// FAR is at 44*3 = 132, offset 129 does not fit
	if _, err := Assemble([]byte(sb.String()), "far.s", nil); !errors.Is(err, ErrLabelOutOfRange) {
		t.Fatalf("expected ErrLabelOutOfRange, got %v", err)
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		src  string
		warn string
	}{
		{"getch r16", "register number too high: r16 in test.s:1"},
		{"jmp 4", "numeric label 4 is not a multiple of 3"},
		{"jz 0xf4", "will jump backwards by 12"},
	}
	for _, test := range tests {
		_, warnings := mustAssemble(t, test.src)
		if !strings.Contains(warnings, "WARNING: "+test.warn) && !strings.Contains(warnings, test.warn) {
			t.Errorf("%q: missing warning %q in %q", test.src, test.warn, warnings)
		}
	}
}

func TestVerboseEchoesLines(t *testing.T) {
	cfg, buf := testConfig()
	cfg.Verbose = true
	if _, err := Assemble([]byte("nop\nend"), "v.s", cfg); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1: nop\n2: end\n" {
		t.Errorf("unexpected trace %q", buf.String())
	}
}

func TestSymbolsNaturalOrder(t *testing.T) {
	p, _ := mustAssemble(t, "L10:\nnop\nL2:\nnop\nL1:\nend\n")
	var names []string
	for _, s := range p.Symbols() {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "L1,L2,L10" {
		t.Errorf("got %v", names)
	}
}

func TestPad(t *testing.T) {
	cfg, buf := testConfig()
	image := []byte{0x08, 0, 0}
	out, err := Pad(image, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != thx.ProgramSize || out[0] != 0x08 || out[255] != 0 {
		t.Fatalf("bad padding, len %d", len(out))
	}

	big := make([]byte, 300)
	out, err = Pad(big, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 300 {
		t.Errorf("oversized image truncated to %d", len(out))
	}
	if !strings.Contains(buf.String(), "longer than 256 bytes (300)") {
		t.Errorf("missing size warning: %q", buf.String())
	}

	cfg.StrictSize = true
	if _, err := Pad(big, cfg); !errors.Is(err, ErrProgramTooLarge) {
		t.Errorf("expected ErrProgramTooLarge, got %v", err)
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	p, _ := mustAssemble(t, rotateSrc)
	l := thx.Disassemble(p.Image)
	if l.Len() != len(p.Ins) {
		t.Fatalf("listing has %d lines, program %d", l.Len(), len(p.Ins))
	}
	i := 0
	for line := range l.Lines() {
		if line.Ins.Op != p.Ins[i].Op || line.Ins.Arg1 != p.Ins[i].Arg1 || line.Ins.Arg2 != p.Ins[i].Arg2 {
			t.Errorf("line %d: %s != %s", i, line.Ins.String(), p.Ins[i].String())
		}
		i++
	}
	// the generated source assembles back to the same bytes
	again, _ := mustAssemble(t, l.Source())
	if !bytes.Equal(again.Image, p.Image) {
		t.Errorf("reassembled image differs:\n% x\n% x", again.Image, p.Image)
	}
}

func TestRawRoundTrip(t *testing.T) {
	image := []byte{0x42, 0x01, 0x02, 0x09, 0xfa, 0x00, 0x10, 0x7f, 0x00, 0x08, 0x00, 0x01}
	l := thx.Disassemble(image)
	cfg, _ := testConfig()
	p, err := Assemble([]byte(l.Source()), "dis.s", cfg)
	if err != nil {
		t.Fatalf("%v\n%s", err, l.Source())
	}
	if !bytes.Equal(p.Image, image) {
		t.Errorf("got % x, want % x", p.Image, image)
	}
}
