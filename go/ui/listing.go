package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/NYUAppSec/appsec-hw1/go/asm"
	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/models"
)

// insLine renders one listing row, with the same columns as thx.Line.String.
func insLine(line thx.Line, color bool) string {
	off := models.Colorize(fmt.Sprintf("%02x:", line.Offset), models.ColorAddr, color)
	raw := models.Colorize(fmt.Sprintf("%02x %02x %02x", line.Bytes[0], line.Bytes[1], line.Bytes[2]), models.ColorBytes, color)
	ins := line.Ins
	mnemColor := models.ColorMnem
	if _, ok := thx.LookupCode(ins.Op); !ok {
		mnemColor = models.ColorRaw
	}
	text := models.Colorize(ins.Mnemonic(), mnemColor, color)
	if ops := ins.OpStr(); ops != "" {
		text += " " + ops
	}
	return fmt.Sprintf("%s    %s    %s", off, raw, text)
}

// PrintListing writes a disassembly listing, colored when color is set.
func PrintListing(w io.Writer, l *thx.Listing, color bool) {
	for line := range l.Lines() {
		if line.Label != "" {
			fmt.Fprintf(w, "   %s\n", models.Colorize(line.Label+":", models.ColorLabel, color))
		}
		fmt.Fprintln(w, insLine(line, color))
	}
	if l.Trimmed > 0 {
		fmt.Fprintf(w, "   ; %d bytes of trailing padding\n", l.Trimmed)
	}
}

// PrintSymbols writes a program's label table in natural order.
func PrintSymbols(w io.Writer, p *asm.Program, color bool) {
	syms := p.Symbols()
	if len(syms) == 0 {
		return
	}
	width := 0
	for _, s := range syms {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}
	for _, s := range syms {
		pad := strings.Repeat(" ", width-len(s.Name))
		fmt.Fprintf(w, "%s%s = %s\n", models.Colorize(s.Name, models.ColorLabel, color), pad,
			models.Colorize(fmt.Sprintf("%#x", s.Offset), models.ColorAddr, color))
	}
}

// PrintOps writes the instruction set table.
func PrintOps(w io.Writer, color bool) {
	for _, op := range thx.Ops() {
		var args []string
		for _, a := range op.Args {
			if a != thx.A_NONE {
				args = append(args, a.String())
			}
		}
		fmt.Fprintf(w, "%s  %s %s\n",
			models.ColorPad(fmt.Sprintf("%#x", op.Code), models.ColorAddr, 4, color),
			models.Colorize(fmt.Sprintf("%-8s", op.Name), models.ColorMnem, color),
			strings.Join(args, ", "))
	}
}
