package asm

import (
	"os"

	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/asm"
	"github.com/NYUAppSec/appsec-hw1/go/cmd"
	"github.com/NYUAppSec/appsec-hw1/go/ui"
)

func newCmd() *cmd.GcasmCmd {
	c := cmd.NewGcasmCmd("<file.s|->")
	c.NArgs = 1

	var out *string
	var raw, syms *bool
	c.SetupFlags = func() error {
		out = c.Flags.String("o", "a.out", "output file")
		raw = c.Flags.Bool("raw", false, "don't pad the image to 256 bytes")
		syms = c.Flags.Bool("syms", false, "print the label table")
		return nil
	}
	c.Main = func(args []string) error {
		src, err := cmd.ReadInput(args[0])
		if err != nil {
			return err
		}
		p, err := asm.Assemble(src, args[0], c.Config)
		if err != nil {
			return err
		}
		image := p.Image
		if !*raw {
			if image, err = asm.Pad(image, c.Config); err != nil {
				return err
			}
		}
		if *syms {
			ui.PrintSymbols(c.Stdout, p, c.Color)
		}
		c.Config.Debugf("%d instructions, %d bytes written to %s", len(p.Ins), len(image), *out)
		return errors.Wrap(os.WriteFile(*out, image, 0644), "failed to write output")
	}
	return c
}

func Main(args []string) {
	os.Exit(newCmd().Run(args))
}

func init() { cmd.Register("asm", "assemble a program into a raw image", Main) }
