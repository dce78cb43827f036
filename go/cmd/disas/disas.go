package disas

import (
	"fmt"
	"os"

	"github.com/NYUAppSec/appsec-hw1/go/cmd"
	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/ui"
)

func newCmd() *cmd.GcasmCmd {
	c := cmd.NewGcasmCmd("<image|->")
	c.NArgs = 1

	var source, linear *bool
	var base *uint64
	c.SetupFlags = func() error {
		source = c.Flags.Bool("source", false, "print assembly that reassembles to the same image")
		linear = c.Flags.Bool("linear", false, "plain linear sweep without labels or trimming")
		base = c.Flags.Uint64("base", 0, "address of the first byte for -linear")
		return nil
	}
	c.Main = func(args []string) error {
		image, err := cmd.ReadInput(args[0])
		if err != nil {
			return err
		}
		if *linear {
			dis, err := (&thx.Dis{}).Dis(image, *base)
			if err != nil {
				return err
			}
			for _, ins := range dis {
				fmt.Fprintf(c.Stdout, "%#x: % x    %s\n", ins.Addr(), ins.Bytes(), ins)
			}
			return nil
		}
		l := thx.Disassemble(image)
		if *source {
			fmt.Fprint(c.Stdout, l.Source())
		} else {
			ui.PrintListing(c.Stdout, l, c.Color)
		}
		return nil
	}
	return c
}

func Main(args []string) {
	os.Exit(newCmd().Run(args))
}

func init() { cmd.Register("disas", "disassemble a raw image", Main) }
