package show

import (
	"os"

	"github.com/NYUAppSec/appsec-hw1/go/cmd"
	"github.com/NYUAppSec/appsec-hw1/go/giftcard"
)

func newCmd() *cmd.GcasmCmd {
	c := cmd.NewGcasmCmd("<card.gft|->")
	c.NArgs = 1

	var jsonFlag *bool
	c.SetupFlags = func() error {
		jsonFlag = c.Flags.Bool("json", false, "print the card as JSON")
		return nil
	}
	c.Main = func(args []string) error {
		data, err := cmd.ReadInput(args[0])
		if err != nil {
			return err
		}
		card, err := giftcard.Parse(data)
		if err != nil {
			return err
		}
		if *jsonFlag {
			return card.PrintJSON(c.Stdout)
		}
		card.PrintText(c.Stdout)
		return nil
	}
	return c
}

func Main(args []string) {
	os.Exit(newCmd().Run(args))
}

func init() { cmd.Register("show", "print a gift card, disassembling embedded programs", Main) }
