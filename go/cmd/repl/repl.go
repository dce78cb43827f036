package repl

import (
	"os"

	"github.com/NYUAppSec/appsec-hw1/go/cmd"
	"github.com/NYUAppSec/appsec-hw1/go/ui"
)

func Main(args []string) {
	c := cmd.NewGcasmCmd("")
	c.Main = func(args []string) error {
		r, err := ui.NewRepl(c.Config)
		if err != nil {
			return err
		}
		r.Run()
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("repl", "assemble interactively, one line at a time", Main) }
