package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type command struct {
	name, desc string
	main       func(args []string)
}

var commands map[string]*command
var order []string
var pad int

func init() { commands = make(map[string]*command) }

func Register(name, desc string, main func(args []string)) {
	if len(name) > pad {
		pad = len(name)
	}
	commands[name] = &command{name, desc, main}
	order = append(order, name)
}

func usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s <command> [options]\n\nCommands:\n", prog)
	fstr := fmt.Sprintf("  %%-%ds | %%s\n", pad)
	for _, name := range order {
		cmd := commands[name]
		fmt.Fprintf(w, fstr, cmd.name, cmd.desc)
	}
	fmt.Fprintf(w, "\nExample:\n  %[1]s card -m \"Happy Birthday!\" -o bday.gft anim.s\n  %[1]s show bday.gft\n\n", prog)
}

// Dispatch runs the command named by argv[1]. Commands exit on their own;
// the returned code covers help and lookup failures.
func Dispatch(argv []string, w io.Writer) int {
	if len(argv) < 2 {
		usage(w, argv[0])
		return 1
	}
	switch argv[1] {
	case "help", "-h", "-help", "--help":
		usage(w, argv[0])
		return 0
	}
	cmd, ok := commands[argv[1]]
	if !ok {
		fmt.Fprintf(w, "Command '%s' not found.\n\n", argv[1])
		usage(w, argv[0])
		return 1
	}
	args := append([]string{strings.Join(argv[:2], " ")}, argv[2:]...)
	cmd.main(args)
	return 0
}

func Main() {
	os.Exit(Dispatch(os.Args, os.Stderr))
}
