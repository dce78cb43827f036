package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/models"
)

// StrSlice collects a repeatable string flag.
type StrSlice []string

func (s *StrSlice) String() string {
	return fmt.Sprintf("%v", *s)
}

func (s *StrSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// GcasmCmd is the shared skeleton of every subcommand: common flags, config
// file loading and error reporting.
type GcasmCmd struct {
	Config *models.Config

	// Usage describes the positional arguments, e.g. "<file.s>".
	Usage string
	// NArgs is the minimum number of positional arguments.
	NArgs int

	SetupFlags func() error
	// Main runs the command with the positional arguments.
	Main func(args []string) error

	// Color is set when Stdout is a color capable terminal.
	Color bool

	Flags  *flag.FlagSet
	Stdout io.Writer
	Stderr io.Writer
}

func NewGcasmCmd(usage string) *GcasmCmd {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	return &GcasmCmd{Usage: usage, Flags: fs}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ReadInput reads a named file, or stdin for "-".
func ReadInput(name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "failed to read stdin")
	}
	data, err := os.ReadFile(name)
	return data, errors.WithStack(err)
}

func (c *GcasmCmd) PrintError(err error) {
	// print an error, and a stacktrace if available
	w := c.Stderr
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w, "Error: %s\n", err)
	if c.Config == nil || !c.Config.Verbose {
		return
	}
	var st stackTracer
	if !errors.As(err, &st) {
		return
	}
	// parse full path and method name for each stack frame
	var frames [][]string
	for _, f := range st.StackTrace() {
		fullpath := ""
		fileline := fmt.Sprintf("%s:%d", f, f)
		method := fmt.Sprintf("%n", f)

		frame := fmt.Sprintf("%+s", f)
		tmp := strings.SplitN(frame, "\n", 3)
		if len(tmp) == 2 {
			pathsplit := strings.Split(tmp[0], "/")
			method = pathsplit[len(pathsplit)-1]
			fullpath = strings.TrimSpace(tmp[1])
		}
		frames = append(frames, []string{fullpath, fileline, method})
		if method == "main.main" {
			break
		}
	}
	// calculate column widths
	widths := make([]int, 3)
	for _, f := range frames {
		for i, s := range f {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}
	// print pretty stacktrace
	for _, f := range frames {
		for i := 0; i < 2; i++ {
			if widths[i] > 0 {
				pad := strings.Repeat(" ", widths[i]-len(f[i]))
				fmt.Fprintf(w, "%s%s | ", f[i], pad)
			}
		}
		fmt.Fprintf(w, "%s()\n", f[2])
	}
}

// Run parses argv (argv[0] is the command name) and returns an exit code.
func (c *GcasmCmd) Run(argv []string) int {
	fs := c.Flags
	verbose := fs.Bool("v", false, "echo each source line as it is assembled")
	strict := fs.Bool("strict", false, "fail instead of warning when a program exceeds 256 bytes")
	color := fs.Bool("color", false, "force colored output")
	nocolor := fs.Bool("nocolor", false, "disable colored output")

	c.Config = &models.Config{Output: c.Stderr}
	if c.Stdout == nil {
		fd := os.Stdout.Fd()
		c.Color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		c.Stdout = colorable.NewColorableStdout()
	}
	c.Config.Init()
	c.Stderr = c.Config.Output

	fs.SetOutput(c.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.Stderr, "Usage: %s [options] %s\n\nOptions:\n", argv[0], c.Usage)
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) {
			flags = append(flags, f)
		})
		models.PrintFlags(c.Stderr, flags)
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			c.PrintError(err)
			return 1
		}
	}
	if err := fs.Parse(argv[1:]); err != nil {
		return 2
	}
	if fs.NArg() < c.NArgs {
		fs.Usage()
		return 2
	}

	// config file first, explicit flags win
	if err := c.Config.LoadConfigFile(); err != nil {
		c.PrintError(err)
		return 1
	}
	c.Color = c.Color && c.Config.Color
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			c.Config.Verbose = *verbose
		case "strict":
			c.Config.StrictSize = *strict
		}
	})
	if *color {
		c.Config.Color, c.Color = true, true
	}
	if *nocolor {
		c.Config.Color, c.Color = false, false
	}

	if err := c.Main(fs.Args()); err != nil {
		c.PrintError(err)
		return 1
	}
	return 0
}
