package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/NYUAppSec/appsec-hw1/go/asm"
	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/models"
)

const replFile = "<repl>"

// Session holds the source typed so far. Every accepted line reassembles the
// whole session so labels may be used before they are defined.
type Session struct {
	cfg   *models.Config
	lines []string
	prog  *asm.Program
	// instructions so far, including ones waiting on a label
	count int
	// label referenced but not defined yet
	pending error
}

func NewSession(cfg *models.Config) *Session {
	if cfg == nil {
		cfg = &models.Config{}
	}
	return &Session{cfg: cfg.Init()}
}

// Image is the assembled session, or nil while a label is still pending.
func (s *Session) Image() []byte {
	if s.prog == nil || s.pending != nil {
		return nil
	}
	return s.prog.Image
}

func (s *Session) Reset() {
	s.lines = nil
	s.prog = nil
	s.count = 0
	s.pending = nil
}

// Offset is where the next instruction will be placed.
func (s *Session) Offset() int {
	return s.count * thx.InsSize
}

func (s *Session) assemble() (*asm.Program, error) {
	// earlier lines already warned once
	quiet := *s.cfg
	quiet.Output = io.Discard
	quiet.Verbose = false
	return asm.Assemble([]byte(strings.Join(s.lines, "\n")), replFile, &quiet)
}

// Exec runs one line of input and reports whether the session should end.
func (s *Session) Exec(line string, w io.Writer) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ".") && !strings.HasPrefix(trimmed, ".raw") {
		return s.meta(trimmed, w)
	}
	unit, err := asm.ParseLine(line, replFile, len(s.lines)+1, func(pos thx.Pos, format string, args ...interface{}) {
		s.cfg.Warnf(format, args...)
	})
	if err != nil {
		return false, err
	}
	if unit.Kind == asm.UnitNone {
		return false, nil
	}
	s.lines = append(s.lines, line)
	if unit.Kind == asm.UnitIns {
		s.count++
	}
	prog, err := s.assemble()
	if err != nil {
		if errors.Is(err, asm.ErrUndefinedLabel) {
			s.pending = err
			if unit.Kind == asm.UnitIns && unit.Ins.Pending() {
				fmt.Fprintf(w, "      (%s pending)\n", unit.Ins.Label)
			}
			return false, nil
		}
		s.lines = s.lines[:len(s.lines)-1]
		if unit.Kind == asm.UnitIns {
			s.count--
		}
		return false, err
	}
	s.prog, s.pending = prog, nil
	if unit.Kind == asm.UnitIns {
		off := len(prog.Image) - thx.InsSize
		b := prog.Image[off:]
		fmt.Fprintf(w, "%02x:    %02x %02x %02x\n", off, b[0], b[1], b[2])
	}
	return false, nil
}

func (s *Session) meta(cmd string, w io.Writer) (bool, error) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ".quit", ".exit":
		return true, nil
	case ".ops":
		PrintOps(w, s.cfg.Color)
	case ".reset":
		s.Reset()
	case ".list":
		if s.pending != nil {
			return false, s.pending
		}
		if s.prog != nil {
			PrintListing(w, thx.Disassemble(s.prog.Image), s.cfg.Color)
			PrintSymbols(w, s.prog, s.cfg.Color)
		}
	case ".save":
		if len(fields) != 2 {
			return false, errors.New("usage: .save <file>")
		}
		if s.pending != nil {
			return false, s.pending
		}
		image, err := asm.Pad(s.Image(), s.cfg)
		if err != nil {
			return false, err
		}
		if err := os.WriteFile(fields[1], image, 0644); err != nil {
			return false, errors.Wrap(err, "save failed")
		}
		fmt.Fprintf(w, "wrote %d bytes to %s\n", len(image), fields[1])
	default:
		return false, errors.Errorf("unknown command %s (try .ops .list .reset .save .quit)", fields[0])
	}
	return false, nil
}

type Repl struct {
	s  *Session
	rl *readline.Instance
}

func NewRepl(cfg *models.Config) (*Repl, error) {
	// get history path
	configDirs := configdir.New("gcasm", "repl")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "00> ",
		InterruptPrompt: "\n",
		HistoryFile:     historyPath,
	})
	if err != nil {
		return nil, err
	}
	cfg.Init()
	// route warnings through readline so the prompt gets redrawn
	cfg.Output = rl.Stderr()
	return &Repl{s: NewSession(cfg), rl: rl}, nil
}

func (r *Repl) setPrompt() {
	r.rl.SetPrompt(fmt.Sprintf("%02x> ", r.s.Offset()))
}

// Run reads lines until EOF or .quit.
func (r *Repl) Run() {
	defer r.Close()
	out := r.rl.Stdout()
	for {
		r.setPrompt()
		ln := r.rl.Line()
		if ln.Error == readline.ErrInterrupt {
			continue
		} else if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			break
		}
		quit, err := r.s.Exec(ln.Line, out)
		if err != nil {
			fmt.Fprintf(r.rl.Stderr(), "error: %s\n", err)
		}
		if quit {
			break
		}
	}
}

func (r *Repl) Close() {
	r.rl.Close()
}
