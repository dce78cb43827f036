package asm

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
	"github.com/NYUAppSec/appsec-hw1/go/models"
)

// Program is the result of one assembly run.
type Program struct {
	Ins []thx.Instruction
	// Labels maps label name to byte offset within Image.
	Labels map[string]int
	Image  []byte
}

type Symbol struct {
	Name   string
	Offset int
}

type symList []Symbol

func (s symList) Len() int           { return len(s) }
func (s symList) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s symList) Less(i, j int) bool { return sortorder.NaturalLess(s[i].Name, s[j].Name) }

func config(cfg *models.Config) *models.Config {
	if cfg == nil {
		cfg = &models.Config{}
	}
	return cfg.Init()
}

func warner(cfg *models.Config) WarnFunc {
	return func(pos thx.Pos, format string, args ...interface{}) {
		cfg.Warnf("%s in %s", fmt.Sprintf(format, args...), pos)
	}
}

// Assemble runs the full pipeline over src: parse every line, build the label
// table, resolve jumps and encode. Any error aborts the run.
func Assemble(src []byte, file string, cfg *models.Config) (*Program, error) {
	cfg = config(cfg)
	warn := warner(cfg)
	p := &Program{Labels: make(map[string]int)}

	scanner := bufio.NewScanner(bytes.NewReader(src))
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		cfg.Debugf("%d: %s", lineNum, line)
		unit, err := ParseLine(line, file, lineNum, warn)
		if err != nil {
			return nil, err
		}
		switch unit.Kind {
		case UnitLabel:
			if _, ok := p.Labels[unit.Label]; ok {
				return nil, errorf(thx.Pos{File: file, Line: lineNum}, ErrDuplicateLabel, "%s", unit.Label)
			}
			p.Labels[unit.Label] = len(p.Ins) * thx.InsSize
		case UnitIns:
			p.Ins = append(p.Ins, unit.Ins)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", file)
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}
	image, err := thx.EncodeProgram(p.Ins)
	if err != nil {
		return nil, err
	}
	p.Image = image
	return p, nil
}

func AssembleFile(path string, cfg *models.Config) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source")
	}
	return Assemble(src, path, cfg)
}

// resolve rewrites every symbolic jump into an offset relative to the end of
// the jumping instruction.
func (p *Program) resolve() error {
	for i := range p.Ins {
		ins := &p.Ins[i]
		if !ins.Pending() {
			continue
		}
		target, ok := p.Labels[ins.Label]
		if !ok {
			return errorf(ins.Pos, ErrUndefinedLabel, "%s", ins.Label)
		}
		offset := target - (i+1)*thx.InsSize
		if err := ins.Resolve(offset); err != nil {
			return errorf(ins.Pos, ErrLabelOutOfRange, "%s is %d bytes away", ins.Label, offset)
		}
	}
	return nil
}

// Symbols returns the label table in natural name order.
func (p *Program) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(p.Labels))
	for name, off := range p.Labels {
		syms = append(syms, Symbol{name, off})
	}
	sort.Sort(symList(syms))
	return syms
}

// Pad right-pads image with nops to the 256 byte gift card program slot.
// Oversized images are returned whole with a warning, or rejected when
// cfg.StrictSize is set.
func Pad(image []byte, cfg *models.Config) ([]byte, error) {
	cfg = config(cfg)
	if len(image) > thx.ProgramSize {
		if cfg.StrictSize {
			return nil, errors.Wrapf(ErrProgramTooLarge, "%d bytes, limit is %d", len(image), thx.ProgramSize)
		}
		cfg.Warnf("assembled program is longer than %d bytes (%d)", thx.ProgramSize, len(image))
		return append([]byte{}, image...), nil
	}
	out := make([]byte, thx.ProgramSize)
	copy(out, image)
	return out, nil
}
