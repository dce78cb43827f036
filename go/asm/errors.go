package asm

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/NYUAppSec/appsec-hw1/go/cpu/thx"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrArityMismatch   = errors.New("wrong number of arguments")
	ErrInvalidRegister = errors.New("expected register")
	ErrInvalidConstant = errors.New("invalid constant")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrUndefinedLabel  = errors.New("undefined label")
	ErrProgramTooLarge = errors.New("program too large")

	ErrLabelOutOfRange = thx.ErrLabelOutOfRange
	ErrUnresolvedLabel = thx.ErrUnresolvedLabel
)

// SourceError ties an assembly error to the line that caused it.
type SourceError struct {
	Pos thx.Pos
	Err error
	Msg string
}

func (e *SourceError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Pos, e.Err, e.Msg)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func errorf(pos thx.Pos, err error, format string, args ...interface{}) error {
	return errors.WithStack(&SourceError{
		Pos: pos,
		Err: err,
		Msg: fmt.Sprintf(format, args...),
	})
}
