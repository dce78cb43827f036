package thx

import "github.com/pkg/errors"

var (
	ErrUnresolvedLabel = errors.New("label not resolved")
	ErrLabelOutOfRange = errors.New("jump offset out of range")
)
