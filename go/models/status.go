package models

import (
	"strings"

	"github.com/mgutz/ansi"
)

// listing colors
var (
	ColorLabel = ansi.ColorCode("cyan+b")
	ColorAddr  = ansi.ColorCode("default+h")
	ColorBytes = ansi.ColorCode("black+h")
	ColorMnem  = ansi.ColorCode("green")
	ColorRaw   = ansi.ColorCode("red")
)

// Colorize wraps s in color when enabled.
func Colorize(s, color string, enabled bool) string {
	if !enabled || s == "" {
		return s
	}
	return color + s + ansi.Reset
}

// ColorPad left-pads s to width pad, measuring before adding color codes.
func ColorPad(s, color string, pad int, enabled bool) string {
	length := len(s)
	s = Colorize(s, color, enabled)
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}
