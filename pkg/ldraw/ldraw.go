// Package ldraw provides parsers and geometry processing for the LDraw
// family of brick model formats (.ldr, .mpd, .dat) and Bricklink Studio
// .io archives.
package ldraw

import "go.uber.org/zap"

// CurrentColor is the color code that inherits the color of the
// referencing command (LDraw color code 16).
const CurrentColor uint32 = 16

var log = zap.NewNop()

// SetLogger replaces the package logger. Parsing and resolution report
// skipped lines and missing files here instead of failing.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// ReplaceColor resolves the inherited color code against the color of
// the referencing command.
func ReplaceColor(color, current uint32) uint32 {
	if color == CurrentColor {
		return current
	}
	return color
}
