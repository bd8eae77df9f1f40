// Package display formats text for the console.
package display

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// Hanging wraps text to DefaultWidth and indents every line after the first
// by n spaces, so continuation lines sit under a column.
func Hanging(text string, n uint) string {
	width := DefaultWidth - int(n)
	if width < 20 {
		width = 20
	}
	first, rest, ok := strings.Cut(wordwrap.String(text, width), "\n")
	if !ok {
		return first
	}
	return first + "\n" + indent.String(rest, n)
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
