// Package sanitizer normalizes user and game supplied room text.
//
// Game text (names, descriptions, contents, door names) is reduced to
// printable ASCII with single spaces between words. User supplied text
// (notes) keeps its characters but loses trailing whitespace and always ends
// each line with a newline.
package sanitizer

import (
	"strings"
	"unicode"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const nbsp = '\u00a0'

// DefaultWidth is the wrapping width used for room descriptions.
const DefaultWidth = 80

func isAnySpace(r rune) bool {
	return r == nbsp || unicode.IsSpace(r)
}

func isPureASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			continue
		}
		if c < 0x20 || c >= 0x7f {
			return false
		}
	}
	return true
}

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, ansi.Marker) {
		return s
	}
	var sb strings.Builder
	inSeq := false
	for _, r := range s {
		switch {
		case r == ansi.Marker:
			inSeq = true
		case inSeq:
			if ansi.IsTerminator(r) {
				inSeq = false
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func asciiMapper(r rune) rune {
	switch {
	case r == '\n':
		return r
	case r == nbsp || unicode.IsSpace(r):
		return ' '
	case r < 0x20 || r == 0x7f:
		return ' '
	case r < 0x7f:
		return r
	}
	switch r {
	case 'Æ':
		return 'A'
	case 'æ':
		return 'a'
	case 'Ø':
		return 'O'
	case 'ø':
		return 'o'
	case 'ß':
		return 's'
	case '‘', '’':
		return '\''
	case '“', '”':
		return '"'
	case '–', '—':
		return '-'
	}
	return '?'
}

// ToASCII transliterates accented latin characters to their base letters and
// replaces anything else outside printable ASCII.
func ToASCII(s string) string {
	if isPureASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), runes.Map(asciiMapper))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func words(s string) []string {
	return strings.FieldsFunc(s, isAnySpace)
}

// IsSanitizedOneLine reports whether s is already single spaced ASCII with no
// leading or trailing whitespace.
func IsSanitizedOneLine(s string) bool {
	if s == "" {
		return true
	}
	return isPureASCII(s) && !strings.Contains(s, "\n") && strings.Join(words(s), " ") == s
}

// SanitizeOneLine collapses s to a single line of space separated words.
func SanitizeOneLine(s string) string {
	if IsSanitizedOneLine(s) {
		return s
	}
	return strings.Join(words(ToASCII(StripANSI(s))), " ")
}

// IsSanitizedMultiline reports whether SanitizeMultiline would leave s unchanged.
func IsSanitizedMultiline(s string) bool {
	return SanitizeMultiline(s) == s
}

// SanitizeMultiline sanitizes each line and drops blank leading and trailing
// lines. Every non-empty line ends with a newline.
func SanitizeMultiline(s string) string {
	s = ToASCII(StripANSI(s))
	var sb strings.Builder
	for _, line := range strings.Split(s, "\n") {
		w := words(line)
		if len(w) == 0 {
			continue
		}
		sb.WriteString(strings.Join(w, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SanitizeWordWrapped reflows s into lines no longer than width, packing words
// greedily.
func SanitizeWordWrapped(s string, width int) string {
	w := words(ToASCII(StripANSI(s)))
	if len(w) == 0 {
		return ""
	}
	ww := wordwrap.NewWriter(width)
	ww.Breakpoints = nil
	_, _ = ww.Write([]byte(strings.Join(w, " ")))
	_ = ww.Close()
	return ww.String() + "\n"
}

// IsSanitizedUserSupplied reports whether every line ends in a newline with
// no trailing whitespace.
func IsSanitizedUserSupplied(s string) bool {
	if s == "" {
		return true
	}
	if !strings.HasSuffix(s, "\n") {
		return false
	}
	for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		if line != strings.TrimRightFunc(line, isAnySpace) {
			return false
		}
	}
	return true
}

// SanitizeUserSupplied trims trailing whitespace from every line and
// terminates each line with a newline. Non-ASCII characters are kept.
func SanitizeUserSupplied(s string) string {
	if IsSanitizedUserSupplied(s) {
		return s
	}
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		sb.WriteString(strings.TrimRightFunc(line, isAnySpace))
		sb.WriteByte('\n')
	}
	return sb.String()
}
