package diff

import (
	"io"
	"strings"
)

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isPunct(b byte) bool {
	return strings.IndexByte(punctuation, b) >= 0
}

// SplitWordLines tokenizes text into words, punctuation, and newlines.
// Runs of periods stay together; other punctuation is split per character.
// Punctuation inside a word, as in "foo's", is left attached.
func SplitWordLines(s string) []string {
	var tokens []string

	insertPunct := func(punct string) {
		for punct != "" {
			if punct[0] != '.' {
				tokens = append(tokens, punct[:1])
				punct = punct[1:]
				continue
			}
			dots := len(punct) - len(strings.TrimLeft(punct, "."))
			tokens = append(tokens, punct[:dots])
			punct = punct[dots:]
		}
	}

	insertWord := func(word string) {
		if isPunct(word[0]) {
			rest := strings.TrimLeftFunc(word, func(r rune) bool { return r < 0x80 && isPunct(byte(r)) })
			insertPunct(word[:len(word)-len(rest)])
			word = rest
			if word == "" {
				return
			}
		}
		if !isPunct(word[len(word)-1]) {
			tokens = append(tokens, word)
			return
		}
		rest := strings.TrimRightFunc(word, func(r rune) bool { return r < 0x80 && isPunct(byte(r)) })
		if rest != "" {
			tokens = append(tokens, rest)
		}
		insertPunct(word[len(rest):])
	}

	for line := range strings.SplitAfterSeq(s, "\n") {
		if line == "" {
			continue
		}
		text, hasNewline := strings.CutSuffix(line, "\n")
		for _, w := range strings.Fields(text) {
			insertWord(w)
		}
		if hasNewline {
			tokens = append(tokens, "\n")
		}
	}
	return tokens
}

// WordScore weights newlines low and punctuation lower than letters, and
// gently prefers longer words.
func WordScore(a, b string) float32 {
	if a != b {
		return 0
	}
	if a == "\n" {
		return 0.1
	}
	scale := float32(1)
	if isPunct(a[0]) {
		scale = 0.05
	}
	return max(1e-4, float32(len(a))*scale-1e-3)
}

type lineState uint8

const (
	lineNewline lineState = iota
	lineOpenQuote
	lineText
)

// wordPrinter renders word tokens as quoted lines prefixed with "@ ",
// marking removals as [-x-] and additions as {+x+}.
type wordPrinter struct {
	w     io.StringWriter
	state lineState
}

func (p *wordPrinter) openLine() {
	_, _ = p.w.WriteString("@ \"")
	p.state = lineOpenQuote
}

func (p *wordPrinter) closeLine() {
	_, _ = p.w.WriteString("\"\n")
	p.state = lineNewline
}

func (p *wordPrinter) maybeSpace() {
	switch p.state {
	case lineOpenQuote:
		p.state = lineText
	case lineNewline:
		p.openLine()
		p.state = lineText
	case lineText:
		_, _ = p.w.WriteString(" ")
	}
}

func mark(side Side, s string) string {
	switch side {
	case SideA:
		return "[-" + s + "-]"
	case SideB:
		return "{+" + s + "+}"
	default:
		return s
	}
}

func (p *wordPrinter) token(side Side, x string) {
	if x == "\n" {
		if p.state == lineNewline {
			p.openLine()
		}
		_, _ = p.w.WriteString(mark(side, `\n`))
		if side != SideA {
			p.closeLine()
		}
		return
	}
	p.maybeSpace()
	_, _ = p.w.WriteString(mark(side, x))
}

// PrintWords writes a word-level diff of a and b to w.
func PrintWords(w io.StringWriter, a, b string) {
	p := &wordPrinter{w: w}
	p.openLine()
	Compare(SplitWordLines(a), SplitWordLines(b), WordScore, func(side Side, run []string) {
		for _, x := range run {
			p.token(side, x)
		}
	})
	if p.state != lineNewline {
		p.closeLine()
	}
}
