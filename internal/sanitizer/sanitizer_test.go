package sanitizer

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSanitizeMultiline(t *testing.T) {
	tests := map[string]struct {
		input string
		exp   string
	}{
		"empty":                   {input: "", exp: ""},
		"newline":                 {input: "\n", exp: ""},
		"two newlines":            {input: "\n\n", exp: ""},
		"blank lines with spaces": {input: "\n \n \n", exp: ""},
		"trailing space":          {input: "a ", exp: "a\n"},
		"leading space":           {input: " a", exp: "a\n"},
		"single space kept":       {input: "a b", exp: "a b\n"},
		"double space collapsed":  {input: "a  b", exp: "a b\n"},
		"already clean":           {input: "a\n", exp: "a\n"},
		"leading newline":         {input: "\na\n", exp: "a\n"},
		"leading newline space":   {input: "\na \n", exp: "a\n"},
		"indented":                {input: "\n a\n", exp: "a\n"},
		"inner spaces":            {input: "\na  b\n", exp: "a b\n"},
		"nbsp only":               {input: "\u00a0", exp: ""},
		"nbsp between":            {input: "a \u00a0 b", exp: "a b\n"},
		"missing newline":         {input: "\na", exp: "a\n"},
		"trailing blank line":     {input: "a\n\n", exp: "a\n"},
		"ansi colors":             {input: "\x1b[31ma\x1b[0m", exp: "a\n"},
		"latin":                   {input: "Dúnedain", exp: "Dunedain\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := SanitizeMultiline(tt.input)
			testutil.AssertEqual(t, "output", got, tt.exp)
			testutil.AssertEqual(t, "stable", IsSanitizedMultiline(got), true)
		})
	}
}

func TestSanitizeOneLine(t *testing.T) {
	tests := map[string]struct {
		input string
		exp   string
	}{
		"empty":      {input: "", exp: ""},
		"clean":      {input: "The Fountain Square", exp: "The Fountain Square"},
		"whitespace": {input: "  a \t b\n", exp: "a b"},
		"latin":      {input: "Dúnedain", exp: "Dunedain"},
		"ansi":       {input: "\x1b[1;32mGreen\x1b[0m Room", exp: "Green Room"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := SanitizeOneLine(tt.input)
			testutil.AssertEqual(t, "output", got, tt.exp)
			testutil.AssertEqual(t, "stable", IsSanitizedOneLine(got), true)
		})
	}
}

func TestSanitizeUserSupplied(t *testing.T) {
	tests := map[string]struct {
		input string
		exp   string
	}{
		"empty":             {input: "", exp: ""},
		"keeps non-ascii":   {input: "Dúnedain", exp: "Dúnedain\n"},
		"trailing spaces":   {input: "a  \nb\t\n", exp: "a\nb\n"},
		"keeps indentation": {input: "  a", exp: "  a\n"},
		"keeps blank lines": {input: "a\n\nb\n", exp: "a\n\nb\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := SanitizeUserSupplied(tt.input)
			testutil.AssertEqual(t, "output", got, tt.exp)
			testutil.AssertEqual(t, "stable", IsSanitizedUserSupplied(got), true)
		})
	}
}

func TestSanitizeWordWrapped(t *testing.T) {
	input := "This small height once was a place of death. The Dúnedain never penalized\n" +
		"anyone with death, but orcs hung people in large numbers - a far more\n" +
		"merciful fate than the one that could await you at their torturers in the\n" +
		"dungeons of the old, ruined castle that towers south of here.\n"
	exp := "This small height once was a place of death. The Dunedain never penalized anyone\n" +
		"with death, but orcs hung people in large numbers - a far more merciful fate\n" +
		"than the one that could await you at their torturers in the dungeons of the old,\n" +
		"ruined castle that towers south of here.\n"

	testutil.AssertEqual(t, "wrapped", SanitizeWordWrapped(input, DefaultWidth), exp)
	testutil.AssertEqual(t, "short", SanitizeWordWrapped("Dúnedain", DefaultWidth), "Dunedain\n")
	testutil.AssertEqual(t, "empty", SanitizeWordWrapped(" \n", DefaultWidth), "")
}
