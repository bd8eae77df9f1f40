package console

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestPrompter_Prompt(t *testing.T) {
	digits := WithValidator(func(s string) (bool, string) {
		if s == "" || strings.Trim(s, "0123456789") != "" {
			return false, "digits only\n"
		}
		return true, ""
	})

	tests := map[string]struct {
		input  string
		opts   []promptOption
		exp    string
		expOut string
		expErr error
	}{
		"no validator": {
			input:  "anything\n",
			exp:    "anything",
			expOut: "? ",
		},
		"crlf input": {
			input:  "north\r\n",
			exp:    "north",
			expOut: "? ",
		},
		"retry until valid": {
			input:  "abc\n42\n",
			opts:   []promptOption{digits},
			exp:    "42",
			expOut: "? digits only\n? ",
		},
		"too many tries": {
			input:  "a\nb\n1\n",
			opts:   []promptOption{digits, WithMaxTries(2)},
			expErr: ErrTooManyTries,
			expOut: "? digits only\n? digits only\n",
		},
		"eof": {
			input:  "",
			expErr: io.EOF,
			expOut: "? ",
		},
		"last line without newline": {
			input:  "quit",
			exp:    "quit",
			expOut: "? ",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			conn := &scriptConn{Reader: strings.NewReader(tt.input)}
			got, err := newPrompter(conn).Prompt("? ", tt.opts...)
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "input", got, tt.exp)
			testutil.AssertEqual(t, "output", conn.out.String(), tt.expOut)
		})
	}
}

func TestPrompter_SharedBuffer(t *testing.T) {
	conn := &scriptConn{Reader: strings.NewReader("first\nsecond\n")}
	p := newPrompter(conn)

	a, err := p.Prompt("> ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.Prompt("> ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "first", a, "first")
	testutil.AssertEqual(t, "second", b, "second")
}

func TestPrompter_PromptYN(t *testing.T) {
	tests := map[string]struct {
		input string
		exp   bool
	}{
		"yes":            {input: "yes\n", exp: true},
		"short yes":      {input: "Y\n", exp: true},
		"no":             {input: "no\n", exp: false},
		"retry then yes": {input: "maybe\ny\n", exp: true},
		"padded answer":  {input: "  n \n", exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			conn := &scriptConn{Reader: strings.NewReader(tt.input)}
			got, err := newPrompter(conn).PromptYN("sure? ")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "answer", got, tt.exp)
		})
	}
}
