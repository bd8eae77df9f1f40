package console

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var ErrTooManyTries = errors.New("too many tries")

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func WithValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// prompter reads lines from a session. The reader is shared across prompts
// so input buffered by one read is not lost to the next.
type prompter struct {
	w  io.Writer
	br *bufio.Reader
}

func newPrompter(rw io.ReadWriter) *prompter {
	return &prompter{w: rw, br: bufio.NewReader(rw)}
}

// ReadLine returns the next input line without its line ending. A final line
// without a newline is returned before io.EOF.
func (p *prompter) ReadLine() (string, error) {
	line, err := p.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) Prompt(prompt string, opts ...promptOption) (string, error) {
	cfg := &promptConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	tries := 0
	for {
		if _, err := io.WriteString(p.w, prompt); err != nil {
			return "", err
		}

		input, err := p.ReadLine()
		if err != nil {
			return "", err
		}

		if cfg.validator != nil {
			if ok, msg := cfg.validator(input); !ok {
				if _, err := io.WriteString(p.w, msg); err != nil {
					return "", err
				}
				tries++
				if cfg.tries > 0 && tries >= cfg.tries {
					return "", ErrTooManyTries
				}
				continue
			}
		}

		return input, nil
	}
}

func (p *prompter) PromptYN(prompt string) (bool, error) {
	str, err := p.Prompt(prompt, WithValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(strings.TrimSpace(str)) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "Enter 'yes' or 'no'.\n"
			}
		},
	))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(str)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
