package listener

import (
	"bytes"
	"io"
)

var (
	crlf = []byte("\r\n")
	cr   = []byte("\r")
	lf   = []byte("\n")
)

// lineEndings adapts a network stream to the console, which only deals in
// \n. Input \r\n and bare \r become \n; output \n becomes \r\n.
type lineEndings struct {
	rw io.ReadWriter
	// pendingCR is set when the previous read ended on \r so a \n starting
	// the next read is dropped instead of producing an empty line.
	pendingCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (l *lineEndings) Read(p []byte) (int, error) {
	for {
		n, err := l.rw.Read(p)
		if n == 0 {
			return 0, err
		}

		data := p[:n]
		if l.pendingCR && data[0] == '\n' {
			data = data[1:]
		}
		l.pendingCR = len(data) > 0 && data[len(data)-1] == '\r'

		data = bytes.ReplaceAll(data, crlf, lf)
		data = bytes.ReplaceAll(data, cr, lf)
		n = copy(p, data)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (l *lineEndings) Write(p []byte) (int, error) {
	if _, err := l.rw.Write(bytes.ReplaceAll(p, lf, crlf)); err != nil {
		return 0, err
	}
	return len(p), nil
}
