// Package stripprefix factors out the longest prefix common to all lines of
// a text.
//
// It is meant to post-process flattened output, where all the lines of a
// record share their leading path:
//
//	svc: (name=api).port: 80
//	svc: (name=api).tls.enabled: true
//
// becomes
//
//	svc: (name=api)
//	    .port: 80
//	    .tls.enabled: true
package stripprefix

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/arnodel/flatlog/internal/format"
)

// ErrInvalidUTF8 is returned by Strip when its input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// Lines splits text into lines.  Line terminators are "\n" or "\r\n" and are
// not included.  A terminator at the end of text does not start a new line.
func Lines(text string) []string {
	var lines []string
	for text != "" {
		line, rest, _ := strings.Cut(text, "\n")
		lines = append(lines, strings.TrimSuffix(line, "\r"))
		text = rest
	}
	return lines
}

// CommonPrefix returns the longest prefix shared by all lines.  The prefix
// never ends in the middle of a UTF-8 sequence.  It returns "" if there are no
// lines.
func CommonPrefix(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	prefix := lines[0]
	for _, line := range lines[1:] {
		n := 0
		for n < len(prefix) && n < len(line) && prefix[n] == line[n] {
			n++
		}
		prefix = prefix[:n]
	}
	for len(prefix) > 0 && !utf8.ValidString(prefix) {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}

// Strip reads all of r and writes to w the prefix common to all its lines,
// with one trailing '.' removed, on a line of its own.  Then each input line
// follows, indented by four spaces and with the prefix removed.  Nothing is
// written if the input is empty.
func Strip(r io.Reader, w io.Writer) (err error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if !utf8.Valid(input) {
		return ErrInvalidUTF8
	}
	lines := Lines(string(input))
	if len(lines) == 0 {
		return nil
	}
	prefix := strings.TrimSuffix(CommonPrefix(lines), ".")

	out := bufio.NewWriter(w)
	p := &format.DefaultPrinter{Writer: out, Flusher: out}
	defer format.CatchPrinterError(&err)
	p.PrintBytes([]byte(prefix))
	p.NewLine()
	for _, line := range lines {
		p.PrintBytes(indentBytes)
		p.PrintBytes([]byte(line[len(prefix):]))
		p.NewLine()
	}
	p.Flush()
	return nil
}

var indentBytes = []byte("    ")
