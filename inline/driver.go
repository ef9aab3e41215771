// Package inline finds JSON embedded in lines of text and flattens it.
//
// Each input line is scanned for a '{'.  If the bytes from there on are a
// valid JSON value, possibly spanning several lines, the value is flattened
// (see package flatten) using the text before the '{' as the path prefix.  If
// anything other than whitespace follows the value on its last line, a
// summary line "<prefix>{…}<rest of line>" is printed after the flattened
// value.  All other lines are copied to the output unchanged.
package inline

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arnodel/flatlog/encoding/json"
	"github.com/arnodel/flatlog/flatten"
	"github.com/arnodel/flatlog/internal/debug"
	"github.com/arnodel/flatlog/internal/format"
	"github.com/arnodel/flatlog/pathstack"
	"github.com/arnodel/flatlog/rewind"
	"github.com/arnodel/flatlog/token"
	"github.com/arnodel/flatlog/value"
)

// A Driver reads lines from its input and prints them, flattening embedded
// JSON values.  Output is flushed after each record.
type Driver struct {
	// Colorizer is used to print flattened values, it may be nil.
	Colorizer *format.Colorizer

	// MaxDepth limits the nesting of embedded JSON values.  Deeper values are
	// treated as invalid JSON.  If 0, json.DefaultMaxDepth is used.
	MaxDepth int

	stream  *rewind.Stream
	printer format.Printer
	decoder *json.Decoder
	tokens  *token.AccumulatorStream
	path    pathstack.Buffer
	line    []byte
	rest    []byte
	lineno  int
}

// NewDriver returns a Driver reading from in and printing to p.
func NewDriver(in io.Reader, p format.Printer) *Driver {
	stream := rewind.NewStream(in)
	return &Driver{
		stream:  stream,
		printer: p,
		decoder: json.NewDecoder(stream),
		tokens:  token.NewAccumulatorStream(),
	}
}

// Run processes the whole input.  It returns nil when the input is
// exhausted.  Errors reading the input, lines which are not valid UTF-8 and
// errors writing the output stop the run.
func (d *Driver) Run() error {
	for {
		ok, err := d.Step()
		if err != nil || !ok {
			return err
		}
	}
}

// Step processes one line of input, or several if it starts a JSON value
// spanning several lines.  It returns false when the input is exhausted.
func (d *Driver) Step() (ok bool, err error) {
	defer format.CatchPrinterError(&err)
	d.line, err = d.stream.ReadLine(d.line[:0])
	if err == io.EOF {
		return false, nil
	}
	d.lineno++
	if err != nil {
		return false, fmt.Errorf("line %d: %w", d.lineno, err)
	}
	d.stream.ForgetPast()

	bracePos := bytes.IndexByte(d.line, '{')
	if bracePos < 0 {
		d.printVerbatim()
		return true, nil
	}

	// Let the decoder read the value from the stream rather than from the
	// line, as it may continue on the following lines.
	d.stream.Unread(d.line[bracePos:])
	v, err := d.probe()
	switch {
	case err == nil:
		d.stream.ForgetPast()
		if err := d.printFlattened(d.line[:bracePos], v); err != nil {
			return false, err
		}
		return true, nil
	case isDataError(err):
		debug.Printf("line %d: not JSON: %s", d.lineno, err)
		d.stream.Rewind()
		d.printVerbatim()
		// Consume the part of the line that was given back to the stream.
		if d.rest, err = d.stream.ReadLine(d.rest[:0]); err != nil {
			return false, fmt.Errorf("line %d: %w", d.lineno, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("line %d: reading JSON: %w", d.lineno, err)
	}
}

// probe parses one JSON value from the stream.  On success, the bytes the
// decoder read past the end of the value are given back to the stream.
func (d *Driver) probe() (value.Value, error) {
	d.decoder.Reset(d.stream)
	d.decoder.MaxDepth = d.MaxDepth
	d.tokens.Reset()
	if err := d.decoder.ParseValue(d.tokens); err != nil {
		return nil, err
	}
	d.stream.Unread(d.decoder.Buffered())
	debug.Printf("line %d: parsed %d JSON tokens", d.lineno, len(d.tokens.GetTokens()))
	return value.Build(d.tokens.Reader())
}

func isDataError(err error) bool {
	var syntaxErr *json.SyntaxError
	return errors.As(err, &syntaxErr) || errors.Is(err, io.EOF)
}

func (d *Driver) printVerbatim() {
	d.printer.PrintBytes(d.line)
	d.printer.Flush()
}

func (d *Driver) printFlattened(prefix []byte, v value.Value) error {
	d.path.Reset(prefix)
	f := flatten.Flattener{Printer: d.printer, Colorizer: d.Colorizer}
	if err := f.Flatten(&d.path, v); err != nil {
		return err
	}

	// The rest of the line the value ended on.
	var err error
	d.rest, err = d.stream.ReadLine(d.rest[:0])
	if err != nil && err != io.EOF {
		return fmt.Errorf("line %d: %w", d.lineno, err)
	}
	if len(bytes.TrimSpace(d.rest)) > 0 {
		d.printer.PrintBytes(prefix)
		d.printer.PrintBytes(elidedValueBytes)
		d.printer.PrintBytes(d.rest)
	}
	d.printer.Flush()
	return nil
}

var elidedValueBytes = []byte("{…}")
