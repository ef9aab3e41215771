package json

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/arnodel/flatlog/internal/scanner"
	"github.com/arnodel/flatlog/token"
)

// DefaultMaxDepth is the nesting limit used when Decoder.MaxDepth is 0.
const DefaultMaxDepth = 512

// A Decoder reads JSON values from its input one at a time and streams their
// tokens.
//
// The decoder reads its input in blocks, so after a value has been parsed
// some bytes following it may already have been taken from the input.  They
// are available with Buffered.
type Decoder struct {
	scanr *scanner.Scanner
	depth int

	// MaxDepth is the maximum nesting of arrays and objects accepted.  A
	// value nested deeper results in a *SyntaxError.  If 0, DefaultMaxDepth
	// is used.
	MaxDepth int
}

// NewDecoder sets up a new Decoder instance to read from the given input.
func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{scanr: scanner.NewScanner(in)}
}

// Reset makes the decoder read from in, discarding any buffered input.
func (d *Decoder) Reset(in io.Reader) {
	d.scanr.Reset(in)
	d.depth = 0
}

// Buffered returns the input bytes read by the decoder but not consumed by
// the values parsed so far.  The slice is valid until the next call to
// ParseValue or Reset.
func (d *Decoder) Buffered() []byte {
	return d.scanr.Buffered()
}

// A SyntaxError reports invalid JSON input.  Line and Col are 1-based and
// relative to where the decoder started reading.
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at L%d,C%d: %s", e.Line, e.Col, e.Msg)
}

// ParseValue reads a single JSON value and streams it.  It returns io.EOF if
// the input ends before a value starts, a *SyntaxError if the input is not
// valid JSON, and any other error is an error returned by the input reader.
func (d *Decoder) ParseValue(out token.WriteStream) error {
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == scanner.EOF {
		return io.EOF
	}
	return d.parseValue(out)
}

func (d *Decoder) parseValue(out token.WriteStream) error {
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	switch b {
	case '"':
		s, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		out.Put(s)
		return nil
	case '[':
		return d.parseArray(out)
	case '{':
		return d.parseObject(out)
	case 't':
		err := checkBytes(d.scanr, trueBytes)
		if err != nil {
			return err
		}
		out.Put(token.TrueScalar)
		return nil
	case 'f':
		err := checkBytes(d.scanr, falseBytes)
		if err != nil {
			return err
		}
		out.Put(token.FalseScalar)
		return nil
	case 'n':
		err := checkBytes(d.scanr, nullBytes)
		if err != nil {
			return err
		}
		out.Put(token.NullScalar)
		return nil
	default:
		if b == '-' || b >= '0' && b <= '9' {
			n, err := ParseNumber(d.scanr)
			if err != nil {
				return err
			}
			out.Put(n)
			return nil
		}
		return UnexpectedByte(d.scanr, "unexpected")
	}
}

func (d *Decoder) enter() error {
	maxDepth := d.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if d.depth >= maxDepth {
		pos := d.scanr.CurrentPos()
		return &SyntaxError{
			Line: pos.Line + 1,
			Col:  pos.Col + 1,
			Msg:  fmt.Sprintf("nesting deeper than %d", maxDepth),
		}
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

func (d *Decoder) parseArray(out token.WriteStream) error {
	var b byte
	var err error
	if err = d.enter(); err != nil {
		return err
	}
	defer d.leave()
	err = ExpectByte(d.scanr, '[')
	if err != nil {
		return err
	}
	out.Put(&token.StartArray{})
	b, err = d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == ']' {
		d.scanr.Read()
		out.Put(&token.EndArray{})
		return nil
	}
	for {
		err = d.parseValue(out)
		if err != nil {
			return err
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		switch b {
		case ']':
			d.scanr.Read()
			out.Put(&token.EndArray{})
			return nil
		case ',':
			d.scanr.Read()
		default:
			return UnexpectedByte(d.scanr, "expected ']' or ',', got")
		}
	}
}

func (d *Decoder) parseObject(out token.WriteStream) error {
	var b byte
	var err error
	if err = d.enter(); err != nil {
		return err
	}
	defer d.leave()
	err = ExpectByte(d.scanr, '{')
	if err != nil {
		return err
	}
	out.Put(&token.StartObject{})
	b, err = d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == '}' {
		d.scanr.Read()
		out.Put(&token.EndObject{})
		return nil
	}
	for {
		key, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		key.TypeAndFlags |= token.KeyMask
		out.Put(key)
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		if b != ':' {
			return UnexpectedByte(d.scanr, "expected ':', got")
		}
		d.scanr.Read()
		err = d.parseValue(out)
		if err != nil {
			return err
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		switch b {
		case '}':
			d.scanr.Read()
			out.Put(&token.EndObject{})
			return nil
		case ',':
			d.scanr.Read()
			_, err = d.scanr.SkipSpaceAndPeek()
			if err != nil {
				return err
			}
		default:
			return UnexpectedByte(d.scanr, "expected '}' or ',', got")
		}
	}
}

func ExpectByte(scanr *scanner.Scanner, xb byte) error {
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	if b != xb {
		scanr.Back()
		return UnexpectedByte(scanr, "expected %q, got", xb)
	}
	return nil
}

// UnexpectedByte returns a *SyntaxError describing the next byte in the
// input, or the read error if that byte cannot be read.
func UnexpectedByte(scanr *scanner.Scanner, expected string, args ...interface{}) error {
	pos := scanr.CurrentPos()
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	var msg string
	if b == scanner.EOF {
		msg = fmt.Sprintf("%s: <EOF>", fmt.Sprintf(expected, args...))
	} else {
		msg = fmt.Sprintf("%s: %q", fmt.Sprintf(expected, args...), b)
	}
	return &SyntaxError{Line: pos.Line + 1, Col: pos.Col + 1, Msg: msg}
}

func ParseString(scanr *scanner.Scanner) (*token.Scalar, error) {
	startPos := scanr.StartToken()
	err := ExpectByte(scanr, '"')
	if err != nil {
		scanr.EndToken()
		return nil, err
	}
	isUnescaped := true
	for {
		b, err := scanr.Read()
		if err != nil {
			return nil, err
		}
		switch b {
		case '\\':
			isUnescaped = false
			x, err := scanr.Read()
			if err != nil {
				return nil, err
			}
			switch x {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				continue
			case 'u':
				for i := 0; i < 4; i++ {
					b, err = scanr.Read()
					if err != nil {
						return nil, err
					}
					if !scanner.IsHex(b) {
						scanr.Back()
						return nil, UnexpectedByte(scanr, "expected hex, got")
					}
				}
			default:
				scanr.Back()
				return nil, UnexpectedByte(scanr, "invalid escape character")
			}
		case '"':
			stringBytes := scanr.EndToken()
			if !utf8.Valid(stringBytes) {
				return nil, &SyntaxError{
					Line: startPos.Line + 1,
					Col:  startPos.Col + 1,
					Msg:  "invalid UTF-8 in string",
				}
			}
			scalar := token.NewScalar(token.String, stringBytes)
			if isUnescaped {
				scalar.TypeAndFlags |= token.UnescapedMask
			}
			return scalar, nil
		case scanner.EOF:
			scanr.Back()
			return nil, UnexpectedByte(scanr, "unterminated string")
		default:
			if scanner.IsCtrl(b) {
				scanr.Back()
				return nil, UnexpectedByte(scanr, "invalid control character in string")
			}
		}
	}
}

// ParseNumber parses a JSON number from the scanner.
func ParseNumber(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	var n int
	b, err := scanr.Read()

	// Sign part
	if b == '-' {
		b, err = scanr.Read()
	}
	if err != nil {
		return nil, err
	}

	// Integer part
	if b == '0' {
		b, err = scanr.Read()
		if err != nil {
			return nil, err
		}
	} else if b >= '1' && b <= '9' {
		b, _, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
	} else {
		scanr.Back()
		return nil, UnexpectedByte(scanr, "expected digit, got")
	}

	// Fraction part
	if b == '.' {
		b, n, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scanr.Back()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}

	// Exponent part
	if b == 'e' || b == 'E' {
		b, err = scanr.Peek()
		if err != nil {
			return nil, err
		}
		if b == '-' || b == '+' {
			scanr.Read()
		}
		_, n, err = ReadDigits(scanr)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scanr.Back()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}
	scanr.Back()
	return token.NewScalar(token.Number, scanr.EndToken()), nil
}

func ReadDigits(scanr *scanner.Scanner) (byte, int, error) {
	var n int
	for {
		b, err := scanr.Read()
		if err != nil {
			return 0, n, err
		}
		if !scanner.IsDigit(b) {
			return b, n, nil
		}
		n++
	}
}

func checkBytes(scanr *scanner.Scanner, expected []byte) error {
	for _, xb := range expected {
		if err := ExpectByte(scanr, xb); err != nil {
			return err
		}
	}
	return nil
}

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)
