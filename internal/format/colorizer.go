package format

import "github.com/arnodel/flatlog/token"

// A Colorizer surrounds parts of the output with ANSI escape codes.  A nil
// *Colorizer prints everything uncoloured.
type Colorizer struct {
	PathColorCode    []byte
	ScalarColorCodes [4][]byte
	ResetCode        []byte
}

func (c *Colorizer) ScalarColorCode(scalar *token.Scalar) []byte {
	return c.ScalarColorCodes[scalar.Type()]
}

// PrintPath prints a flattened path.
func (c *Colorizer) PrintPath(p Printer, path []byte) {
	if c != nil {
		p.PrintBytes(c.PathColorCode)
	}
	p.PrintBytes(path)
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

// PrintScalar prints the natural textual form of scalar (see
// token.Scalar.Text).
func (c *Colorizer) PrintScalar(p Printer, scalar *token.Scalar) {
	if c != nil {
		p.PrintBytes(c.ScalarColorCode(scalar))
	}
	switch {
	case scalar.Type() == token.String && scalar.IsUnescaped():
		p.PrintBytes(scalar.Bytes[1 : len(scalar.Bytes)-1])
	case scalar.Type() == token.String || scalar.Type() == token.Number:
		p.PrintBytes([]byte(scalar.Text()))
	default:
		p.PrintBytes(scalar.Bytes)
	}
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	Yellow = []byte("\033[33m")
	White  = []byte("\033[37m")
	Green  = []byte("\033[32m")

	DimWhite   = []byte("\033[37;2m")
	BrightBlue = []byte("\033[34;1m")
)

// DefaultColorizer uses the same colours as jp.
var DefaultColorizer = Colorizer{
	ScalarColorCodes: [4][]byte{DimWhite, Yellow, White, Green},
	PathColorCode:    BrightBlue,
	ResetCode:        Reset,
}
