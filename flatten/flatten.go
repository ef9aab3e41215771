// Package flatten turns a JSON value into "path: value" lines, one per leaf.
//
// Paths are built from object keys, as in ".key", and array indices, as in
// "[0]".  Scalars are leaves, and so are empty objects and arrays, which are
// printed as {} and [].  When an object has a "name" member whose value is a
// string, "(name=<value>)" is added to the path of its members so that items
// of a list can be told apart.  For example
//
//	{"a": 1, "b": [{"name": "x", "ok": true}, []]}
//
// is flattened to
//
//	.a: 1
//	.b[0](name=x).name: x
//	.b[0](name=x).ok: true
//	.b[1]: []
package flatten

import (
	"fmt"

	"github.com/arnodel/flatlog/internal/format"
	"github.com/arnodel/flatlog/pathstack"
	"github.com/arnodel/flatlog/value"
)

// A Flattener writes flattened values using its Printer.
type Flattener struct {
	Printer   format.Printer
	Colorizer *format.Colorizer
}

// Flatten writes one line per leaf of v.  The paths start with the current
// contents of path, which is left unchanged when Flatten returns.
//
// An error is returned if the Printer could not write its output.
func (f *Flattener) Flatten(path *pathstack.Buffer, v value.Value) (err error) {
	defer format.CatchPrinterError(&err)
	f.writeValue(path, v)
	return nil
}

func (f *Flattener) writeValue(path *pathstack.Buffer, v value.Value) {
	switch x := v.(type) {
	case *value.Object:
		f.writeObject(path, x)
	case value.Array:
		f.writeArray(path, x)
	case *value.Scalar:
		f.writeLeaf(path, x)
	default:
		panic(fmt.Sprintf("invalid value: %#v", v))
	}
}

func (f *Flattener) writeObject(path *pathstack.Buffer, obj *value.Object) {
	if obj.Len() == 0 {
		f.writeEmpty(path, emptyObjectBytes)
		return
	}
	scope := path.Enter()
	defer scope.Exit()
	if name, ok := obj.GetString("name"); ok {
		scope.AppendString("(name=")
		scope.AppendString(name)
		scope.AppendByte(')')
	}
	for _, m := range obj.Members {
		f.writeMember(path, m)
	}
}

func (f *Flattener) writeMember(path *pathstack.Buffer, m value.Member) {
	scope := path.Enter()
	defer scope.Exit()
	scope.AppendByte('.')
	scope.AppendString(m.Key)
	f.writeValue(path, m.Value)
}

func (f *Flattener) writeArray(path *pathstack.Buffer, arr value.Array) {
	if len(arr) == 0 {
		f.writeEmpty(path, emptyArrayBytes)
		return
	}
	for i, item := range arr {
		f.writeItem(path, i, item)
	}
}

func (f *Flattener) writeItem(path *pathstack.Buffer, i int, item value.Value) {
	scope := path.Enter()
	defer scope.Exit()
	scope.AppendIndex(i)
	f.writeValue(path, item)
}

func (f *Flattener) writeLeaf(path *pathstack.Buffer, s *value.Scalar) {
	f.Colorizer.PrintPath(f.Printer, path.Bytes())
	f.Printer.PrintBytes(pathValueSeparatorBytes)
	f.Colorizer.PrintScalar(f.Printer, s.Token())
	f.Printer.NewLine()
}

func (f *Flattener) writeEmpty(path *pathstack.Buffer, empty []byte) {
	f.Colorizer.PrintPath(f.Printer, path.Bytes())
	f.Printer.PrintBytes(pathValueSeparatorBytes)
	f.Printer.PrintBytes(empty)
	f.Printer.NewLine()
}

var (
	pathValueSeparatorBytes = []byte(": ")
	emptyObjectBytes        = []byte("{}")
	emptyArrayBytes         = []byte("[]")
)
