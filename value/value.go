// Package value provides an in-memory JSON value tree.  Objects remember the
// order in which their keys were parsed.
package value

import (
	"fmt"

	"github.com/arnodel/flatlog/token"
)

// Kind identifies the kind of a Value.
type Kind uint8

const (
	NullKind Kind = iota
	BooleanKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

var kindNames = [...]string{"null", "boolean", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// A Value is either a *Scalar, an Array or an *Object.
type Value interface {
	Kind() Kind
}

// Scalar is a null, boolean, number or string value.
type Scalar token.Scalar

var _ Value = &Scalar{}

func (s *Scalar) Kind() Kind {
	switch s.Token().Type() {
	case token.Null:
		return NullKind
	case token.Boolean:
		return BooleanKind
	case token.Number:
		return NumberKind
	default:
		return StringKind
	}
}

func (s *Scalar) Token() *token.Scalar {
	return (*token.Scalar)(s)
}

// Text returns the natural textual form of the scalar (see token.Scalar.Text).
func (s *Scalar) Text() string {
	return s.Token().Text()
}

// Array is an ordered list of values.
type Array []Value

var _ Value = Array(nil)

func (a Array) Kind() Kind {
	return ArrayKind
}

// A Member is a key/value pair in an object.
type Member struct {
	Key   string
	Value Value
}

// Object maps unique keys to values.  Members are in parse order.
type Object struct {
	Members []Member
	index   map[string]int
}

var _ Value = &Object{}

func (o *Object) Kind() Kind {
	return ObjectKind
}

func (o *Object) Len() int {
	return len(o.Members)
}

// Get returns the value associated with key.
func (o *Object) Get(key string) (Value, bool) {
	if o.index != nil {
		i, ok := o.index[key]
		if !ok {
			return nil, false
		}
		return o.Members[i].Value, true
	}
	for _, m := range o.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// GetString returns the value associated with key if it is a string.
func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(*Scalar)
	if !ok || s.Kind() != StringKind {
		return "", false
	}
	return s.Text(), true
}

// Set associates v with key.  If key is already present its value is replaced
// and it keeps its position, otherwise it is appended.
func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
		for i, m := range o.Members {
			o.index[m.Key] = i
		}
	}
	if i, ok := o.index[key]; ok {
		o.Members[i].Value = v
		return
	}
	o.index[key] = len(o.Members)
	o.Members = append(o.Members, Member{Key: key, Value: v})
}
