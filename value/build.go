package value

import (
	"errors"
	"fmt"

	"github.com/arnodel/flatlog/token"
)

// ErrEndOfStream is returned by Build when the stream contains no value.
var ErrEndOfStream = errors.New("end of token stream")

// Build reads one complete value from stream.  The stream must be
// well-formed, as produced by the JSON decoder; an error is returned
// otherwise.
func Build(stream token.ReadStream) (Value, error) {
	first := stream.Next()
	if first == nil {
		return nil, ErrEndOfStream
	}
	return build(first, stream)
}

func build(first token.Token, stream token.ReadStream) (Value, error) {
	switch v := first.(type) {
	case *token.Scalar:
		if v.IsKey() {
			return nil, fmt.Errorf("invalid stream: unexpected key %s", v)
		}
		return (*Scalar)(v), nil
	case *token.StartArray:
		return buildArray(stream)
	case *token.StartObject:
		return buildObject(stream)
	default:
		return nil, fmt.Errorf("invalid stream: unexpected %s", first)
	}
}

func buildArray(stream token.ReadStream) (Value, error) {
	arr := Array{}
	for {
		item := stream.Next()
		switch item.(type) {
		case nil:
			return nil, errors.New("stream ended inside array")
		case *token.EndArray:
			return arr, nil
		}
		v, err := build(item, stream)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func buildObject(stream token.ReadStream) (Value, error) {
	obj := &Object{}
	for {
		item := stream.Next()
		var key *token.Scalar
		switch v := item.(type) {
		case nil:
			return nil, errors.New("stream ended inside object - expected key")
		case *token.EndObject:
			return obj, nil
		case *token.Scalar:
			if v.Type() != token.String {
				return nil, fmt.Errorf("invalid stream: object key %s is not a string", v)
			}
			key = v
		default:
			return nil, fmt.Errorf("invalid stream: expected key, got %s", item)
		}
		item = stream.Next()
		if item == nil {
			return nil, errors.New("stream ended inside object - expected value")
		}
		v, err := build(item, stream)
		if err != nil {
			return nil, err
		}
		obj.Set(key.ToString(), v)
	}
}
