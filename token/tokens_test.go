package token

import "testing"

func TestScalarText(t *testing.T) {
	tests := []struct {
		name     string
		scalar   *Scalar
		expected string
	}{
		{"null", NullScalar, "null"},
		{"true", TrueScalar, "true"},
		{"false", FalseScalar, "false"},
		{"integer", NewScalar(Number, []byte("42")), "42"},
		{"negative integer", NewScalar(Number, []byte("-7")), "-7"},
		{"negative zero integer", NewScalar(Number, []byte("-0")), "0"},
		{"large unsigned", NewScalar(Number, []byte("18446744073709551615")), "18446744073709551615"},
		{"exponent", NewScalar(Number, []byte("1.50e3")), "1500.0"},
		{"upper case exponent", NewScalar(Number, []byte("1E2")), "100.0"},
		{"integral fraction", NewScalar(Number, []byte("1.0")), "1.0"},
		{"negative zero float", NewScalar(Number, []byte("-0.0")), "-0.0"},
		{"fraction", NewScalar(Number, []byte("0.250")), "0.25"},
		{"small", NewScalar(Number, []byte("15e-8")), "1.5e-07"},
		{"too large for an integer", NewScalar(Number, []byte("100000000000000000000")), "1e+20"},
		{"out of float range", NewScalar(Number, []byte("1e400")), "1e400"},
		{"plain string", &Scalar{Bytes: []byte(`"svc"`), TypeAndFlags: uint8(String) | UnescapedMask}, "svc"},
		{"escaped string", NewScalar(String, []byte(`"a\"bé\n"`)), "a\"bé\n"},
		{"empty string", NewScalar(String, []byte(`""`)), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scalar.Text(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey([]byte(`"name"`))
	if !key.IsKey() {
		t.Error("expected key flag")
	}
	if key.Type() != String {
		t.Errorf("expected String type, got %v", key.Type())
	}
	if key.ToString() != "name" {
		t.Errorf("expected name, got %q", key.ToString())
	}
}

func TestAccumulatorStream(t *testing.T) {
	acc := NewAccumulatorStream()
	acc.Put(&StartArray{})
	acc.Put(TrueScalar)
	acc.Put(&EndArray{})
	r := acc.Reader()
	for _, expected := range []string{"StartArray", "Scalar(true)", "EndArray"} {
		tok := r.Next()
		if tok == nil || tok.String() != expected {
			t.Fatalf("expected %s, got %v", expected, tok)
		}
	}
	if tok := r.Next(); tok != nil {
		t.Fatalf("expected end of stream, got %v", tok)
	}
	acc.Reset()
	if n := len(acc.GetTokens()); n != 0 {
		t.Fatalf("expected no tokens after Reset, got %d", n)
	}
}
