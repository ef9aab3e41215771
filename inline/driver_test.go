package inline

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/arnodel/flatlog/internal/format"
	"github.com/arnodel/flatlog/rewind"
)

func run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	d := NewDriver(strings.NewReader(input), &format.DefaultPrinter{Writer: &out})
	require.NoError(t, d.Run())
	return out.String()
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "object with array",
			input: `{"a":1,"b":[1,2]}`,
			want:  ".a: 1\n.b[0]: 1\n.b[1]: 2\n",
		},
		{
			name:  "prefix and name",
			input: `log: {"name":"svc","ok":true}` + "\n",
			want:  "log: (name=svc).name: svc\nlog: (name=svc).ok: true\n",
		},
		{
			name:  "invalid json",
			input: "not json { here\n",
			want:  "not json { here\n",
		},
		{
			name:  "invalid json without newline",
			input: "not json { here",
			want:  "not json { here",
		},
		{
			name:  "empty object",
			input: "{}\n",
			want:  ": {}\n",
		},
		{
			name:  "trailing content",
			input: `{"x":1} trailing` + "\n",
			want:  ".x: 1\n{…} trailing\n",
		},
		{
			name:  "trailing content at end of input",
			input: `at {"x":1} end`,
			want:  "at .x: 1\nat {…} end",
		},
		{
			name:  "trailing whitespace only",
			input: "{\"x\":1}  \t \r\nnext\n",
			want:  ".x: 1\nnext\n",
		},
		{
			name:  "no braces",
			input: "plain\n\nlines\r\nlast",
			want:  "plain\n\nlines\r\nlast",
		},
		{
			name:  "brace after another brace is not searched",
			input: "a { b {\"x\":1}\n",
			want:  "a { b {\"x\":1}\n",
		},
		{
			name:  "array after brace is only part of an object",
			input: "[1,2] {\"k\":[]}\n",
			want:  "[1,2] .k: []\n",
		},
		{
			name:  "value on several lines",
			input: "start {\n  \"a\": 1,\n  \"b\": {}\n} done\nafter\n",
			want:  "start .a: 1\nstart .b: {}\nstart {…} done\nafter\n",
		},
		{
			name:  "unterminated value consumes nothing",
			input: "x {\"a\":\nnot json\n{\"b\":2}\n",
			want:  "x {\"a\":\nnot json\n.b: 2\n",
		},
		{
			name:  "unterminated value at end of input",
			input: "x {\"a\": [1,\n2,\n",
			want:  "x {\"a\": [1,\n2,\n",
		},
		{
			name:  "two values on one line",
			input: `{"a":1} {"b":2}` + "\n",
			want:  ".a: 1\n{…} {\"b\":2}\n",
		},
		{
			name:  "numbers are normalized",
			input: "n {\"a\":1.50e3,\"b\":-0,\"c\":1E2,\"d\":1.0}\n",
			want:  "n .a: 1500.0\nn .b: 0\nn .c: 100.0\nn .d: 1.0\n",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, run(t, tt.input))
		})
	}
}

func TestInvalidLinesAreUnchanged(t *testing.T) {
	lines := []string{
		"{\n",
		"{ \"a\" }\n",
		"{\"a\":tru}\n",
		"{\"a\":\"\\q\"}\n",
		"{'single': 1}\n",
		"{\"a\":1,}\n",
		"{\"a\":01}\n",
		"{}}{\n",
	}
	for _, line := range lines {
		input := "before\n" + line + "after {\n"
		want := "before\n"
		if line == "{}}{\n" {
			want += ": {}\n{…}}{\n"
		} else {
			want += line
		}
		want += "after {\n"
		require.Equal(t, want, run(t, input), "input %q", input)
	}
}

func TestRewindAcrossLargeInput(t *testing.T) {
	// The decoder reads ahead in blocks much larger than a line, all of
	// which must be given back.
	var input strings.Builder
	input.WriteString("broken {\"a\": [\n")
	for i := 0; i < 2000; i++ {
		input.WriteString("filler line without json\n")
	}
	input.WriteString("{\"ok\":true} after\n")
	want := strings.Replace(input.String(), "{\"ok\":true} after\n", ".ok: true\n{…} after\n", 1)
	require.Equal(t, want, run(t, input.String()))
}

func TestOneByteReader(t *testing.T) {
	input := "a {\"x\":\n[1,2]}\nb { bad\nc\n"
	var out bytes.Buffer
	d := NewDriver(iotest.OneByteReader(strings.NewReader(input)), &format.DefaultPrinter{Writer: &out})
	require.NoError(t, d.Run())
	require.Equal(t, "a .x[0]: 1\na .x[1]: 2\nb { bad\nc\n", out.String())
}

func TestMaxDepth(t *testing.T) {
	var out bytes.Buffer
	input := `{"a":{"b":{"c":1}}}` + "\n"
	d := NewDriver(strings.NewReader(input), &format.DefaultPrinter{Writer: &out})
	d.MaxDepth = 2
	require.NoError(t, d.Run())
	require.Equal(t, input, out.String())

	out.Reset()
	d = NewDriver(strings.NewReader(input), &format.DefaultPrinter{Writer: &out})
	d.MaxDepth = 3
	require.NoError(t, d.Run())
	require.Equal(t, ".a.b.c: 1\n", out.String())
}

func TestColorizer(t *testing.T) {
	var out bytes.Buffer
	d := NewDriver(strings.NewReader(`p {"n":null}`), &format.DefaultPrinter{Writer: &out})
	d.Colorizer = &format.DefaultColorizer
	require.NoError(t, d.Run())
	require.Equal(t, "\033[34;1mp .n\033[0m: \033[37;2mnull\033[0m\n", out.String())
}

// recordingPrinter records what was printed between flushes.
type recordingPrinter struct {
	current bytes.Buffer
	records []string
}

func (p *recordingPrinter) PrintBytes(b []byte) {
	p.current.Write(b)
}

func (p *recordingPrinter) NewLine() {
	p.current.WriteByte('\n')
}

func (p *recordingPrinter) Flush() {
	p.records = append(p.records, p.current.String())
	p.current.Reset()
}

func TestFlushAfterEachRecord(t *testing.T) {
	p := &recordingPrinter{}
	input := "one\n{\"a\":1,\"b\":2} x\nbad {\nlast"
	require.NoError(t, NewDriver(strings.NewReader(input), p).Run())
	require.Equal(t, []string{
		"one\n",
		".a: 1\n.b: 2\n{…} x\n",
		"bad {\n",
		"last",
	}, p.records)
}

func TestStep(t *testing.T) {
	var out bytes.Buffer
	d := NewDriver(strings.NewReader("a\n{\"b\":\n1}\nc\n"), &format.DefaultPrinter{Writer: &out})
	for _, want := range []string{"a\n", "a\n.b: 1\n", "a\n.b: 1\nc\n"} {
		ok, err := d.Step()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, out.String())
	}
	ok, err := d.Step()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvalidUTF8IsFatal(t *testing.T) {
	var out bytes.Buffer
	d := NewDriver(strings.NewReader("fine\nbad \xff line\nnever\n"), &format.DefaultPrinter{Writer: &out})
	err := d.Run()
	require.ErrorIs(t, err, rewind.ErrInvalidUTF8)
	require.Contains(t, err.Error(), "line 2")
	require.Equal(t, "fine\n", out.String())
}

func TestInvalidUTF8InsideProbeIsNotFatal(t *testing.T) {
	// The value is cut short by bytes on the next line, which the decoder
	// rejects without them being read as a line first.
	input := "{\"a\":\n\"\xff\"}\n"
	var out bytes.Buffer
	d := NewDriver(strings.NewReader(input), &format.DefaultPrinter{Writer: &out})
	ok, err := d.Step()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "{\"a\":\n", out.String())

	_, err = d.Step()
	require.ErrorIs(t, err, rewind.ErrInvalidUTF8)
}

var errBroken = errors.New("connection reset")

type brokenReader struct {
	data string
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, errBroken
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReadErrorDuringProbeIsFatal(t *testing.T) {
	var out bytes.Buffer
	d := NewDriver(&brokenReader{data: "ok\n{\"a\": [1,\n"}, &format.DefaultPrinter{Writer: &out})
	err := d.Run()
	require.ErrorIs(t, err, errBroken)
	require.Contains(t, err.Error(), "reading JSON")
	require.Equal(t, "ok\n", out.String())
}

func TestReadErrorIsFatal(t *testing.T) {
	var out bytes.Buffer
	d := NewDriver(&brokenReader{data: "ok\npartial"}, &format.DefaultPrinter{Writer: &out})
	require.ErrorIs(t, d.Run(), errBroken)
	require.Equal(t, "ok\n", out.String())
}

type failingWriter struct{}

var errClosed = errors.New("closed pipe")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errClosed
}

func TestWriteErrorIsFatal(t *testing.T) {
	for _, input := range []string{"plain\n", "{\"a\":1}\n"} {
		d := NewDriver(strings.NewReader(input), &format.DefaultPrinter{Writer: failingWriter{}})
		err := d.Run()
		require.ErrorIs(t, err, errClosed, "input %q", input)
		var perr *format.PrinterError
		require.ErrorAs(t, err, &perr)
	}
}

func TestReadAllAfterRun(t *testing.T) {
	// Everything in the input is consumed by a run.
	r := strings.NewReader("x {\"a\":\n1\n")
	var out bytes.Buffer
	require.NoError(t, NewDriver(r, &format.DefaultPrinter{Writer: &out}).Run())
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, "x {\"a\":\n1\n", out.String())
}
