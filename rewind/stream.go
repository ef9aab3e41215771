// Package rewind implements a byte stream that can be pushed back into and
// rewound to a checkpoint.
//
// A Stream is meant for speculative parsing: take a checkpoint with
// ForgetPast, let a parser consume as much as it needs, then either keep the
// result (ForgetPast again) or undo every read since the checkpoint with
// Rewind.  Bytes can also be handed back explicitly with Unread.
//
// A Stream is not safe for concurrent use and must have a single consumer at
// a time.
package rewind

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by ReadLine when the line it read is not valid
// UTF-8.  It is a data error, not an error of the underlying reader.
var ErrInvalidUTF8 = errors.New("line is not valid UTF-8")

// Stream wraps a reader, adding push-back and checkpoint/rewind.
type Stream struct {
	reader *bufio.Reader

	// Bytes to deliver before reading from reader, front first, are
	// buf[start:].  buf[:start] is free space for Unread.
	buf   []byte
	start int

	// Bytes delivered since the last checkpoint.
	past []byte
}

// Buffers whose capacity exceeds this are released once they are mostly
// unused.
const maxRetainedCap = 64 * 1024

var _ io.Reader = &Stream{}

// NewStream returns a Stream reading from r.
func NewStream(r io.Reader) *Stream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Stream{reader: br}
}

// Unread pushes b to the front of the stream, so the next reads return b
// before anything else.  The contents of b are copied.
func (s *Stream) Unread(b []byte) {
	if len(b) == 0 {
		return
	}
	if len(b) > s.start {
		// Grow so that the pending bytes end up at the back of the new
		// buffer, leaving room in front for as much again.
		pending := s.pending()
		n := len(b) + len(pending)
		buf := make([]byte, 2*n)
		copy(buf[2*n-len(pending):], pending)
		s.buf = buf
		s.start = 2*n - len(pending)
	}
	s.start -= len(b)
	copy(s.buf[s.start:], b)
}

func (s *Stream) pending() []byte {
	return s.buf[s.start:]
}

// consume drops the first n pending bytes.
func (s *Stream) consume(n int) {
	s.start += n
	if s.start < len(s.buf) {
		return
	}
	if cap(s.buf) > maxRetainedCap {
		s.buf, s.start = nil, 0
		return
	}
	s.buf = s.buf[:cap(s.buf)]
	s.start = len(s.buf)
}

// ForgetPast sets a checkpoint at the current position.  Later calls to
// Rewind go back to this position.
func (s *Stream) ForgetPast() {
	if cap(s.past) > maxRetainedCap && len(s.past) < cap(s.past)/4 {
		s.past = nil
		return
	}
	s.past = s.past[:0]
}

// Rewind undoes all reads since the last checkpoint: the bytes they returned
// will be returned again, in the same order, by the next reads.  The
// checkpoint itself is kept, so rewinding twice in a row is the same as
// rewinding once.
func (s *Stream) Rewind() {
	s.Unread(s.past)
	s.ForgetPast()
}

// Pending returns the number of bytes pushed back and not read again yet.
func (s *Stream) Pending() int {
	return len(s.buf) - s.start
}

// Read implements io.Reader.  If there are pending bytes, only those are
// returned, otherwise it reads from the underlying reader.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var n int
	var err error
	if s.Pending() > 0 {
		n = copy(p, s.pending())
		s.consume(n)
	} else {
		n, err = s.reader.Read(p)
	}
	s.past = append(s.past, p[:n]...)
	return n, err
}

// ReadLine appends the next line, including its terminating '\n' if there is
// one, to dst and returns the extended slice.  The last line of the input
// may have no terminator.  io.EOF is returned only if the input is exhausted
// and nothing was appended.
//
// If the line is not valid UTF-8 it is still appended and consumed, and
// ErrInvalidUTF8 is returned.
func (s *Stream) ReadLine(dst []byte) ([]byte, error) {
	start := len(dst)
	dst, err := s.readLine(dst)
	line := dst[start:]
	s.past = append(s.past, line...)
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			err = nil
		} else {
			return dst, err
		}
	}
	if !utf8.Valid(line) {
		return dst, ErrInvalidUTF8
	}
	return dst, nil
}

func (s *Stream) readLine(dst []byte) ([]byte, error) {
	if pending := s.pending(); len(pending) > 0 {
		if i := bytes.IndexByte(pending, '\n'); i >= 0 {
			dst = append(dst, pending[:i+1]...)
			s.consume(i + 1)
			return dst, nil
		}
		dst = append(dst, pending...)
		s.consume(len(pending))
	}
	for {
		chunk, err := s.reader.ReadSlice('\n')
		dst = append(dst, chunk...)
		if err != bufio.ErrBufferFull {
			return dst, err
		}
	}
}
