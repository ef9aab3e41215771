// Package pathstack provides a growable path buffer with scoped appends.
//
// A recursive walk enters a scope before appending the segment for a child
// node and exits it when the child is done:
//
//	scope := path.Enter()
//	defer scope.Exit()
//	scope.AppendByte('.')
//	scope.AppendString(key)
//
// Exit truncates the buffer to the length it had when the scope was entered,
// so with a deferred Exit the buffer is restored however the function
// returns, including when a panic unwinds through it.
package pathstack

import "strconv"

// Buffer holds a path.  The zero value is an empty path ready to use.
type Buffer struct {
	buf []byte
}

// Reset replaces the contents of the buffer with prefix.  It must not be
// called while a scope is open.
func (b *Buffer) Reset(prefix []byte) {
	b.buf = append(b.buf[:0], prefix...)
}

// Bytes returns the current path.  The slice is only valid until the buffer
// is modified.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) String() string {
	return string(b.buf)
}

func (b *Buffer) Len() int {
	return len(b.buf)
}

// Enter opens a scope at the current end of the buffer.
func (b *Buffer) Enter() Scope {
	return Scope{buf: b, mark: len(b.buf)}
}

// A Scope appends to a Buffer and restores it on Exit.
type Scope struct {
	buf  *Buffer
	mark int
}

func (s Scope) AppendString(str string) {
	s.buf.buf = append(s.buf.buf, str...)
}

func (s Scope) AppendByte(c byte) {
	s.buf.buf = append(s.buf.buf, c)
}

// AppendIndex appends "[i]".
func (s Scope) AppendIndex(i int) {
	b := append(s.buf.buf, '[')
	b = strconv.AppendInt(b, int64(i), 10)
	s.buf.buf = append(b, ']')
}

// Exit truncates the buffer to its length when the scope was entered.
func (s Scope) Exit() {
	s.buf.buf = s.buf.buf[:s.mark]
}
