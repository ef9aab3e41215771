package token

// A ReadStream yields tokens one at a time.  Next returns nil when the stream
// is exhausted.
type ReadStream interface {
	Next() Token
}

// A WriteStream accepts tokens one at a time.
type WriteStream interface {
	Put(Token)
}

type SliceReadStream struct {
	toks []Token
}

var _ ReadStream = &SliceReadStream{}

func NewSliceReadStream(toks []Token) *SliceReadStream {
	return &SliceReadStream{toks: toks}
}

func (r *SliceReadStream) Next() (tok Token) {
	if len(r.toks) > 0 {
		tok = r.toks[0]
		r.toks = r.toks[1:]
	}
	return
}

// AccumulatorStream is a WriteStream which records the tokens it is given so
// they can be read back with Reader.  Reset makes it reusable without
// reallocating.
type AccumulatorStream struct {
	toks []Token
}

var _ WriteStream = &AccumulatorStream{}

func NewAccumulatorStream() *AccumulatorStream {
	return &AccumulatorStream{}
}

func (w *AccumulatorStream) Put(tok Token) {
	w.toks = append(w.toks, tok)
}

func (w *AccumulatorStream) GetTokens() []Token {
	return w.toks
}

// Reader returns a ReadStream over the accumulated tokens.
func (w *AccumulatorStream) Reader() *SliceReadStream {
	return NewSliceReadStream(w.toks)
}

func (w *AccumulatorStream) Reset() {
	clear(w.toks)
	w.toks = w.toks[:0]
}
