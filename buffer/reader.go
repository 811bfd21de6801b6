package buffer

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is reported by a Reader that ran past the end of its input.
var ErrShortBuffer = errors.New("buffer: read past end of data")

// Reader decodes values written by Buffer.
//
// Errors are sticky: once a read runs short, every later read returns the
// zero value and Err reports ErrShortBuffer.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a Reader over p.
func NewReader(p []byte) *Reader {
	return &Reader{data: p}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Len() < n {
		r.err = ErrShortBuffer
		r.pos = len(r.data)
		return nil
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n
	return p
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	p := r.take(1)
	if p == nil {
		return 0
	}
	return p[0]
}

// Uint32 reads 4 little-endian bytes.
func (r *Reader) Uint32() uint32 {
	p := r.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

// Int32 reads 4 little-endian bytes as a signed value.
func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

// Float32 reads an IEEE 754 single.
func (r *Reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

// Uint64 reads 8 little-endian bytes.
func (r *Reader) Uint64() uint64 {
	p := r.take(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

// Bytes reads n bytes. The result aliases the underlying data.
func (r *Reader) Bytes(n int) []byte { return r.take(n) }

// Skip discards padding up to the next multiple of align.
func (r *Reader) Skip(align int) {
	r.take(Padding(r.pos, align))
}
