// Package buffer provides the growable byte buffer that render commands are
// encoded into, and a Reader that walks it back.
//
// All multi-byte values are little-endian. A Buffer is not safe for
// concurrent use; callers serialize access with the owning queue's lock.
package buffer

import (
	"encoding/binary"
	"math"
)

// DefaultCapacity is the initial allocation used when New is given a
// non-positive capacity.
const DefaultCapacity = 32000

// Buffer is an append-only byte buffer with an explicit write position.
//
// The zero value is usable and allocates on first write.
type Buffer struct {
	data []byte
	pos  int
}

// New creates a buffer with the given initial capacity in bytes.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Position returns the number of bytes written since the last Clear.
func (b *Buffer) Position() int { return b.pos }

// Capacity returns the number of bytes currently allocated.
func (b *Buffer) Capacity() int { return len(b.data) }

// Remaining returns the number of bytes that can be written without growing.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Bytes returns the written portion of the buffer. The slice aliases the
// buffer and is only valid until the next write or Clear.
func (b *Buffer) Bytes() []byte { return b.data[:b.pos] }

// Clear resets the write position to zero. Capacity is retained.
func (b *Buffer) Clear() { b.pos = 0 }

// EnsureCapacity grows the buffer so that at least n more bytes fit.
// Growth doubles the allocation until it is large enough.
func (b *Buffer) EnsureCapacity(n int) {
	if n <= b.Remaining() {
		return
	}
	newCap := len(b.data)
	if newCap == 0 {
		newCap = 64
	}
	for newCap-b.pos < n {
		newCap *= 2
	}
	data := make([]byte, newCap)
	copy(data, b.data[:b.pos])
	b.data = data
}

// PutUint8 appends a single byte.
func (b *Buffer) PutUint8(v uint8) {
	b.EnsureCapacity(1)
	b.data[b.pos] = v
	b.pos++
}

// PutUint32 appends v as 4 little-endian bytes.
func (b *Buffer) PutUint32(v uint32) {
	b.EnsureCapacity(4)
	binary.LittleEndian.PutUint32(b.data[b.pos:], v)
	b.pos += 4
}

// PutInt32 appends v as 4 little-endian bytes.
func (b *Buffer) PutInt32(v int32) { b.PutUint32(uint32(v)) }

// PutFloat32 appends the IEEE 754 bits of v.
func (b *Buffer) PutFloat32(v float32) { b.PutUint32(math.Float32bits(v)) }

// PutUint64 appends v as 8 little-endian bytes.
func (b *Buffer) PutUint64(v uint64) {
	b.EnsureCapacity(8)
	binary.LittleEndian.PutUint64(b.data[b.pos:], v)
	b.pos += 8
}

// PutBytes appends p verbatim.
func (b *Buffer) PutBytes(p []byte) {
	b.EnsureCapacity(len(p))
	b.pos += copy(b.data[b.pos:], p)
}

// Pad appends zero bytes until the position is a multiple of align.
func (b *Buffer) Pad(align int) {
	if align <= 1 {
		return
	}
	n := Padding(b.pos, align)
	b.EnsureCapacity(n)
	for i := 0; i < n; i++ {
		b.data[b.pos] = 0
		b.pos++
	}
}

// Padding returns how many bytes must follow pos to reach a multiple of align.
func Padding(pos, align int) int {
	if align <= 1 {
		return 0
	}
	if r := pos % align; r != 0 {
		return align - r
	}
	return 0
}
