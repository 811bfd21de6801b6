package op

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/rq/buffer"
)

// ErrCorrupt is returned by Decode when the buffer does not hold a valid
// record stream.
var ErrCorrupt = errors.New("op: corrupt command buffer")

// maxPolygonPoints bounds the vertex count accepted by Decode so a corrupt
// length field cannot trigger a huge allocation.
const maxPolygonPoints = 1 << 20

// Encode appends c to b. The caller must hold the lock of the queue that owns b.
// Capacity is reserved for the whole record before any field is written.
func Encode(b *buffer.Buffer, c Command) {
	if t, ok := c.(DrawText); ok {
		t.Text = norm.NFC.String(t.Text)
		c = t
	}
	if a, ok := c.(interface{ fieldAlignment() int }); ok {
		AlignRecord(b, 4, a.fieldAlignment())
	}
	b.EnsureCapacity(c.size())
	b.PutInt32(int32(c.Opcode()))
	c.put(b)
}

// AlignRecord pads b with Nop records until position+offset is a multiple
// of align, and returns the number of bytes written. align must be a
// multiple of 4.
func AlignRecord(b *buffer.Buffer, offset, align int) int {
	pad := buffer.Padding(b.Position()+offset, align)
	for i := 0; i < pad; i += 4 {
		b.PutInt32(int32(OpNop))
	}
	return pad
}

// Decode walks the records in p in encode order and calls fn with each
// record's byte offset and decoded command. Nop records are skipped.
// Decoding stops at the first error returned by fn.
func Decode(p []byte, fn func(offset int, c Command) error) error {
	r := buffer.NewReader(p)
	for r.Len() > 0 {
		off := r.Offset()
		code := Opcode(r.Int32())
		c, err := decodeRecord(r, code)
		if err != nil {
			return fmt.Errorf("%w: %v at offset %d", ErrCorrupt, err, off)
		}
		if r.Err() != nil {
			return fmt.Errorf("%w: truncated %s record at offset %d", ErrCorrupt, code, off)
		}
		if c == nil {
			continue
		}
		if err := fn(off, c); err != nil {
			return err
		}
	}
	return r.Err()
}

func decodeRecord(r *buffer.Reader, code Opcode) (Command, error) {
	switch code {
	case OpNop:
		return nil, nil
	case OpSync:
		return Sync{}, nil
	case OpResetClip:
		return ResetClip{}, nil
	case OpClear:
		return Clear{R: r.Uint8(), G: r.Uint8(), B: r.Uint8(), A: r.Uint8()}, nil
	case OpSetColor:
		return SetColor{R: r.Uint8(), G: r.Uint8(), B: r.Uint8(), A: r.Uint8()}, nil
	case OpFillRect:
		return FillRect{X: r.Int32(), Y: r.Int32(), W: r.Int32(), H: r.Int32()}, nil
	case OpSetClip:
		return SetClip{X: r.Int32(), Y: r.Int32(), W: r.Int32(), H: r.Int32()}, nil
	case OpDrawLine:
		return DrawLine{X1: r.Float32(), Y1: r.Float32(), X2: r.Float32(), Y2: r.Float32(), Width: r.Float32()}, nil
	case OpFillPolygon:
		n := r.Uint32()
		if n > maxPolygonPoints || int(n)*8 > r.Len() {
			return nil, fmt.Errorf("polygon with %d points", n)
		}
		pts := make([]Point, n)
		for i := range pts {
			pts[i] = Point{X: r.Float32(), Y: r.Float32()}
		}
		return FillPolygon{Points: pts}, nil
	case OpDrawText:
		t := DrawText{X: r.Float32(), Y: r.Float32(), Size: r.Float32(), Align: Align(r.Uint32())}
		n := r.Uint32()
		if int64(n) > int64(r.Len()) {
			return nil, fmt.Errorf("text of %d bytes", n)
		}
		t.Text = string(r.Bytes(int(n)))
		r.Skip(4)
		return t, nil
	case OpDispose:
		if r.Offset()%8 != 0 {
			return nil, errors.New("misaligned dispose handle")
		}
		return Dispose{Handle: r.Uint64()}, nil
	default:
		return nil, fmt.Errorf("unknown opcode %d", int32(code))
	}
}

// Dump renders the records in p as one line per record, for logs and tests.
func Dump(p []byte) (string, error) {
	var sb strings.Builder
	err := Decode(p, func(off int, c Command) error {
		fmt.Fprintf(&sb, "%04d %s %+v\n", off, c.Opcode(), c)
		return nil
	})
	return sb.String(), err
}
