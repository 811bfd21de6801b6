package op

import (
	"image/color"

	"github.com/gogpu/rq/buffer"
)

// Command is implemented by every record type.
type Command interface {
	// Opcode returns the record's opcode.
	Opcode() Opcode

	// size is the encoded length in bytes, opcode included.
	size() int

	// put writes the fields that follow the opcode.
	put(b *buffer.Buffer)
}

// Sync is a barrier record. Executors treat it as a no-op; its purpose is to
// give a synchronous flush something to drain.
type Sync struct{}

func (Sync) Opcode() Opcode     { return OpSync }
func (Sync) size() int          { return 4 }
func (Sync) put(*buffer.Buffer) {}

// ResetClip removes the clip rectangle.
type ResetClip struct{}

func (ResetClip) Opcode() Opcode     { return OpResetClip }
func (ResetClip) size() int          { return 4 }
func (ResetClip) put(*buffer.Buffer) {}

// Clear fills the whole target, ignoring the clip.
type Clear struct {
	R, G, B, A uint8
}

func (Clear) Opcode() Opcode { return OpClear }
func (Clear) size() int      { return 8 }
func (c Clear) put(b *buffer.Buffer) {
	putRGBA(b, c.R, c.G, c.B, c.A)
}

// RGBA returns the clear color.
func (c Clear) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// SetColor sets the color used by subsequent drawing records.
type SetColor struct {
	R, G, B, A uint8
}

func (SetColor) Opcode() Opcode { return OpSetColor }
func (SetColor) size() int      { return 8 }
func (c SetColor) put(b *buffer.Buffer) {
	putRGBA(b, c.R, c.G, c.B, c.A)
}

// RGBA returns the color.
func (c SetColor) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// FillRect fills an integer rectangle with the current color.
type FillRect struct {
	X, Y, W, H int32
}

func (FillRect) Opcode() Opcode { return OpFillRect }
func (FillRect) size() int      { return 20 }
func (r FillRect) put(b *buffer.Buffer) {
	putRect(b, r.X, r.Y, r.W, r.H)
}

// SetClip restricts drawing to an integer rectangle.
type SetClip struct {
	X, Y, W, H int32
}

func (SetClip) Opcode() Opcode { return OpSetClip }
func (SetClip) size() int      { return 20 }
func (r SetClip) put(b *buffer.Buffer) {
	putRect(b, r.X, r.Y, r.W, r.H)
}

// DrawLine strokes a segment with the current color.
type DrawLine struct {
	X1, Y1, X2, Y2 float32
	Width          float32
}

func (DrawLine) Opcode() Opcode { return OpDrawLine }
func (DrawLine) size() int      { return 24 }
func (l DrawLine) put(b *buffer.Buffer) {
	b.PutFloat32(l.X1)
	b.PutFloat32(l.Y1)
	b.PutFloat32(l.X2)
	b.PutFloat32(l.Y2)
	b.PutFloat32(l.Width)
}

// Point is a polygon vertex.
type Point struct {
	X, Y float32
}

// FillPolygon fills the closed polygon through Points with the current color.
type FillPolygon struct {
	Points []Point
}

func (FillPolygon) Opcode() Opcode { return OpFillPolygon }
func (p FillPolygon) size() int    { return 8 + 8*len(p.Points) }
func (p FillPolygon) put(b *buffer.Buffer) {
	b.PutUint32(uint32(len(p.Points)))
	for _, pt := range p.Points {
		b.PutFloat32(pt.X)
		b.PutFloat32(pt.Y)
	}
}

// Align positions a text run relative to its X coordinate.
type Align uint32

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the alignment name.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

// DrawText draws a single line of text with its baseline at Y.
type DrawText struct {
	X, Y  float32
	Size  float32
	Align Align
	Text  string
}

func (DrawText) Opcode() Opcode { return OpDrawText }
func (t DrawText) size() int    { return 24 + len(t.Text) + buffer.Padding(len(t.Text), 4) }
func (t DrawText) put(b *buffer.Buffer) {
	b.PutFloat32(t.X)
	b.PutFloat32(t.Y)
	b.PutFloat32(t.Size)
	b.PutUint32(uint32(t.Align))
	b.PutUint32(uint32(len(t.Text)))
	b.PutBytes([]byte(t.Text))
	b.Pad(4)
}

// Dispose asks the executor to release the native resource behind Handle.
// The handle is a 64-bit field and is always encoded on an 8-byte offset.
type Dispose struct {
	Handle uint64
}

func (Dispose) Opcode() Opcode { return OpDispose }
func (Dispose) size() int      { return 12 }
func (d Dispose) put(b *buffer.Buffer) {
	b.PutUint64(d.Handle)
}

// fieldAlignment marks records whose first field needs an 8-byte offset.
func (Dispose) fieldAlignment() int { return 8 }

func putRGBA(b *buffer.Buffer, r, g, bl, a uint8) {
	b.PutUint8(r)
	b.PutUint8(g)
	b.PutUint8(bl)
	b.PutUint8(a)
}

func putRect(b *buffer.Buffer, x, y, w, h int32) {
	b.PutInt32(x)
	b.PutInt32(y)
	b.PutInt32(w)
	b.PutInt32(h)
}
