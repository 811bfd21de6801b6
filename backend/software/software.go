// Package software provides a CPU executor that rasterizes command buffers
// into an image.RGBA.
//
// Paths are rasterized with golang.org/x/image/vector into an alpha mask and
// composited through the current clip; text is drawn with the Go Regular
// font. The executor is registered as "software" with an 800x600 target.
package software

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/rq/backend"
	"github.com/gogpu/rq/op"
)

// Name is the registry name of this executor.
const Name = "software"

// Default target size for registry-created executors.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

func init() {
	backend.Register(Name, func() backend.Executor { return New(DefaultWidth, DefaultHeight) })
}

// Executor draws decoded commands into an RGBA target.
//
// Drawing state (color, clip) persists across batches, like state on a
// native context. Snapshot and Disposed may be called from any goroutine.
type Executor struct {
	mu       sync.Mutex
	target   *image.RGBA
	color    color.RGBA
	clip     image.Rectangle
	mask     *image.Alpha
	raster   *vector.Rasterizer
	text     *textRenderer
	textErr  error
	disposed []uint64
}

// New creates an executor with a transparent width x height target.
// The initial color is opaque black and there is no clip.
func New(width, height int) *Executor {
	bounds := image.Rect(0, 0, width, height)
	return &Executor{
		target: image.NewRGBA(bounds),
		color:  color.RGBA{A: 255},
		clip:   bounds,
		mask:   image.NewAlpha(bounds),
		raster: vector.NewRasterizer(width, height),
	}
}

// Execute draws every record in buf. A buffer that fails to decode is a
// fatal failure; records before the corrupt one have already been drawn.
// Text failures are reported as non-fatal after the rest of the batch is
// drawn.
func (e *Executor) Execute(ctx context.Context, buf []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var soft []error
	err := op.Decode(buf, func(_ int, c op.Command) error {
		if err := e.apply(c); err != nil {
			soft = append(soft, err)
		}
		return nil
	})
	if err != nil {
		return backend.Fatal(err)
	}
	return errors.Join(soft...)
}

func (e *Executor) apply(c op.Command) error {
	switch c := c.(type) {
	case op.Sync:
	case op.Clear:
		draw.Draw(e.target, e.target.Bounds(), image.NewUniform(c.RGBA()), image.Point{}, draw.Src)
	case op.SetColor:
		e.color = c.RGBA()
	case op.FillRect:
		r := image.Rect(int(c.X), int(c.Y), int(c.X)+int(c.W), int(c.Y)+int(c.H)).Intersect(e.clip)
		draw.Draw(e.target, r, image.NewUniform(e.color), image.Point{}, draw.Over)
	case op.SetClip:
		e.clip = image.Rect(int(c.X), int(c.Y), int(c.X)+int(c.W), int(c.Y)+int(c.H)).Intersect(e.target.Bounds())
	case op.ResetClip:
		e.clip = e.target.Bounds()
	case op.DrawLine:
		e.fill(lineQuad(c))
	case op.FillPolygon:
		e.fill(c.Points)
	case op.DrawText:
		return e.drawText(c)
	case op.Dispose:
		e.disposed = append(e.disposed, c.Handle)
	}
	return nil
}

// fill rasterizes the closed polygon pts into the mask and composites the
// current color through it, restricted to the clip.
func (e *Executor) fill(pts []op.Point) {
	if len(pts) < 3 || e.clip.Empty() {
		return
	}
	b := e.target.Bounds()
	e.raster.Reset(b.Dx(), b.Dy())
	e.raster.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		e.raster.LineTo(p.X, p.Y)
	}
	e.raster.ClosePath()

	clear(e.mask.Pix)
	e.raster.Draw(e.mask, e.mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(e.target, e.clip, image.NewUniform(e.color), image.Point{}, e.mask, e.clip.Min, draw.Over)
}

// lineQuad expands a segment into the rectangle covering its stroke.
func lineQuad(l op.DrawLine) []op.Point {
	dx, dy := float64(l.X2-l.X1), float64(l.Y2-l.Y1)
	length := math.Hypot(dx, dy)
	if length == 0 || l.Width <= 0 {
		return nil
	}
	half := float64(l.Width) / 2
	nx := float32(-dy / length * half)
	ny := float32(dx / length * half)
	return []op.Point{
		{X: l.X1 + nx, Y: l.Y1 + ny},
		{X: l.X2 + nx, Y: l.Y2 + ny},
		{X: l.X2 - nx, Y: l.Y2 - ny},
		{X: l.X1 - nx, Y: l.Y1 - ny},
	}
}

func (e *Executor) drawText(t op.DrawText) error {
	if t.Text == "" || t.Size <= 0 || e.clip.Empty() {
		return nil
	}
	if e.text == nil && e.textErr == nil {
		e.text, e.textErr = newTextRenderer()
	}
	if e.textErr != nil {
		return e.textErr
	}
	dst := e.target.SubImage(e.clip).(*image.RGBA)
	return e.text.draw(dst, image.NewUniform(e.color), t)
}

// Snapshot returns a copy of the target.
func (e *Executor) Snapshot() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	img := image.NewRGBA(e.target.Bounds())
	copy(img.Pix, e.target.Pix)
	return img
}

// Bounds returns the target bounds.
func (e *Executor) Bounds() image.Rectangle {
	return e.target.Bounds()
}

// Disposed returns the handles of processed Dispose records, in order.
func (e *Executor) Disposed() []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]uint64(nil), e.disposed...)
}
