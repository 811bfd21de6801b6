package software

import (
	"bytes"
	"fmt"
	"image"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/rq/internal/cache"
	"github.com/gogpu/rq/op"
)

// maxFaces bounds the per-size face cache.
const maxFaces = 16

// textRenderer draws single-line text runs. Advances come from HarfBuzz
// shaping so aligned runs account for kerning; glyphs are drawn through an
// x/image face. It is only used under the executor's lock.
type textRenderer struct {
	font   *opentype.Font
	shape  *gotext.Face
	shaper shaping.HarfbuzzShaper
	faces  *cache.LRU[float32, font.Face]
}

func newTextRenderer() (*textRenderer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("software: parse font: %w", err)
	}
	shape, err := gotext.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("software: parse font for shaping: %w", err)
	}
	return &textRenderer{
		font:  f,
		shape: shape,
		faces: cache.New(maxFaces, func(_ float32, f font.Face) { _ = f.Close() }),
	}, nil
}

func (r *textRenderer) face(size float32) (font.Face, error) {
	return r.faces.GetOrCreate(size, func() (font.Face, error) {
		f, err := opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("software: face size %v: %w", size, err)
		}
		return f, nil
	})
}

// advance returns the shaped width of s at size.
func (r *textRenderer) advance(s string, size float32) fixed.Int26_6 {
	runes := []rune(s)
	out := r.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      r.shape,
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	})
	return out.Advance
}

func (r *textRenderer) draw(dst draw.Image, src image.Image, t op.DrawText) error {
	face, err := r.face(t.Size)
	if err != nil {
		return err
	}
	dot := fixed.Point26_6{
		X: fixed.Int26_6(t.X * 64),
		Y: fixed.Int26_6(t.Y * 64),
	}
	switch t.Align {
	case op.AlignCenter:
		dot.X -= r.advance(t.Text, t.Size) / 2
	case op.AlignRight:
		dot.X -= r.advance(t.Text, t.Size)
	}
	d := font.Drawer{Dst: dst, Src: src, Face: face, Dot: dot}
	d.DrawString(t.Text)
	return nil
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, c := range runes {
		if c == ' ' || c == '\t' {
			continue
		}
		return language.LookupScript(c)
	}
	return language.Latin
}
