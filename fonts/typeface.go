// Package fonts shapes Text elements and embeds the glyphs they use into the
// document as self-contained Font resources, so a renderer no longer needs
// the original font files.
package fonts

import (
	"image"

	"github.com/wudi/pagxkit/scene"
)

// GlyphID identifies a glyph inside its source typeface.
type GlyphID uint32

// Typeface is a source of glyph outlines, bitmaps and metrics. Two Typeface
// values denote the same face when they compare equal, so implementations
// are expected to be pointers.
type Typeface interface {
	Name() string
	UnitsPerEm() int
	// GlyphPath returns the outline at size in font-size units with y
	// pointing down. It reports false for glyphs without an outline.
	GlyphPath(id GlyphID, size float32) (*scene.PathData, bool)
	// GlyphImage returns the bitmap strike of a glyph and the matrix that
	// maps image pixels into glyph space at size.
	GlyphImage(id GlyphID, size float32) (image.Image, scene.Matrix, bool)
	// GlyphAdvance returns the horizontal advance at size.
	GlyphAdvance(id GlyphID, size float32) float32
}

// Font is a typeface at a given size.
type Font struct {
	Typeface Typeface
	Size     float32
}

func (f Font) path(id GlyphID) (*scene.PathData, bool) {
	return f.Typeface.GlyphPath(id, f.Size)
}

func (f Font) image(id GlyphID) (image.Image, scene.Matrix, bool) {
	return f.Typeface.GlyphImage(id, f.Size)
}

func (f Font) advance(id GlyphID) float32 {
	return f.Typeface.GlyphAdvance(id, f.Size)
}
