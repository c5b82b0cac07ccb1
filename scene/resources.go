package scene

import "math"

// Image is an embedded or external bitmap. Exactly one of Source and Data is
// normally set.
type Image struct {
	base
	Source string
	Data   []byte
}

func (*Image) NodeType() NodeType { return NodeImage }

// Composition is a reusable layer subtree with its own canvas size.
type Composition struct {
	base
	Width  float32
	Height float32
	Layers []*Layer
}

func (*Composition) NodeType() NodeType { return NodeComposition }

// GlyphID is a 1-based index into Font.Glyphs. Zero means "missing".
type GlyphID uint16

// Font is an embedded glyph set.
type Font struct {
	base
	UnitsPerEm int
	Glyphs     []*Glyph
}

func (*Font) NodeType() NodeType { return NodeFont }

// Glyph returns the glyph for id, or nil when id is zero or out of range.
func (f *Font) Glyph(id GlyphID) *Glyph {
	if id == 0 || int(id) > len(f.Glyphs) {
		return nil
	}
	return f.Glyphs[id-1]
}

// MaxGlyphs is the capacity of a Font; id 0 is reserved for "missing".
const MaxGlyphs = math.MaxUint16

// Full reports whether f has no id left for another glyph.
func (f *Font) Full() bool {
	return len(f.Glyphs) >= MaxGlyphs
}

// AddGlyph appends g and returns its id. A full font is left unchanged and
// the result is 0.
func (f *Font) AddGlyph(g *Glyph) GlyphID {
	if f.Full() {
		return 0
	}
	f.Glyphs = append(f.Glyphs, g)
	return GlyphID(len(f.Glyphs))
}

// GlyphPayload is the ink of a glyph: a vector outline or a bitmap. A nil
// payload is a spacing glyph that only advances the pen.
type GlyphPayload interface {
	glyphPayload()
}

type VectorGlyph struct {
	Path *PathData
}

type BitmapGlyph struct {
	Image *Image
}

func (VectorGlyph) glyphPayload() {}
func (BitmapGlyph) glyphPayload() {}

// Glyph is one entry of a Font. Offset and Advance are in the font's
// unitsPerEm space.
type Glyph struct {
	base
	Payload GlyphPayload
	Offset  Point
	Advance float32
}

func (*Glyph) NodeType() NodeType { return NodeGlyph }

// Path returns the vector outline, if any.
func (g *Glyph) Path() *PathData {
	if v, ok := g.Payload.(VectorGlyph); ok {
		return v.Path
	}
	return nil
}

// Image returns the bitmap, if any.
func (g *Glyph) Image() *Image {
	if b, ok := g.Payload.(BitmapGlyph); ok {
		return b.Image
	}
	return nil
}

// GlyphLayout records how the glyphs of a run are placed. Every position is
// relative to the run origin (GlyphRun.X, GlyphRun.Y). A nil layout means
// Default: glyphs start at the origin and step by their advances.
type GlyphLayout interface {
	glyphLayout()
}

// HorizontalLayout places glyph i at XOffsets[i] on the run's baseline.
type HorizontalLayout struct {
	XOffsets []float32
}

// PointLayout places every glyph at an explicit position.
type PointLayout struct {
	Positions []Point
}

// RSXformLayout adds a uniform scale and a rotation (degrees) per glyph.
// Empty Scales or Rotations mean all-default.
type RSXformLayout struct {
	Positions []Point
	Scales    []Point
	Rotations []float32
}

// MatrixLayout decomposes a full affine transform per glyph. Each of Scales,
// Rotations and Skews is empty when every glyph uses the default.
type MatrixLayout struct {
	Positions []Point
	Scales    []Point
	Rotations []float32
	Skews     []float32
}

func (HorizontalLayout) glyphLayout() {}
func (PointLayout) glyphLayout()      {}
func (RSXformLayout) glyphLayout()    {}
func (MatrixLayout) glyphLayout()     {}

// GlyphRun is a pre-shaped sequence of glyphs from one Font.
type GlyphRun struct {
	base
	Font     *Font
	FontSize float32
	Glyphs   []GlyphID
	X        float32
	Y        float32
	Layout   GlyphLayout
}

func (*GlyphRun) NodeType() NodeType { return NodeGlyphRun }

// LayoutName returns the positioning mode name of the run.
func (r *GlyphRun) LayoutName() string {
	switch r.Layout.(type) {
	case nil:
		return "default"
	case HorizontalLayout:
		return "horizontal"
	case PointLayout:
		return "point"
	case RSXformLayout:
		return "rsxform"
	case MatrixLayout:
		return "matrix"
	}
	return "unknown"
}
