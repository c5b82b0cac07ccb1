package fonts

import "github.com/wudi/pagxkit/scene"

// Positioning tells how ShapedRun.Positions is laid out.
type Positioning uint8

const (
	// PositionDefault carries no positions; glyphs follow their advances.
	PositionDefault Positioning = iota
	// PositionHorizontal stores one x per glyph on the run baseline.
	PositionHorizontal
	// PositionPoint stores x, y per glyph.
	PositionPoint
	// PositionRSXform stores scos, ssin, tx, ty per glyph.
	PositionRSXform
	// PositionMatrix stores a, b, c, d, tx, ty per glyph.
	PositionMatrix
)

// Stride returns the number of floats stored per glyph.
func (p Positioning) Stride() int {
	switch p {
	case PositionHorizontal:
		return 1
	case PositionPoint:
		return 2
	case PositionRSXform:
		return 4
	case PositionMatrix:
		return 6
	}
	return 0
}

func (p Positioning) String() string {
	switch p {
	case PositionDefault:
		return "default"
	case PositionHorizontal:
		return "horizontal"
	case PositionPoint:
		return "point"
	case PositionRSXform:
		return "rsxform"
	case PositionMatrix:
		return "matrix"
	}
	return "unknown"
}

// ShapedRun is a run of glyphs from one sized font.
type ShapedRun struct {
	Font        Font
	Glyphs      []GlyphID
	Positioning Positioning
	Positions   []float32
	OffsetY     float32
}

// position returns the stride floats of glyph i.
func (r *ShapedRun) position(i int) []float32 {
	n := r.Positioning.Stride()
	if n == 0 || (i+1)*n > len(r.Positions) {
		return nil
	}
	return r.Positions[i*n : (i+1)*n]
}

// TextBlob is the shaped form of one Text element.
type TextBlob struct {
	Runs []ShapedRun
}

// ShapedText pairs a blob with per-glyph anchor points. Anchors are carried
// through for callers and not read by the embedder.
type ShapedText struct {
	Blob    *TextBlob
	Anchors []scene.Point
}

// ShapedTextMap associates Text elements with their shaping result.
type ShapedTextMap map[*scene.Text]ShapedText
