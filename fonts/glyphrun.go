package fonts

import "github.com/wudi/pagxkit/scene"

// newGlyphRun builds the GlyphRun for the glyphs of run at indices. Glyphs
// missing from mapping get id 0. The most compact layout that reproduces the
// shaped positions is chosen.
func newGlyphRun(doc *scene.Document, run *ShapedRun, indices []int, font *scene.Font, mapping glyphMapping) *scene.GlyphRun {
	gr := scene.Add(doc, &scene.GlyphRun{Font: font, FontSize: run.Font.Size})
	gr.Glyphs = make([]scene.GlyphID, 0, len(indices))
	for _, i := range indices {
		gr.Glyphs = append(gr.Glyphs, mapping[glyphKey{run.Font.Typeface, run.Glyphs[i]}])
	}

	if x, y, ok := defaultOrigin(run, indices, font, mapping); ok {
		gr.X, gr.Y = x, y
		return gr
	}

	switch run.Positioning {
	case PositionHorizontal:
		gr.Y = run.OffsetY
		xs := make([]float32, len(indices))
		for k, i := range indices {
			xs[k] = run.value(i, 0)
		}
		gr.Layout = scene.HorizontalLayout{XOffsets: xs}
	case PositionPoint:
		gr.Layout = scene.PointLayout{Positions: points(run, indices, 0, 1)}
	case PositionRSXform:
		gr.Layout = rsxformLayout(run, indices)
	case PositionMatrix:
		gr.Layout = matrixLayout(run, indices)
	}
	return gr
}

// defaultOrigin reports whether the glyphs at indices sit exactly where
// their embedded advances would put them, returning the run origin if so.
func defaultOrigin(run *ShapedRun, indices []int, font *scene.Font, mapping glyphMapping) (float32, float32, bool) {
	switch run.Positioning {
	case PositionDefault:
		return 0, run.OffsetY, true
	case PositionHorizontal:
	default:
		return 0, 0, false
	}
	if len(indices) == 0 || font.UnitsPerEm <= 0 {
		return 0, 0, false
	}
	scale := run.Font.Size / float32(font.UnitsPerEm)
	start := run.value(indices[0], 0)
	expected := start
	for _, i := range indices {
		if !FloatNearlyEqual(run.value(i, 0), expected) {
			return 0, 0, false
		}
		g := font.Glyph(mapping[glyphKey{run.Font.Typeface, run.Glyphs[i]}])
		if g == nil {
			return 0, 0, false
		}
		expected += g.Advance * scale
	}
	return start, run.OffsetY, true
}

func (r *ShapedRun) value(i, k int) float32 {
	if p := r.position(i); k < len(p) {
		return p[k]
	}
	return 0
}

func points(run *ShapedRun, indices []int, xk, yk int) []scene.Point {
	out := make([]scene.Point, len(indices))
	for k, i := range indices {
		out[k] = scene.Point{X: run.value(i, xk), Y: run.value(i, yk)}
	}
	return out
}

// rsxformLayout splits each (scos, ssin, tx, ty) into position, uniform
// scale and rotation. All-default scale or rotation arrays are omitted.
func rsxformLayout(run *ShapedRun, indices []int) scene.RSXformLayout {
	layout := scene.RSXformLayout{Positions: points(run, indices, 2, 3)}
	scales := make([]scene.Point, len(indices))
	rotations := make([]float32, len(indices))
	var scaled, rotated bool
	for k, i := range indices {
		scos, ssin := run.value(i, 0), run.value(i, 1)
		s := hypot32(scos, ssin)
		r := atan2Degrees(ssin, scos)
		scales[k] = scene.Point{X: s, Y: s}
		rotations[k] = r
		scaled = scaled || !FloatNearlyEqual(s, 1)
		rotated = rotated || !FloatNearlyEqual(r, 0)
	}
	if scaled {
		layout.Scales = scales
	}
	if rotated {
		layout.Rotations = rotations
	}
	return layout
}

// matrixLayout decomposes each (a, b, c, d, tx, ty) into position, scale,
// rotation and skew. All-default arrays are omitted.
func matrixLayout(run *ShapedRun, indices []int) scene.MatrixLayout {
	layout := scene.MatrixLayout{Positions: points(run, indices, 4, 5)}
	scales := make([]scene.Point, len(indices))
	rotations := make([]float32, len(indices))
	skews := make([]float32, len(indices))
	var scaled, rotated, skewed bool
	for k, i := range indices {
		a, b := run.value(i, 0), run.value(i, 1)
		c, d := run.value(i, 2), run.value(i, 3)
		sx := hypot32(a, b)
		sy := hypot32(c, d)
		r := atan2Degrees(b, a)
		var skew float32
		if sx > minFontSize && sy > minFontSize {
			skew = atan2Degrees(a*c+b*d, sx*sy)
		}
		scales[k] = scene.Point{X: sx, Y: sy}
		rotations[k] = r
		skews[k] = skew
		scaled = scaled || !FloatNearlyEqual(sx, 1) || !FloatNearlyEqual(sy, 1)
		rotated = rotated || !FloatNearlyEqual(r, 0)
		skewed = skewed || !FloatNearlyEqual(skew, 0)
	}
	if scaled {
		layout.Scales = scales
	}
	if rotated {
		layout.Rotations = rotations
	}
	if skewed {
		layout.Skews = skews
	}
	return layout
}
