package fonts_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/wudi/pagxkit/fonts"
	"github.com/wudi/pagxkit/scene"
)

// fakeGlyph describes a glyph in 1000 units per em. Outline glyphs are a
// square whose side is rounded at every size, like a hinted outline.
type fakeGlyph struct {
	outline bool
	strike  int
	advance float32
}

type fakeTypeface struct {
	name   string
	glyphs map[fonts.GlyphID]fakeGlyph
}

func (f *fakeTypeface) Name() string    { return f.name }
func (f *fakeTypeface) UnitsPerEm() int { return 1000 }

func (f *fakeTypeface) GlyphPath(id fonts.GlyphID, size float32) (*scene.PathData, bool) {
	g, ok := f.glyphs[id]
	if !ok || !g.outline {
		return nil, false
	}
	w := float32(math.Round(float64(size * 0.55)))
	p := &scene.PathData{}
	p.MoveTo(0, 0)
	p.LineTo(w, 0)
	p.LineTo(w, -w)
	p.Close()
	return p, true
}

func (f *fakeTypeface) GlyphImage(id fonts.GlyphID, size float32) (image.Image, scene.Matrix, bool) {
	g, ok := f.glyphs[id]
	if !ok || g.strike == 0 {
		return nil, scene.Matrix{}, false
	}
	img := image.NewRGBA(image.Rect(0, 0, g.strike, g.strike))
	for i := range g.strike {
		img.Set(i, i, color.RGBA{R: 255, A: 255})
	}
	k := size / float32(g.strike)
	return img, scene.Matrix{A: k, D: k, Tx: size / 10, Ty: -size}, true
}

func (f *fakeTypeface) GlyphAdvance(id fonts.GlyphID, size float32) float32 {
	return f.glyphs[id].advance * size / 1000
}

func latinFace() *fakeTypeface {
	return &fakeTypeface{name: "Latin", glyphs: map[fonts.GlyphID]fakeGlyph{
		3:  {advance: 250},
		10: {outline: true, advance: 1000},
		11: {outline: true, advance: 1200},
		12: {outline: true, advance: 800},
	}}
}

func emojiFace() *fakeTypeface {
	return &fakeTypeface{name: "Emoji", glyphs: map[fonts.GlyphID]fakeGlyph{
		1: {strike: 20, advance: 1000},
		2: {advance: 500},
	}}
}

func horizontalRun(tf fonts.Typeface, size, y float32, glyphs []fonts.GlyphID, xs []float32) fonts.ShapedRun {
	return fonts.ShapedRun{
		Font:        fonts.Font{Typeface: tf, Size: size},
		Glyphs:      glyphs,
		Positioning: fonts.PositionHorizontal,
		Positions:   xs,
		OffsetY:     y,
	}
}

func shapedText(runs ...fonts.ShapedRun) fonts.ShapedText {
	return fonts.ShapedText{Blob: &fonts.TextBlob{Runs: runs}}
}

func TestEmbedDefaultLayout(t *testing.T) {
	doc := scene.New(100, 100)
	text := scene.Add(doc, &scene.Text{Text: "abc", FontSize: 10})
	run := horizontalRun(latinFace(), 10, 20, []fonts.GlyphID{10, 11, 12}, []float32{5, 15, 27})

	stats := fonts.Embed(doc, fonts.ShapedTextMap{text: shapedText(run)}, []*scene.Text{text})
	if stats.Fonts != 1 || stats.Glyphs != 3 || stats.GlyphRuns != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(text.GlyphRuns) != 1 {
		t.Fatalf("expected one glyph run, got %d", len(text.GlyphRuns))
	}
	gr := text.GlyphRuns[0]
	if gr.Layout != nil {
		t.Errorf("expected default layout, got %s", gr.LayoutName())
	}
	if gr.X != 5 || gr.Y != 20 {
		t.Errorf("expected origin (5,20), got (%v,%v)", gr.X, gr.Y)
	}
	if gr.Font.ID != "font1" || gr.Font.UnitsPerEm != fonts.VectorUnitsPerEm {
		t.Errorf("unexpected font %q upem %d", gr.Font.ID, gr.Font.UnitsPerEm)
	}
	for i, want := range []scene.GlyphID{1, 2, 3} {
		if gr.Glyphs[i] != want {
			t.Errorf("glyph %d: expected %d, got %d", i, want, gr.Glyphs[i])
		}
	}
	for i, want := range []float32{1000, 1200, 800} {
		if got := gr.Font.Glyphs[i].Advance; math.Abs(float64(got-want)) > 1e-3 {
			t.Errorf("advance %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestEmbedHorizontalLayout(t *testing.T) {
	doc := scene.New(100, 100)
	text := scene.Add(doc, &scene.Text{Text: "abc", FontSize: 10})
	run := horizontalRun(latinFace(), 10, 20, []fonts.GlyphID{10, 11, 12}, []float32{0, 11, 22})

	fonts.Embed(doc, fonts.ShapedTextMap{text: shapedText(run)}, []*scene.Text{text})
	gr := text.GlyphRuns[0]
	layout, ok := gr.Layout.(scene.HorizontalLayout)
	if !ok {
		t.Fatalf("expected horizontal layout, got %s", gr.LayoutName())
	}
	if gr.X != 0 || gr.Y != 20 {
		t.Errorf("expected origin (0,20), got (%v,%v)", gr.X, gr.Y)
	}
	for i, want := range []float32{0, 11, 22} {
		if layout.XOffsets[i] != want {
			t.Errorf("x %d: expected %v, got %v", i, want, layout.XOffsets[i])
		}
	}
}

func TestEmbedNativeDefaultRun(t *testing.T) {
	doc := scene.New(100, 100)
	text := scene.Add(doc, &scene.Text{Text: "a", FontSize: 10})
	run := fonts.ShapedRun{
		Font:    fonts.Font{Typeface: latinFace(), Size: 10},
		Glyphs:  []fonts.GlyphID{10},
		OffsetY: 7,
	}
	fonts.Embed(doc, fonts.ShapedTextMap{text: shapedText(run)}, []*scene.Text{text})
	gr := text.GlyphRuns[0]
	if gr.Layout != nil || gr.X != 0 || gr.Y != 7 {
		t.Errorf("expected default run at (0,7), got %s at (%v,%v)", gr.LayoutName(), gr.X, gr.Y)
	}
}

func TestEmbedKeepsLargestSize(t *testing.T) {
	doc := scene.New(100, 100)
	face := latinFace()
	small := scene.Add(doc, &scene.Text{Text: "a", FontSize: 10})
	large := scene.Add(doc, &scene.Text{Text: "a", FontSize: 40})
	shaped := fonts.ShapedTextMap{
		small: shapedText(horizontalRun(face, 10, 0, []fonts.GlyphID{10}, []float32{0})),
		large: shapedText(horizontalRun(face, 40, 0, []fonts.GlyphID{10}, []float32{0})),
	}

	stats := fonts.Embed(doc, shaped, []*scene.Text{small, large})
	if stats.Glyphs != 1 {
		t.Fatalf("expected one glyph, got %d", stats.Glyphs)
	}
	path := small.GlyphRuns[0].Font.Glyphs[0].Path()
	if path == nil {
		t.Fatalf("expected vector glyph")
	}
	// round(40*0.55)=22 scaled by 1000/40; the size-10 capture would give 600.
	if got := path.Points[2]; got != 550 {
		t.Errorf("expected outline captured at size 40 (550), got %v", got)
	}
	if small.GlyphRuns[0].Glyphs[0] != large.GlyphRuns[0].Glyphs[0] {
		t.Errorf("expected both runs to share the glyph")
	}
}

func TestEmbedIsDeterministic(t *testing.T) {
	build := func() (*scene.Document, *scene.Text) {
		doc := scene.New(100, 100)
		text := scene.Add(doc, &scene.Text{Text: "mix", FontSize: 16})
		latin, emoji := latinFace(), emojiFace()
		shaped := fonts.ShapedTextMap{text: shapedText(
			horizontalRun(emoji, 16, 0, []fonts.GlyphID{1, 2}, []float32{0, 16}),
			horizontalRun(latin, 16, 0, []fonts.GlyphID{12, 10, 3}, []float32{30, 42.8, 58.8}),
		)}
		fonts.Embed(doc, shaped, []*scene.Text{text})
		return doc, text
	}
	docA, textA := build()
	docB, textB := build()
	if len(docA.Nodes) != len(docB.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(docA.Nodes), len(docB.Nodes))
	}
	for i := range docA.Nodes {
		if docA.Nodes[i].NodeType() != docB.Nodes[i].NodeType() {
			t.Fatalf("node %d differs: %s vs %s", i, docA.Nodes[i].NodeType(), docB.Nodes[i].NodeType())
		}
	}
	if len(textA.GlyphRuns) != len(textB.GlyphRuns) {
		t.Fatalf("run counts differ")
	}
	for i := range textA.GlyphRuns {
		a, b := textA.GlyphRuns[i], textB.GlyphRuns[i]
		if a.Font.ID != b.Font.ID || len(a.Glyphs) != len(b.Glyphs) {
			t.Errorf("run %d differs", i)
		}
	}
}

func TestEmbedBitmapGlyphs(t *testing.T) {
	doc := scene.New(100, 100)
	text := scene.Add(doc, &scene.Text{Text: "x", FontSize: 40})
	shaped := fonts.ShapedTextMap{text: shapedText(
		horizontalRun(latinFace(), 40, 50, []fonts.GlyphID{10}, []float32{0}),
		horizontalRun(emojiFace(), 40, 50, []fonts.GlyphID{1, 2}, []float32{40, 80}),
	)}

	stats := fonts.Embed(doc, shaped, []*scene.Text{text})
	if stats.Fonts != 2 || stats.GlyphRuns != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	bitmapRun := text.GlyphRuns[1]
	font := bitmapRun.Font
	if font.ID != "font2" || font.UnitsPerEm != 20 {
		t.Fatalf("expected font2 with backing size 20, got %q/%d", font.ID, font.UnitsPerEm)
	}
	if len(font.Glyphs) != 2 {
		t.Fatalf("expected bitmap and spacing glyph, got %d", len(font.Glyphs))
	}
	g := font.Glyphs[0]
	if g.Image() == nil {
		t.Fatalf("expected bitmap payload")
	}
	img, err := png.Decode(bytes.NewReader(g.Image().Data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Errorf("expected 20x20 image, got %v", img.Bounds())
	}
	if g.Offset.X != 2 || g.Offset.Y != -20 {
		t.Errorf("expected offset (2,-20), got %+v", g.Offset)
	}
	if g.Advance != 20 {
		t.Errorf("expected advance 20, got %v", g.Advance)
	}
	space := font.Glyphs[1]
	if space.Payload != nil || space.Advance != 10 {
		t.Errorf("expected spacing glyph with advance 10, got %+v", space)
	}
	if bitmapRun.Layout != nil || bitmapRun.X != 40 {
		t.Errorf("expected default bitmap run at x=40, got %s x=%v", bitmapRun.LayoutName(), bitmapRun.X)
	}
}

func TestEmbedSpacingGlyphs(t *testing.T) {
	doc := scene.New(100, 100)
	face := latinFace()
	text := scene.Add(doc, &scene.Text{Text: " a", FontSize: 10})
	// The space is seen before any vector font exists and is dropped.
	run := horizontalRun(face, 10, 0, []fonts.GlyphID{3, 10}, []float32{0, 2.5})

	stats := fonts.Embed(doc, fonts.ShapedTextMap{text: shapedText(run)}, []*scene.Text{text})
	if stats.Glyphs != 1 {
		t.Fatalf("expected only the outline glyph, got %d", stats.Glyphs)
	}
	gr := text.GlyphRuns[0]
	if len(gr.Glyphs) != 1 || gr.X != 2.5 {
		t.Errorf("expected one glyph at 2.5, got %v at %v", gr.Glyphs, gr.X)
	}

	doc = scene.New(100, 100)
	text = scene.Add(doc, &scene.Text{Text: "a a", FontSize: 10})
	run = horizontalRun(face, 10, 0, []fonts.GlyphID{10, 3, 10}, []float32{0, 10, 12.5})
	fonts.Embed(doc, fonts.ShapedTextMap{text: shapedText(run)}, []*scene.Text{text})
	gr = text.GlyphRuns[0]
	if len(gr.Font.Glyphs) != 2 {
		t.Fatalf("expected outline and space glyphs, got %d", len(gr.Font.Glyphs))
	}
	space := gr.Font.Glyphs[1]
	if space.Payload != nil || space.Advance != 250 {
		t.Errorf("expected space advance 250, got %+v", space)
	}
	if gr.Layout != nil {
		t.Errorf("expected default layout, got %s", gr.LayoutName())
	}
	for i, want := range []scene.GlyphID{1, 2, 1} {
		if gr.Glyphs[i] != want {
			t.Errorf("glyph %d: expected %d, got %d", i, want, gr.Glyphs[i])
		}
	}
}

func TestEmbedPointLayout(t *testing.T) {
	doc := scene.New(100, 100)
	text := scene.Add(doc, &scene.Text{FontSize: 10})
	run := fonts.ShapedRun{
		Font:        fonts.Font{Typeface: latinFace(), Size: 10},
		Glyphs:      []fonts.GlyphID{10, 11},
		Positioning: fonts.PositionPoint,
		Positions:   []float32{1, 2, 3, 4},
	}
	fonts.Embed(doc, fonts.ShapedTextMap{text: shapedText(run)}, []*scene.Text{text})
	layout, ok := text.GlyphRuns[0].Layout.(scene.PointLayout)
	if !ok {
		t.Fatalf("expected point layout, got %s", text.GlyphRuns[0].LayoutName())
	}
	if layout.Positions[1] != (scene.Point{X: 3, Y: 4}) {
		t.Errorf("unexpected positions %v", layout.Positions)
	}
}

func TestEmbedRSXformLayout(t *testing.T) {
	doc := scene.New(100, 100)
	plain := scene.Add(doc, &scene.Text{FontSize: 10})
	rotated := scene.Add(doc, &scene.Text{FontSize: 10})
	face := latinFace()
	shaped := fonts.ShapedTextMap{
		plain: shapedText(fonts.ShapedRun{
			Font: fonts.Font{Typeface: face, Size: 10}, Glyphs: []fonts.GlyphID{10, 11},
			Positioning: fonts.PositionRSXform,
			Positions:   []float32{1, 0, 5, 6, 1, 0, 15, 6},
		}),
		rotated: shapedText(fonts.ShapedRun{
			Font: fonts.Font{Typeface: face, Size: 10}, Glyphs: []fonts.GlyphID{10},
			Positioning: fonts.PositionRSXform,
			Positions:   []float32{0, 2, 5, 6},
		}),
	}
	fonts.Embed(doc, shaped, []*scene.Text{plain, rotated})

	p := plain.GlyphRuns[0].Layout.(scene.RSXformLayout)
	if p.Scales != nil || p.Rotations != nil {
		t.Errorf("expected default scales and rotations to be omitted, got %+v", p)
	}
	if p.Positions[1] != (scene.Point{X: 15, Y: 6}) {
		t.Errorf("unexpected positions %v", p.Positions)
	}
	r := rotated.GlyphRuns[0].Layout.(scene.RSXformLayout)
	if len(r.Scales) != 1 || r.Scales[0] != (scene.Point{X: 2, Y: 2}) {
		t.Errorf("expected scale 2, got %v", r.Scales)
	}
	if len(r.Rotations) != 1 || math.Abs(float64(r.Rotations[0]-90)) > 1e-4 {
		t.Errorf("expected rotation 90, got %v", r.Rotations)
	}
}

func TestEmbedMatrixLayout(t *testing.T) {
	doc := scene.New(100, 100)
	plain := scene.Add(doc, &scene.Text{FontSize: 10})
	skewed := scene.Add(doc, &scene.Text{FontSize: 10})
	face := latinFace()
	shaped := fonts.ShapedTextMap{
		plain: shapedText(fonts.ShapedRun{
			Font: fonts.Font{Typeface: face, Size: 10}, Glyphs: []fonts.GlyphID{10},
			Positioning: fonts.PositionMatrix,
			Positions:   []float32{1, 0, 0, 1, 3, 4},
		}),
		skewed: shapedText(fonts.ShapedRun{
			Font: fonts.Font{Typeface: face, Size: 10}, Glyphs: []fonts.GlyphID{10},
			Positioning: fonts.PositionMatrix,
			Positions:   []float32{1, 0, 1, 1, 3, 4},
		}),
	}
	fonts.Embed(doc, shaped, []*scene.Text{plain, skewed})

	p := plain.GlyphRuns[0].Layout.(scene.MatrixLayout)
	if p.Scales != nil || p.Rotations != nil || p.Skews != nil {
		t.Errorf("expected only positions, got %+v", p)
	}
	if p.Positions[0] != (scene.Point{X: 3, Y: 4}) {
		t.Errorf("unexpected position %v", p.Positions[0])
	}
	s := skewed.GlyphRuns[0].Layout.(scene.MatrixLayout)
	if s.Rotations != nil {
		t.Errorf("expected rotations omitted, got %v", s.Rotations)
	}
	if len(s.Scales) != 1 || math.Abs(float64(s.Scales[0].Y)-math.Sqrt2) > 1e-5 {
		t.Errorf("expected y scale sqrt(2), got %v", s.Scales)
	}
	wantSkew := math.Atan2(1, math.Sqrt2) * 180 / math.Pi
	if len(s.Skews) != 1 || math.Abs(float64(s.Skews[0])-wantSkew) > 1e-3 {
		t.Errorf("expected skew %v, got %v", wantSkew, s.Skews)
	}
}

func TestEmbedClearsSkippedTexts(t *testing.T) {
	doc := scene.New(100, 100)
	stale := scene.Add(doc, &scene.GlyphRun{})
	text := scene.Add(doc, &scene.Text{Text: "a", GlyphRuns: []*scene.GlyphRun{stale}})

	stats := fonts.Embed(doc, fonts.ShapedTextMap{}, []*scene.Text{text})
	if text.GlyphRuns != nil {
		t.Errorf("expected glyph runs cleared, got %d", len(text.GlyphRuns))
	}
	if stats.SkippedTexts != 1 || stats.Fonts != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestEmbedNilDocument(t *testing.T) {
	if stats := fonts.Embed(nil, nil, nil); stats != (fonts.EmbedStats{}) {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestFloatNearlyEqual(t *testing.T) {
	if !fonts.FloatNearlyEqual(1, 1+1.0/8192) {
		t.Errorf("expected values within 1/4096 to be equal")
	}
	if fonts.FloatNearlyEqual(1, 1.001) {
		t.Errorf("expected 1 and 1.001 to differ")
	}
}
