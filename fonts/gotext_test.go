package fonts_test

import (
	"testing"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wudi/pagxkit/fonts"
	"github.com/wudi/pagxkit/scene"
)

func goRegular(t *testing.T) *fonts.GoTextTypeface {
	t.Helper()
	tf, err := fonts.LoadTypeface("", goregular.TTF)
	if err != nil {
		t.Fatalf("load Go Regular: %v", err)
	}
	return tf
}

func nominal(t *testing.T, tf *fonts.GoTextTypeface, r rune) fonts.GlyphID {
	t.Helper()
	id, ok := tf.NominalGlyph(r)
	if !ok {
		t.Fatalf("no glyph for %q", r)
	}
	return id
}

func TestGoTextTypefaceMetadata(t *testing.T) {
	tf := goRegular(t)
	if tf.Name() != "Go" {
		t.Errorf("expected family Go, got %q", tf.Name())
	}
	if tf.UnitsPerEm() != 2048 {
		t.Errorf("expected 2048 units per em, got %d", tf.UnitsPerEm())
	}
}

func TestGoTextGlyphPathIsYDownAndClosed(t *testing.T) {
	tf := goRegular(t)
	path, ok := tf.GlyphPath(nominal(t, tf, 'H'), 100)
	if !ok {
		t.Fatalf("expected an outline for H")
	}
	b := path.Bounds()
	if b.Top > -60 || b.Top < -80 {
		t.Errorf("cap height should sit around 70 units above the baseline, top=%v", b.Top)
	}
	if b.Bottom < -0.01 || b.Bottom > 0.01 {
		t.Errorf("H should rest on the baseline, bottom=%v", b.Bottom)
	}
	var moves, closes int
	for _, v := range path.Verbs {
		switch v {
		case scene.VerbMove:
			moves++
		case scene.VerbClose:
			closes++
		}
	}
	if moves == 0 || moves != closes {
		t.Errorf("expected every contour closed, got %d moves and %d closes", moves, closes)
	}
	if last := path.Verbs[len(path.Verbs)-1]; last != scene.VerbClose {
		t.Errorf("expected the last contour closed, got verb %d", last)
	}

	if _, ok := tf.GlyphPath(nominal(t, tf, ' '), 100); ok {
		t.Errorf("space has no outline")
	}
}

func TestGoTextGlyphPathScalesWithSize(t *testing.T) {
	tf := goRegular(t)
	id := nominal(t, tf, 'o')
	small, _ := tf.GlyphPath(id, 10)
	large, _ := tf.GlyphPath(id, 20)
	if len(small.Points) != len(large.Points) {
		t.Fatalf("point count differs between sizes")
	}
	for i := range small.Points {
		if !fonts.FloatNearlyEqual(small.Points[i]*2, large.Points[i]) {
			t.Fatalf("point %d: %v at 10px vs %v at 20px", i, small.Points[i], large.Points[i])
		}
	}
}

func TestGoTextGlyphAdvance(t *testing.T) {
	tf := goRegular(t)
	id := nominal(t, tf, 'H')
	units := tf.Face().HorizontalAdvance(font.GID(id))
	if units <= 0 {
		t.Fatalf("expected a positive advance, got %v", units)
	}
	if got := tf.GlyphAdvance(id, 2048); got != units {
		t.Errorf("advance at 1 unit per px: expected %v, got %v", units, got)
	}
	if got, want := tf.GlyphAdvance(id, 24), units*24/2048; !fonts.FloatNearlyEqual(got, want) {
		t.Errorf("advance at 24px: expected %v, got %v", want, got)
	}
}

func TestGoTextGlyphImageAbsent(t *testing.T) {
	tf := goRegular(t)
	if _, _, ok := tf.GlyphImage(nominal(t, tf, 'H'), 24); ok {
		t.Errorf("Go Regular has no bitmap strikes")
	}
}

func TestShapedAdvancesMatchGlyphAdvance(t *testing.T) {
	tf := goRegular(t)
	s := fonts.NewShaper()
	s.Register(tf)

	doc := scene.New(200, 100)
	text := scene.Add(doc, &scene.Text{
		Text:       "Hill ill",
		FontFamily: "Go",
		FontSize:   24,
		Position:   scene.Point{X: 10, Y: 30},
	})
	layer := scene.Add(doc, scene.NewLayer())
	layer.Contents = []scene.Element{text}
	doc.Layers = []*scene.Layer{layer}

	st, ok := s.ShapeText(text)
	if !ok {
		t.Fatalf("expected text to shape")
	}
	run := st.Blob.Runs[0]
	if run.Positions[0] != 10 {
		t.Errorf("expected the first glyph at x=10, got %v", run.Positions[0])
	}
	for i := 1; i < len(run.Glyphs); i++ {
		step := run.Positions[i] - run.Positions[i-1]
		if adv := tf.GlyphAdvance(run.Glyphs[i-1], 24); !fonts.FloatNearlyEqual(step, adv) {
			t.Errorf("glyph %d: pen moved %v, advance is %v", i-1, step, adv)
		}
	}

	fonts.Embed(doc, fonts.ShapedTextMap{text: st}, []*scene.Text{text})
	if len(text.GlyphRuns) != 1 {
		t.Fatalf("expected one glyph run, got %d", len(text.GlyphRuns))
	}
	gr := text.GlyphRuns[0]
	if gr.Layout != nil {
		t.Errorf("expected default layout, got %s", gr.LayoutName())
	}
	if gr.X != 10 || gr.Y != 30 {
		t.Errorf("expected origin (10,30), got (%v,%v)", gr.X, gr.Y)
	}
}
