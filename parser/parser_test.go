package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wudi/pagxkit/recovery"
	"github.com/wudi/pagxkit/scene"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<pagx version="1.0" width="400" height="300">
  <Layer id="main" name="Main" x="10" y="20" mask="@clip" maskType="luminance">
    <Rectangle center="50,50" size="80,60" roundness="4"/>
    <Path data="@square"/>
    <Path data="M0 0 L10 0 L10 10 Z"/>
    <Fill color="@red"/>
    <Stroke color="#00FF00" width="2" dashes="4,2" cap="round"/>
    <Group position="5,5" alpha="0.5">
      <Ellipse/>
      <Fill>
        <LinearGradient startPoint="0,0" endPoint="100,0">
          <ColorStop offset="0" color="#000"/>
          <ColorStop offset="1" color="#FFFFFF80"/>
        </LinearGradient>
      </Fill>
    </Group>
    <DropShadowStyle offsetX="2" offsetY="3" color="#00000080"/>
    <BlurFilter blurX="4" blurY="4"/>
    <Layer composition="@comp"/>
  </Layer>
  <Layer id="clip" visible="false">
    <Rectangle size="400,300"/>
    <Fill color="#FFFFFF"/>
  </Layer>
  <Resources>
    <SolidColor id="red" color="#FF0000"/>
    <PathData id="square" data="M0 0 H10 V10 H0 Z"/>
    <Composition id="comp" width="50" height="50">
      <Layer>
        <Polystar type="polygon" pointCount="6"/>
      </Layer>
    </Composition>
  </Resources>
</pagx>`

func mustParse(t *testing.T, src string) *scene.Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func TestParseDocument(t *testing.T) {
	doc := mustParse(t, sampleDocument)
	if doc.Width != 400 || doc.Height != 300 || doc.Version != "1.0" {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if len(doc.Layers) != 2 {
		t.Fatalf("expected 2 top-level layers, got %d", len(doc.Layers))
	}
	main, clip := doc.Layers[0], doc.Layers[1]
	if main.Name != "Main" || main.X != 10 || main.Y != 20 {
		t.Errorf("unexpected layer attributes: %+v", main)
	}
	if main.Mask != clip {
		t.Errorf("mask not bound to the clip layer")
	}
	if main.MaskType != scene.MaskLuminance {
		t.Errorf("expected luminance mask, got %q", main.MaskType)
	}
	if clip.Visible {
		t.Errorf("expected clip layer to be hidden")
	}
	if len(main.Contents) != 6 {
		t.Fatalf("expected 6 content elements, got %d", len(main.Contents))
	}
	if len(main.Styles) != 1 || len(main.Filters) != 1 || len(main.Children) != 1 {
		t.Fatalf("expected one style, filter and child, got %d/%d/%d",
			len(main.Styles), len(main.Filters), len(main.Children))
	}

	rect := main.Contents[0].(*scene.Rectangle)
	if rect.Center != (scene.Point{X: 50, Y: 50}) || rect.Size != (scene.Size{Width: 80, Height: 60}) || rect.Roundness != 4 {
		t.Errorf("unexpected rectangle: %+v", rect)
	}

	shared := main.Contents[1].(*scene.Path)
	if shared.Data == nil || shared.Data != doc.FindNode("square") {
		t.Errorf("path reference not resolved")
	}
	inline := main.Contents[2].(*scene.Path)
	if inline.Data == nil || inline.Data.NodeID() != "" {
		t.Fatalf("expected anonymous inline PathData, got %+v", inline.Data)
	}
	if len(inline.Data.Verbs) != 4 {
		t.Errorf("expected 4 verbs in inline path, got %d", len(inline.Data.Verbs))
	}

	fill := main.Contents[3].(*scene.Fill)
	if fill.Color != doc.FindNode("red") {
		t.Errorf("fill color reference not resolved")
	}
	if fill.Alpha != 1 {
		t.Errorf("expected default alpha 1, got %v", fill.Alpha)
	}

	stroke := main.Contents[4].(*scene.Stroke)
	solid, ok := stroke.Color.(*scene.SolidColor)
	if !ok || solid.Color != (scene.Color{G: 1, A: 1}) {
		t.Errorf("expected inline green SolidColor, got %#v", stroke.Color)
	}
	if stroke.Width != 2 || stroke.MiterLimit != 4 || stroke.Cap != scene.CapRound {
		t.Errorf("unexpected stroke: %+v", stroke)
	}
	if len(stroke.Dashes) != 2 || stroke.Dashes[0] != 4 || stroke.Dashes[1] != 2 {
		t.Errorf("unexpected dashes: %v", stroke.Dashes)
	}

	group := main.Contents[5].(*scene.Group)
	if group.Position != (scene.Point{X: 5, Y: 5}) || group.Alpha != 0.5 || group.Scale != (scene.Point{X: 1, Y: 1}) {
		t.Errorf("unexpected group: %+v", group)
	}
	ellipse := group.Elements[0].(*scene.Ellipse)
	if ellipse.Size != (scene.Size{Width: 100, Height: 100}) {
		t.Errorf("expected default ellipse size, got %+v", ellipse.Size)
	}
	grad, ok := group.Elements[1].(*scene.Fill).Color.(*scene.LinearGradient)
	if !ok {
		t.Fatalf("expected child LinearGradient")
	}
	if len(grad.ColorStops) != 2 || grad.ColorStops[1].Color.A != float32(0x80)/255 {
		t.Errorf("unexpected stops: %+v", grad.ColorStops)
	}

	comp, ok := doc.FindNode("comp").(*scene.Composition)
	if !ok || main.Children[0].Composition != comp {
		t.Fatalf("composition reference not resolved")
	}
	star := comp.Layers[0].Contents[0].(*scene.Polystar)
	if star.Type != scene.PolystarPolygon || star.PointCount != 6 || star.OuterRadius != 100 || star.InnerRadius != 50 {
		t.Errorf("unexpected polystar: %+v", star)
	}

	shadow := main.Styles[0].(*scene.DropShadowStyle)
	if !shadow.ShowBehind || shadow.OffsetY != 3 {
		t.Errorf("unexpected drop shadow: %+v", shadow)
	}
	blur := main.Filters[0].(*scene.BlurFilter)
	if blur.TileMode != "" || blur.BlurX != 4 {
		t.Errorf("unexpected blur filter: %+v", blur)
	}
}

func TestParseResourcesLeadNodeOrder(t *testing.T) {
	doc := mustParse(t, sampleDocument)
	if doc.Nodes[0] != doc.FindNode("red") {
		t.Errorf("expected resources to be built first, got %s", doc.Nodes[0].NodeType())
	}
}

func TestParseUnresolvedReference(t *testing.T) {
	src := `<pagx width="10" height="10">
  <Layer>
    <Fill color="@missing"/>
  </Layer>
</pagx>`
	_, err := Parse(strings.NewReader(src))
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected unresolved reference error, got %v", err)
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Line != 3 || perr.Element != "Fill" {
		t.Errorf("expected error at line 3 on <Fill>, got line %d on <%s>", perr.Line, perr.Element)
	}
}

func TestParseLenientRecovery(t *testing.T) {
	src := `<pagx width="10" height="10">
  <Layer>
    <Rectangle size="wide"/>
    <Path data="@red"/>
    <Fill color="@missing"/>
  </Layer>
  <Resources>
    <SolidColor id="red" color="#F00"/>
    <SolidColor id="red" color="#0F0"/>
  </Resources>
</pagx>`
	rec := recovery.NewLenientStrategy()
	doc, err := NewDocumentParser(Config{Recovery: rec}).Parse(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("expected lenient parse to succeed, got %v", err)
	}
	if len(rec.Errors) != 4 {
		t.Fatalf("expected 4 recovered errors, got %d: %v", len(rec.Errors), rec.Errors)
	}
	if !errors.Is(rec.Errors[0], ErrDuplicateID) || !errors.Is(rec.Errors[3], ErrUnresolvedReference) {
		t.Errorf("unexpected recovered errors: %v", rec.Errors)
	}
	contents := doc.Layers[0].Contents
	if rect := contents[0].(*scene.Rectangle); rect.Size != (scene.Size{Width: 100, Height: 100}) {
		t.Errorf("malformed size should fall back to the default, got %+v", rect.Size)
	}
	if path := contents[1].(*scene.Path); path.Data != nil {
		t.Errorf("mistyped reference should stay unset")
	}
	if fill := contents[2].(*scene.Fill); fill.Color != nil {
		t.Errorf("unresolved reference should stay unset")
	}
}

func TestParseReferenceTypeMismatch(t *testing.T) {
	src := `<pagx width="10" height="10">
  <Layer>
    <Path data="@red"/>
  </Layer>
  <Resources>
    <SolidColor id="red" color="#F00"/>
  </Resources>
</pagx>`
	_, err := Parse(strings.NewReader(src))
	if !errors.Is(err, ErrReferenceType) {
		t.Fatalf("expected reference type error, got %v", err)
	}
}

func TestParseDuplicateID(t *testing.T) {
	src := `<pagx width="10" height="10">
  <Layer id="a"/>
  <Layer id="a"/>
</pagx>`
	if _, err := Parse(strings.NewReader(src)); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"wrong root":    `<svg/>`,
		"bad float":     `<pagx width="wide" height="10"/>`,
		"bad color":     `<pagx><Layer><Fill color="red"/></Layer></pagx>`,
		"bad reference": `<pagx><Layer mask="clip"/></pagx>`,
		"unclosed":      `<pagx><Layer>`,
		"empty":         ``,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(src)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestParseSkipsUnknownElements(t *testing.T) {
	src := `<pagx width="10" height="10">
  <Layer>
    <Sparkle intensity="9"/>
    <Rectangle/>
  </Layer>
  <Metadata/>
</pagx>`
	doc := mustParse(t, src)
	if len(doc.Layers) != 1 || len(doc.Layers[0].Contents) != 1 {
		t.Fatalf("expected unknown elements to be skipped")
	}
}

func TestParseText(t *testing.T) {
	src := `<pagx width="100" height="100">
  <Layer>
    <Text fontFamily="Inter" fontSize="24" position="10,30" textAnchor="center"><![CDATA[Hi <there>]]></Text>
    <Text text="attr wins">ignored</Text>
    <Text>
      <GlyphRun font="@f" fontSize="24" glyphs="1,2" xOffsets="0,12"/>
    </Text>
    <TextModifier anchor="1,2" fillColor="#0000FF">
      <RangeSelector end="0.5" shape="rampUp" randomOrder="1" randomSeed="7"/>
    </TextModifier>
    <TextPath path="M0 0 L100 0" perpendicular="false"/>
    <TextBox size="100,40" textAlign="center"/>
  </Layer>
  <Resources>
    <Font id="f" unitsPerEm="1000">
      <Glyph path="M0 0 L500 0 L500 700 Z" advance="600"/>
      <Glyph advance="250"/>
    </Font>
  </Resources>
</pagx>`
	doc := mustParse(t, src)
	contents := doc.Layers[0].Contents

	first := contents[0].(*scene.Text)
	if first.Text != "Hi <there>" || first.FontFamily != "Inter" || first.FontSize != 24 || first.TextAnchor != scene.AnchorCenter {
		t.Errorf("unexpected text: %+v", first)
	}
	if second := contents[1].(*scene.Text); second.Text != "attr wins" {
		t.Errorf("expected attribute text, got %q", second.Text)
	}
	third := contents[2].(*scene.Text)
	if third.Text != "" || len(third.GlyphRuns) != 1 {
		t.Fatalf("expected one glyph run and no text, got %q / %d", third.Text, len(third.GlyphRuns))
	}
	run := third.GlyphRuns[0]
	font := doc.FindNode("f").(*scene.Font)
	if run.Font != font || len(run.Glyphs) != 2 || run.Glyphs[1] != 2 {
		t.Errorf("unexpected glyph run: %+v", run)
	}
	if h, ok := run.Layout.(scene.HorizontalLayout); !ok || h.XOffsets[1] != 12 {
		t.Errorf("expected horizontal layout, got %#v", run.Layout)
	}
	if len(font.Glyphs) != 2 || font.Glyph(1).Path() == nil || font.Glyph(2).Payload != nil {
		t.Errorf("unexpected glyphs: %+v", font.Glyphs)
	}

	mod := contents[3].(*scene.TextModifier)
	if mod.AnchorPoint != (scene.Point{X: 1, Y: 2}) || mod.FillColor == nil || mod.StrokeColor != nil {
		t.Errorf("unexpected modifier: %+v", mod)
	}
	sel := mod.Selectors[0]
	if sel.End != 0.5 || sel.Shape != scene.ShapeRampUp || !sel.RandomOrder || sel.RandomSeed != 7 || sel.Weight != 1 {
		t.Errorf("unexpected selector: %+v", sel)
	}
	if tp := contents[4].(*scene.TextPath); tp.Path == nil || !tp.PerpendicularOff {
		t.Errorf("unexpected text path: %+v", tp)
	}
	if box := contents[5].(*scene.TextBox); !box.WordWrap || box.TextAlign != "center" {
		t.Errorf("unexpected text box: %+v", box)
	}
}

func TestParseGlyphRunLayouts(t *testing.T) {
	tests := []struct {
		attrs string
		want  string
	}{
		{`x="3" y="4"`, "default"},
		{`xOffsets="0,5"`, "horizontal"},
		{`positions="0,0;5,1"`, "point"},
		{`positions="0,0;5,1" rotations="0,90"`, "rsxform"},
		{`positions="0,0;5,1" scales="2,2;1,1"`, "rsxform"},
		{`positions="0,0;5,1" scales="2,1;1,1"`, "matrix"},
		{`positions="0,0;5,1" skews="0,10"`, "matrix"},
	}
	for _, tc := range tests {
		t.Run(tc.want+" "+tc.attrs, func(t *testing.T) {
			src := `<pagx><Layer><Text><GlyphRun glyphs="1,1" ` + tc.attrs + `/></Text></Layer></pagx>`
			doc := mustParse(t, src)
			run := doc.Layers[0].Contents[0].(*scene.Text).GlyphRuns[0]
			if got := run.LayoutName(); got != tc.want {
				t.Errorf("expected %s layout, got %s", tc.want, got)
			}
		})
	}
}

func TestParseDataURIImage(t *testing.T) {
	src := `<pagx>
  <Layer>
    <Fill><ImagePattern image="@img" tileModeX="repeat"/></Fill>
  </Layer>
  <Resources>
    <Image id="img" source="data:image/png;base64,AAEC"/>
    <Image id="file" source="textures/wood.png"/>
  </Resources>
</pagx>`
	doc := mustParse(t, src)
	img := doc.FindNode("img").(*scene.Image)
	if string(img.Data) != "\x00\x01\x02" || img.Source != "" {
		t.Errorf("expected decoded payload, got %+v", img)
	}
	if file := doc.FindNode("file").(*scene.Image); file.Source != "textures/wood.png" || file.Data != nil {
		t.Errorf("expected file source, got %+v", file)
	}
	pattern := doc.Layers[0].Contents[0].(*scene.Fill).Color.(*scene.ImagePattern)
	if pattern.Image != img || pattern.TileModeX != scene.TileRepeat || pattern.TileModeY != "" {
		t.Errorf("unexpected pattern: %+v", pattern)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want scene.Color
	}{
		{"#F00", scene.Color{R: 1, A: 1}},
		{"#00ff00", scene.Color{G: 1, A: 1}},
		{"#0000FF00", scene.Color{B: 1}},
		{"srgb(0.25, 0.5, 1)", scene.Color{R: 0.25, G: 0.5, B: 1, A: 1}},
		{"p3(1, 0, 0, 0.5)", scene.Color{R: 1, A: 0.5}},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
	for _, bad := range []string{"", "#12", "#GGG", "rgb(1,2,3)", "srgb(1,2)"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestDocumentParserWithConfig(t *testing.T) {
	p := NewDocumentParser(Config{})
	doc, err := p.Parse(context.Background(), strings.NewReader(`<pagx width="1" height="2"/>`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Version != scene.Version || doc.Height != 2 {
		t.Errorf("unexpected document: %+v", doc)
	}
}
