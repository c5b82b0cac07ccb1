package parser

import (
	"fmt"

	"github.com/wudi/pagxkit/scene"
)

func (b *builder) document(root *element) {
	if root.name != "pagx" {
		b.fail(root, fmt.Errorf("root element is <%s>, want <pagx>", root.name))
		return
	}
	a := b.attrs(root)
	b.doc.Version = a.str("version", scene.Version)
	b.doc.Width = a.float("width", 0)
	b.doc.Height = a.float("height", 0)

	// Resources are built first so that they lead the node list.
	for _, c := range root.children {
		if c.name == "Resources" {
			b.resources(c)
		}
	}
	for _, c := range root.children {
		switch c.name {
		case "Resources":
		case "Layer":
			b.doc.Layers = append(b.doc.Layers, b.layer(c))
		default:
			b.skip(c, root.name)
		}
	}
}

func (b *builder) resources(el *element) {
	for _, c := range el.children {
		switch c.name {
		case "Image":
			b.image(c)
		case "PathData":
			b.pathData(c)
		case "Composition":
			b.composition(c)
		case "Font":
			b.font(c)
		default:
			if b.colorSource(c) == nil {
				b.skip(c, el.name)
			}
		}
	}
}

func (b *builder) image(el *element) *scene.Image {
	img := add(b, el, &scene.Image{})
	b.setImageSource(el, "source", b.attrs(el).str("source", ""), img)
	return img
}

// setImageSource stores a data URI payload in Data and anything else in
// Source.
func (b *builder) setImageSource(el *element, attr, src string, img *scene.Image) {
	data, isData, err := decodeDataURI(src)
	if err != nil {
		b.attrs(el).invalid(attr, err)
		return
	}
	if isData {
		img.Data = data
		return
	}
	img.Source = src
}

func (b *builder) pathData(el *element) *scene.PathData {
	v := b.attrs(el).str("data", "")
	p, err := scene.ParsePathData(v)
	if err != nil {
		b.attrs(el).invalid("data", err)
		p = &scene.PathData{}
	}
	return add(b, el, p)
}

// inlinePath binds attr to a PathData: a reference, or an anonymous node
// decoded from inline SVG path data.
func (b *builder) inlinePath(el *element, attr string, set func(*scene.PathData)) {
	v, ok := el.attr(attr)
	if !ok || v == "" {
		return
	}
	if v[0] == '@' {
		b.reference(el, attr, v, refTo(set))
		return
	}
	p, err := scene.ParsePathData(v)
	if err != nil {
		b.attrs(el).invalid(attr, err)
		return
	}
	set(scene.Add(b.doc, p))
}

func (b *builder) composition(el *element) *scene.Composition {
	a := b.attrs(el)
	c := add(b, el, &scene.Composition{Width: a.float("width", 0), Height: a.float("height", 0)})
	for _, child := range el.children {
		if child.name == "Layer" {
			c.Layers = append(c.Layers, b.layer(child))
			continue
		}
		b.skip(child, el.name)
	}
	return c
}

func (b *builder) font(el *element) *scene.Font {
	f := add(b, el, &scene.Font{UnitsPerEm: b.attrs(el).int("unitsPerEm", 1000)})
	for _, c := range el.children {
		if c.name == "Glyph" {
			if f.Full() {
				b.report(c, "", fmt.Errorf("font holds more than %d glyphs", scene.MaxGlyphs))
				continue
			}
			f.AddGlyph(b.glyph(c))
			continue
		}
		b.skip(c, el.name)
	}
	return f
}

func (b *builder) glyph(el *element) *scene.Glyph {
	a := b.attrs(el)
	g := add(b, el, &scene.Glyph{Offset: a.point("offset", scene.Point{}), Advance: a.float("advance", 0)})
	b.inlinePath(el, "path", func(p *scene.PathData) { g.Payload = scene.VectorGlyph{Path: p} })
	if v, ok := el.attr("image"); ok && v != "" {
		if v[0] == '@' {
			b.reference(el, "image", v, refTo(func(img *scene.Image) { g.Payload = scene.BitmapGlyph{Image: img} }))
		} else {
			img := scene.Add(b.doc, &scene.Image{})
			b.setImageSource(el, "image", v, img)
			g.Payload = scene.BitmapGlyph{Image: img}
		}
	}
	return g
}

func (b *builder) layer(el *element) *scene.Layer {
	l := add(b, el, scene.NewLayer())
	a := b.attrs(el)
	l.Name = a.str("name", "")
	l.Visible = a.bool("visible", true)
	l.Alpha = a.float("alpha", 1)
	l.BlendMode = scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal)))
	l.X = a.float("x", 0)
	l.Y = a.float("y", 0)
	l.Matrix = a.matrix("matrix")
	l.MaskType = scene.MaskType(a.enum("maskType", string(scene.MaskAlpha)))
	if v, ok := el.attr("mask"); ok {
		b.reference(el, "mask", v, refTo(func(m *scene.Layer) { l.Mask = m }))
	}
	if v, ok := el.attr("composition"); ok {
		b.reference(el, "composition", v, refTo(func(c *scene.Composition) { l.Composition = c }))
	}

	for _, c := range el.children {
		if c.name == "Layer" {
			l.Children = append(l.Children, b.layer(c))
			continue
		}
		if s := b.style(c); s != nil {
			l.Styles = append(l.Styles, s)
			continue
		}
		if f := b.filter(c); f != nil {
			l.Filters = append(l.Filters, f)
			continue
		}
		if e := b.element(c); e != nil {
			l.Contents = append(l.Contents, e)
			continue
		}
		b.skip(c, el.name)
	}
	return l
}

// element builds a content element, or returns nil for any other name.
func (b *builder) element(el *element) scene.Element {
	a := b.attrs(el)
	switch el.name {
	case "Rectangle":
		return add(b, el, &scene.Rectangle{
			Center:    a.point("center", scene.Point{}),
			Size:      a.size("size", scene.Size{Width: 100, Height: 100}),
			Roundness: a.float("roundness", 0),
			Reversed:  a.bool("reversed", false),
		})
	case "Ellipse":
		return add(b, el, &scene.Ellipse{
			Center:   a.point("center", scene.Point{}),
			Size:     a.size("size", scene.Size{Width: 100, Height: 100}),
			Reversed: a.bool("reversed", false),
		})
	case "Polystar":
		return add(b, el, &scene.Polystar{
			Center:         a.point("center", scene.Point{}),
			Type:           scene.PolystarType(a.str("type", string(scene.PolystarStar))),
			PointCount:     a.float("pointCount", 5),
			OuterRadius:    a.float("outerRadius", 100),
			InnerRadius:    a.float("innerRadius", 50),
			Rotation:       a.float("rotation", 0),
			OuterRoundness: a.float("outerRoundness", 0),
			InnerRoundness: a.float("innerRoundness", 0),
			Reversed:       a.bool("reversed", false),
		})
	case "Path":
		p := add(b, el, &scene.Path{Reversed: a.bool("reversed", false)})
		b.inlinePath(el, "data", func(d *scene.PathData) { p.Data = d })
		return p
	case "Text":
		return b.text(el)
	case "Fill":
		f := add(b, el, &scene.Fill{
			Alpha:     a.float("alpha", 1),
			BlendMode: scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal))),
			FillRule:  scene.FillRule(a.enum("fillRule", string(scene.FillWinding))),
			Placement: scene.Placement(a.enum("placement", string(scene.PlacementBackground))),
		})
		b.paintColor(el, func(c scene.ColorSource) { f.Color = c })
		return f
	case "Stroke":
		s := add(b, el, &scene.Stroke{
			Width:      a.float("width", 1),
			Alpha:      a.float("alpha", 1),
			BlendMode:  scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal))),
			Cap:        scene.LineCap(a.enum("cap", string(scene.CapButt))),
			Join:       scene.LineJoin(a.enum("join", string(scene.JoinMiter))),
			MiterLimit: a.float("miterLimit", 4),
			Dashes:     a.floats("dashes"),
			DashOffset: a.float("dashOffset", 0),
			Align:      scene.StrokeAlign(a.enum("align", string(scene.AlignCenter))),
			Placement:  scene.Placement(a.enum("placement", string(scene.PlacementBackground))),
		})
		b.paintColor(el, func(c scene.ColorSource) { s.Color = c })
		return s
	case "TrimPath":
		return add(b, el, &scene.TrimPath{
			Start:  a.float("start", 0),
			End:    a.float("end", 1),
			Offset: a.float("offset", 0),
			Type:   a.enum("type", "separate"),
		})
	case "RoundCorner":
		return add(b, el, &scene.RoundCorner{Radius: a.float("radius", 10)})
	case "MergePath":
		return add(b, el, &scene.MergePath{Mode: a.enum("mode", "append")})
	case "TextModifier":
		return b.textModifier(el)
	case "TextPath":
		tp := add(b, el, &scene.TextPath{
			BaselineOrigin:   a.point("baselineOrigin", scene.Point{}),
			BaselineAngle:    a.float("baselineAngle", 0),
			FirstMargin:      a.float("firstMargin", 0),
			LastMargin:       a.float("lastMargin", 0),
			PerpendicularOff: !a.bool("perpendicular", true),
			Reversed:         a.bool("reversed", false),
			ForceAlignment:   a.bool("forceAlignment", false),
		})
		b.inlinePath(el, "path", func(p *scene.PathData) { tp.Path = p })
		return tp
	case "TextBox":
		return add(b, el, &scene.TextBox{
			Position:      a.point("position", scene.Point{}),
			Size:          a.size("size", scene.Size{}),
			TextAlign:     a.enum("textAlign", "start"),
			VerticalAlign: a.enum("verticalAlign", "top"),
			WritingMode:   a.enum("writingMode", "horizontal"),
			LineHeight:    a.float("lineHeight", 0),
			WordWrap:      a.bool("wordWrap", true),
			Overflow:      a.enum("overflow", "visible"),
		})
	case "Repeater":
		return add(b, el, &scene.Repeater{
			Copies:     a.float("copies", 3),
			Offset:     a.float("offset", 0),
			Order:      a.enum("order", "belowOriginal"),
			Anchor:     a.point("anchor", scene.Point{}),
			Position:   a.point("position", scene.Point{X: 100, Y: 100}),
			Rotation:   a.float("rotation", 0),
			Scale:      a.point("scale", scene.Point{X: 1, Y: 1}),
			StartAlpha: a.float("startAlpha", 1),
			EndAlpha:   a.float("endAlpha", 1),
		})
	case "Group":
		g := add(b, el, &scene.Group{
			Anchor:   a.point("anchor", scene.Point{}),
			Position: a.point("position", scene.Point{}),
			Rotation: a.float("rotation", 0),
			Scale:    a.point("scale", scene.Point{X: 1, Y: 1}),
			Skew:     a.float("skew", 0),
			SkewAxis: a.float("skewAxis", 0),
			Alpha:    a.float("alpha", 1),
		})
		for _, c := range el.children {
			if e := b.element(c); e != nil {
				g.Elements = append(g.Elements, e)
				continue
			}
			b.skip(c, el.name)
		}
		return g
	}
	return nil
}

// paintColor binds the color of a Fill or Stroke: a reference, an inline
// color (which becomes an anonymous SolidColor) or a child color source.
func (b *builder) paintColor(el *element, set func(scene.ColorSource)) {
	if v, ok := el.attr("color"); ok && v != "" {
		if v[0] == '@' {
			b.reference(el, "color", v, refTo(set))
		} else if c, err := ParseColor(v); err != nil {
			b.attrs(el).invalid("color", err)
		} else {
			set(scene.Add(b.doc, &scene.SolidColor{Color: c}))
		}
	}
	for _, c := range el.children {
		if src := b.colorSource(c); src != nil {
			set(src)
			continue
		}
		b.skip(c, el.name)
	}
}

// colorSource builds a color source, or returns nil for any other name.
func (b *builder) colorSource(el *element) scene.ColorSource {
	a := b.attrs(el)
	switch el.name {
	case "SolidColor":
		return add(b, el, &scene.SolidColor{Color: a.color("color", scene.Black)})
	case "LinearGradient":
		g := add(b, el, &scene.LinearGradient{
			StartPoint: a.point("startPoint", scene.Point{}),
			EndPoint:   a.point("endPoint", scene.Point{}),
		})
		g.Matrix = a.matrix("matrix")
		g.SetStops(b.colorStops(el)...)
		return g
	case "RadialGradient":
		g := add(b, el, &scene.RadialGradient{Center: a.point("center", scene.Point{}), Radius: a.float("radius", 0)})
		g.Matrix = a.matrix("matrix")
		g.SetStops(b.colorStops(el)...)
		return g
	case "ConicGradient":
		g := add(b, el, &scene.ConicGradient{
			Center:     a.point("center", scene.Point{}),
			StartAngle: a.float("startAngle", 0),
			EndAngle:   a.float("endAngle", 360),
		})
		g.Matrix = a.matrix("matrix")
		g.SetStops(b.colorStops(el)...)
		return g
	case "DiamondGradient":
		g := add(b, el, &scene.DiamondGradient{Center: a.point("center", scene.Point{}), Radius: a.float("radius", 0)})
		g.Matrix = a.matrix("matrix")
		g.SetStops(b.colorStops(el)...)
		return g
	case "ImagePattern":
		p := add(b, el, &scene.ImagePattern{
			TileModeX: scene.TileMode(a.enum("tileModeX", string(scene.TileClamp))),
			TileModeY: scene.TileMode(a.enum("tileModeY", string(scene.TileClamp))),
			Matrix:    a.matrix("matrix"),
		})
		if v, ok := el.attr("image"); ok && v != "" {
			if v[0] == '@' {
				b.reference(el, "image", v, refTo(func(img *scene.Image) { p.Image = img }))
			} else {
				p.Image = scene.Add(b.doc, &scene.Image{})
				b.setImageSource(el, "image", v, p.Image)
			}
		}
		return p
	}
	return nil
}

func (b *builder) colorStops(el *element) []*scene.ColorStop {
	var stops []*scene.ColorStop
	for _, c := range el.children {
		if c.name != "ColorStop" {
			b.skip(c, el.name)
			continue
		}
		a := b.attrs(c)
		stops = append(stops, add(b, c, &scene.ColorStop{
			Offset: a.float("offset", 0),
			Color:  a.color("color", scene.Black),
		}))
	}
	return stops
}

func (b *builder) text(el *element) *scene.Text {
	a := b.attrs(el)
	t := add(b, el, &scene.Text{
		Position:      a.point("position", scene.Point{}),
		FontFamily:    a.str("fontFamily", ""),
		FontStyle:     a.str("fontStyle", ""),
		FontSize:      a.float("fontSize", 12),
		LetterSpacing: a.float("letterSpacing", 0),
		FauxBold:      a.bool("fauxBold", false),
		FauxItalic:    a.bool("fauxItalic", false),
		TextAnchor:    scene.TextAnchor(a.enum("textAnchor", string(scene.AnchorStart))),
	})
	if v, ok := el.attr("text"); ok {
		t.Text = v
	} else {
		t.Text = el.content()
	}
	for _, c := range el.children {
		if c.name == "GlyphRun" {
			t.GlyphRuns = append(t.GlyphRuns, b.glyphRun(c))
			continue
		}
		b.skip(c, el.name)
	}
	return t
}

// glyphRun infers the layout from the arrays present: xOffsets is
// horizontal; skews or non-uniform scales need a full matrix; scales or
// rotations alone are RSXform; bare positions are point placement.
func (b *builder) glyphRun(el *element) *scene.GlyphRun {
	a := b.attrs(el)
	r := add(b, el, &scene.GlyphRun{
		FontSize: a.float("fontSize", 12),
		X:        a.float("x", 0),
		Y:        a.float("y", 0),
	})
	if v, ok := el.attr("font"); ok {
		b.reference(el, "font", v, refTo(func(f *scene.Font) { r.Font = f }))
	}
	for _, g := range a.floats("glyphs") {
		r.Glyphs = append(r.Glyphs, scene.GlyphID(g))
	}

	xOffsets := a.floats("xOffsets")
	positions := a.points("positions")
	scales := a.points("scales")
	rotations := a.floats("rotations")
	skews := a.floats("skews")
	switch {
	case xOffsets != nil:
		r.Layout = scene.HorizontalLayout{XOffsets: xOffsets}
	case skews != nil || !uniform(scales):
		r.Layout = scene.MatrixLayout{Positions: positions, Scales: scales, Rotations: rotations, Skews: skews}
	case scales != nil || rotations != nil:
		r.Layout = scene.RSXformLayout{Positions: positions, Scales: scales, Rotations: rotations}
	case positions != nil:
		r.Layout = scene.PointLayout{Positions: positions}
	}
	return r
}

func uniform(scales []scene.Point) bool {
	for _, s := range scales {
		if s.X != s.Y {
			return false
		}
	}
	return true
}

func (b *builder) textModifier(el *element) *scene.TextModifier {
	a := b.attrs(el)
	m := add(b, el, &scene.TextModifier{
		AnchorPoint: a.point("anchor", scene.Point{}),
		Position:    a.point("position", scene.Point{}),
		Rotation:    a.float("rotation", 0),
		Scale:       a.point("scale", scene.Point{X: 1, Y: 1}),
		Skew:        a.float("skew", 0),
		SkewAxis:    a.float("skewAxis", 0),
		Alpha:       a.float("alpha", 1),
		FillColor:   a.optionalColor("fillColor"),
		StrokeColor: a.optionalColor("strokeColor"),
		StrokeWidth: a.float("strokeWidth", 0),
	})
	for _, c := range el.children {
		if c.name != "RangeSelector" {
			b.skip(c, el.name)
			continue
		}
		s := b.attrs(c)
		m.Selectors = append(m.Selectors, add(b, c, &scene.RangeSelector{
			Start:       s.float("start", 0),
			End:         s.float("end", 1),
			Offset:      s.float("offset", 0),
			Unit:        scene.SelectorUnit(s.enum("unit", string(scene.UnitPercentage))),
			Shape:       scene.SelectorShape(s.enum("shape", string(scene.ShapeSquare))),
			EaseIn:      s.float("easeIn", 0),
			EaseOut:     s.float("easeOut", 0),
			Mode:        s.enum("mode", "add"),
			Weight:      s.float("weight", 1),
			RandomOrder: s.bool("randomOrder", false),
			RandomSeed:  s.int("randomSeed", 0),
		}))
	}
	return m
}

// style builds a layer style, or returns nil for any other name.
func (b *builder) style(el *element) scene.LayerStyle {
	a := b.attrs(el)
	switch el.name {
	case "DropShadowStyle":
		return add(b, el, &scene.DropShadowStyle{
			BlendMode:  scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal))),
			OffsetX:    a.float("offsetX", 0),
			OffsetY:    a.float("offsetY", 0),
			BlurX:      a.float("blurX", 0),
			BlurY:      a.float("blurY", 0),
			Color:      a.color("color", scene.Black),
			ShowBehind: a.bool("showBehindLayer", true),
		})
	case "InnerShadowStyle":
		return add(b, el, &scene.InnerShadowStyle{
			BlendMode: scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal))),
			OffsetX:   a.float("offsetX", 0),
			OffsetY:   a.float("offsetY", 0),
			BlurX:     a.float("blurX", 0),
			BlurY:     a.float("blurY", 0),
			Color:     a.color("color", scene.Black),
		})
	case "BackgroundBlurStyle":
		return add(b, el, &scene.BackgroundBlurStyle{
			BlendMode: scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal))),
			BlurX:     a.float("blurX", 0),
			BlurY:     a.float("blurY", 0),
			TileMode:  scene.TileMode(a.enum("tileMode", string(scene.TileMirror))),
		})
	}
	return nil
}

// filter builds a layer filter, or returns nil for any other name.
func (b *builder) filter(el *element) scene.LayerFilter {
	a := b.attrs(el)
	switch el.name {
	case "BlurFilter":
		return add(b, el, &scene.BlurFilter{
			BlurX:    a.float("blurX", 0),
			BlurY:    a.float("blurY", 0),
			TileMode: scene.TileMode(a.enum("tileMode", string(scene.TileDecal))),
		})
	case "DropShadowFilter":
		return add(b, el, &scene.DropShadowFilter{
			OffsetX:    a.float("offsetX", 0),
			OffsetY:    a.float("offsetY", 0),
			BlurX:      a.float("blurX", 0),
			BlurY:      a.float("blurY", 0),
			Color:      a.color("color", scene.Black),
			ShadowOnly: a.bool("shadowOnly", false),
		})
	case "InnerShadowFilter":
		return add(b, el, &scene.InnerShadowFilter{
			OffsetX:    a.float("offsetX", 0),
			OffsetY:    a.float("offsetY", 0),
			BlurX:      a.float("blurX", 0),
			BlurY:      a.float("blurY", 0),
			Color:      a.color("color", scene.Black),
			ShadowOnly: a.bool("shadowOnly", false),
		})
	case "BlendFilter":
		return add(b, el, &scene.BlendFilter{
			Color:     a.color("color", scene.Black),
			BlendMode: scene.BlendMode(a.enum("blendMode", string(scene.BlendNormal))),
		})
	case "ColorMatrixFilter":
		f := add(b, el, &scene.ColorMatrixFilter{})
		values := a.floats("matrix")
		switch len(values) {
		case 0:
			f.Matrix = identityColorMatrix
		case len(f.Matrix):
			copy(f.Matrix[:], values)
		default:
			a.invalid("matrix", fmt.Errorf("expected %d numbers, got %d", len(f.Matrix), len(values)))
		}
		return f
	}
	return nil
}

var identityColorMatrix = [20]float32{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}
