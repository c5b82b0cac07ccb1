package writer

import (
	"encoding/base64"

	"github.com/wudi/pagxkit/scene"
)

func (e *encoder) layerID(l *scene.Layer) string { return e.plan.id(l) }

func (e *encoder) layer(l *scene.Layer) *xmlElement {
	if l == nil {
		return nil
	}
	e.inTree[l] = true
	x := newElement("Layer")
	x.str("id", e.layerID(l), "")
	x.str("name", l.Name, "")
	x.bool("visible", l.Visible, true)
	x.float("alpha", l.Alpha, 1)
	x.str("blendMode", string(l.BlendMode), string(scene.BlendNormal))
	x.float("x", l.X, 0)
	x.float("y", l.Y, 0)
	x.matrix("matrix", l.Matrix)
	if l.Mask != nil {
		e.masks = append(e.masks, l.Mask)
		x.set("mask", "@"+e.layerID(l.Mask))
		x.str("maskType", string(l.MaskType), string(scene.MaskAlpha))
	}
	if l.Composition != nil {
		if ref, ok := e.plan.reference(l.Composition); ok {
			x.set("composition", ref)
		}
	}
	for _, c := range l.Contents {
		x.add(e.element(c))
	}
	for _, s := range l.Styles {
		x.add(e.style(s))
	}
	for _, f := range l.Filters {
		x.add(e.filter(f))
	}
	for _, c := range l.Children {
		x.add(e.layer(c))
	}
	return x
}

func (e *encoder) element(n scene.Element) *xmlElement {
	switch v := n.(type) {
	case *scene.Rectangle:
		x := e.open("Rectangle", v)
		x.point("center", v.Center, scene.Point{})
		x.size("size", v.Size, scene.Size{Width: 100, Height: 100})
		x.float("roundness", v.Roundness, 0)
		x.bool("reversed", v.Reversed, false)
		return x
	case *scene.Ellipse:
		x := e.open("Ellipse", v)
		x.point("center", v.Center, scene.Point{})
		x.size("size", v.Size, scene.Size{Width: 100, Height: 100})
		x.bool("reversed", v.Reversed, false)
		return x
	case *scene.Polystar:
		x := e.open("Polystar", v)
		x.point("center", v.Center, scene.Point{})
		x.str("type", string(v.Type), string(scene.PolystarStar))
		x.float("pointCount", v.PointCount, 5)
		x.float("outerRadius", v.OuterRadius, 100)
		x.float("innerRadius", v.InnerRadius, 50)
		x.float("rotation", v.Rotation, 0)
		x.float("outerRoundness", v.OuterRoundness, 0)
		x.float("innerRoundness", v.InnerRoundness, 0)
		x.bool("reversed", v.Reversed, false)
		return x
	case *scene.Path:
		x := e.open("Path", v)
		e.pathAttr(x, "data", v.Data)
		x.bool("reversed", v.Reversed, false)
		return x
	case *scene.Text:
		return e.text(v)
	case *scene.Fill:
		x := e.open("Fill", v)
		child := e.paintColor(x, v.Color)
		x.float("alpha", v.Alpha, 1)
		x.str("blendMode", string(v.BlendMode), string(scene.BlendNormal))
		x.str("fillRule", string(v.FillRule), string(scene.FillWinding))
		x.str("placement", string(v.Placement), string(scene.PlacementBackground))
		x.add(child)
		return x
	case *scene.Stroke:
		x := e.open("Stroke", v)
		child := e.paintColor(x, v.Color)
		x.float("width", v.Width, 1)
		x.float("alpha", v.Alpha, 1)
		x.str("blendMode", string(v.BlendMode), string(scene.BlendNormal))
		x.str("cap", string(v.Cap), string(scene.CapButt))
		x.str("join", string(v.Join), string(scene.JoinMiter))
		x.float("miterLimit", v.MiterLimit, 4)
		x.floats("dashes", v.Dashes)
		x.float("dashOffset", v.DashOffset, 0)
		x.str("align", string(v.Align), string(scene.AlignCenter))
		x.str("placement", string(v.Placement), string(scene.PlacementBackground))
		x.add(child)
		return x
	case *scene.TrimPath:
		x := e.open("TrimPath", v)
		x.float("start", v.Start, 0)
		x.float("end", v.End, 1)
		x.float("offset", v.Offset, 0)
		x.str("type", v.Type, "separate")
		return x
	case *scene.RoundCorner:
		x := e.open("RoundCorner", v)
		x.float("radius", v.Radius, 10)
		return x
	case *scene.MergePath:
		x := e.open("MergePath", v)
		x.str("mode", v.Mode, "append")
		return x
	case *scene.TextModifier:
		return e.textModifier(v)
	case *scene.TextPath:
		x := e.open("TextPath", v)
		e.pathAttr(x, "path", v.Path)
		x.point("baselineOrigin", v.BaselineOrigin, scene.Point{})
		x.float("baselineAngle", v.BaselineAngle, 0)
		x.float("firstMargin", v.FirstMargin, 0)
		x.float("lastMargin", v.LastMargin, 0)
		x.bool("perpendicular", !v.PerpendicularOff, true)
		x.bool("reversed", v.Reversed, false)
		x.bool("forceAlignment", v.ForceAlignment, false)
		return x
	case *scene.TextBox:
		x := e.open("TextBox", v)
		x.point("position", v.Position, scene.Point{})
		x.size("size", v.Size, scene.Size{})
		x.str("textAlign", v.TextAlign, "start")
		x.str("verticalAlign", v.VerticalAlign, "top")
		x.str("writingMode", v.WritingMode, "horizontal")
		x.float("lineHeight", v.LineHeight, 0)
		x.bool("wordWrap", v.WordWrap, true)
		x.str("overflow", v.Overflow, "visible")
		return x
	case *scene.Repeater:
		x := e.open("Repeater", v)
		x.float("copies", v.Copies, 3)
		x.float("offset", v.Offset, 0)
		x.str("order", v.Order, "belowOriginal")
		x.point("anchor", v.Anchor, scene.Point{})
		x.point("position", v.Position, scene.Point{X: 100, Y: 100})
		x.float("rotation", v.Rotation, 0)
		x.point("scale", v.Scale, scene.Point{X: 1, Y: 1})
		x.float("startAlpha", v.StartAlpha, 1)
		x.float("endAlpha", v.EndAlpha, 1)
		return x
	case *scene.Group:
		x := e.open("Group", v)
		x.point("anchor", v.Anchor, scene.Point{})
		x.point("position", v.Position, scene.Point{})
		x.float("rotation", v.Rotation, 0)
		x.point("scale", v.Scale, scene.Point{X: 1, Y: 1})
		x.float("skew", v.Skew, 0)
		x.float("skewAxis", v.SkewAxis, 0)
		x.float("alpha", v.Alpha, 1)
		for _, c := range v.Elements {
			x.add(e.element(c))
		}
		return x
	}
	return nil
}

// open starts an element carrying the node's own id, if any.
func (e *encoder) open(name string, n scene.Node) *xmlElement {
	x := newElement(name)
	x.str("id", n.NodeID(), "")
	return x
}

// pathAttr writes a PathData as a reference or as inline SVG path data.
func (e *encoder) pathAttr(x *xmlElement, name string, p *scene.PathData) {
	if p == nil {
		return
	}
	if ref, ok := e.plan.reference(p); ok {
		x.set(name, ref)
		return
	}
	x.set(name, p.String())
}

// paintColor sets the color attribute of a painter, or returns the child
// element describing an inline gradient or pattern.
func (e *encoder) paintColor(x *xmlElement, c scene.ColorSource) *xmlElement {
	if c == nil {
		return nil
	}
	if ref, ok := e.plan.reference(c); ok {
		x.set("color", ref)
		return nil
	}
	if solid, ok := c.(*scene.SolidColor); ok {
		x.set("color", FormatColor(solid.Color))
		return nil
	}
	return e.colorSource(c)
}

func (e *encoder) colorSource(c scene.ColorSource) *xmlElement {
	var x *xmlElement
	switch v := c.(type) {
	case *scene.SolidColor:
		x = e.resourceElement("SolidColor", v)
		x.color("color", v.Color, scene.Black)
		return x
	case *scene.LinearGradient:
		x = e.resourceElement("LinearGradient", v)
		x.point("startPoint", v.StartPoint, scene.Point{})
		x.point("endPoint", v.EndPoint, scene.Point{})
	case *scene.RadialGradient:
		x = e.resourceElement("RadialGradient", v)
		x.point("center", v.Center, scene.Point{})
		x.float("radius", v.Radius, 0)
	case *scene.ConicGradient:
		x = e.resourceElement("ConicGradient", v)
		x.point("center", v.Center, scene.Point{})
		x.float("startAngle", v.StartAngle, 0)
		x.float("endAngle", v.EndAngle, 360)
	case *scene.DiamondGradient:
		x = e.resourceElement("DiamondGradient", v)
		x.point("center", v.Center, scene.Point{})
		x.float("radius", v.Radius, 0)
	case *scene.ImagePattern:
		x = e.resourceElement("ImagePattern", v)
		if v.Image != nil {
			e.imageAttr(x, "image", v.Image)
		}
		x.str("tileModeX", string(v.TileModeX), string(scene.TileClamp))
		x.str("tileModeY", string(v.TileModeY), string(scene.TileClamp))
		x.matrix("matrix", v.Matrix)
		return x
	default:
		return nil
	}
	g := c.(scene.Gradient)
	x.matrix("matrix", g.Transform())
	for _, s := range g.Stops() {
		stop := newElement("ColorStop")
		stop.set("offset", scene.FormatFloat(s.Offset))
		stop.set("color", FormatColor(s.Color))
		x.add(stop)
	}
	return x
}

// resourceElement starts an element carrying the node's written id.
func (e *encoder) resourceElement(name string, n scene.Node) *xmlElement {
	x := newElement(name)
	x.str("id", e.plan.id(n), "")
	return x
}

func (e *encoder) imageAttr(x *xmlElement, name string, img *scene.Image) {
	if img == nil {
		return
	}
	if ref, ok := e.plan.reference(img); ok {
		x.set(name, ref)
		return
	}
	x.str(name, imageSource(img), "")
}

// imageSource returns the file path of img, or its bytes as a data URI.
func imageSource(img *scene.Image) string {
	if len(img.Data) == 0 {
		return img.Source
	}
	return "data:" + mimeType(img.Data) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func mimeType(data []byte) string {
	switch {
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	}
	return "application/octet-stream"
}

func (e *encoder) resource(n scene.Node) *xmlElement {
	switch v := n.(type) {
	case *scene.Image:
		x := e.resourceElement("Image", v)
		x.str("source", imageSource(v), "")
		return x
	case *scene.PathData:
		x := e.resourceElement("PathData", v)
		x.set("data", v.String())
		return x
	case *scene.Composition:
		x := e.resourceElement("Composition", v)
		x.set("width", scene.FormatFloat(v.Width))
		x.set("height", scene.FormatFloat(v.Height))
		for _, l := range v.Layers {
			x.add(e.layer(l))
		}
		return x
	case *scene.Font:
		x := e.resourceElement("Font", v)
		x.int("unitsPerEm", v.UnitsPerEm, 1000)
		for _, g := range v.Glyphs {
			x.add(e.glyph(g))
		}
		return x
	case scene.ColorSource:
		return e.colorSource(v)
	}
	return nil
}

func (e *encoder) glyph(g *scene.Glyph) *xmlElement {
	x := e.open("Glyph", g)
	if p := g.Path(); p != nil {
		e.pathAttr(x, "path", p)
	}
	if img := g.Image(); img != nil {
		e.imageAttr(x, "image", img)
	}
	x.point("offset", g.Offset, scene.Point{})
	x.float("advance", g.Advance, 0)
	return x
}

func (e *encoder) text(t *scene.Text) *xmlElement {
	x := e.open("Text", t)
	x.str("text", t.Text, "")
	x.point("position", t.Position, scene.Point{})
	x.str("fontFamily", t.FontFamily, "")
	x.str("fontStyle", t.FontStyle, "")
	x.float("fontSize", t.FontSize, 12)
	x.float("letterSpacing", t.LetterSpacing, 0)
	x.bool("fauxBold", t.FauxBold, false)
	x.bool("fauxItalic", t.FauxItalic, false)
	x.str("textAnchor", string(t.TextAnchor), string(scene.AnchorStart))
	for _, r := range t.GlyphRuns {
		x.add(e.glyphRun(r))
	}
	return x
}

func (e *encoder) glyphRun(r *scene.GlyphRun) *xmlElement {
	x := e.open("GlyphRun", r)
	if r.Font != nil {
		if ref, ok := e.plan.reference(r.Font); ok {
			x.set("font", ref)
		}
	}
	x.float("fontSize", r.FontSize, 12)
	if len(r.Glyphs) > 0 {
		ids := make([]float32, len(r.Glyphs))
		for i, g := range r.Glyphs {
			ids[i] = float32(g)
		}
		x.floats("glyphs", ids)
	}
	x.float("x", r.X, 0)
	x.float("y", r.Y, 0)
	switch l := r.Layout.(type) {
	case scene.HorizontalLayout:
		x.floats("xOffsets", l.XOffsets)
	case scene.PointLayout:
		x.points("positions", l.Positions)
	case scene.RSXformLayout:
		x.points("positions", l.Positions)
		x.points("scales", l.Scales)
		x.floats("rotations", l.Rotations)
	case scene.MatrixLayout:
		x.points("positions", l.Positions)
		x.points("scales", l.Scales)
		x.floats("rotations", l.Rotations)
		x.floats("skews", l.Skews)
	}
	return x
}

func (e *encoder) textModifier(m *scene.TextModifier) *xmlElement {
	x := e.open("TextModifier", m)
	x.point("anchor", m.AnchorPoint, scene.Point{})
	x.point("position", m.Position, scene.Point{})
	x.float("rotation", m.Rotation, 0)
	x.point("scale", m.Scale, scene.Point{X: 1, Y: 1})
	x.float("skew", m.Skew, 0)
	x.float("skewAxis", m.SkewAxis, 0)
	x.float("alpha", m.Alpha, 1)
	if m.FillColor != nil {
		x.set("fillColor", FormatColor(*m.FillColor))
	}
	if m.StrokeColor != nil {
		x.set("strokeColor", FormatColor(*m.StrokeColor))
	}
	x.float("strokeWidth", m.StrokeWidth, 0)
	for _, s := range m.Selectors {
		sel := e.open("RangeSelector", s)
		sel.float("start", s.Start, 0)
		sel.float("end", s.End, 1)
		sel.float("offset", s.Offset, 0)
		sel.str("unit", string(s.Unit), string(scene.UnitPercentage))
		sel.str("shape", string(s.Shape), string(scene.ShapeSquare))
		sel.float("easeIn", s.EaseIn, 0)
		sel.float("easeOut", s.EaseOut, 0)
		sel.str("mode", s.Mode, "add")
		sel.float("weight", s.Weight, 1)
		sel.bool("randomOrder", s.RandomOrder, false)
		sel.int("randomSeed", s.RandomSeed, 0)
		x.add(sel)
	}
	return x
}

func (e *encoder) style(s scene.LayerStyle) *xmlElement {
	switch v := s.(type) {
	case *scene.DropShadowStyle:
		x := e.open("DropShadowStyle", v)
		x.str("blendMode", string(v.BlendMode), string(scene.BlendNormal))
		x.float("offsetX", v.OffsetX, 0)
		x.float("offsetY", v.OffsetY, 0)
		x.float("blurX", v.BlurX, 0)
		x.float("blurY", v.BlurY, 0)
		x.color("color", v.Color, scene.Black)
		x.bool("showBehindLayer", v.ShowBehind, true)
		return x
	case *scene.InnerShadowStyle:
		x := e.open("InnerShadowStyle", v)
		x.str("blendMode", string(v.BlendMode), string(scene.BlendNormal))
		x.float("offsetX", v.OffsetX, 0)
		x.float("offsetY", v.OffsetY, 0)
		x.float("blurX", v.BlurX, 0)
		x.float("blurY", v.BlurY, 0)
		x.color("color", v.Color, scene.Black)
		return x
	case *scene.BackgroundBlurStyle:
		x := e.open("BackgroundBlurStyle", v)
		x.str("blendMode", string(v.BlendMode), string(scene.BlendNormal))
		x.float("blurX", v.BlurX, 0)
		x.float("blurY", v.BlurY, 0)
		x.str("tileMode", string(v.TileMode), string(scene.TileMirror))
		return x
	}
	return nil
}

func (e *encoder) filter(f scene.LayerFilter) *xmlElement {
	switch v := f.(type) {
	case *scene.BlurFilter:
		x := e.open("BlurFilter", v)
		x.float("blurX", v.BlurX, 0)
		x.float("blurY", v.BlurY, 0)
		x.str("tileMode", string(v.TileMode), string(scene.TileDecal))
		return x
	case *scene.DropShadowFilter:
		x := e.open("DropShadowFilter", v)
		shadowFilter(x, v.OffsetX, v.OffsetY, v.BlurX, v.BlurY, v.Color, v.ShadowOnly)
		return x
	case *scene.InnerShadowFilter:
		x := e.open("InnerShadowFilter", v)
		shadowFilter(x, v.OffsetX, v.OffsetY, v.BlurX, v.BlurY, v.Color, v.ShadowOnly)
		return x
	case *scene.BlendFilter:
		x := e.open("BlendFilter", v)
		x.color("color", v.Color, scene.Black)
		x.str("blendMode", string(v.BlendMode), string(scene.BlendNormal))
		return x
	case *scene.ColorMatrixFilter:
		x := e.open("ColorMatrixFilter", v)
		if v.Matrix != identityColorMatrix {
			x.floats("matrix", v.Matrix[:])
		}
		return x
	}
	return nil
}

func shadowFilter(x *xmlElement, offsetX, offsetY, blurX, blurY float32, color scene.Color, shadowOnly bool) {
	x.float("offsetX", offsetX, 0)
	x.float("offsetY", offsetY, 0)
	x.float("blurX", blurX, 0)
	x.float("blurY", blurY, 0)
	x.color("color", color, scene.Black)
	x.bool("shadowOnly", shadowOnly, false)
}

var identityColorMatrix = [20]float32{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}
