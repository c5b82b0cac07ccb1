package scene

// ColorSource is anything a Fill or Stroke can paint with.
type ColorSource interface {
	Node
	colorSource()
}

type colorSourceBase struct{ base }

func (*colorSourceBase) colorSource() {}

// Gradient is a color source interpolating between ordered color stops.
type Gradient interface {
	ColorSource
	Stops() []*ColorStop
	Transform() Matrix
}

// ColorStop is one entry of a gradient ramp.
type ColorStop struct {
	base
	Offset float32
	Color  Color
}

func (*ColorStop) NodeType() NodeType { return NodeColorStop }

// SolidColor paints a single color.
type SolidColor struct {
	colorSourceBase
	Color Color
}

func (*SolidColor) NodeType() NodeType { return NodeSolidColor }

type gradientBase struct {
	colorSourceBase
	Matrix     Matrix
	ColorStops []*ColorStop
}

func (g *gradientBase) Stops() []*ColorStop { return g.ColorStops }
func (g *gradientBase) Transform() Matrix   { return g.Matrix }

type LinearGradient struct {
	gradientBase
	StartPoint Point
	EndPoint   Point
}

func (*LinearGradient) NodeType() NodeType { return NodeLinearGradient }

type RadialGradient struct {
	gradientBase
	Center Point
	Radius float32
}

func (*RadialGradient) NodeType() NodeType { return NodeRadialGradient }

type ConicGradient struct {
	gradientBase
	Center     Point
	StartAngle float32
	EndAngle   float32
}

func (*ConicGradient) NodeType() NodeType { return NodeConicGradient }

type DiamondGradient struct {
	gradientBase
	Center Point
	Radius float32
}

func (*DiamondGradient) NodeType() NodeType { return NodeDiamondGradient }

// ImagePattern paints with a referenced Image.
type ImagePattern struct {
	colorSourceBase
	Image     *Image
	TileModeX TileMode
	TileModeY TileMode
	Matrix    Matrix
}

func (*ImagePattern) NodeType() NodeType { return NodeImagePattern }

// SetStops is a convenience for building gradients.
func (g *gradientBase) SetStops(stops ...*ColorStop) { g.ColorStops = stops }

// GradientEqual reports per-kind structural equality. Sources of different
// kinds are never equal, whatever their field values.
func GradientEqual(a, b ColorSource) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.NodeType() != b.NodeType() {
		return false
	}
	switch ga := a.(type) {
	case *LinearGradient:
		gb := b.(*LinearGradient)
		return ga.StartPoint == gb.StartPoint && ga.EndPoint == gb.EndPoint &&
			ga.Matrix.Normalize() == gb.Matrix.Normalize() && stopsEqual(ga.ColorStops, gb.ColorStops)
	case *RadialGradient:
		gb := b.(*RadialGradient)
		return ga.Center == gb.Center && ga.Radius == gb.Radius &&
			ga.Matrix.Normalize() == gb.Matrix.Normalize() && stopsEqual(ga.ColorStops, gb.ColorStops)
	case *ConicGradient:
		gb := b.(*ConicGradient)
		return ga.Center == gb.Center && ga.StartAngle == gb.StartAngle && ga.EndAngle == gb.EndAngle &&
			ga.Matrix.Normalize() == gb.Matrix.Normalize() && stopsEqual(ga.ColorStops, gb.ColorStops)
	case *DiamondGradient:
		gb := b.(*DiamondGradient)
		return ga.Center == gb.Center && ga.Radius == gb.Radius &&
			ga.Matrix.Normalize() == gb.Matrix.Normalize() && stopsEqual(ga.ColorStops, gb.ColorStops)
	}
	return false
}

func stopsEqual(a, b []*ColorStop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Offset != b[i].Offset || a[i].Color != b[i].Color {
			return false
		}
	}
	return true
}
