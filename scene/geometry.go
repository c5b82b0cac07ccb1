package scene

import "math"

// Point is a 2D coordinate.
type Point struct {
	X, Y float32
}

// Size is a width/height pair.
type Size struct {
	Width, Height float32
}

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left, Top, Right, Bottom float32
}

func (r Rect) Width() float32  { return r.Right - r.Left }
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool { return !(r.Left < r.Right && r.Top < r.Bottom) }

// Intersects reports whether r and o overlap with a non-empty area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Matrix is a 2D affine transform:
//
//	| A C Tx |
//	| B D Ty |
type Matrix struct {
	A, B, C, D, Tx, Ty float32
}

// Identity is the identity transform.
var Identity = Matrix{A: 1, D: 1}

// IsIdentity reports whether m leaves every point unchanged. The zero Matrix
// is treated as identity so that unset fields mean "no transform".
func (m Matrix) IsIdentity() bool {
	return m == Identity || m == Matrix{}
}

// Normalize maps the zero Matrix to Identity.
func (m Matrix) Normalize() Matrix {
	if m == (Matrix{}) {
		return Identity
	}
	return m
}

// Scale returns a scaling transform.
func Scale(sx, sy float32) Matrix { return Matrix{A: sx, D: sy} }

// MapPoint applies m to p.
func (m Matrix) MapPoint(p Point) Point {
	m = m.Normalize()
	return Point{
		X: m.A*p.X + m.C*p.Y + m.Tx,
		Y: m.B*p.X + m.D*p.Y + m.Ty,
	}
}

// ScaleX returns the horizontal scale component.
func (m Matrix) ScaleX() float32 { return m.Normalize().A }

// Color is a non-premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Black is opaque black.
var Black = Color{A: 1}

// RGBA8 returns the color components quantised to 8 bits.
func (c Color) RGBA8() (r, g, b, a uint8) {
	q := func(v float32) uint8 {
		return uint8(math.Round(float64(clamp01(v)) * 255))
	}
	return q(c.R), q(c.G), q(c.B), q(c.A)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "colorDodge"
	BlendColorBurn  BlendMode = "colorBurn"
	BlendHardLight  BlendMode = "hardLight"
	BlendSoftLight  BlendMode = "softLight"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
	BlendPlusLight  BlendMode = "plusLighter"
)

type FillRule string

const (
	FillWinding FillRule = "winding"
	FillEvenOdd FillRule = "evenOdd"
)

type LineCap string

const (
	CapButt   LineCap = "butt"
	CapRound  LineCap = "round"
	CapSquare LineCap = "square"
)

type LineJoin string

const (
	JoinMiter LineJoin = "miter"
	JoinRound LineJoin = "round"
	JoinBevel LineJoin = "bevel"
)

type StrokeAlign string

const (
	AlignCenter  StrokeAlign = "center"
	AlignInside  StrokeAlign = "inside"
	AlignOutside StrokeAlign = "outside"
)

// Placement controls whether a painter draws below or above its siblings.
type Placement string

const (
	PlacementBackground Placement = "background"
	PlacementForeground Placement = "foreground"
)

type TileMode string

const (
	TileClamp  TileMode = "clamp"
	TileRepeat TileMode = "repeat"
	TileMirror TileMode = "mirror"
	TileDecal  TileMode = "decal"
)

type TextAnchor string

const (
	AnchorStart  TextAnchor = "start"
	AnchorCenter TextAnchor = "center"
	AnchorEnd    TextAnchor = "end"
)

type MaskType string

const (
	MaskAlpha     MaskType = "alpha"
	MaskLuminance MaskType = "luminance"
	MaskContour   MaskType = "contour"
)
