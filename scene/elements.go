package scene

// Path draws the geometry of a shared PathData resource.
type Path struct {
	elementBase
	Data     *PathData
	Reversed bool
}

func (*Path) NodeType() NodeType { return NodePath }

type Rectangle struct {
	elementBase
	Center    Point
	Size      Size
	Roundness float32
	Reversed  bool
}

func (*Rectangle) NodeType() NodeType { return NodeRectangle }

// Bounds returns the rectangle's axis-aligned extent.
func (r *Rectangle) Bounds() Rect {
	return Rect{
		Left:   r.Center.X - r.Size.Width/2,
		Top:    r.Center.Y - r.Size.Height/2,
		Right:  r.Center.X + r.Size.Width/2,
		Bottom: r.Center.Y + r.Size.Height/2,
	}
}

type Ellipse struct {
	elementBase
	Center   Point
	Size     Size
	Reversed bool
}

func (*Ellipse) NodeType() NodeType { return NodeEllipse }

func (e *Ellipse) Bounds() Rect {
	return Rect{
		Left:   e.Center.X - e.Size.Width/2,
		Top:    e.Center.Y - e.Size.Height/2,
		Right:  e.Center.X + e.Size.Width/2,
		Bottom: e.Center.Y + e.Size.Height/2,
	}
}

type PolystarType string

const (
	PolystarStar    PolystarType = "star"
	PolystarPolygon PolystarType = "polygon"
)

type Polystar struct {
	elementBase
	Center         Point
	Type           PolystarType
	PointCount     float32
	OuterRadius    float32
	InnerRadius    float32
	Rotation       float32
	OuterRoundness float32
	InnerRoundness float32
	Reversed       bool
}

func (*Polystar) NodeType() NodeType { return NodePolystar }

func (p *Polystar) Bounds() Rect {
	r := p.OuterRadius
	if p.InnerRadius > r {
		r = p.InnerRadius
	}
	return Rect{Left: p.Center.X - r, Top: p.Center.Y - r, Right: p.Center.X + r, Bottom: p.Center.Y + r}
}

// Group scopes painters and modifiers to its own elements and applies an
// optional transform.
type Group struct {
	elementBase
	Elements []Element
	Anchor   Point
	Position Point
	Rotation float32
	Scale    Point
	Skew     float32
	SkewAxis float32
	Alpha    float32
}

func (*Group) NodeType() NodeType { return NodeGroup }

// NewGroup returns a Group with unit scale and full opacity.
func NewGroup(elements ...Element) *Group {
	return &Group{Elements: elements, Scale: Point{X: 1, Y: 1}, Alpha: 1}
}

// Fill paints the accumulated geometry with a color source.
type Fill struct {
	elementBase
	Color     ColorSource
	Alpha     float32
	BlendMode BlendMode
	FillRule  FillRule
	Placement Placement
}

func (*Fill) NodeType() NodeType { return NodeFill }

// NewFill returns an opaque Fill with the given source.
func NewFill(c ColorSource) *Fill { return &Fill{Color: c, Alpha: 1} }

type Stroke struct {
	elementBase
	Color      ColorSource
	Width      float32
	Alpha      float32
	BlendMode  BlendMode
	Cap        LineCap
	Join       LineJoin
	MiterLimit float32
	Dashes     []float32
	DashOffset float32
	Align      StrokeAlign
	Placement  Placement
}

func (*Stroke) NodeType() NodeType { return NodeStroke }

// NewStroke returns an opaque Stroke with the given source and width.
func NewStroke(c ColorSource, width float32) *Stroke {
	return &Stroke{Color: c, Width: width, Alpha: 1, MiterLimit: 4}
}

// Text is a run of characters. After font embedding GlyphRuns carries the
// pre-shaped glyphs and the character fields are informational.
type Text struct {
	elementBase
	Text          string
	Position      Point
	FontFamily    string
	FontStyle     string
	FontSize      float32
	LetterSpacing float32
	FauxBold      bool
	FauxItalic    bool
	TextAnchor    TextAnchor
	GlyphRuns     []*GlyphRun
}

func (*Text) NodeType() NodeType { return NodeText }

type TextPath struct {
	elementBase
	Path             *PathData
	BaselineOrigin   Point
	BaselineAngle    float32
	FirstMargin      float32
	LastMargin       float32
	PerpendicularOff bool
	Reversed         bool
	ForceAlignment   bool
}

func (*TextPath) NodeType() NodeType { return NodeTextPath }

type TextModifier struct {
	elementBase
	Selectors   []*RangeSelector
	AnchorPoint Point
	Position    Point
	Rotation    float32
	Scale       Point
	Skew        float32
	SkewAxis    float32
	Alpha       float32
	FillColor   *Color
	StrokeColor *Color
	StrokeWidth float32
}

func (*TextModifier) NodeType() NodeType { return NodeTextModifier }

type SelectorUnit string

const (
	UnitIndex      SelectorUnit = "index"
	UnitPercentage SelectorUnit = "percentage"
)

type SelectorShape string

const (
	ShapeSquare   SelectorShape = "square"
	ShapeRampUp   SelectorShape = "rampUp"
	ShapeRampDown SelectorShape = "rampDown"
	ShapeTriangle SelectorShape = "triangle"
	ShapeRound    SelectorShape = "round"
	ShapeSmooth   SelectorShape = "smooth"
)

// RangeSelector chooses which characters a TextModifier affects.
type RangeSelector struct {
	base
	Start       float32
	End         float32
	Offset      float32
	Unit        SelectorUnit
	Shape       SelectorShape
	EaseIn      float32
	EaseOut     float32
	Mode        string
	Weight      float32
	RandomOrder bool
	RandomSeed  int
}

func (*RangeSelector) NodeType() NodeType { return NodeRangeSelector }

// TextBox lays out the Text elements of its scope inside a box.
type TextBox struct {
	elementBase
	Position      Point
	Size          Size
	TextAlign     string
	VerticalAlign string
	WritingMode   string
	LineHeight    float32
	WordWrap      bool
	Overflow      string
}

func (*TextBox) NodeType() NodeType { return NodeTextBox }

type TrimPath struct {
	elementBase
	Start  float32
	End    float32
	Offset float32
	Type   string
}

func (*TrimPath) NodeType() NodeType { return NodeTrimPath }

type RoundCorner struct {
	elementBase
	Radius float32
}

func (*RoundCorner) NodeType() NodeType { return NodeRoundCorner }

type MergePath struct {
	elementBase
	Mode string
}

func (*MergePath) NodeType() NodeType { return NodeMergePath }

type Repeater struct {
	elementBase
	Copies     float32
	Offset     float32
	Order      string
	Anchor     Point
	Position   Point
	Rotation   float32
	Scale      Point
	StartAlpha float32
	EndAlpha   float32
}

func (*Repeater) NodeType() NodeType { return NodeRepeater }
