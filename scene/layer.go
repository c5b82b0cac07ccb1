package scene

// Layer is a node of the layer tree. Contents are drawn in order, followed by
// the child layers.
type Layer struct {
	base
	Name        string
	Visible     bool
	Alpha       float32
	BlendMode   BlendMode
	X           float32
	Y           float32
	Matrix      Matrix
	Contents    []Element
	Children    []*Layer
	Styles      []LayerStyle
	Filters     []LayerFilter
	Mask        *Layer
	MaskType    MaskType
	Composition *Composition
}

func (*Layer) NodeType() NodeType { return NodeLayer }

// NewLayer returns a visible, opaque layer.
func NewLayer() *Layer { return &Layer{Visible: true, Alpha: 1} }

// IsEmpty reports whether the layer draws nothing of its own. A mask does not
// count as content.
func (l *Layer) IsEmpty() bool {
	return len(l.Contents) == 0 && len(l.Children) == 0 &&
		len(l.Styles) == 0 && len(l.Filters) == 0 && l.Composition == nil
}
