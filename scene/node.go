// Package scene models a PAGX document: a flat set of document-owned nodes
// linked by non-owning pointers, plus the ordered layer tree that roots them.
package scene

// NodeType identifies the concrete kind of a Node. The set is closed; code
// that dispatches on node kinds (reference collection in particular) must be
// updated whenever a kind that holds references is added.
type NodeType int

const (
	NodeLayer NodeType = iota
	NodeGroup
	NodePath
	NodePathData
	NodeRectangle
	NodeEllipse
	NodePolystar
	NodeFill
	NodeStroke
	NodeSolidColor
	NodeLinearGradient
	NodeRadialGradient
	NodeConicGradient
	NodeDiamondGradient
	NodeImagePattern
	NodeColorStop
	NodeText
	NodeTextPath
	NodeTextModifier
	NodeRangeSelector
	NodeTextBox
	NodeTrimPath
	NodeRoundCorner
	NodeMergePath
	NodeRepeater
	NodeFont
	NodeGlyph
	NodeGlyphRun
	NodeImage
	NodeComposition
	NodeDropShadowStyle
	NodeInnerShadowStyle
	NodeBackgroundBlurStyle
	NodeBlurFilter
	NodeDropShadowFilter
	NodeInnerShadowFilter
	NodeBlendFilter
	NodeColorMatrixFilter
)

var nodeTypeNames = [...]string{
	NodeLayer:               "Layer",
	NodeGroup:               "Group",
	NodePath:                "Path",
	NodePathData:            "PathData",
	NodeRectangle:           "Rectangle",
	NodeEllipse:             "Ellipse",
	NodePolystar:            "Polystar",
	NodeFill:                "Fill",
	NodeStroke:              "Stroke",
	NodeSolidColor:          "SolidColor",
	NodeLinearGradient:      "LinearGradient",
	NodeRadialGradient:      "RadialGradient",
	NodeConicGradient:       "ConicGradient",
	NodeDiamondGradient:     "DiamondGradient",
	NodeImagePattern:        "ImagePattern",
	NodeColorStop:           "ColorStop",
	NodeText:                "Text",
	NodeTextPath:            "TextPath",
	NodeTextModifier:        "TextModifier",
	NodeRangeSelector:       "RangeSelector",
	NodeTextBox:             "TextBox",
	NodeTrimPath:            "TrimPath",
	NodeRoundCorner:         "RoundCorner",
	NodeMergePath:           "MergePath",
	NodeRepeater:            "Repeater",
	NodeFont:                "Font",
	NodeGlyph:               "Glyph",
	NodeGlyphRun:            "GlyphRun",
	NodeImage:               "Image",
	NodeComposition:         "Composition",
	NodeDropShadowStyle:     "DropShadowStyle",
	NodeInnerShadowStyle:    "InnerShadowStyle",
	NodeBackgroundBlurStyle: "BackgroundBlurStyle",
	NodeBlurFilter:          "BlurFilter",
	NodeDropShadowFilter:    "DropShadowFilter",
	NodeInnerShadowFilter:   "InnerShadowFilter",
	NodeBlendFilter:         "BlendFilter",
	NodeColorMatrixFilter:   "ColorMatrixFilter",
}

// String returns the PAGX element name of the node type.
func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "Unknown"
	}
	return nodeTypeNames[t]
}

// IsGradient reports whether t is one of the four gradient color sources.
func (t NodeType) IsGradient() bool {
	switch t {
	case NodeLinearGradient, NodeRadialGradient, NodeConicGradient, NodeDiamondGradient:
		return true
	}
	return false
}

// Node is any member of the scene graph. Nodes are owned by exactly one
// Document; every other pointer to a node is a non-owning reference.
type Node interface {
	NodeType() NodeType
	NodeID() string
}

// base carries the optional identifier shared by every node.
type base struct {
	ID string
}

func (b *base) NodeID() string { return b.ID }

// Element is a node that can be placed in a Layer's contents or a Group's
// elements.
type Element interface {
	Node
	element()
}

type elementBase struct{ base }

func (*elementBase) element() {}

// LayerStyle is a node listed in Layer.Styles.
type LayerStyle interface {
	Node
	layerStyle()
}

// LayerFilter is a node listed in Layer.Filters.
type LayerFilter interface {
	Node
	layerFilter()
}
