package scene

type layerStyleBase struct{ base }

func (*layerStyleBase) layerStyle() {}

type layerFilterBase struct{ base }

func (*layerFilterBase) layerFilter() {}

type DropShadowStyle struct {
	layerStyleBase
	OffsetX    float32
	OffsetY    float32
	BlurX      float32
	BlurY      float32
	Color      Color
	ShowBehind bool
	BlendMode  BlendMode
}

func (*DropShadowStyle) NodeType() NodeType { return NodeDropShadowStyle }

type InnerShadowStyle struct {
	layerStyleBase
	OffsetX   float32
	OffsetY   float32
	BlurX     float32
	BlurY     float32
	Color     Color
	BlendMode BlendMode
}

func (*InnerShadowStyle) NodeType() NodeType { return NodeInnerShadowStyle }

type BackgroundBlurStyle struct {
	layerStyleBase
	BlurX     float32
	BlurY     float32
	TileMode  TileMode
	BlendMode BlendMode
}

func (*BackgroundBlurStyle) NodeType() NodeType { return NodeBackgroundBlurStyle }

type BlurFilter struct {
	layerFilterBase
	BlurX    float32
	BlurY    float32
	TileMode TileMode
}

func (*BlurFilter) NodeType() NodeType { return NodeBlurFilter }

type DropShadowFilter struct {
	layerFilterBase
	OffsetX    float32
	OffsetY    float32
	BlurX      float32
	BlurY      float32
	Color      Color
	ShadowOnly bool
}

func (*DropShadowFilter) NodeType() NodeType { return NodeDropShadowFilter }

type InnerShadowFilter struct {
	layerFilterBase
	OffsetX    float32
	OffsetY    float32
	BlurX      float32
	BlurY      float32
	Color      Color
	ShadowOnly bool
}

func (*InnerShadowFilter) NodeType() NodeType { return NodeInnerShadowFilter }

type BlendFilter struct {
	layerFilterBase
	Color     Color
	BlendMode BlendMode
}

func (*BlendFilter) NodeType() NodeType { return NodeBlendFilter }

// ColorMatrixFilter applies a 4x5 row-major color matrix.
type ColorMatrixFilter struct {
	layerFilterBase
	Matrix [20]float32
}

func (*ColorMatrixFilter) NodeType() NodeType { return NodeColorMatrixFilter }
