package optimize

import (
	"slices"
	"strconv"

	"github.com/wudi/pagxkit/scene"
)

// extractCompositions replaces groups of two or more structurally identical
// leaf layers with references to one shared Composition. It returns the
// number of layers rewritten.
func extractCompositions(doc *scene.Document) int {
	var order []contentKey
	buckets := make(map[contentKey][]*scene.Layer)
	var collect func(l *scene.Layer)
	collect = func(l *scene.Layer) {
		if isCompositionCandidate(l) {
			k := layerKey(l)
			if _, ok := buckets[k]; !ok {
				order = append(order, k)
			}
			buckets[k] = append(buckets[k], l)
		}
		for _, child := range l.Children {
			collect(child)
		}
	}
	for _, l := range doc.Layers {
		collect(l)
	}

	ids := doc.IDs()
	count := 0
	for _, k := range order {
		for _, group := range equalGroups(buckets[k]) {
			if len(group) < 2 {
				continue
			}
			w, h := contentsSize(group[0].Contents)
			if w <= 0 || h <= 0 {
				continue
			}
			comp := scene.Add(doc, &scene.Composition{Width: w, Height: h})
			comp.ID = uniqueID(ids, "comp")
			inner := scene.Add(doc, scene.NewLayer())
			inner.ID = uniqueID(ids, "compLayer")
			inner.Contents = group[0].Contents
			comp.Layers = []*scene.Layer{inner}
			for _, l := range group {
				l.Contents = nil
				l.Composition = comp
			}
			count += len(group)
		}
	}
	return count
}

func isCompositionCandidate(l *scene.Layer) bool {
	return len(l.Contents) > 0 && l.Composition == nil && l.Matrix.IsIdentity() &&
		len(l.Children) == 0 && len(l.Styles) == 0 && len(l.Filters) == 0
}

// equalGroups splits a hash bucket into runs of structurally equal layers,
// keeping first-appearance order.
func equalGroups(layers []*scene.Layer) [][]*scene.Layer {
	var groups [][]*scene.Layer
	for _, l := range layers {
		found := false
		for i, g := range groups {
			if layersEqual(g[0], l) {
				groups[i] = append(g, l)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, []*scene.Layer{l})
		}
	}
	return groups
}

func uniqueID(ids map[string]struct{}, prefix string) string {
	for n := 1; ; n++ {
		id := prefix + strconv.Itoa(n)
		if _, taken := ids[id]; !taken {
			ids[id] = struct{}{}
			return id
		}
	}
}

func contentsSize(contents []scene.Element) (float32, float32) {
	var bounds []scene.Rect
	for _, e := range contents {
		switch n := e.(type) {
		case *scene.Rectangle:
			bounds = append(bounds, n.Bounds())
		case *scene.Ellipse:
			bounds = append(bounds, n.Bounds())
		case *scene.Polystar:
			r := n.OuterRadius
			bounds = append(bounds, scene.Rect{Left: n.Center.X - r, Top: n.Center.Y - r, Right: n.Center.X + r, Bottom: n.Center.Y + r})
		}
	}
	if len(bounds) == 0 {
		return 0, 0
	}
	u := bounds[0]
	for _, b := range bounds[1:] {
		u.Left = min(u.Left, b.Left)
		u.Top = min(u.Top, b.Top)
		u.Right = max(u.Right, b.Right)
		u.Bottom = max(u.Bottom, b.Bottom)
	}
	return u.Width(), u.Height()
}

// layerKey hashes the fields layersEqual compares, so equal layers always
// share a bucket.
func layerKey(l *scene.Layer) contentKey {
	k := newKeyHasher()
	writeLayerKey(k, l)
	return k.sum()
}

func writeLayerKey(k *keyHasher, l *scene.Layer) {
	k.int(len(l.Contents))
	k.int(len(l.Children))
	for _, e := range l.Contents {
		writeElementKey(k, e)
	}
	for _, child := range l.Children {
		writeLayerKey(k, child)
	}
}

func writeElementKey(k *keyHasher, e scene.Element) {
	k.int(int(e.NodeType()))
	switch n := e.(type) {
	case *scene.Rectangle:
		k.float(n.Size.Width)
		k.float(n.Size.Height)
		k.float(n.Roundness)
	case *scene.Ellipse:
		k.float(n.Size.Width)
		k.float(n.Size.Height)
	case *scene.Polystar:
		k.float(n.PointCount)
		k.float(n.OuterRadius)
		k.float(n.InnerRadius)
	case *scene.Path:
		if n.Data != nil {
			k.int(len(n.Data.Verbs))
			k.int(len(n.Data.Points))
		}
	case *scene.Fill:
		k.float(n.Alpha)
	case *scene.Stroke:
		k.float(n.Width)
		k.float(n.Alpha)
	case *scene.Group:
		k.int(len(n.Elements))
		for _, child := range n.Elements {
			writeElementKey(k, child)
		}
	}
}

func layersEqual(a, b *scene.Layer) bool {
	if len(a.Contents) != len(b.Contents) || len(a.Children) != len(b.Children) {
		return false
	}
	if a.Composition != nil || b.Composition != nil {
		return false
	}
	if len(a.Styles) != len(b.Styles) || len(a.Filters) != len(b.Filters) {
		return false
	}
	if a.Alpha != b.Alpha || a.BlendMode != b.BlendMode || a.Visible != b.Visible {
		return false
	}
	if !a.Matrix.IsIdentity() || !b.Matrix.IsIdentity() {
		return false
	}
	for i := range a.Contents {
		if !elementsEqual(a.Contents[i], b.Contents[i]) {
			return false
		}
	}
	for i := range a.Children {
		if !layersEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// elementsEqual compares elements ignoring their position. Kinds without a
// case never compare equal.
func elementsEqual(a, b scene.Element) bool {
	if a.NodeType() != b.NodeType() {
		return false
	}
	switch x := a.(type) {
	case *scene.Rectangle:
		y := b.(*scene.Rectangle)
		return x.Size == y.Size && x.Roundness == y.Roundness && x.Reversed == y.Reversed
	case *scene.Ellipse:
		y := b.(*scene.Ellipse)
		return x.Size == y.Size && x.Reversed == y.Reversed
	case *scene.Polystar:
		y := b.(*scene.Polystar)
		return x.Type == y.Type && x.PointCount == y.PointCount &&
			x.OuterRadius == y.OuterRadius && x.InnerRadius == y.InnerRadius &&
			x.Rotation == y.Rotation && x.OuterRoundness == y.OuterRoundness &&
			x.InnerRoundness == y.InnerRoundness && x.Reversed == y.Reversed
	case *scene.Path:
		y := b.(*scene.Path)
		return x.Reversed == y.Reversed && x.Data.Equal(y.Data)
	case *scene.Fill:
		y := b.(*scene.Fill)
		return x.Alpha == y.Alpha && x.BlendMode == y.BlendMode && x.FillRule == y.FillRule &&
			x.Placement == y.Placement && paintEqual(x.Color, y.Color)
	case *scene.Stroke:
		y := b.(*scene.Stroke)
		return x.Width == y.Width && x.Alpha == y.Alpha && x.BlendMode == y.BlendMode &&
			x.Cap == y.Cap && x.Join == y.Join && x.MiterLimit == y.MiterLimit &&
			slices.Equal(x.Dashes, y.Dashes) && x.DashOffset == y.DashOffset &&
			x.Align == y.Align && x.Placement == y.Placement && paintEqual(x.Color, y.Color)
	case *scene.Group:
		y := b.(*scene.Group)
		if x.Anchor != y.Anchor || x.Rotation != y.Rotation || x.Scale != y.Scale ||
			x.Skew != y.Skew || x.SkewAxis != y.SkewAxis || x.Alpha != y.Alpha ||
			len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !elementsEqual(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *scene.Text:
		y := b.(*scene.Text)
		return x.Text == y.Text && x.FontFamily == y.FontFamily && x.FontStyle == y.FontStyle &&
			x.FontSize == y.FontSize && x.LetterSpacing == y.LetterSpacing &&
			x.FauxBold == y.FauxBold && x.FauxItalic == y.FauxItalic &&
			x.TextAnchor == y.TextAnchor && len(x.GlyphRuns) == len(y.GlyphRuns)
	case *scene.TextBox:
		y := b.(*scene.TextBox)
		return x.Size == y.Size && x.TextAlign == y.TextAlign && x.VerticalAlign == y.VerticalAlign &&
			x.WritingMode == y.WritingMode && x.LineHeight == y.LineHeight &&
			x.WordWrap == y.WordWrap && x.Overflow == y.Overflow
	}
	return false
}

// paintEqual compares solid colors by value and everything else by
// identity; gradients have already been deduplicated at this point.
func paintEqual(a, b scene.ColorSource) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.NodeType() != b.NodeType() {
		return false
	}
	if sa, ok := a.(*scene.SolidColor); ok {
		return sa.Color == b.(*scene.SolidColor).Color
	}
	return false
}
