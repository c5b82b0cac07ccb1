package optimize

import "github.com/wudi/pagxkit/scene"

const localizeEpsilon = 0.001

// localizeCoordinates moves each layer's geometry centre into the layer's
// x/y so its contents sit around the origin. Layers under a composition are
// visited through the composition nodes.
func localizeCoordinates(doc *scene.Document) int {
	count := 0
	for _, l := range doc.Layers {
		count += localizeLayer(l)
	}
	for _, node := range doc.Nodes {
		if comp, ok := node.(*scene.Composition); ok {
			for _, l := range comp.Layers {
				count += localizeLayer(l)
			}
		}
	}
	return count
}

func localizeLayer(l *scene.Layer) int {
	count := 0
	if l.Matrix.IsIdentity() && l.Composition == nil && len(l.Contents) > 0 {
		dx, dy := localizationOffset(l.Contents)
		if abs32(dx) >= localizeEpsilon || abs32(dy) >= localizeEpsilon {
			l.X += dx
			l.Y += dy
			shiftElements(l.Contents, dx, dy)
			count++
		}
	}
	for _, child := range l.Children {
		count += localizeLayer(child)
	}
	return count
}

// localizationOffset returns the TextBox position when the layer has one,
// otherwise the centre of the geometry bounds.
func localizationOffset(contents []scene.Element) (float32, float32) {
	for _, e := range contents {
		if box, ok := e.(*scene.TextBox); ok {
			return box.Position.X, box.Position.Y
		}
	}
	var points []scene.Point
	for _, e := range contents {
		switch n := e.(type) {
		case *scene.Rectangle:
			b := n.Bounds()
			points = append(points, scene.Point{X: b.Left, Y: b.Top}, scene.Point{X: b.Right, Y: b.Bottom})
		case *scene.Ellipse:
			b := n.Bounds()
			points = append(points, scene.Point{X: b.Left, Y: b.Top}, scene.Point{X: b.Right, Y: b.Bottom})
		case *scene.Polystar:
			r := n.OuterRadius
			points = append(points,
				scene.Point{X: n.Center.X - r, Y: n.Center.Y - r},
				scene.Point{X: n.Center.X + r, Y: n.Center.Y + r})
		case *scene.Text:
			points = append(points, n.Position)
		case *scene.Group:
			points = append(points, n.Position)
		}
	}
	if len(points) == 0 {
		return 0, 0
	}
	b := pointBounds(points)
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

func shiftElements(contents []scene.Element, dx, dy float32) {
	for _, e := range contents {
		switch n := e.(type) {
		case *scene.Rectangle:
			n.Center.X -= dx
			n.Center.Y -= dy
		case *scene.Ellipse:
			n.Center.X -= dx
			n.Center.Y -= dy
		case *scene.Polystar:
			n.Center.X -= dx
			n.Center.Y -= dy
		case *scene.Text:
			n.Position.X -= dx
			n.Position.Y -= dy
			for _, run := range n.GlyphRuns {
				run.X -= dx
				run.Y -= dy
			}
		case *scene.TextBox:
			n.Position.X -= dx
			n.Position.Y -= dy
		case *scene.Group:
			n.Position.X -= dx
			n.Position.Y -= dy
		}
	}
}
