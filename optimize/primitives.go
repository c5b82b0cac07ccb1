package optimize

import (
	"math"

	"github.com/wudi/pagxkit/scene"
)

// kappa places cubic control points for a quarter-ellipse approximation.
const kappa = 0.5522847498

type primitiveReplacement struct {
	elements []scene.Element
	index    int
	path     *scene.Path
	bounds   scene.Rect
	oval     bool
}

// replacePathsWithPrimitives swaps Paths whose geometry is an axis-aligned
// rectangle or a four-arc ellipse for the equivalent Rectangle or Ellipse.
func replacePathsWithPrimitives(doc *scene.Document) (rects, ellipses int) {
	var pending []primitiveReplacement
	for _, node := range doc.Nodes {
		var elements []scene.Element
		switch n := node.(type) {
		case *scene.Layer:
			elements = n.Contents
		case *scene.Group:
			elements = n.Elements
		default:
			continue
		}
		for i, e := range elements {
			path, ok := e.(*scene.Path)
			if !ok || path.Data == nil {
				continue
			}
			if r, ok := pathRect(path.Data); ok {
				pending = append(pending, primitiveReplacement{elements: elements, index: i, path: path, bounds: r})
			} else if r, ok := pathOval(path.Data); ok {
				pending = append(pending, primitiveReplacement{elements: elements, index: i, path: path, bounds: r, oval: true})
			}
		}
	}
	for _, rep := range pending {
		center := scene.Point{
			X: rep.bounds.Left + rep.bounds.Width()/2,
			Y: rep.bounds.Top + rep.bounds.Height()/2,
		}
		size := scene.Size{Width: rep.bounds.Width(), Height: rep.bounds.Height()}
		if rep.oval {
			rep.elements[rep.index] = scene.Add(doc, &scene.Ellipse{Center: center, Size: size, Reversed: rep.path.Reversed})
			ellipses++
		} else {
			rep.elements[rep.index] = scene.Add(doc, &scene.Rectangle{Center: center, Size: size, Reversed: rep.path.Reversed})
			rects++
		}
	}
	return rects, ellipses
}

// pathRect reports whether p is a single closed contour of four axis-aligned
// edges with alternating orientation.
func pathRect(p *scene.PathData) (scene.Rect, bool) {
	segs := p.Segments()
	if len(segs) < 4 || segs[0].Verb != scene.VerbMove {
		return scene.Rect{}, false
	}
	corners := []scene.Point{segs[0].Points[0]}
	closed := false
	for i, s := range segs[1:] {
		switch s.Verb {
		case scene.VerbLine:
			corners = append(corners, s.Points[1])
		case scene.VerbClose:
			if i != len(segs)-2 {
				return scene.Rect{}, false
			}
			closed = true
		default:
			return scene.Rect{}, false
		}
	}
	if len(corners) == 5 && corners[4] == corners[0] {
		corners = corners[:4]
		closed = true
	}
	if !closed || len(corners) != 4 {
		return scene.Rect{}, false
	}
	var horizontal [4]bool
	for i := range corners {
		a, b := corners[i], corners[(i+1)%4]
		switch {
		case a.Y == b.Y && a.X != b.X:
			horizontal[i] = true
		case a.X == b.X && a.Y != b.Y:
		default:
			return scene.Rect{}, false
		}
	}
	for i := range horizontal {
		if horizontal[i] == horizontal[(i+1)%4] {
			return scene.Rect{}, false
		}
	}
	return pointBounds(corners), true
}

// pathOval reports whether p is a closed contour of four cubic quarter arcs
// that approximate an axis-aligned ellipse.
func pathOval(p *scene.PathData) (scene.Rect, bool) {
	segs := p.Segments()
	if len(segs) < 5 || segs[0].Verb != scene.VerbMove {
		return scene.Rect{}, false
	}
	arcs := segs[1:]
	if last := arcs[len(arcs)-1]; last.Verb == scene.VerbClose {
		arcs = arcs[:len(arcs)-1]
	}
	if len(arcs) != 4 {
		return scene.Rect{}, false
	}
	ends := make([]scene.Point, 0, 4)
	for _, s := range arcs {
		if s.Verb != scene.VerbCubic {
			return scene.Rect{}, false
		}
		ends = append(ends, s.Points[3])
	}
	if !nearPoint(ends[3], segs[0].Points[0], 1e-4) {
		return scene.Rect{}, false
	}
	bounds := pointBounds(ends)
	if bounds.IsEmpty() {
		return scene.Rect{}, false
	}
	c := scene.Point{X: (bounds.Left + bounds.Right) / 2, Y: (bounds.Top + bounds.Bottom) / 2}
	rx, ry := bounds.Width()/2, bounds.Height()/2
	tol := 1e-3 * max(rx, ry)
	for _, s := range arcs {
		p0, p1, p2, p3 := s.Points[0], s.Points[1], s.Points[2], s.Points[3]
		if !onAxis(p0, c, rx, ry, tol) || !onAxis(p3, c, rx, ry, tol) {
			return scene.Rect{}, false
		}
		want1 := scene.Point{X: p0.X + kappa*(p3.X-c.X), Y: p0.Y + kappa*(p3.Y-c.Y)}
		want2 := scene.Point{X: p3.X + kappa*(p0.X-c.X), Y: p3.Y + kappa*(p0.Y-c.Y)}
		if !nearPoint(p1, want1, tol) || !nearPoint(p2, want2, tol) {
			return scene.Rect{}, false
		}
	}
	return bounds, true
}

func onAxis(p, c scene.Point, rx, ry, tol float32) bool {
	dx, dy := abs32(p.X-c.X), abs32(p.Y-c.Y)
	return (dx <= tol && abs32(dy-ry) <= tol) || (dy <= tol && abs32(dx-rx) <= tol)
}

func nearPoint(a, b scene.Point, tol float32) bool {
	return abs32(a.X-b.X) <= tol && abs32(a.Y-b.Y) <= tol
}

func abs32(v float32) float32 { return float32(math.Abs(float64(v))) }

func pointBounds(points []scene.Point) scene.Rect {
	r := scene.Rect{Left: points[0].X, Top: points[0].Y, Right: points[0].X, Bottom: points[0].Y}
	for _, pt := range points[1:] {
		r.Left = min(r.Left, pt.X)
		r.Top = min(r.Top, pt.Y)
		r.Right = max(r.Right, pt.X)
		r.Bottom = max(r.Bottom, pt.Y)
	}
	return r
}
