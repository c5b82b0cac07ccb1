package optimize

import (
	"github.com/wudi/pagxkit/scene"
)

type mergeable interface {
	comparable
	scene.Node
}

// findDuplicates scans nodes in document order and maps every node that is
// equal to an earlier one onto that earlier survivor. Buckets keep insertion
// order, so the first-seen node always survives.
func findDuplicates[T mergeable](nodes []scene.Node, key func(T) contentKey, equal func(a, b T) bool) map[T]T {
	buckets := make(map[contentKey][]T)
	merge := make(map[T]T)
	for _, node := range nodes {
		n, ok := node.(T)
		if !ok {
			continue
		}
		k := key(n)
		matched := false
		for _, survivor := range buckets[k] {
			if equal(survivor, n) {
				merge[n] = survivor
				matched = true
				break
			}
		}
		if !matched {
			buckets[k] = append(buckets[k], n)
		}
	}
	return merge
}

func deduplicatePathData(doc *scene.Document) int {
	merge := findDuplicates(doc.Nodes, pathDataKey, (*scene.PathData).Equal)
	if len(merge) == 0 {
		return 0
	}
	redirect := func(p *scene.PathData) *scene.PathData {
		if s, ok := merge[p]; ok {
			return s
		}
		return p
	}
	for _, node := range doc.Nodes {
		switch n := node.(type) {
		case *scene.Path:
			n.Data = redirect(n.Data)
		case *scene.TextPath:
			n.Path = redirect(n.Path)
		case *scene.Glyph:
			if v, ok := n.Payload.(scene.VectorGlyph); ok {
				n.Payload = scene.VectorGlyph{Path: redirect(v.Path)}
			}
		}
	}
	return len(merge)
}

func deduplicateGradients(doc *scene.Document) int {
	merge := findDuplicates(doc.Nodes, gradientKey, func(a, b scene.Gradient) bool {
		return scene.GradientEqual(a, b)
	})
	if len(merge) == 0 {
		return 0
	}
	redirect := func(c scene.ColorSource) scene.ColorSource {
		g, ok := c.(scene.Gradient)
		if !ok {
			return c
		}
		if s, ok := merge[g]; ok {
			return s
		}
		return c
	}
	for _, node := range doc.Nodes {
		switch n := node.(type) {
		case *scene.Fill:
			n.Color = redirect(n.Color)
		case *scene.Stroke:
			n.Color = redirect(n.Color)
		}
	}
	return len(merge)
}
