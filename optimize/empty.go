package optimize

import (
	"slices"

	"github.com/wudi/pagxkit/scene"
)

// removeEmptyNodes drops empty layers, zero-width strokes and empty groups
// from every container until nothing changes. Removing a child can empty its
// parent, so a single sweep is not enough.
func removeEmptyNodes(doc *scene.Document) int {
	total := 0
	for {
		n := removeEmptyOnce(doc)
		if n == 0 {
			return total
		}
		total += n
	}
}

func removeEmptyOnce(doc *scene.Document) int {
	removed := 0
	doc.Layers = prune(doc.Layers, (*scene.Layer).IsEmpty, &removed)
	for _, node := range doc.Nodes {
		switch n := node.(type) {
		case *scene.Layer:
			n.Children = prune(n.Children, (*scene.Layer).IsEmpty, &removed)
			n.Contents = prune(n.Contents, isEmptyElement, &removed)
		case *scene.Group:
			n.Elements = prune(n.Elements, isEmptyElement, &removed)
		case *scene.Composition:
			n.Layers = prune(n.Layers, (*scene.Layer).IsEmpty, &removed)
		}
	}
	return removed
}

func isEmptyElement(e scene.Element) bool {
	switch n := e.(type) {
	case *scene.Stroke:
		return n.Width <= 0
	case *scene.Group:
		return len(n.Elements) == 0
	}
	return false
}

func prune[T any](s []T, empty func(T) bool, removed *int) []T {
	before := len(s)
	s = slices.DeleteFunc(s, empty)
	*removed += before - len(s)
	return s
}
