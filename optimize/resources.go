package optimize

import (
	"github.com/wudi/pagxkit/scene"
)

// CollectReferences returns every node reachable from doc.Layers. The walk is
// dispatched on node kind; a kind that holds references must have a case
// here or its targets are collected as garbage.
func CollectReferences(doc *scene.Document) map[scene.Node]struct{} {
	c := collector{seen: make(map[scene.Node]struct{})}
	for _, layer := range doc.Layers {
		c.layer(layer)
	}
	return c.seen
}

type collector struct {
	seen map[scene.Node]struct{}
}

func (c *collector) mark(n scene.Node) {
	c.seen[n] = struct{}{}
}

func (c *collector) layer(l *scene.Layer) {
	if l == nil {
		return
	}
	c.mark(l)
	c.elements(l.Contents)
	for _, s := range l.Styles {
		c.mark(s)
	}
	for _, f := range l.Filters {
		c.mark(f)
	}
	c.layer(l.Mask)
	if comp := l.Composition; comp != nil {
		if _, done := c.seen[comp]; !done {
			c.mark(comp)
			for _, child := range comp.Layers {
				c.layer(child)
			}
		}
	}
	for _, child := range l.Children {
		c.layer(child)
	}
}

// elements does not guard against cycles; element graphs are trees.
func (c *collector) elements(elements []scene.Element) {
	for _, e := range elements {
		if e == nil {
			continue
		}
		c.mark(e)
		switch n := e.(type) {
		case *scene.Fill:
			c.colorSource(n.Color)
		case *scene.Stroke:
			c.colorSource(n.Color)
		case *scene.Path:
			if n.Data != nil {
				c.mark(n.Data)
			}
		case *scene.Text:
			for _, run := range n.GlyphRuns {
				c.glyphRun(run)
			}
		case *scene.Group:
			c.elements(n.Elements)
		case *scene.TextPath:
			if n.Path != nil {
				c.mark(n.Path)
			}
		case *scene.TextModifier:
			for _, s := range n.Selectors {
				c.mark(s)
			}
		}
	}
}

func (c *collector) colorSource(src scene.ColorSource) {
	if src == nil {
		return
	}
	c.mark(src)
	switch n := src.(type) {
	case scene.Gradient:
		for _, stop := range n.Stops() {
			c.mark(stop)
		}
	case *scene.ImagePattern:
		if n.Image != nil {
			c.mark(n.Image)
		}
	}
}

func (c *collector) glyphRun(run *scene.GlyphRun) {
	c.mark(run)
	if run.Font == nil {
		return
	}
	c.mark(run.Font)
	for _, g := range run.Font.Glyphs {
		c.mark(g)
		switch p := g.Payload.(type) {
		case scene.VectorGlyph:
			if p.Path != nil {
				c.mark(p.Path)
			}
		case scene.BitmapGlyph:
			if p.Image != nil {
				c.mark(p.Image)
			}
		}
	}
}

// removeUnreferencedResources erases every owned node the collector cannot
// reach. It is the only pass that drops nodes from the document.
func removeUnreferencedResources(doc *scene.Document) int {
	reachable := CollectReferences(doc)
	return doc.RemoveNodes(func(n scene.Node) bool {
		_, ok := reachable[n]
		return ok
	})
}
