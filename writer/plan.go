package writer

import (
	"strconv"

	"github.com/wudi/pagxkit/scene"
)

// plan decides, before anything is written, which resources are inlined at
// their single use and which are listed under <Resources> and referenced by
// id. Anonymous resources that must be referenced get generated ids; the
// document itself is not modified.
type plan struct {
	uses      map[scene.Node]int
	ids       map[scene.Node]string
	taken     map[string]struct{}
	resources []scene.Node
}

func newPlan(doc *scene.Document) *plan {
	p := &plan{
		uses:  make(map[scene.Node]int),
		ids:   make(map[scene.Node]string),
		taken: doc.IDs(),
	}
	for _, n := range doc.Nodes {
		p.countUses(n)
	}
	for _, n := range doc.Nodes {
		if !isResource(n) {
			continue
		}
		if n.NodeID() != "" {
			p.resources = append(p.resources, n)
			continue
		}
		if p.mustReference(n) {
			p.ids[n] = p.generateID(n)
			p.resources = append(p.resources, n)
		}
	}
	for _, n := range doc.Nodes {
		if l, ok := n.(*scene.Layer); ok && l.ID == "" && p.uses[l] > 0 {
			p.ids[l] = p.generateID(l)
		}
	}
	return p
}

func (p *plan) use(n scene.Node) {
	if n != nil {
		p.uses[n]++
	}
}

func (p *plan) countUses(n scene.Node) {
	switch v := n.(type) {
	case *scene.Path:
		if v.Data != nil {
			p.use(v.Data)
		}
	case *scene.TextPath:
		if v.Path != nil {
			p.use(v.Path)
		}
	case *scene.Fill:
		if v.Color != nil {
			p.use(v.Color)
		}
	case *scene.Stroke:
		if v.Color != nil {
			p.use(v.Color)
		}
	case *scene.ImagePattern:
		if v.Image != nil {
			p.use(v.Image)
		}
	case *scene.Glyph:
		if path := v.Path(); path != nil {
			p.use(path)
		}
		if img := v.Image(); img != nil {
			p.use(img)
		}
	case *scene.GlyphRun:
		if v.Font != nil {
			p.use(v.Font)
		}
	case *scene.Layer:
		if v.Composition != nil {
			p.use(v.Composition)
		}
		if v.Mask != nil {
			p.use(v.Mask)
		}
	}
}

func isResource(n scene.Node) bool {
	switch n.NodeType() {
	case scene.NodeImage, scene.NodePathData, scene.NodeComposition, scene.NodeFont,
		scene.NodeSolidColor, scene.NodeImagePattern:
		return true
	}
	return n.NodeType().IsGradient()
}

// mustReference reports whether an anonymous resource needs an id. Fonts
// and compositions are always referenced; everything else only when it is
// shared.
func (p *plan) mustReference(n scene.Node) bool {
	switch n.NodeType() {
	case scene.NodeFont, scene.NodeComposition:
		return p.uses[n] > 0
	}
	return p.uses[n] > 1
}

var idPrefixes = map[scene.NodeType]string{
	scene.NodeImage:        "image",
	scene.NodePathData:     "path",
	scene.NodeComposition:  "composition",
	scene.NodeFont:         "font",
	scene.NodeImagePattern: "pattern",
	scene.NodeLayer:        "mask",
}

func (p *plan) generateID(n scene.Node) string {
	prefix, ok := idPrefixes[n.NodeType()]
	if !ok {
		prefix = "color"
	}
	for i := 1; ; i++ {
		id := prefix + strconv.Itoa(i)
		if _, used := p.taken[id]; !used {
			p.taken[id] = struct{}{}
			return id
		}
	}
}

// id returns the written id of n, or "" when n is written inline.
func (p *plan) id(n scene.Node) string {
	if id := n.NodeID(); id != "" {
		return id
	}
	return p.ids[n]
}

// reference returns "@id" when n is referenced rather than inlined.
func (p *plan) reference(n scene.Node) (string, bool) {
	if id := p.id(n); id != "" {
		return "@" + id, true
	}
	return "", false
}
